package validatorlist

import (
	"testing"

	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
	"github.com/stretchr/testify/require"
)

func addr(b byte) accountstate.Address {
	var a accountstate.Address
	a[0] = b
	return a
}

func TestAddRejectsDuplicateAndFull(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Add(addr(1), 0, 5))
	err := l.Add(addr(1), 0, 5)
	require.Equal(t, stakepoolerr.KindValidatorAlreadyAdded, stakepoolerr.KindOf(err))

	err = l.Add(addr(2), 0, 5)
	require.Equal(t, stakepoolerr.KindTooManyValidators, stakepoolerr.KindOf(err))
}

func TestRemoveRequiresReadyForRemoval(t *testing.T) {
	l := New(2)
	require.NoError(t, l.Add(addr(1), 0, 5))

	err := l.Remove(addr(1))
	require.Equal(t, stakepoolerr.KindInvalidState, stakepoolerr.KindOf(err))

	entry, _, ok := l.Find(addr(1))
	require.True(t, ok)
	entry.Status = codec.StatusReadyForRemoval
	require.NoError(t, l.Update(addr(1), entry))
	require.NoError(t, l.Remove(addr(1)))
	require.False(t, l.Contains(addr(1)))
}

func TestRemovePreservesOrderOfSurvivors(t *testing.T) {
	l := New(3)
	require.NoError(t, l.Add(addr(1), 0, 5))
	require.NoError(t, l.Add(addr(2), 0, 5))
	require.NoError(t, l.Add(addr(3), 0, 5))

	e, _, _ := l.Find(addr(2))
	e.Status = codec.StatusReadyForRemoval
	require.NoError(t, l.Update(addr(2), e))
	require.NoError(t, l.Remove(addr(2)))

	require.Len(t, l.Entries, 2)
	require.True(t, l.Entries[0].VoteAccountAddress.Equal(addr(1)))
	require.True(t, l.Entries[1].VoteAccountAddress.Equal(addr(3)))
}

func TestTransientBudget(t *testing.T) {
	l := New(MaxTransientStakeAccounts + 1)
	for i := 0; i < MaxTransientStakeAccounts; i++ {
		v := addr(byte(i + 1))
		require.NoError(t, l.Add(v, 0, 1))
		e, _, _ := l.Find(v)
		e.TransientStakeLamports = 100
		require.NoError(t, l.Update(v, e))
	}
	require.Equal(t, 0, l.TransientBudgetFree())

	require.NoError(t, l.Add(addr(250), 0, 1))
	require.Equal(t, 0, l.TransientBudgetFree())
}

func TestCleanupRemovedIsIdempotent(t *testing.T) {
	l := New(2)
	require.NoError(t, l.Add(addr(1), 0, 1))
	e, _, _ := l.Find(addr(1))
	e.Status = codec.StatusReadyForRemoval
	require.NoError(t, l.Update(addr(1), e))

	require.Equal(t, 1, l.CleanupRemoved())
	require.Equal(t, 0, l.CleanupRemoved())
	require.Empty(t, l.Entries)
}

func TestAllCurrentAndTotalStaked(t *testing.T) {
	l := New(2)
	require.NoError(t, l.Add(addr(1), 0, 5))
	require.NoError(t, l.Add(addr(2), 0, 5))
	require.False(t, l.AllCurrent(6))

	for i := range l.Entries {
		l.Entries[i].LastUpdateEpoch = 6
		l.Entries[i].ActiveStakeLamports = 1000
	}
	require.True(t, l.AllCurrent(6))
	require.Equal(t, uint64(2000), l.TotalStaked())
}
