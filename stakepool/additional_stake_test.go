package stakepool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/pda"
)

func TestIncreaseAdditionalValidatorStakeMergesIntoLiveTransient(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	validatorStakeAccount := addr(0x31)
	deps.Stake.Seed(validatorStakeAccount, vote, 2_000_000)
	deps.Stake.Seed(pool.Record.ReserveStake, accountstate.Address{}, 5_000_000)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, validatorStakeAccount, 0))

	require.NoError(t, pool.IncreaseValidatorStake(addr(0x11), vote, 500_000, 7))
	entry, _, _ := pool.List.Find(vote)
	require.Equal(t, uint64(500_000), entry.TransientStakeLamports)
	require.Equal(t, uint64(7), entry.TransientSeedSuffix)

	require.NoError(t, pool.IncreaseAdditionalValidatorStake(addr(0x11), vote, 250_000, 7, 1))
	entry, _, _ = pool.List.Find(vote)
	require.Equal(t, uint64(750_000), entry.TransientStakeLamports)
}

func TestIncreaseAdditionalValidatorStakeRejectsMismatchedSuffix(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	validatorStakeAccount := addr(0x31)
	deps.Stake.Seed(validatorStakeAccount, vote, 2_000_000)
	deps.Stake.Seed(pool.Record.ReserveStake, accountstate.Address{}, 5_000_000)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, validatorStakeAccount, 0))
	require.NoError(t, pool.IncreaseValidatorStake(addr(0x11), vote, 500_000, 7))

	err := pool.IncreaseAdditionalValidatorStake(addr(0x11), vote, 250_000, 8, 1)
	require.Error(t, err)
}

func TestDecreaseAdditionalValidatorStakeMergesIntoLiveTransient(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	validatorStakeAccount := addr(0x31)
	deps.Stake.Seed(validatorStakeAccount, vote, 0)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, validatorStakeAccount, 0))

	validatorStake, _ := pda.ValidatorStake(pool.ProgramID, vote, pool.Address, nil)
	deps.Stake.Seed(validatorStake, vote, 3_000_000)
	entry, _, _ := pool.List.Find(vote)
	entry.ActiveStakeLamports = 3_000_000
	require.NoError(t, pool.List.Update(vote, entry))

	require.NoError(t, pool.DecreaseValidatorStake(addr(0x11), vote, 1_000_000, 9))
	entry, _, _ = pool.List.Find(vote)
	require.Equal(t, uint64(1_000_000), entry.TransientStakeLamports)
	require.Equal(t, uint64(2_000_000), entry.ActiveStakeLamports)

	require.NoError(t, pool.DecreaseAdditionalValidatorStake(addr(0x11), vote, 500_000, 9, 2))
	entry, _, _ = pool.List.Find(vote)
	require.Equal(t, uint64(1_500_000), entry.TransientStakeLamports)
	require.Equal(t, uint64(1_500_000), entry.ActiveStakeLamports)
}

func TestRedelegateMovesStakeBetweenValidators(t *testing.T) {
	pool, deps := newTestPool(t)
	sourceVote := addr(0x30)
	sourceStakeAccount := addr(0x31)
	destVote := addr(0x32)
	destStakeAccount := addr(0x33)

	deps.Stake.Seed(sourceStakeAccount, sourceVote, 0)
	deps.Stake.Seed(destStakeAccount, destVote, 0)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), sourceVote, sourceStakeAccount, 0))
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), destVote, destStakeAccount, 1))

	sourceStake, _ := pda.ValidatorStake(pool.ProgramID, sourceVote, pool.Address, nil)
	deps.Stake.Seed(sourceStake, sourceVote, 3_000_000)
	sourceEntry, _, _ := pool.List.Find(sourceVote)
	sourceEntry.ActiveStakeLamports = 3_000_000
	require.NoError(t, pool.List.Update(sourceVote, sourceEntry))

	destEntry, _, _ := pool.List.Find(destVote)
	destEntry.ActiveStakeLamports = 2_000_000
	require.NoError(t, pool.List.Update(destVote, destEntry))

	require.NoError(t, pool.Redelegate(addr(0x11), sourceVote, destVote, 1_000_000, 5, 6))

	sourceEntry, _, _ = pool.List.Find(sourceVote)
	require.Equal(t, uint64(2_000_000), sourceEntry.ActiveStakeLamports)
	destEntry, _, _ = pool.List.Find(destVote)
	require.Equal(t, uint64(1_000_000), destEntry.TransientStakeLamports)
	require.Equal(t, uint64(6), destEntry.TransientSeedSuffix)
}

func TestRedelegateRejectsUnknownSourceValidator(t *testing.T) {
	pool, deps := newTestPool(t)
	destVote := addr(0x32)
	destStakeAccount := addr(0x33)
	deps.Stake.Seed(destStakeAccount, destVote, 0)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), destVote, destStakeAccount, 0))

	err := pool.Redelegate(addr(0x11), addr(0x99), destVote, 1_000_000, 5, 6)
	require.Error(t, err)
}
