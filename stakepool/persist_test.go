package stakepool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	validatorStakeAccount := addr(0x31)
	deps.Stake.Seed(validatorStakeAccount, vote, 2_000_000)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, validatorStakeAccount, 4))

	deps.Token.Balances[addr(0x21)] = 1_000_000
	require.NoError(t, pool.DepositSol(addr(0x21), addr(0x20), 1_000_000, nil))

	store := accountstate.NewMemStore()
	require.NoError(t, pool.Save(store))

	loaded, err := stakepool.Load(pool.ProgramID, pool.Address, store, deps.Dependencies())
	require.NoError(t, err)
	require.Equal(t, pool.Record, loaded.Record)
	require.Equal(t, pool.List.MaxValidators, loaded.List.MaxValidators)
	require.Equal(t, pool.List.Entries, loaded.List.Entries)

	entry, _, ok := loaded.List.Find(vote)
	require.True(t, ok)
	require.Equal(t, uint32(4), entry.ValidatorSeedSuffix)
}

func TestLoadRejectsNonPoolAccount(t *testing.T) {
	pool, deps := newTestPool(t)
	store := accountstate.NewMemStore()
	require.NoError(t, store.Set(pool.Address, &accountstate.Account{Data: []byte{0xFF}}))

	_, err := stakepool.Load(pool.ProgramID, pool.Address, store, deps.Dependencies())
	require.Error(t, err)
}

func TestSaveThenMutateThenSaveOverwrites(t *testing.T) {
	pool, deps := newTestPool(t)
	store := accountstate.NewMemStore()
	require.NoError(t, pool.Save(store))

	deps.Token.Balances[addr(0x21)] = 500_000
	require.NoError(t, pool.DepositSol(addr(0x21), addr(0x20), 500_000, nil))
	require.NoError(t, pool.Save(store))

	loaded, err := stakepool.Load(pool.ProgramID, pool.Address, store, deps.Dependencies())
	require.NoError(t, err)
	require.Equal(t, uint64(500_000), loaded.Record.TotalLamports)
}
