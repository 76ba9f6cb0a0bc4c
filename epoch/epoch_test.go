package epoch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/computeunits"
	"github.com/Tempest-Finance/fogo-stake-pool/epoch"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
	"github.com/Tempest-Finance/fogo-stake-pool/pda"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool/stakepooltest"
)

func addr(b byte) accountstate.Address {
	var a accountstate.Address
	a[0] = b
	return a
}

func newTestPool(t *testing.T) (*stakepool.Pool, stakepooltest.Deps) {
	t.Helper()
	deps := stakepooltest.NewDeps(addr(0x03))
	params := stakepool.InitializeParams{
		Manager:            addr(0x10),
		Staker:             addr(0x11),
		ValidatorList:      addr(0x12),
		ReserveStake:       addr(0x13),
		PoolMint:           addr(0x03),
		ManagerFeeAccount:  addr(0x14),
		TokenProgramID:     addr(0x15),
		MaxValidators:      10,
		StakeDepositFee:    fixedpoint.Ratio{Numerator: 0, Denominator: 100},
		StakeWithdrawalFee: fixedpoint.Ratio{Numerator: 0, Denominator: 100},
		SolDepositFee:      fixedpoint.Ratio{Numerator: 0, Denominator: 100},
		SolWithdrawalFee:   fixedpoint.Ratio{Numerator: 0, Denominator: 100},
		EpochFee:           fixedpoint.Ratio{Numerator: 5, Denominator: 100},
	}
	pool, err := stakepool.Initialize(addr(0x01), addr(0x02), params, deps.Dependencies())
	require.NoError(t, err)
	pool.Record.LastUpdateEpoch = deps.Clock.Epoch
	return pool, deps
}

func TestUpdateValidatorListBalanceIdempotentWithinEpoch(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	stakeAcc := addr(0x31)
	deps.Stake.Seed(stakeAcc, vote, 2_000_000)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, stakeAcc, 0))

	meter := computeunits.New()
	res, err := epoch.UpdateValidatorListBalance(pool, 0, false, meter)
	require.NoError(t, err)
	require.True(t, res.Done)

	entry, _, _ := pool.List.Find(vote)
	require.Equal(t, deps.Clock.Epoch, entry.LastUpdateEpoch)

	// Second pass in the same epoch must be a no-op (idempotent).
	res2, err := epoch.UpdateValidatorListBalance(pool, 0, false, meter)
	require.NoError(t, err)
	require.True(t, res2.Done)
}

func TestUpdateValidatorListBalanceResumesAfterBudgetExhaustion(t *testing.T) {
	pool, deps := newTestPool(t)
	for i := byte(0); i < 3; i++ {
		vote := addr(0x30 + i)
		stakeAcc := addr(0x40 + i)
		deps.Stake.Seed(stakeAcc, vote, 2_000_000)
		require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, stakeAcc, uint32(i)))
	}
	deps.Clock.Epoch = 2

	meter := computeunits.NewWithLimit(2)
	res, err := epoch.UpdateValidatorListBalance(pool, 0, false, meter)
	require.NoError(t, err)
	require.False(t, res.Done)
	require.Equal(t, uint32(2), res.NextIndex, "budget of two scans covers two entries")

	// A fresh meter resumes from the reported index and finishes the
	// sweep; entries already processed are left as-is.
	res, err = epoch.UpdateValidatorListBalance(pool, res.NextIndex, false, computeunits.New())
	require.NoError(t, err)
	require.True(t, res.Done)
	for i := byte(0); i < 3; i++ {
		entry, _, ok := pool.List.Find(addr(0x30 + i))
		require.True(t, ok)
		require.Equal(t, uint64(2), entry.LastUpdateEpoch)
	}
}

func TestUpdateStakePoolBalanceRequiresListCurrent(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	stakeAcc := addr(0x31)
	deps.Stake.Seed(stakeAcc, vote, 2_000_000)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, stakeAcc, 0))

	// The validator's LastUpdateEpoch is still its add-time epoch, not
	// current, since the list pass has not run yet: the pool pass must
	// refuse to proceed.
	deps.Clock.Epoch = 5
	err := epoch.UpdateStakePoolBalance(pool, 0)
	require.Error(t, err)
}

func TestUpdateStakePoolBalanceMintsEpochFee(t *testing.T) {
	pool, deps := newTestPool(t)
	meter := computeunits.New()
	_, err := epoch.UpdateValidatorListBalance(pool, 0, false, meter)
	require.NoError(t, err)

	pool.Record.TotalLamports = 1_000_000
	pool.Record.PoolTokenSupply = 1_000_000
	pool.Record.LastEpochTotalLamports = 1_000_000

	deps.Clock.Epoch = 2
	err = epoch.UpdateStakePoolBalance(pool, 1_100_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_100_000), pool.Record.TotalLamports)
	require.Greater(t, pool.Record.PoolTokenSupply, uint64(1_000_000), "epoch fee should mint manager tokens on reward")
}

func TestFullValidatorRemovalSweepsToReadyForRemoval(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	stakeAcc, _ := pda.ValidatorStake(pool.ProgramID, vote, pool.Address, nil)
	deps.Stake.Seed(stakeAcc, vote, 2_000_000)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, stakeAcc, 0))

	// Reflect that the validator already carries delegated stake under
	// pool management. AddValidatorToPool always starts an entry at
	// zero; a prior DepositStake/IncreaseValidatorStake would have
	// brought the entry's books to this point.
	entry, _, _ := pool.List.Find(vote)
	entry.ActiveStakeLamports = 2_000_000
	require.NoError(t, pool.List.Update(vote, entry))

	require.NoError(t, pool.RemoveValidatorFromPool(addr(0x11), vote))
	entry, _, _ = pool.List.Find(vote)
	require.Equal(t, uint64(2_000_000), entry.ActiveStakeLamports, "books stay put until the list pass observes the completed deactivation")

	meter := computeunits.New()
	deps.Clock.Epoch = 2
	_, err := epoch.UpdateValidatorListBalance(pool, 0, false, meter)
	require.NoError(t, err)

	// The fake stake ledger treats deactivation as complete once the
	// current epoch is strictly past the deactivation epoch, so one
	// list pass at epoch 2 both observes and settles it: the
	// validator's whole stake is withdrawn to the reserve and the
	// entry is marked ReadyForRemoval.
	entry, _, ok := pool.List.Find(vote)
	require.True(t, ok)
	require.Equal(t, uint64(0), entry.ActiveStakeLamports)
	require.Equal(t, uint64(0), entry.TransientStakeLamports)
	require.Equal(t, uint64(2_000_000), deps.Stake.Accounts[pool.Record.ReserveStake].Lamports)

	require.NoError(t, pool.RemoveValidatorFromPool(addr(0x11), vote))
	_, _, ok = pool.List.Find(vote)
	require.False(t, ok, "entry deleted once ReadyForRemoval")
}

func TestContractBalanceCheck(t *testing.T) {
	pool, _ := newTestPool(t)
	pool.Record.TotalLamports = 500
	require.NoError(t, epoch.ContractBalanceCheck(pool, 500))
	require.Error(t, epoch.ContractBalanceCheck(pool, 400))
}
