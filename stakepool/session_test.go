package stakepool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/pda"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool/stakepooltest"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

func newSession(pool *stakepool.Pool, deps stakepooltest.Deps, sessionAddr, userWallet accountstate.Address, allowance uint64) {
	signerPDA, _ := pda.ProgramSigner(pool.ProgramID)
	deps.Sessions.Records[sessionAddr] = stakepool.Session{
		UserWallet:          userWallet,
		AuthorizedProgramID: pool.ProgramID,
		AuthorizedSignerPDA: signerPDA,
		ExpirationUnixTime:  deps.Clock.UnixSec + 3600,
		DelegatedAllowance:  allowance,
	}
}

func TestDepositWsolWithSessionMintsPoolTokens(t *testing.T) {
	pool, deps := newTestPool(t)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)
	userWrappedNative := addr(0x52)
	recipient := addr(0x53)

	newSession(pool, deps, sessionAddr, userWallet, 1_000_000)
	deps.Wrapped.Balances[userWrappedNative] = 1_000_000
	deps.Token.Balances[recipient] = 0

	err := pool.DepositWsolWithSession(stakepool.DepositWsolWithSessionParams{
		SessionAddr:          sessionAddr,
		UserWallet:           userWallet,
		UserWrappedNative:    userWrappedNative,
		FeePayer:             addr(0x54),
		RecipientTokenAddr:   recipient,
		RecipientTokenExists: true,
		Amount:               1_000_000,
		MinPoolTokensOut:     1,
	})
	require.NoError(t, err)

	require.Equal(t, uint64(1_000_000), pool.Record.TotalLamports)
	require.Equal(t, uint64(1_000_000), pool.Record.PoolTokenSupply)
	require.Equal(t, uint64(1_000_000), deps.Token.Balances[recipient])
	require.Equal(t, uint64(1_000_000), deps.Wrapped.Balances[pool.Record.ReserveStake])
	require.Equal(t, uint64(0), deps.Wrapped.Balances[userWrappedNative])
}

func TestDepositWsolWithSessionCreatesRecipientAccountAndChargesRent(t *testing.T) {
	pool, deps := newTestPool(t)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)
	userWrappedNative := addr(0x52)

	newSession(pool, deps, sessionAddr, userWallet, 1_000_000)
	deps.Wrapped.Balances[userWrappedNative] = 1_000_000

	err := pool.DepositWsolWithSession(stakepool.DepositWsolWithSessionParams{
		SessionAddr:          sessionAddr,
		UserWallet:           userWallet,
		UserWrappedNative:    userWrappedNative,
		FeePayer:             addr(0x54),
		RecipientTokenAddr:   accountstate.Address{},
		RecipientTokenExists: false,
		AtaRentLamports:      100_000,
		Amount:               1_000_000,
		MinPoolTokensOut:     1,
	})
	require.NoError(t, err)

	require.Equal(t, uint64(900_000), pool.Record.TotalLamports)
	require.Equal(t, uint64(900_000), pool.Record.PoolTokenSupply)
	require.Equal(t, uint64(900_000), deps.Token.Balances[userWallet])
}

func TestDepositWsolWithSessionRejectsExpiredSession(t *testing.T) {
	pool, deps := newTestPool(t)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)

	newSession(pool, deps, sessionAddr, userWallet, 1_000_000)
	session := deps.Sessions.Records[sessionAddr]
	session.ExpirationUnixTime = deps.Clock.UnixSec - 1
	deps.Sessions.Records[sessionAddr] = session

	err := pool.DepositWsolWithSession(stakepool.DepositWsolWithSessionParams{
		SessionAddr:          sessionAddr,
		UserWallet:           userWallet,
		UserWrappedNative:    addr(0x52),
		FeePayer:             addr(0x54),
		RecipientTokenAddr:   addr(0x53),
		RecipientTokenExists: true,
		Amount:               1_000_000,
		MinPoolTokensOut:     1,
	})
	require.Error(t, err)
}

func TestDepositWsolWithSessionRejectsAllowanceBelowAmount(t *testing.T) {
	pool, deps := newTestPool(t)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)

	newSession(pool, deps, sessionAddr, userWallet, 500_000)
	deps.Wrapped.Balances[addr(0x52)] = 1_000_000

	err := pool.DepositWsolWithSession(stakepool.DepositWsolWithSessionParams{
		SessionAddr:          sessionAddr,
		UserWallet:           userWallet,
		UserWrappedNative:    addr(0x52),
		FeePayer:             addr(0x54),
		RecipientTokenAddr:   addr(0x53),
		RecipientTokenExists: true,
		Amount:               1_000_000,
		MinPoolTokensOut:     1,
	})
	require.Error(t, err)
}

func TestDepositWsolWithSessionDustRejected(t *testing.T) {
	pool, deps := newTestPool(t)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)

	newSession(pool, deps, sessionAddr, userWallet, 1)
	deps.Wrapped.Balances[addr(0x52)] = 1

	err := pool.DepositWsolWithSession(stakepool.DepositWsolWithSessionParams{
		SessionAddr:          sessionAddr,
		UserWallet:           userWallet,
		UserWrappedNative:    addr(0x52),
		FeePayer:             addr(0x54),
		RecipientTokenExists: false,
		AtaRentLamports:      100_000,
		Amount:               1,
		MinPoolTokensOut:     0,
	})
	require.Equal(t, stakepoolerr.KindDepositTooSmall, stakepoolerr.KindOf(err))
}

func TestDepositWsolWithSessionAmountEqualToRentRejected(t *testing.T) {
	pool, deps := newTestPool(t)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)

	newSession(pool, deps, sessionAddr, userWallet, 100_000)
	deps.Wrapped.Balances[addr(0x52)] = 100_000

	// The whole deposit would be consumed by the recipient account's
	// rent, leaving nothing to deposit.
	err := pool.DepositWsolWithSession(stakepool.DepositWsolWithSessionParams{
		SessionAddr:          sessionAddr,
		UserWallet:           userWallet,
		UserWrappedNative:    addr(0x52),
		FeePayer:             addr(0x54),
		RecipientTokenExists: false,
		AtaRentLamports:      100_000,
		Amount:               100_000,
		MinPoolTokensOut:     0,
	})
	require.Equal(t, stakepoolerr.KindDepositTooSmall, stakepoolerr.KindOf(err))
}

func TestDepositWsolWithSessionSlippageGuard(t *testing.T) {
	pool, deps := newTestPool(t)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)

	newSession(pool, deps, sessionAddr, userWallet, 1_000_000)
	deps.Wrapped.Balances[addr(0x52)] = 1_000_000
	deps.Token.Balances[addr(0x53)] = 0

	err := pool.DepositWsolWithSession(stakepool.DepositWsolWithSessionParams{
		SessionAddr:          sessionAddr,
		UserWallet:           userWallet,
		UserWrappedNative:    addr(0x52),
		FeePayer:             addr(0x54),
		RecipientTokenAddr:   addr(0x53),
		RecipientTokenExists: true,
		Amount:               1_000_000,
		MinPoolTokensOut:     1_000_001,
	})
	require.Equal(t, stakepoolerr.KindSlippageExceeded, stakepoolerr.KindOf(err))
}

func TestWithdrawWsolWithSessionBurnsAndReturnsLamports(t *testing.T) {
	pool, deps := newTestPool(t)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)
	userWrappedNative := addr(0x52)
	userTokenAccount := addr(0x53)

	deps.Token.Balances[addr(0x21)] = 1_000_000
	require.NoError(t, pool.DepositSol(addr(0x21), userTokenAccount, 1_000_000, nil))
	deps.Wrapped.Balances[pool.Record.ReserveStake] = 1_000_000

	newSession(pool, deps, sessionAddr, userWallet, pool.Record.PoolTokenSupply)

	err := pool.WithdrawWsolWithSession(stakepool.WithdrawWsolWithSessionParams{
		SessionAddr:       sessionAddr,
		UserWallet:        userWallet,
		UserWrappedNative: userWrappedNative,
		FeePayer:          addr(0x54),
		UserTokenAccount:  userTokenAccount,
		PoolTokens:        pool.Record.PoolTokenSupply,
		MinLamportsOut:    1,
	})
	require.NoError(t, err)

	require.Equal(t, uint64(0), pool.Record.TotalLamports)
	require.Equal(t, uint64(0), pool.Record.PoolTokenSupply)
	require.Equal(t, uint64(1_000_000), deps.Wrapped.Balances[userWrappedNative])
}

func TestWithdrawStakeWithSessionSplitsIntoUserPDA(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	validatorStakeAccount := addr(0x31)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)

	deps.Stake.Seed(validatorStakeAccount, vote, 0)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, validatorStakeAccount, 0))

	validatorStake, _ := pda.ValidatorStake(pool.ProgramID, vote, pool.Address, nil)
	deps.Stake.Seed(validatorStake, vote, 3_000_000)
	entry, _, _ := pool.List.Find(vote)
	entry.ActiveStakeLamports = 3_000_000
	require.NoError(t, pool.List.Update(vote, entry))

	pool.Record.PoolTokenSupply = 3_000_000
	pool.Record.TotalLamports = 3_000_000

	newSession(pool, deps, sessionAddr, userWallet, 1_000_000)

	pdaAddr, err := pool.WithdrawStakeWithSession(sessionAddr, userWallet, vote, 1_000_000, 1, 7)
	require.NoError(t, err)

	wantPDA, _ := pda.UserStake(pool.ProgramID, userWallet, 7)
	require.Equal(t, wantPDA, pdaAddr)

	entry, _, _ = pool.List.Find(vote)
	require.Equal(t, uint64(2_000_000), entry.ActiveStakeLamports)
	require.Equal(t, uint64(2_000_000), pool.Record.PoolTokenSupply)

	_, lamports, deactivating, err := deps.Stake.DelegationOf(pdaAddr)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), lamports)
	require.True(t, deactivating)
}

func TestWithdrawFromStakeAccountWithSessionRequiresDeactivationComplete(t *testing.T) {
	pool, deps := newTestPool(t)
	vote := addr(0x30)
	validatorStakeAccount := addr(0x31)
	sessionAddr := addr(0x50)
	userWallet := addr(0x51)

	deps.Stake.Seed(validatorStakeAccount, vote, 0)
	require.NoError(t, pool.AddValidatorToPool(addr(0x11), vote, validatorStakeAccount, 0))

	validatorStake, _ := pda.ValidatorStake(pool.ProgramID, vote, pool.Address, nil)
	deps.Stake.Seed(validatorStake, vote, 3_000_000)
	entry, _, _ := pool.List.Find(vote)
	entry.ActiveStakeLamports = 3_000_000
	require.NoError(t, pool.List.Update(vote, entry))
	pool.Record.PoolTokenSupply = 3_000_000
	pool.Record.TotalLamports = 3_000_000

	newSession(pool, deps, sessionAddr, userWallet, 1_000_000)
	_, err := pool.WithdrawStakeWithSession(sessionAddr, userWallet, vote, 1_000_000, 1, 7)
	require.NoError(t, err)

	err = pool.WithdrawFromStakeAccountWithSession(sessionAddr, userWallet, 7, ^uint64(0))
	require.Error(t, err, "cooldown has not elapsed yet")

	deps.Clock.Epoch++
	err = pool.WithdrawFromStakeAccountWithSession(sessionAddr, userWallet, 7, ^uint64(0))
	require.NoError(t, err)

	pdaAddr, _ := pda.UserStake(pool.ProgramID, userWallet, 7)
	_, lamports, _, _ := deps.Stake.DelegationOf(pdaAddr)
	require.Equal(t, uint64(0), lamports)
}
