// session.go implements session-delegated wrapped-native
// deposit/withdraw and the two-step session-delegated stake
// withdrawal.
package stakepool

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
	"github.com/Tempest-Finance/fogo-stake-pool/pda"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

// validateSession checks the session record's program/signer-PDA
// match, not expired, the session's user matches userWallet, and the
// delegated allowance covers requiredTransfer. The owner of the
// session record is not checked.
func (p *Pool) validateSession(sessionAddr, userWallet accountstate.Address, requiredTransfer uint64) (Session, error) {
	session, err := p.Deps.Session.GetSession(sessionAddr)
	if err != nil {
		return Session{}, stakepoolerr.Wrap(stakepoolerr.KindInvalidSession, err, "reading session record")
	}
	if !session.AuthorizedProgramID.Equal(p.ProgramID) {
		return Session{}, stakepoolerr.New(stakepoolerr.KindInvalidSession, "session authorizes a different program")
	}
	signerPDA, _ := pda.ProgramSigner(p.ProgramID)
	if !session.AuthorizedSignerPDA.Equal(signerPDA) {
		return Session{}, stakepoolerr.New(stakepoolerr.KindInvalidSession, "session signer PDA mismatch")
	}
	if !session.UserWallet.Equal(userWallet) {
		return Session{}, stakepoolerr.New(stakepoolerr.KindInvalidSession, "session user mismatch")
	}
	if session.ExpirationUnixTime <= p.Deps.Clock.CurrentUnixTime() {
		return Session{}, stakepoolerr.New(stakepoolerr.KindSessionExpired, "")
	}
	if session.DelegatedAllowance < requiredTransfer {
		return Session{}, stakepoolerr.New(stakepoolerr.KindInvalidSession, "delegated allowance insufficient")
	}
	return session, nil
}

// DepositWsolWithSessionParams bundles the accounts the deposit
// protocol needs.
type DepositWsolWithSessionParams struct {
	SessionAddr          accountstate.Address
	UserWallet           accountstate.Address
	UserWrappedNative    accountstate.Address
	FeePayer             accountstate.Address
	RecipientTokenAddr   accountstate.Address
	RecipientTokenExists bool
	AtaRentLamports      uint64
	Amount               uint64
	MinPoolTokensOut     uint64
	Referrer             *accountstate.Address
}

// DepositWsolWithSession runs the atomic deposit protocol: validate
// the session, create the recipient pool-token account on demand
// (rent charged from the deposit amount, never the fee payer, to
// prevent rent-draining), round-trip the transient wrapped-native
// account, then apply standard DepositSol accounting.
func (p *Pool) DepositWsolWithSession(params DepositWsolWithSessionParams) error {
	if err := p.requireCurrent(); err != nil {
		return err
	}
	if _, err := p.validateSession(params.SessionAddr, params.UserWallet, params.Amount); err != nil {
		return err
	}

	amount := params.Amount
	recipient := params.RecipientTokenAddr
	if !params.RecipientTokenExists {
		if amount <= params.AtaRentLamports {
			return stakepoolerr.New(stakepoolerr.KindDepositTooSmall, "amount does not cover recipient account rent")
		}
		created, err := p.Deps.Token.CreateAssociatedTokenAccount(params.UserWallet, p.Record.PoolMint, params.FeePayer, params.AtaRentLamports)
		if err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "creating recipient pool-token account")
		}
		recipient = created
		amount -= params.AtaRentLamports
	}
	if amount == 0 {
		return stakepoolerr.New(stakepoolerr.KindDepositTooSmall, "")
	}

	// The transient wrapped-native account itself is addressed by
	// pda.TransientWrappedNative; Wrapped owns its create-transfer-
	// unwrap-close lifecycle so it never survives past this call.
	if err := p.Deps.Wrapped.WrapToTransient(params.UserWrappedNative, p.Record.ReserveStake, params.FeePayer, amount); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "routing deposit through transient wrapped-native account")
	}
	if !params.RecipientTokenExists {
		// The fee payer fronted the recipient account's rent; refund it
		// out of the user's deposit.
		if err := p.Deps.Wrapped.WrapToTransient(params.UserWrappedNative, params.FeePayer, params.FeePayer, params.AtaRentLamports); err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "refunding recipient account rent to fee payer")
		}
	}

	newTokens, err := p.tokensForDeposit(amount)
	if err != nil {
		return err
	}
	if newTokens == 0 {
		return stakepoolerr.New(stakepoolerr.KindDepositTooSmall, "")
	}
	feeTokens, referralTokens, userTokens, err := p.splitSolDepositFee(newTokens)
	if err != nil {
		return err
	}
	if userTokens < params.MinPoolTokensOut {
		return stakepoolerr.New(stakepoolerr.KindSlippageExceeded, "")
	}

	if err := p.mintDepositTokens(recipient, params.Referrer, userTokens, feeTokens, referralTokens); err != nil {
		return err
	}
	total, err := fixedpoint.SafeAdd64(p.Record.TotalLamports, amount)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "accumulating total lamports")
	}
	p.Record.TotalLamports = total
	return nil
}

// WithdrawWsolWithSessionParams bundles the accounts for the withdraw
// protocol.
type WithdrawWsolWithSessionParams struct {
	SessionAddr       accountstate.Address
	UserWallet        accountstate.Address
	UserWrappedNative accountstate.Address
	FeePayer          accountstate.Address
	UserTokenAccount  accountstate.Address
	PoolTokens        uint64
	MinLamportsOut    uint64
}

// WithdrawWsolWithSession mirrors DepositWsolWithSession in reverse:
// burn pool tokens, release lamports from the reserve through a
// freshly created-and-closed transient wrapped-native account into
// the user's wrapped-native account.
func (p *Pool) WithdrawWsolWithSession(params WithdrawWsolWithSessionParams) error {
	if err := p.requireCurrent(); err != nil {
		return err
	}
	if _, err := p.validateSession(params.SessionAddr, params.UserWallet, params.PoolTokens); err != nil {
		return err
	}

	fee, err := p.solWithdrawalFee(params.PoolTokens)
	if err != nil {
		return err
	}
	netTokens := params.PoolTokens - fee
	lamports, err := p.lamportsForWithdraw(netTokens)
	if err != nil {
		return err
	}
	if lamports == 0 {
		return stakepoolerr.New(stakepoolerr.KindWithdrawalTooSmall, "")
	}
	if lamports < params.MinLamportsOut {
		return stakepoolerr.New(stakepoolerr.KindSlippageExceeded, "")
	}

	if err := p.Deps.Token.Burn(p.Record.PoolMint, params.UserTokenAccount, netTokens); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "burning pool tokens")
	}
	if fee > 0 {
		if err := p.Deps.Token.Transfer(params.UserTokenAccount, p.Record.ManagerFeeAccount, fee); err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "paying manager withdrawal fee")
		}
	}
	if err := p.Deps.Wrapped.UnwrapFromReserve(p.Record.ReserveStake, params.UserWrappedNative, params.FeePayer, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "routing withdrawal through transient wrapped-native account")
	}

	totalLamports, err := fixedpoint.SafeSub64(p.Record.TotalLamports, lamports)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "decrementing total lamports")
	}
	supply, err := fixedpoint.SafeSub64(p.Record.PoolTokenSupply, netTokens)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "decrementing pool token supply")
	}
	p.Record.TotalLamports = totalLamports
	p.Record.PoolTokenSupply = supply
	return nil
}

// WithdrawStakeWithSession is the in-pool step of the two-step
// session-delegated stake withdrawal: burn pool tokens, split the
// equivalent stake out of vote's validator stake into a user-owned
// PDA, immediately deactivated with staker and withdrawer both set to
// the PDA itself so it can self-sign the final claim.
func (p *Pool) WithdrawStakeWithSession(sessionAddr, userWallet, vote accountstate.Address, poolTokens, minLamports, seed uint64) (userStakePDA accountstate.Address, err error) {
	if err := p.requireCurrent(); err != nil {
		return accountstate.Address{}, err
	}
	if _, err := p.validateSession(sessionAddr, userWallet, poolTokens); err != nil {
		return accountstate.Address{}, err
	}

	vote, err = p.pickWithdrawTarget(vote)
	if err != nil {
		return accountstate.Address{}, err
	}
	entry, _, ok := p.List.Find(vote)
	if !ok {
		return accountstate.Address{}, stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "")
	}

	fee, ferr := p.stakeWithdrawalFee(poolTokens)
	if ferr != nil {
		return accountstate.Address{}, ferr
	}
	netTokens := poolTokens - fee
	lamports, lerr := p.lamportsForWithdraw(netTokens)
	if lerr != nil {
		return accountstate.Address{}, lerr
	}
	if lamports == 0 {
		return accountstate.Address{}, stakepoolerr.New(stakepoolerr.KindWithdrawalTooSmall, "")
	}
	if lamports < minLamports {
		return accountstate.Address{}, stakepoolerr.New(stakepoolerr.KindSlippageExceeded, "")
	}
	remainder := entry.ActiveStakeLamports - lamports
	if entry.ActiveStakeLamports < lamports || (remainder != 0 && remainder < MinimumActiveStake) {
		return accountstate.Address{}, stakepoolerr.New(stakepoolerr.KindTooManyPoolTokensRequested, "")
	}

	pdaAddr, _ := pda.UserStake(p.ProgramID, userWallet, seed)

	validatorStake, _ := pda.ValidatorStake(p.ProgramID, vote, p.Address, nil)
	if err := p.Deps.Stake.Split(validatorStake, pdaAddr, lamports); err != nil {
		return accountstate.Address{}, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "splitting user stake PDA")
	}
	if err := p.Deps.Stake.SetAuthorities(pdaAddr, pdaAddr, pdaAddr); err != nil {
		return accountstate.Address{}, stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "setting user stake PDA authorities")
	}
	if err := p.Deps.Stake.Deactivate(pdaAddr); err != nil {
		return accountstate.Address{}, stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "deactivating user stake PDA")
	}

	entry.ActiveStakeLamports -= lamports
	if err := p.List.Update(vote, entry); err != nil {
		return accountstate.Address{}, err
	}
	totalLamports, err := fixedpoint.SafeSub64(p.Record.TotalLamports, lamports)
	if err != nil {
		return accountstate.Address{}, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "decrementing total lamports")
	}
	supply, err := fixedpoint.SafeSub64(p.Record.PoolTokenSupply, netTokens)
	if err != nil {
		return accountstate.Address{}, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "decrementing pool token supply")
	}
	p.Record.TotalLamports = totalLamports
	p.Record.PoolTokenSupply = supply

	return pdaAddr, nil
}

// WithdrawFromStakeAccountWithSession is the post-cooldown final claim
// step: verify the PDA was derived for this session's user wallet and
// has finished deactivating, then withdraw up to
// lamportsOrMax (math.MaxUint64 meaning "all") to the user wallet.
func (p *Pool) WithdrawFromStakeAccountWithSession(sessionAddr, userWallet accountstate.Address, seed, lamportsOrMax uint64) error {
	session, err := p.Deps.Session.GetSession(sessionAddr)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidSession, err, "reading session record")
	}
	if !session.UserWallet.Equal(userWallet) {
		return stakepoolerr.New(stakepoolerr.KindInvalidSession, "session user mismatch")
	}

	pdaAddr, _ := pda.UserStake(p.ProgramID, userWallet, seed)

	complete, err := p.Deps.Stake.IsDeactivationComplete(pdaAddr, p.Deps.Clock.CurrentEpoch())
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "checking user stake PDA deactivation")
	}
	if !complete {
		return stakepoolerr.New(stakepoolerr.KindUserStakeNotActive, "")
	}

	lamports := lamportsOrMax
	if lamports == ^uint64(0) {
		_, delegated, _, derr := p.Deps.Stake.DelegationOf(pdaAddr)
		if derr != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, derr, "reading user stake PDA balance")
		}
		lamports = delegated
	}

	if err := p.Deps.Stake.WithdrawLamports(pdaAddr, userWallet, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "withdrawing from user stake PDA")
	}
	return nil
}
