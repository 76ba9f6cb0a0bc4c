package stakepool

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
	"github.com/Tempest-Finance/fogo-stake-pool/pda"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

// IncreaseValidatorStake moves lamports from the reserve into vote's
// stake via a fresh transient stake account seeded by
// transientSeedSuffix. Staker-only; rejects if a live transient
// already exists for this validator or the system-wide transient
// budget is exhausted.
func (p *Pool) IncreaseValidatorStake(caller, vote accountstate.Address, lamports, transientSeedSuffix uint64) error {
	if err := p.requireStaker(caller); err != nil {
		return err
	}
	entry, _, ok := p.List.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "")
	}
	if entry.TransientStakeLamports > 0 {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "validator already has a transient account")
	}
	if entry.Status != codec.StatusActive {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "validator is not active")
	}
	if p.List.TransientBudgetFree() <= 0 {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "transient account budget exhausted")
	}

	transient, _ := pda.TransientStake(p.ProgramID, vote, p.Address, transientSeedSuffix)
	if err := p.Deps.Stake.Split(p.Record.ReserveStake, transient, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "splitting reserve to transient")
	}
	if err := p.Deps.Stake.Delegate(transient, vote, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "delegating transient stake")
	}

	entry.TransientStakeLamports = lamports
	entry.TransientSeedSuffix = transientSeedSuffix
	// The transient is activating, not deactivating: the entry stays
	// Active, per the status table's "Active, transient active" row.
	return p.List.Update(vote, entry)
}

// DecreaseValidatorStake splits lamports out of vote's active stake
// into a transient account and deactivates it. The remainder left
// behind must respect MinimumActiveStake.
func (p *Pool) DecreaseValidatorStake(caller, vote accountstate.Address, lamports, transientSeedSuffix uint64) error {
	if err := p.requireStaker(caller); err != nil {
		return err
	}
	entry, _, ok := p.List.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "")
	}
	if entry.TransientStakeLamports > 0 {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "validator already has a transient account")
	}
	if entry.Status != codec.StatusActive {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "validator is not active")
	}
	if entry.ActiveStakeLamports < lamports {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "decrease exceeds active stake")
	}
	remainder := entry.ActiveStakeLamports - lamports
	if remainder != 0 && remainder < MinimumActiveStake {
		return stakepoolerr.New(stakepoolerr.KindStakeLamportsNotEqualToMinimum, "")
	}
	if p.List.TransientBudgetFree() <= 0 {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "transient account budget exhausted")
	}

	validatorStake, _ := pda.ValidatorStake(p.ProgramID, vote, p.Address, nil)
	transient, _ := pda.TransientStake(p.ProgramID, vote, p.Address, transientSeedSuffix)
	if err := p.Deps.Stake.Split(validatorStake, transient, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "splitting validator stake to transient")
	}
	if err := p.Deps.Stake.Deactivate(transient); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "deactivating transient stake")
	}

	entry.ActiveStakeLamports -= lamports
	entry.TransientStakeLamports = lamports
	entry.TransientSeedSuffix = transientSeedSuffix
	entry.Status = codec.StatusDeactivatingTransient
	return p.List.Update(vote, entry)
}

// pickDepositTarget and pickWithdrawTarget apply the preferred-validator
// pinning rule: a configured preferred deposit validator that is in the
// list must be used (no room check is made); a configured preferred
// withdraw validator must be used while it has active stake.
func (p *Pool) pickDepositTarget(requested accountstate.Address) (accountstate.Address, error) {
	if p.Record.PreferredDepositValidator.Valid {
		preferred := p.Record.PreferredDepositValidator.Value
		if _, _, ok := p.List.Find(preferred); ok && !preferred.Equal(requested) {
			return accountstate.Address{}, stakepoolerr.New(stakepoolerr.KindIncorrectDepositVoteAddress, "preferred deposit validator must be used")
		}
	}
	return requested, nil
}

func (p *Pool) pickWithdrawTarget(requested accountstate.Address) (accountstate.Address, error) {
	if p.Record.PreferredWithdrawValidator.Valid {
		preferred := p.Record.PreferredWithdrawValidator.Value
		entry, _, ok := p.List.Find(preferred)
		if ok && entry.ActiveStakeLamports > 0 && !preferred.Equal(requested) {
			return accountstate.Address{}, stakepoolerr.New(stakepoolerr.KindIncorrectWithdrawVoteAddress, "preferred withdraw validator must be used")
		}
	}
	return requested, nil
}

// DepositStake moves an already-delegated stake account into vote's
// pool-owned validator stake account. Mints pool tokens for the
// deposited lamports net of the stake deposit fee and referral split.
func (p *Pool) DepositStake(caller, vote, depositStakeAccount, userTokenAccount accountstate.Address, referrer *accountstate.Address) error {
	if err := p.requireCurrent(); err != nil {
		return err
	}
	vote, err := p.pickDepositTarget(vote)
	if err != nil {
		return err
	}
	entry, _, ok := p.List.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "")
	}

	delegatedVote, lamports, deactivating, err := p.Deps.Stake.DelegationOf(depositStakeAccount)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "reading deposit stake delegation")
	}
	if !delegatedVote.Equal(vote) {
		return stakepoolerr.New(stakepoolerr.KindIncorrectDepositVoteAddress, "")
	}
	if deactivating {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "deposit stake account is deactivating")
	}
	if lamports == 0 {
		return stakepoolerr.New(stakepoolerr.KindDepositTooSmall, "")
	}

	newTokens, err := p.tokensForDeposit(lamports)
	if err != nil {
		return err
	}
	feeTokens, referralTokens, userTokens, err := p.splitStakeDepositFee(newTokens)
	if err != nil {
		return err
	}
	if userTokens == 0 {
		return stakepoolerr.New(stakepoolerr.KindDepositTooSmall, "")
	}

	validatorStake, _ := pda.ValidatorStake(p.ProgramID, vote, p.Address, nil)
	if err := p.Deps.Stake.Merge(validatorStake, depositStakeAccount); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "merging deposit stake into validator stake")
	}

	if err := p.mintDepositTokens(userTokenAccount, referrer, userTokens, feeTokens, referralTokens); err != nil {
		return err
	}

	entry.ActiveStakeLamports += lamports
	if err := p.List.Update(vote, entry); err != nil {
		return err
	}
	total, err := fixedpoint.SafeAdd64(p.Record.TotalLamports, lamports)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "accumulating total lamports")
	}
	p.Record.TotalLamports = total
	return nil
}

// WithdrawStake splits lamports out of vote's pool-owned validator
// stake account equal to the burned pool tokens' value. The remainder
// left in the validator's stake must respect MinimumActiveStake.
func (p *Pool) WithdrawStake(caller, vote, userTokenAccount, destinationStakeAccount accountstate.Address, poolTokens uint64) error {
	if err := p.requireCurrent(); err != nil {
		return err
	}
	vote, err := p.pickWithdrawTarget(vote)
	if err != nil {
		return err
	}
	entry, _, ok := p.List.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "")
	}

	fee, err := p.stakeWithdrawalFee(poolTokens)
	if err != nil {
		return err
	}
	netTokens := poolTokens - fee
	lamports, err := p.lamportsForWithdraw(netTokens)
	if err != nil {
		return err
	}
	if lamports == 0 {
		return stakepoolerr.New(stakepoolerr.KindWithdrawalTooSmall, "")
	}
	remainder := entry.ActiveStakeLamports - lamports
	if entry.ActiveStakeLamports < lamports || (remainder != 0 && remainder < MinimumActiveStake) {
		return stakepoolerr.New(stakepoolerr.KindTooManyPoolTokensRequested, "")
	}

	if err := p.Deps.Token.Burn(p.Record.PoolMint, userTokenAccount, netTokens); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "burning pool tokens")
	}
	if fee > 0 {
		if err := p.Deps.Token.Transfer(userTokenAccount, p.Record.ManagerFeeAccount, fee); err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "paying manager withdrawal fee")
		}
	}

	validatorStake, _ := pda.ValidatorStake(p.ProgramID, vote, p.Address, nil)
	if err := p.Deps.Stake.Split(validatorStake, destinationStakeAccount, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "splitting validator stake for withdrawal")
	}

	entry.ActiveStakeLamports -= lamports
	if err := p.List.Update(vote, entry); err != nil {
		return err
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
