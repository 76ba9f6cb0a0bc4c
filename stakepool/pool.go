package stakepool

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
	"github.com/Tempest-Finance/fogo-stake-pool/pda"
	"github.com/Tempest-Finance/fogo-stake-pool/poolaccounting"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
	"github.com/Tempest-Finance/fogo-stake-pool/validatorlist"
)

const (
	MinimumActiveStake     uint64 = 1_000_000
	MinimumReserveLamports uint64 = 0
)

// Pool is the operations-layer aggregate: the decoded pool record,
// its validator list, the program's own address, and its injected
// external collaborators, struct-of-services style.
type Pool struct {
	ProgramID accountstate.Address
	Address   accountstate.Address

	Record codec.Pool
	List   *validatorlist.List

	Deps Dependencies
}

// New constructs a Pool around an already-decoded record and list.
// Initialize (below) is the operation that produces that initial
// state from scratch; New is also how a caller rehydrates a Pool from
// storage before invoking any other operation.
func New(programID, poolAddress accountstate.Address, record codec.Pool, list *validatorlist.List, deps Dependencies) *Pool {
	return &Pool{ProgramID: programID, Address: poolAddress, Record: record, List: list, Deps: deps}
}

// InitializeParams carries the caller-supplied configuration for a
// brand-new pool's record fields that are fixed at creation.
type InitializeParams struct {
	Manager           accountstate.Address
	Staker            accountstate.Address
	ValidatorList     accountstate.Address
	ReserveStake      accountstate.Address
	PoolMint          accountstate.Address
	ManagerFeeAccount accountstate.Address
	TokenProgramID    accountstate.Address
	MaxValidators     uint32

	EpochFee           fixedpoint.Ratio
	StakeDepositFee    fixedpoint.Ratio
	StakeWithdrawalFee fixedpoint.Ratio
	SolDepositFee      fixedpoint.Ratio
	SolWithdrawalFee   fixedpoint.Ratio
	StakeReferralFee   uint8
	SolReferralFee     uint8
}

// Initialize creates a brand-new pool record and an empty validator
// list. It rejects any fee above 100%.
func Initialize(programID, poolAddress accountstate.Address, params InitializeParams, deps Dependencies) (*Pool, error) {
	for _, f := range []fixedpoint.Ratio{params.EpochFee, params.StakeDepositFee, params.StakeWithdrawalFee, params.SolDepositFee, params.SolWithdrawalFee} {
		if err := poolaccounting.ValidateFeeNotTooHigh(f); err != nil {
			return nil, err
		}
	}

	_, withdrawBump := pda.WithdrawAuthority(programID, poolAddress)
	depositAuthority, _ := pda.DepositAuthority(programID, poolAddress)

	record := codec.Pool{
		AccountType:           codec.AccountTypePool,
		Manager:               params.Manager,
		Staker:                params.Staker,
		StakeDepositAuthority: depositAuthority,
		WithdrawAuthorityBump: withdrawBump,
		ValidatorList:         params.ValidatorList,
		ReserveStake:          params.ReserveStake,
		PoolMint:              params.PoolMint,
		ManagerFeeAccount:     params.ManagerFeeAccount,
		TokenProgramID:        params.TokenProgramID,
		EpochFee:              params.EpochFee,
		StakeDepositFee:       params.StakeDepositFee,
		StakeWithdrawalFee:    params.StakeWithdrawalFee,
		SolDepositFee:         params.SolDepositFee,
		SolWithdrawalFee:      params.SolWithdrawalFee,
		StakeReferralFee:      params.StakeReferralFee,
		SolReferralFee:        params.SolReferralFee,
		LastUpdateEpoch:       deps.Clock.CurrentEpoch(),
	}

	list := validatorlist.New(params.MaxValidators)
	return New(programID, poolAddress, record, list, deps), nil
}

func (p *Pool) requireCurrent() error {
	if p.Record.LastUpdateEpoch != p.Deps.Clock.CurrentEpoch() {
		return stakepoolerr.New(stakepoolerr.KindStakeNotUpdatedYet, "pool not refreshed for current epoch")
	}
	return nil
}

func (p *Pool) requireManager(caller accountstate.Address) error {
	if !p.Record.Manager.Equal(caller) {
		return stakepoolerr.New(stakepoolerr.KindWrongManager, "")
	}
	return nil
}

func (p *Pool) requireStaker(caller accountstate.Address) error {
	if !p.Record.Staker.Equal(caller) {
		return stakepoolerr.New(stakepoolerr.KindWrongStaker, "")
	}
	return nil
}

// SetManager transfers the manager admin role.
func (p *Pool) SetManager(caller, newManager, newFeeAccount accountstate.Address) error {
	if err := p.requireManager(caller); err != nil {
		return err
	}
	p.Record.Manager = newManager
	p.Record.ManagerFeeAccount = newFeeAccount
	return nil
}

// SetStaker transfers the staker admin role.
func (p *Pool) SetStaker(caller, newStaker accountstate.Address) error {
	if err := p.requireManager(caller); err != nil {
		return err
	}
	p.Record.Staker = newStaker
	return nil
}

// FeeTarget selects which of the pool's five fee ratios a SetFee call
// addresses.
type FeeTarget int

const (
	FeeTargetEpoch FeeTarget = iota
	FeeTargetStakeDeposit
	FeeTargetStakeWithdrawal
	FeeTargetSolDeposit
	FeeTargetSolWithdrawal
)

// SetFee proposes a new fee value. Deposit fees (stake/sol) take
// effect immediately; epoch/withdrawal fees enter the two-epoch
// countdown.
func (p *Pool) SetFee(caller accountstate.Address, target FeeTarget, proposed fixedpoint.Ratio) error {
	if err := p.requireManager(caller); err != nil {
		return err
	}
	if err := poolaccounting.ValidateFeeNotTooHigh(proposed); err != nil {
		return err
	}

	switch target {
	case FeeTargetStakeDeposit:
		p.Record.StakeDepositFee = proposed
		return nil
	case FeeTargetSolDeposit:
		p.Record.SolDepositFee = proposed
		return nil
	case FeeTargetEpoch:
		p.Record.EpochFeeNext = codec.Propose(proposed)
		return nil
	case FeeTargetStakeWithdrawal:
		next, err := poolaccounting.ProposeWithdrawalFeeChange(p.Record.StakeWithdrawalFee, proposed)
		if err != nil {
			return err
		}
		p.Record.StakeWithdrawalNext = next
		return nil
	case FeeTargetSolWithdrawal:
		next, err := poolaccounting.ProposeWithdrawalFeeChange(p.Record.SolWithdrawalFee, proposed)
		if err != nil {
			return err
		}
		p.Record.SolWithdrawalNext = next
		return nil
	default:
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "unknown fee target")
	}
}

// FundingAuthorityKind selects which optional gating authority a
// SetFundingAuthority call addresses.
type FundingAuthorityKind int

const (
	FundingAuthoritySolDeposit FundingAuthorityKind = iota
	FundingAuthoritySolWithdraw
)

// SetFundingAuthority sets or clears sol_deposit_authority /
// sol_withdraw_authority. A nil newAuthority clears the gate.
func (p *Pool) SetFundingAuthority(caller accountstate.Address, kind FundingAuthorityKind, newAuthority *accountstate.Address) error {
	if err := p.requireManager(caller); err != nil {
		return err
	}
	opt := codec.OptionAddress{}
	if newAuthority != nil {
		opt = codec.OptionAddress{Valid: true, Value: *newAuthority}
	}
	switch kind {
	case FundingAuthoritySolDeposit:
		p.Record.SolDepositAuthority = opt
	case FundingAuthoritySolWithdraw:
		p.Record.SolWithdrawAuthority = opt
	default:
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "unknown funding authority kind")
	}
	return nil
}

// AddValidatorToPool adds vote to the validator list.
// validatorStakeAccount must already be delegated to vote (the
// caller/adapter is responsible for creating and delegating it before
// calling this, since stake-account creation is a runtime concern).
func (p *Pool) AddValidatorToPool(caller, vote, validatorStakeAccount accountstate.Address, validatorSeed uint32) error {
	if err := p.requireStaker(caller); err != nil {
		return err
	}
	delegatedVote, _, deactivating, err := p.Deps.Stake.DelegationOf(validatorStakeAccount)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "reading stake-account delegation")
	}
	if !delegatedVote.Equal(vote) {
		return stakepoolerr.New(stakepoolerr.KindIncorrectDepositVoteAddress, "")
	}
	if deactivating {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "validator stake account is deactivating")
	}
	return p.List.Add(vote, validatorSeed, p.Deps.Clock.CurrentEpoch())
}

// RemoveValidatorFromPool retires vote from active duty. If the entry
// has already reached StatusReadyForRemoval (its stake fully
// withdrawn by the epoch loop), this deletes it from the list
// outright. If removal is already in flight (StatusDeactivatingValidator
// or StatusDeactivatingAll), it's rejected as redundant. Otherwise it
// initiates full deactivation: the validator's whole stake account is
// deactivated in place, and the entry moves to StatusDeactivatingAll
// when a transient is still live (activating or deactivating, doesn't
// matter which) or StatusDeactivatingValidator when there is none.
// The epoch loop's list pass later detects the completed deactivation,
// withdraws the lamports to the reserve, and marks the entry
// ReadyForRemoval.
func (p *Pool) RemoveValidatorFromPool(caller, vote accountstate.Address) error {
	if err := p.requireStaker(caller); err != nil {
		return err
	}
	entry, _, ok := p.List.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "")
	}
	if entry.Status == codec.StatusReadyForRemoval {
		return p.List.Remove(vote)
	}
	if entry.Status == codec.StatusDeactivatingValidator || entry.Status == codec.StatusDeactivatingAll {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "validator removal already in progress")
	}

	validatorStake, _ := pda.ValidatorStake(p.ProgramID, vote, p.Address, nil)
	if err := p.Deps.Stake.Deactivate(validatorStake); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "deactivating validator stake")
	}
	if entry.TransientStakeLamports > 0 {
		entry.Status = codec.StatusDeactivatingAll
	} else {
		entry.Status = codec.StatusDeactivatingValidator
	}
	return p.List.Update(vote, entry)
}
