package stakepool

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/pda"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

// IncreaseAdditionalValidatorStake is IncreaseValidatorStake's sibling
// for a validator that already carries a live transient account: it
// routes the new lamports through a scratch ephemeral stake account
// (keyed by ephemeralSeed) delegated straight to vote, then merges that
// ephemeral account into the existing transient rather than failing
// the transient-already-in-use check. transientSeedSuffix must match
// the entry's live transient suffix when one exists; otherwise a fresh
// transient is created at that suffix, same as IncreaseValidatorStake.
func (p *Pool) IncreaseAdditionalValidatorStake(caller, vote accountstate.Address, lamports, transientSeedSuffix, ephemeralSeed uint64) error {
	if err := p.requireStaker(caller); err != nil {
		return err
	}
	entry, _, ok := p.List.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "")
	}
	if removalInFlight(entry.Status) {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "validator removal in progress")
	}
	hasLiveTransient := entry.TransientStakeLamports > 0
	if hasLiveTransient && entry.TransientSeedSuffix != transientSeedSuffix {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "live transient suffix does not match")
	}
	if !hasLiveTransient && p.List.TransientBudgetFree() <= 0 {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "transient account budget exhausted")
	}

	ephemeral, _ := pda.EphemeralStake(p.ProgramID, p.Address, ephemeralSeed)
	if err := p.Deps.Stake.Split(p.Record.ReserveStake, ephemeral, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "splitting reserve to ephemeral")
	}
	if err := p.Deps.Stake.Delegate(ephemeral, vote, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "delegating ephemeral stake")
	}

	transient, _ := pda.TransientStake(p.ProgramID, vote, p.Address, transientSeedSuffix)
	if err := p.Deps.Stake.Merge(transient, ephemeral); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "merging ephemeral into transient")
	}

	// The transient here is activating (or absorbing into one that
	// is); status only moves off Active for deactivating transients.
	entry.TransientStakeLamports += lamports
	entry.TransientSeedSuffix = transientSeedSuffix
	return p.List.Update(vote, entry)
}

// removalInFlight reports whether a whole-validator removal has been
// initiated on the entry; stake movements are refused until the epoch
// loop finishes retiring it.
func removalInFlight(s codec.ValidatorStatus) bool {
	return s == codec.StatusDeactivatingValidator || s == codec.StatusDeactivatingAll || s == codec.StatusReadyForRemoval
}

// DecreaseAdditionalValidatorStake mirrors DecreaseValidatorStake but,
// per the live-transient merge rule, tolerates vote already carrying a
// deactivating transient whose suffix matches transientSeedSuffix:
// the split lamports land in a scratch ephemeral account, deactivate
// there, then merge into the existing transient instead of creating a
// second one.
func (p *Pool) DecreaseAdditionalValidatorStake(caller, vote accountstate.Address, lamports, transientSeedSuffix, ephemeralSeed uint64) error {
	if err := p.requireStaker(caller); err != nil {
		return err
	}
	entry, _, ok := p.List.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "")
	}
	if removalInFlight(entry.Status) {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "validator removal in progress")
	}
	hasLiveTransient := entry.TransientStakeLamports > 0
	if hasLiveTransient && entry.TransientSeedSuffix != transientSeedSuffix {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "live transient suffix does not match")
	}
	if !hasLiveTransient && p.List.TransientBudgetFree() <= 0 {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "transient account budget exhausted")
	}
	if entry.ActiveStakeLamports < lamports {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "decrease exceeds active stake")
	}
	remainder := entry.ActiveStakeLamports - lamports
	if remainder != 0 && remainder < MinimumActiveStake {
		return stakepoolerr.New(stakepoolerr.KindStakeLamportsNotEqualToMinimum, "")
	}

	validatorStake, _ := pda.ValidatorStake(p.ProgramID, vote, p.Address, nil)
	ephemeral, _ := pda.EphemeralStake(p.ProgramID, p.Address, ephemeralSeed)
	if err := p.Deps.Stake.Split(validatorStake, ephemeral, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "splitting validator stake to ephemeral")
	}
	if err := p.Deps.Stake.Deactivate(ephemeral); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "deactivating ephemeral stake")
	}

	transient, _ := pda.TransientStake(p.ProgramID, vote, p.Address, transientSeedSuffix)
	if err := p.Deps.Stake.Merge(transient, ephemeral); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "merging ephemeral into transient")
	}

	entry.ActiveStakeLamports -= lamports
	entry.TransientStakeLamports += lamports
	entry.TransientSeedSuffix = transientSeedSuffix
	entry.Status = codec.StatusDeactivatingTransient
	return p.List.Update(vote, entry)
}

// Redelegate moves lamports directly from sourceVote's active stake to
// destVote without a detour through the reserve: the split lamports
// land in a scratch ephemeral account (ephemeralSeed), get delegated
// straight to destVote, then merge into destVote's transient account
// at destTransientSeedSuffix. Both validators must already be in the
// list and destVote must have transient budget room (a fresh
// destination transient, unless one already lives there at a matching
// suffix).
func (p *Pool) Redelegate(caller, sourceVote, destVote accountstate.Address, lamports, ephemeralSeed, destTransientSeedSuffix uint64) error {
	if err := p.requireStaker(caller); err != nil {
		return err
	}
	sourceEntry, _, ok := p.List.Find(sourceVote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "source validator not in pool")
	}
	destEntry, _, ok := p.List.Find(destVote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, "destination validator not in pool")
	}
	if sourceEntry.Status != codec.StatusActive {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "source validator already has a transient account")
	}
	if removalInFlight(destEntry.Status) {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "destination validator removal in progress")
	}
	destHasLiveTransient := destEntry.TransientStakeLamports > 0
	if destHasLiveTransient && destEntry.TransientSeedSuffix != destTransientSeedSuffix {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "destination live transient suffix does not match")
	}
	if !destHasLiveTransient && p.List.TransientBudgetFree() <= 0 {
		return stakepoolerr.New(stakepoolerr.KindTransientAccountInUse, "transient account budget exhausted")
	}
	if sourceEntry.ActiveStakeLamports < lamports {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "redelegate exceeds source active stake")
	}
	remainder := sourceEntry.ActiveStakeLamports - lamports
	if remainder != 0 && remainder < MinimumActiveStake {
		return stakepoolerr.New(stakepoolerr.KindStakeLamportsNotEqualToMinimum, "")
	}

	sourceStake, _ := pda.ValidatorStake(p.ProgramID, sourceVote, p.Address, nil)
	ephemeral, _ := pda.EphemeralStake(p.ProgramID, p.Address, ephemeralSeed)
	if err := p.Deps.Stake.Split(sourceStake, ephemeral, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "splitting source stake to ephemeral")
	}
	if err := p.Deps.Stake.Delegate(ephemeral, destVote, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "redelegating ephemeral stake")
	}

	destTransient, _ := pda.TransientStake(p.ProgramID, destVote, p.Address, destTransientSeedSuffix)
	if err := p.Deps.Stake.Merge(destTransient, ephemeral); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "merging ephemeral into destination transient")
	}

	sourceEntry.ActiveStakeLamports -= lamports
	if err := p.List.Update(sourceVote, sourceEntry); err != nil {
		return err
	}
	// destVote's transient is activating toward it, so its entry stays
	// in whatever status it already holds.
	destEntry.TransientStakeLamports += lamports
	destEntry.TransientSeedSuffix = destTransientSeedSuffix
	return p.List.Update(destVote, destEntry)
}
