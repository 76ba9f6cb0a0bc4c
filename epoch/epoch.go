// Package epoch implements the two-pass per-epoch refresh:
// UpdateValidatorListBalance (the list pass) and
// UpdateStakePoolBalance (the pool pass), plus
// CleanupRemovedValidatorEntries, following an accumulate-then-apply
// structure: reconcile every entry's live state first, then roll the
// pool's own books forward in one place.
package epoch

import (
	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/computeunits"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
	"github.com/Tempest-Finance/fogo-stake-pool/pda"
	"github.com/Tempest-Finance/fogo-stake-pool/poolaccounting"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

// MaxValidatorsToUpdate bounds a single UpdateValidatorListBalance
// call
const MaxValidatorsToUpdate = 4

// UpdateValidatorListBalanceResult reports how far the list pass
// advanced, so a caller resuming a throttled pass knows where to
// restart. There is no cancellation: compute budget is the only
// bound, and a caller simply re-invokes from NextIndex.
type UpdateValidatorListBalanceResult struct {
	NextIndex uint32
	Done      bool
}

// UpdateValidatorListBalance processes up to MaxValidatorsToUpdate
// entries starting at startIndex, in ascending index order, stopping
// at the first entry it cannot complete. Each processed entry:
// inspects its transient stake account, merges a deactivated transient
// into the reserve or an activating one into the validator stake,
// recomputes active/transient lamports from the live delegation, and
// advances status per the transition table.
// noMerge leaves a still-activating transient unmerged; deactivating
// transients are handled either way.
func UpdateValidatorListBalance(p *stakepool.Pool, startIndex uint32, noMerge bool, meter *computeunits.Meter) (UpdateValidatorListBalanceResult, error) {
	current := p.Deps.Clock.CurrentEpoch()
	entries := p.List.Entries
	end := len(entries)

	processed := 0
	i := int(startIndex)
	for ; i < end && processed < MaxValidatorsToUpdate; i++ {
		if meter.Exhausted() {
			// Out of budget mid-range: the caller resumes from here.
			return UpdateValidatorListBalanceResult{NextIndex: uint32(i)}, nil
		}
		entry := entries[i]
		if entry.LastUpdateEpoch == current {
			// Idempotent per entry per epoch: a second pass over an
			// already-current entry within the same epoch is a no-op.
			processed++
			continue
		}

		updated, err := processEntry(p, entry, current, noMerge, meter)
		if err != nil {
			return UpdateValidatorListBalanceResult{NextIndex: uint32(i)}, err
		}
		entries[i] = updated
		processed++
	}

	scans, merges, _ := meter.Breakdown()
	p.Deps.Log.Debug("validator list pass",
		"start_index", startIndex, "next_index", i, "done", i >= end,
		"entries_scanned", scans, "transient_merges", merges)
	return UpdateValidatorListBalanceResult{NextIndex: uint32(i), Done: i >= end}, nil
}

func processEntry(p *stakepool.Pool, entry codec.ValidatorEntry, currentEpoch uint64, noMerge bool, meter *computeunits.Meter) (codec.ValidatorEntry, error) {
	meter.ChargeEntryScan()
	vote := entry.VoteAccountAddress

	if entry.TransientStakeLamports > 0 {
		transient, _ := pda.TransientStake(p.ProgramID, vote, p.Address, entry.TransientSeedSuffix)
		_, lamports, deactivating, err := p.Deps.Stake.DelegationOf(transient)
		if err != nil {
			return entry, stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "reading transient delegation")
		}

		if deactivating {
			complete, err := p.Deps.Stake.IsDeactivationComplete(transient, currentEpoch)
			if err != nil {
				return entry, stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "checking transient deactivation")
			}
			if complete {
				if err := p.Deps.Stake.Merge(p.Record.ReserveStake, transient); err != nil {
					return entry, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "merging transient into reserve")
				}
				meter.ChargeTransientMerge()
				entry.TransientStakeLamports = 0
				if entry.Status == codec.StatusDeactivatingAll {
					// Validator stake's own deactivation is checked
					// below; don't settle to Active.
				} else if entry.ActiveStakeLamports == 0 {
					entry.Status = codec.StatusReadyForRemoval
				} else {
					entry.Status = codec.StatusActive
				}
			} else {
				entry.TransientStakeLamports = lamports
			}
		} else if !noMerge {
			// Still activating: merge into the validator stake on
			// this pass; no delegation-age check is made.
			validatorStake, _ := pda.ValidatorStake(p.ProgramID, vote, p.Address, nil)
			if err := p.Deps.Stake.Merge(validatorStake, transient); err != nil {
				return entry, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "merging transient into validator stake")
			}
			meter.ChargeTransientMerge()
			entry.ActiveStakeLamports += entry.TransientStakeLamports
			entry.TransientStakeLamports = 0
			if entry.Status != codec.StatusDeactivatingAll {
				// A validator-wide removal may have been initiated while
				// this transient was still activating; its own
				// deactivation is checked below, so don't settle to
				// Active out from under it.
				entry.Status = codec.StatusActive
			}
		}
	}

	// Full-validator removal in flight: once any transient has settled
	// (checked above), watch the validator stake account itself. Once
	// its deactivation completes, withdraw it whole to the reserve and
	// mark the entry ReadyForRemoval.
	if (entry.Status == codec.StatusDeactivatingValidator || entry.Status == codec.StatusDeactivatingAll) && entry.TransientStakeLamports == 0 {
		validatorStake, _ := pda.ValidatorStake(p.ProgramID, vote, p.Address, nil)
		complete, err := p.Deps.Stake.IsDeactivationComplete(validatorStake, currentEpoch)
		if err != nil {
			return entry, stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "checking validator stake deactivation")
		}
		if complete {
			if entry.ActiveStakeLamports > 0 {
				if err := p.Deps.Stake.WithdrawLamports(validatorStake, p.Record.ReserveStake, entry.ActiveStakeLamports); err != nil {
					return entry, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "withdrawing deactivated validator stake to reserve")
				}
			}
			entry.ActiveStakeLamports = 0
			entry.Status = codec.StatusReadyForRemoval
		}
	}

	entry.LastUpdateEpoch = currentEpoch
	return entry, nil
}

// UpdateStakePoolBalance runs the pool pass: sums
// active+transient stake plus reserve lamports to get the new total,
// mints the epoch fee on the resulting reward, ticks fee schedules,
// rolls the APR observation points forward, and drops every
// ReadyForRemoval entry. Fails StakeListOutOfDate unless the list pass
// has covered every entry this epoch.
func UpdateStakePoolBalance(p *stakepool.Pool, reserveLamports uint64) error {
	current := p.Deps.Clock.CurrentEpoch()
	if !p.List.AllCurrent(current) {
		return stakepoolerr.New(stakepoolerr.KindStakeListOutOfDate, "")
	}

	newTotalStaked := p.List.TotalStaked()
	var reserveAboveMinimum uint64
	if reserveLamports > stakepool.MinimumReserveLamports {
		reserveAboveMinimum = reserveLamports - stakepool.MinimumReserveLamports
	}
	newTotal, err := fixedpoint.SafeAdd64(newTotalStaked, reserveAboveMinimum)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "summing pool total")
	}

	var reward uint64
	if newTotal > p.Record.TotalLamports {
		reward = newTotal - p.Record.TotalLamports
	}

	feeTokens, err := poolaccounting.EpochFeeTokens(p.Record, reward)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "computing epoch fee")
	}
	if feeTokens > 0 {
		if err := p.Deps.Token.MintTo(p.Record.PoolMint, p.Record.ManagerFeeAccount, feeTokens); err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "minting epoch fee")
		}
		supply, err := fixedpoint.SafeAdd64(p.Record.PoolTokenSupply, feeTokens)
		if err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "accumulating pool token supply")
		}
		p.Record.PoolTokenSupply = supply
	}

	p.Record = poolaccounting.TickFeeSchedules(p.Record)

	p.Record.LastEpochPoolTokenSupply = p.Record.PoolTokenSupply
	p.Record.LastEpochTotalLamports = p.Record.TotalLamports
	p.Record.TotalLamports = newTotal
	p.Record.LastUpdateEpoch = current

	removed := CleanupRemovedValidatorEntries(p)
	p.Deps.Log.Info("pool balance updated",
		"epoch", current, "total_lamports", newTotal, "reward", reward,
		"fee_tokens", feeTokens, "entries_removed", removed)
	return nil
}

// CleanupRemovedValidatorEntries deletes every ReadyForRemoval entry.
// Idempotent
func CleanupRemovedValidatorEntries(p *stakepool.Pool) int {
	return p.List.CleanupRemoved()
}

// ContractBalanceCheck is the solvency assertion: the pool's own
// books (TotalLamports) must match the externally observed sum of
// reserve + validator stakes.
func ContractBalanceCheck(p *stakepool.Pool, reserveLamports uint64) error {
	observed := p.List.TotalStaked() + reserveLamports
	if observed != p.Record.TotalLamports {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "pool total_lamports does not match observed stake + reserve")
	}
	return nil
}
