// Package validatorlist implements the stake pool's fixed-capacity,
// position-stable validator registry: the validator-list record and
// its add/remove/transient-budget operations, backed by a plain Go
// slice rather than storage-pointer linked list, since entries need
// stable array positions and a fixed 73-byte packed layout.
package validatorlist

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

// MaxTransientStakeAccounts bounds the number of validators that may
// have a live transient stake account system-wide at once.
const MaxTransientStakeAccounts = 10

// MaxValidatorsInPool is the hard ceiling on list capacity.
const MaxValidatorsInPool = 20_000

// List is the in-memory working form of a validator-list record: a
// header plus an ordered, fixed-capacity sequence of entries. codec
// handles the on-wire packed representation; List operates on decoded
// entries.
type List struct {
	MaxValidators uint32
	Entries       []codec.ValidatorEntry
}

func New(maxValidators uint32) *List {
	if maxValidators > MaxValidatorsInPool {
		maxValidators = MaxValidatorsInPool
	}
	return &List{MaxValidators: maxValidators, Entries: make([]codec.ValidatorEntry, 0, maxValidators)}
}

// Contains reports whether vote already has an entry.
func (l *List) Contains(vote accountstate.Address) bool {
	_, _, ok := l.Find(vote)
	return ok
}

// Find returns the entry for vote and its index, by linear scan — the
// vote address is always unique.
func (l *List) Find(vote accountstate.Address) (codec.ValidatorEntry, int, bool) {
	for i, e := range l.Entries {
		if e.VoteAccountAddress.Equal(vote) {
			return e, i, true
		}
	}
	return codec.ValidatorEntry{}, -1, false
}

// Add appends a new entry in StatusActive with both lamport counts
// zero. Rejects a full list or a duplicate vote address; the
// stake-account-ownership/delegation checks belong to the caller
// (stakepool.Pool.AddValidatorToPool), since they require reading
// external stake-account state this package has no access to.
func (l *List) Add(vote accountstate.Address, validatorSeed uint32, currentEpoch uint64) error {
	if l.Contains(vote) {
		return stakepoolerr.New(stakepoolerr.KindValidatorAlreadyAdded, vote.String())
	}
	if uint32(len(l.Entries)) >= l.MaxValidators {
		return stakepoolerr.New(stakepoolerr.KindTooManyValidators, "validator list at capacity")
	}
	l.Entries = append(l.Entries, codec.ValidatorEntry{
		Status:              codec.StatusActive,
		VoteAccountAddress:  vote,
		ValidatorSeedSuffix: validatorSeed,
		LastUpdateEpoch:     currentEpoch,
	})
	return nil
}

// Remove deletes the entry for vote. Legal only when its status is
// StatusReadyForRemoval. Remaining entries keep their relative order
// (a stable shift-down rather than swap-with-last): entries before the
// removed one keep their index, entries after it each move down by one.
func (l *List) Remove(vote accountstate.Address) error {
	entry, idx, ok := l.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, vote.String())
	}
	if entry.Status != codec.StatusReadyForRemoval {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "validator not ready for removal")
	}
	l.Entries = append(l.Entries[:idx], l.Entries[idx+1:]...)
	return nil
}

// Update overwrites the entry for vote in place.
func (l *List) Update(vote accountstate.Address, updated codec.ValidatorEntry) error {
	_, idx, ok := l.Find(vote)
	if !ok {
		return stakepoolerr.New(stakepoolerr.KindValidatorNotFound, vote.String())
	}
	l.Entries[idx] = updated
	return nil
}

// LiveTransientCount returns how many entries currently carry a
// nonzero transient-stake balance.
func (l *List) LiveTransientCount() int {
	n := 0
	for _, e := range l.Entries {
		if e.TransientStakeLamports > 0 {
			n++
		}
	}
	return n
}

// TransientBudgetFree reports how many more transient stake accounts
// may be created before hitting MaxTransientStakeAccounts.
func (l *List) TransientBudgetFree() int {
	free := MaxTransientStakeAccounts - l.LiveTransientCount()
	if free < 0 {
		return 0
	}
	return free
}

// CleanupRemoved deletes every StatusReadyForRemoval entry. Idempotent:
// a second call with nothing left to remove is a no-op.
func (l *List) CleanupRemoved() int {
	kept := l.Entries[:0]
	removed := 0
	for _, e := range l.Entries {
		if e.IsRemoved() {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	l.Entries = kept
	return removed
}

// AllCurrent reports whether every entry's LastUpdateEpoch equals
// currentEpoch — the precondition UpdateStakePoolBalance checks
// before running.
func (l *List) AllCurrent(currentEpoch uint64) bool {
	for _, e := range l.Entries {
		if e.LastUpdateEpoch != currentEpoch {
			return false
		}
	}
	return true
}

// TotalStaked sums active+transient lamports across every entry, the
// first step of UpdateStakePoolBalance.
func (l *List) TotalStaked() uint64 {
	var total uint64
	for _, e := range l.Entries {
		total += e.StakeLamports()
	}
	return total
}
