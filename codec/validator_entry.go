package codec

import (
	"bytes"

	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
)

// ValidatorStatus is the validator entry's five-valued lifecycle tag,
// stored as a single byte at a fixed offset (40) so off-chain scanners
// can filter without a full decode.
type ValidatorStatus uint8

const (
	StatusActive ValidatorStatus = iota
	StatusDeactivatingTransient
	StatusDeactivatingValidator
	StatusDeactivatingAll
	StatusReadyForRemoval
)

func (s ValidatorStatus) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusDeactivatingTransient:
		return "DeactivatingTransient"
	case StatusDeactivatingValidator:
		return "DeactivatingValidator"
	case StatusDeactivatingAll:
		return "DeactivatingAll"
	case StatusReadyForRemoval:
		return "ReadyForRemoval"
	default:
		return "Unknown"
	}
}

// ValidatorEntryLen is the exact on-wire size of ValidatorEntry: it
// must never change, since off-chain scanners memcmp-filter the
// packed array at these fixed offsets.
const ValidatorEntryLen = 8 + 8 + 8 + 8 + 4 + 4 + 1 + 32 // == 73

// Fixed byte offsets within one packed entry
const (
	OffsetActiveStakeLamports     = 0
	OffsetTransientStakeLamports  = 8
	OffsetLastUpdateEpoch         = 16
	OffsetTransientSeedSuffix     = 24
	OffsetUnused                  = 32
	OffsetValidatorSeedSuffix     = 36
	OffsetStatus                  = 40
	OffsetVoteAccountAddress      = 41
)

// ValidatorEntry is the packed, alignment-free 73-byte record tracking
// one validator's active and transient stake.
type ValidatorEntry struct {
	ActiveStakeLamports    uint64
	TransientStakeLamports uint64
	LastUpdateEpoch        uint64
	TransientSeedSuffix    uint64
	ValidatorSeedSuffix    uint32
	Status                 ValidatorStatus
	VoteAccountAddress     accountstate.Address
}

// Encode writes the entry in its fixed 73-byte layout. The result
// always has length ValidatorEntryLen.
func (e ValidatorEntry) Encode() []byte {
	buf := make([]byte, 0, ValidatorEntryLen)
	buf = PutUint64(buf, e.ActiveStakeLamports)
	buf = PutUint64(buf, e.TransientStakeLamports)
	buf = PutUint64(buf, e.LastUpdateEpoch)
	buf = PutUint64(buf, e.TransientSeedSuffix)
	buf = PutUint32(buf, 0) // unused, offset 32..36
	buf = PutUint32(buf, e.ValidatorSeedSuffix)
	buf = append(buf, byte(e.Status))
	buf = append(buf, e.VoteAccountAddress[:]...)
	return buf
}

func DecodeValidatorEntry(b []byte) (ValidatorEntry, error) {
	if len(b) < ValidatorEntryLen {
		return ValidatorEntry{}, ErrShortBuffer
	}
	active, _ := GetUint64(b[OffsetActiveStakeLamports:])
	transient, _ := GetUint64(b[OffsetTransientStakeLamports:])
	lastUpdate, _ := GetUint64(b[OffsetLastUpdateEpoch:])
	transientSeed, _ := GetUint64(b[OffsetTransientSeedSuffix:])
	validatorSeed, _ := GetUint32(b[OffsetValidatorSeedSuffix:])
	status := ValidatorStatus(b[OffsetStatus])
	var vote accountstate.Address
	copy(vote[:], b[OffsetVoteAccountAddress:OffsetVoteAccountAddress+32])

	return ValidatorEntry{
		ActiveStakeLamports:    active,
		TransientStakeLamports: transient,
		LastUpdateEpoch:        lastUpdate,
		TransientSeedSuffix:    transientSeed,
		ValidatorSeedSuffix:    validatorSeed,
		Status:                 status,
		VoteAccountAddress:     vote,
	}, nil
}

// StakeLamports is the validator's total stake under pool management:
// active plus transient.
func (e ValidatorEntry) StakeLamports() uint64 {
	return e.ActiveStakeLamports + e.TransientStakeLamports
}

// IsActive reports whether the entry's status byte is StatusActive.
func (e ValidatorEntry) IsActive() bool {
	return e.Status == StatusActive
}

// IsRemoved reports whether the entry is a cleared, ready-to-delete
// slot: status ReadyForRemoval with both lamport fields zero, per
// invariant.
func (e ValidatorEntry) IsRemoved() bool {
	return e.Status == StatusReadyForRemoval && e.ActiveStakeLamports == 0 && e.TransientStakeLamports == 0
}

// MemcmpVote reports whether the encoded entry's vote-address field
// (offset 41..73) equals vote, without a full decode — what an
// off-chain scanning use case calls out for.
func MemcmpVote(encoded []byte, vote accountstate.Address) bool {
	if len(encoded) < ValidatorEntryLen {
		return false
	}
	return bytes.Equal(encoded[OffsetVoteAccountAddress:OffsetVoteAccountAddress+32], vote[:])
}

// ActiveLamportsGreaterThan is the offset-0..8 scan helper.
func ActiveLamportsGreaterThan(encoded []byte, lamports uint64) bool {
	if len(encoded) < 8 {
		return false
	}
	v, _ := GetUint64(encoded[OffsetActiveStakeLamports:])
	return v > lamports
}

// TransientLamportsGreaterThan is the offset-8..16 scan helper.
func TransientLamportsGreaterThan(encoded []byte, lamports uint64) bool {
	if len(encoded) < 16 {
		return false
	}
	v, _ := GetUint64(encoded[OffsetTransientStakeLamports:])
	return v > lamports
}
