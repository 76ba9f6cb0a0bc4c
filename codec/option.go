// Package codec implements the stake pool's canonical little-endian
// wire format: the pool record, validator-list header, the fixed
// 73-byte packed ValidatorEntry, and the tagged-variant encodings for
// Option[T] and the delayed-fee countdown: a tag byte followed by a
// fixed-offset payload, so every field stays at a known offset
// whether or not it's populated.
package codec

import (
	"encoding/binary"

	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/pkg/errors"
)

// ErrShortBuffer is returned by every Decode function given fewer
// bytes than its fixed layout requires.
var ErrShortBuffer = errors.New("codec: buffer too short")

// OptionAddress is the tagged {None, Some(address)} variant: a tag
// byte followed by the 32-byte payload whenever tag == 1. It is never
// elided, even when None, so in-place updates keep every downstream
// field at a fixed offset.
type OptionAddress struct {
	Valid bool
	Value accountstate.Address
}

const optionAddressLen = 1 + 32

func (o OptionAddress) Encode(buf []byte) []byte {
	if o.Valid {
		buf = append(buf, 1)
		buf = append(buf, o.Value[:]...)
	} else {
		buf = append(buf, 0)
		buf = append(buf, make([]byte, 32)...)
	}
	return buf
}

func DecodeOptionAddress(b []byte) (OptionAddress, int, error) {
	if len(b) < optionAddressLen {
		return OptionAddress{}, 0, ErrShortBuffer
	}
	tag := b[0]
	var addr accountstate.Address
	copy(addr[:], b[1:optionAddressLen])
	return OptionAddress{Valid: tag == 1, Value: addr}, optionAddressLen, nil
}

// PutUint64 / GetUint64 are thin little-endian helpers kept local to
// this package so every record uses exactly one codec convention.
func PutUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func PutUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func GetUint64(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint64(b[:8]), nil
}

func GetUint32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(b[:4]), nil
}
