// Package accountstate defines the account-addressing and storage
// primitives the stake pool core reads and writes through. It has no
// dependency on any concrete runtime SDK: the core only ever sees an
// Address and a Store.
package accountstate

import (
	"crypto/subtle"
	"encoding/hex"
)

// Address is a 32-byte account identifier, matching the fixed-width
// addresses used throughout the pool's data model (vote accounts,
// stake accounts, mints, the pool record itself).
type Address [32]byte

// Zero is the all-zero address; IsZero compares against it.
var Zero Address

func (a Address) IsZero() bool {
	return subtle.ConstantTimeCompare(a[:], Zero[:]) == 1
}

func (a Address) Equal(other Address) bool {
	return subtle.ConstantTimeCompare(a[:], other[:]) == 1
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

func AddressFromBytes(b []byte) (Address, bool) {
	var a Address
	if len(b) != len(a) {
		return a, false
	}
	copy(a[:], b)
	return a, true
}
