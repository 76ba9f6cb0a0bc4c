// Package pda derives the stake pool's deterministic addresses:
// deposit/withdraw authorities, per-validator/transient/ephemeral
// stake accounts, the user-stake PDA, the transient wrapped-native
// account, and the program-signer authority. Every address is a
// Blake2b digest over the program ID and an ordered seed list, the
// same keyed-slot-derivation idiom used for storage-slot addressing
// elsewhere in the codebase, generalized from a single storage slot
// to an address over an arbitrary seed list.
//
// The core's derivation is deliberately simpler than the enclosing
// runtime's real off-curve bump search: signature verification and
// curve membership are explicitly out of scope, so this
// package fixes the canonical bump at 255 and folds it into the hash,
// giving a derivation that is deterministic and collision-resistant
// for the core's own bookkeeping without reimplementing ed25519.
package pda

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"golang.org/x/crypto/blake2b"
)

const CanonicalBump uint8 = 255

var (
	seedDeposit        = []byte("deposit")
	seedWithdrawal     = []byte("withdrawal")
	seedTransientStake = []byte("transient")
	seedEphemeralStake = []byte("ephemeral")
	seedUserStake      = []byte("user_stake")
	seedTransientWsol  = []byte("transient_wsol")
	seedProgramSigner  = []byte("program_signer")
)

// Derive hashes programID and every seed component together with the
// canonical bump, a keyed-slot derivation generalized to N seed
// components.
func Derive(programID accountstate.Address, seeds ...[]byte) (accountstate.Address, uint8) {
	h, _ := blake2b.New256(nil)
	h.Write(programID[:])
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write([]byte{CanonicalBump})
	sum := h.Sum(nil)
	addr, _ := accountstate.AddressFromBytes(sum)
	return addr, CanonicalBump
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func le64(v uint64) []byte {
	return []byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	}
}

// DepositAuthority derives [pool_addr, "deposit"].
func DepositAuthority(programID, pool accountstate.Address) (accountstate.Address, uint8) {
	return Derive(programID, pool[:], seedDeposit)
}

// WithdrawAuthority derives [pool_addr, "withdrawal"].
func WithdrawAuthority(programID, pool accountstate.Address) (accountstate.Address, uint8) {
	return Derive(programID, pool[:], seedWithdrawal)
}

// ValidatorStake derives [vote_addr, pool_addr, optional u32-LE seed].
// seed == nil derives the validator's primary stake account.
func ValidatorStake(programID, vote, pool accountstate.Address, seed *uint32) (accountstate.Address, uint8) {
	if seed == nil {
		return Derive(programID, vote[:], pool[:])
	}
	return Derive(programID, vote[:], pool[:], le32(*seed))
}

// TransientStake derives ["transient", vote_addr, pool_addr, u64-LE seed].
func TransientStake(programID, vote, pool accountstate.Address, seed uint64) (accountstate.Address, uint8) {
	return Derive(programID, seedTransientStake, vote[:], pool[:], le64(seed))
}

// EphemeralStake derives ["ephemeral", pool_addr, u64-LE seed].
func EphemeralStake(programID, pool accountstate.Address, seed uint64) (accountstate.Address, uint8) {
	return Derive(programID, seedEphemeralStake, pool[:], le64(seed))
}

// UserStake derives ["user_stake", user_wallet, u64-LE seed].
func UserStake(programID, userWallet accountstate.Address, seed uint64) (accountstate.Address, uint8) {
	return Derive(programID, seedUserStake, userWallet[:], le64(seed))
}

// TransientWrappedNative derives ["transient_wsol", user_wallet].
func TransientWrappedNative(programID, userWallet accountstate.Address) (accountstate.Address, uint8) {
	return Derive(programID, seedTransientWsol, userWallet[:])
}

// ProgramSigner derives ["program_signer"].
func ProgramSigner(programID accountstate.Address) (accountstate.Address, uint8) {
	return Derive(programID, seedProgramSigner)
}
