// Package stakepool implements the public operation set: the single
// top-level type a caller constructs with its external collaborators
// injected.
package stakepool

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/stakelog"
)

// TokenProgram is the fungible-token subsystem the core mints, burns,
// and transfers pool tokens and wrapped-native balances through. It
// is an external collaborator, modeled here only at the interface the
// core actually calls.
type TokenProgram interface {
	MintTo(mint, dest accountstate.Address, amount uint64) error
	Burn(mint, src accountstate.Address, amount uint64) error
	Transfer(src, dest accountstate.Address, amount uint64) error
	AccountExists(addr accountstate.Address) (bool, error)
	// CreateAssociatedTokenAccount creates the ATA owned by owner for
	// mint, charging rentLamports from payer, and returns the created
	// account's address.
	CreateAssociatedTokenAccount(owner, mint, payer accountstate.Address, rentLamports uint64) (accountstate.Address, error)
}

// StakeProgram is the stake subsystem that owns validator stake
// accounts, modeled at the interface the core calls to
// delegate/deactivate/split/merge/withdraw.
type StakeProgram interface {
	Delegate(stakeAccount, vote accountstate.Address, lamports uint64) error
	Deactivate(stakeAccount accountstate.Address) error
	Split(src, dest accountstate.Address, lamports uint64) error
	Merge(dest, src accountstate.Address) error
	WithdrawLamports(stakeAccount, dest accountstate.Address, lamports uint64) error
	DelegationOf(stakeAccount accountstate.Address) (vote accountstate.Address, lamports uint64, deactivating bool, err error)
	SetAuthorities(stakeAccount, staker, withdrawer accountstate.Address) error
	// IsDeactivationComplete reports whether the stake account has
	// finished cooling down as of currentEpoch.
	IsDeactivationComplete(stakeAccount accountstate.Address, currentEpoch uint64) (bool, error)
}

// Session is the external session record the session-authority
// subsystem owns; the pool reads it but never writes it.
type Session struct {
	UserWallet          accountstate.Address
	AuthorizedProgramID accountstate.Address
	AuthorizedSignerPDA accountstate.Address
	ExpirationUnixTime  int64
	DelegatedAllowance  uint64
}

// SessionProgram is the session-authority subsystem, exposed only
// through the read it needs.
type SessionProgram interface {
	GetSession(addr accountstate.Address) (Session, error)
}

// Clock is the enclosing runtime's epoch/time source.
type Clock interface {
	CurrentEpoch() uint64
	CurrentUnixTime() int64
}

// WrappedNativeMovement models the transient wrapped-native account
// lifecycle: it must be created and closed within one call. A real
// runtime adapter backs this with actual
// token-account creation/close instructions; the core only needs the
// net lamport effect plus the invariant that the account never
// survives past the call.
type WrappedNativeMovement interface {
	// WrapToTransient creates the transient wrapped-native account
	// (rent from payer), transfers amount of wrapped native from src
	// into it via the session delegate, then unwraps it to lamports
	// moved into dest, refunding rent to payer. The transient account
	// must not exist after this call returns.
	WrapToTransient(src, dest, payer accountstate.Address, amount uint64) error
	// UnwrapFromReserve moves amount lamports from the reserve into a
	// freshly created transient wrapped-native account, then
	// transfers the wrapped balance into dest and closes the
	// transient. Mirrors WrapToTransient in reverse.
	UnwrapFromReserve(reserve, dest, payer accountstate.Address, amount uint64) error
}

// Dependencies bundles every external collaborator a Pool needs. Log
// may be nil; a nil stakelog.Logger is silent.
type Dependencies struct {
	Token   TokenProgram
	Stake   StakeProgram
	Session SessionProgram
	Wrapped WrappedNativeMovement
	Clock   Clock
	Log     *stakelog.Logger
}
