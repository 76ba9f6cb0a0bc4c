// Package stakepooltest provides in-memory fakes for the external
// collaborator interfaces stakepool.Dependencies bundles, so the
// accounting core can be exercised without a real runtime: hand-rolled
// fakes rather than a mocking framework, since the interfaces are
// small and stable.
package stakepooltest

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

// TokenLedger is a fake stakepool.TokenProgram: a map of token-account
// address to balance, plus a single mint supply counter.
type TokenLedger struct {
	Balances map[accountstate.Address]uint64
	Mint     accountstate.Address
	Supply   uint64
}

func NewTokenLedger(mint accountstate.Address) *TokenLedger {
	return &TokenLedger{Balances: make(map[accountstate.Address]uint64), Mint: mint}
}

func (l *TokenLedger) MintTo(mint, dest accountstate.Address, amount uint64) error {
	l.Balances[dest] += amount
	l.Supply += amount
	return nil
}

func (l *TokenLedger) Burn(mint, src accountstate.Address, amount uint64) error {
	if l.Balances[src] < amount {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "insufficient token balance")
	}
	l.Balances[src] -= amount
	l.Supply -= amount
	return nil
}

func (l *TokenLedger) Transfer(src, dest accountstate.Address, amount uint64) error {
	if l.Balances[src] < amount {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "insufficient token balance")
	}
	l.Balances[src] -= amount
	l.Balances[dest] += amount
	return nil
}

func (l *TokenLedger) AccountExists(addr accountstate.Address) (bool, error) {
	_, ok := l.Balances[addr]
	return ok, nil
}

func (l *TokenLedger) CreateAssociatedTokenAccount(owner, mint, payer accountstate.Address, rentLamports uint64) (accountstate.Address, error) {
	if _, ok := l.Balances[owner]; !ok {
		l.Balances[owner] = 0
	}
	return owner, nil
}

// StakeAccount is one fake on-chain stake account: its delegated vote,
// lamports, and whether it is mid-deactivation.
type StakeAccount struct {
	Vote           accountstate.Address
	Lamports       uint64
	Deactivating   bool
	DeactivatedAt  uint64
}

// StakeLedger is a fake stakepool.StakeProgram.
type StakeLedger struct {
	Accounts map[accountstate.Address]*StakeAccount
	Clock    *Clock
}

func NewStakeLedger(clock *Clock) *StakeLedger {
	return &StakeLedger{Accounts: make(map[accountstate.Address]*StakeAccount), Clock: clock}
}

// Seed installs a stake account directly, bypassing Delegate, for test
// setup (e.g. an already-delegated deposit source).
func (s *StakeLedger) Seed(addr, vote accountstate.Address, lamports uint64) {
	s.Accounts[addr] = &StakeAccount{Vote: vote, Lamports: lamports}
}

func (s *StakeLedger) get(addr accountstate.Address) *StakeAccount {
	a, ok := s.Accounts[addr]
	if !ok {
		a = &StakeAccount{}
		s.Accounts[addr] = a
	}
	return a
}

func (s *StakeLedger) Delegate(stakeAccount, vote accountstate.Address, lamports uint64) error {
	a := s.get(stakeAccount)
	a.Vote = vote
	a.Lamports = lamports
	a.Deactivating = false
	return nil
}

func (s *StakeLedger) Deactivate(stakeAccount accountstate.Address) error {
	a := s.get(stakeAccount)
	a.Deactivating = true
	a.DeactivatedAt = s.Clock.Epoch
	return nil
}

func (s *StakeLedger) Split(src, dest accountstate.Address, lamports uint64) error {
	from := s.get(src)
	if from.Lamports < lamports {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "insufficient stake to split")
	}
	from.Lamports -= lamports
	to := s.get(dest)
	to.Vote = from.Vote
	to.Lamports += lamports
	return nil
}

func (s *StakeLedger) Merge(dest, src accountstate.Address) error {
	from := s.get(src)
	to := s.get(dest)
	to.Lamports += from.Lamports
	delete(s.Accounts, src)
	return nil
}

func (s *StakeLedger) WithdrawLamports(stakeAccount, dest accountstate.Address, lamports uint64) error {
	a := s.get(stakeAccount)
	if a.Lamports < lamports {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "insufficient stake to withdraw")
	}
	a.Lamports -= lamports
	s.get(dest).Lamports += lamports
	return nil
}

func (s *StakeLedger) DelegationOf(stakeAccount accountstate.Address) (accountstate.Address, uint64, bool, error) {
	a := s.get(stakeAccount)
	return a.Vote, a.Lamports, a.Deactivating, nil
}

func (s *StakeLedger) SetAuthorities(stakeAccount, staker, withdrawer accountstate.Address) error {
	return nil
}

func (s *StakeLedger) IsDeactivationComplete(stakeAccount accountstate.Address, currentEpoch uint64) (bool, error) {
	a := s.get(stakeAccount)
	return a.Deactivating && currentEpoch > a.DeactivatedAt, nil
}

var _ stakepool.StakeProgram = (*StakeLedger)(nil)
var _ stakepool.TokenProgram = (*TokenLedger)(nil)

// Clock is a fake stakepool.Clock with directly settable fields.
type Clock struct {
	Epoch   uint64
	UnixSec int64
}

func (c *Clock) CurrentEpoch() uint64   { return c.Epoch }
func (c *Clock) CurrentUnixTime() int64 { return c.UnixSec }

var _ stakepool.Clock = (*Clock)(nil)

// Sessions is a fake stakepool.SessionProgram backed by a map.
type Sessions struct {
	Records map[accountstate.Address]stakepool.Session
}

func NewSessions() *Sessions {
	return &Sessions{Records: make(map[accountstate.Address]stakepool.Session)}
}

func (s *Sessions) GetSession(addr accountstate.Address) (stakepool.Session, error) {
	rec, ok := s.Records[addr]
	if !ok {
		return stakepool.Session{}, stakepoolerr.New(stakepoolerr.KindInvalidSession, "no such session")
	}
	return rec, nil
}

var _ stakepool.SessionProgram = (*Sessions)(nil)

// WrappedNative is a fake stakepool.WrappedNativeMovement: it just
// moves lamports directly between the modeled wrapped-native balances
// tracked in Balances, standing in for the real wrap/unwrap machinery.
type WrappedNative struct {
	Balances map[accountstate.Address]uint64
}

func NewWrappedNative() *WrappedNative {
	return &WrappedNative{Balances: make(map[accountstate.Address]uint64)}
}

func (w *WrappedNative) WrapToTransient(src, dest, payer accountstate.Address, amount uint64) error {
	if w.Balances[src] < amount {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "insufficient wrapped-native balance")
	}
	w.Balances[src] -= amount
	w.Balances[dest] += amount
	return nil
}

func (w *WrappedNative) UnwrapFromReserve(reserve, dest, payer accountstate.Address, amount uint64) error {
	if w.Balances[reserve] < amount {
		return stakepoolerr.New(stakepoolerr.KindCalculationFailure, "insufficient reserve balance")
	}
	w.Balances[reserve] -= amount
	w.Balances[dest] += amount
	return nil
}

var _ stakepool.WrappedNativeMovement = (*WrappedNative)(nil)

// Deps bundles fresh fakes into a ready stakepool.Dependencies, plus
// direct handles for test assertions and setup.
type Deps struct {
	Token    *TokenLedger
	Stake    *StakeLedger
	Sessions *Sessions
	Wrapped  *WrappedNative
	Clock    *Clock
}

func NewDeps(mint accountstate.Address) Deps {
	clock := &Clock{Epoch: 1, UnixSec: 1_700_000_000}
	return Deps{
		Token:    NewTokenLedger(mint),
		Stake:    NewStakeLedger(clock),
		Sessions: NewSessions(),
		Wrapped:  NewWrappedNative(),
		Clock:    clock,
	}
}

func (d Deps) Dependencies() stakepool.Dependencies {
	return stakepool.Dependencies{
		Token:   d.Token,
		Stake:   d.Stake,
		Session: d.Sessions,
		Wrapped: d.Wrapped,
		Clock:   d.Clock,
	}
}
