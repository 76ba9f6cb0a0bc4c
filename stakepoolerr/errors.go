// Package stakepoolerr defines the stake pool core's error taxonomy:
// a stable discriminant (Kind) every caller can match on, plus a
// message for humans.
package stakepoolerr

import "github.com/pkg/errors"

// Kind enumerates the stable failure discriminants consumers match
// on. The numeric values are internal to this module; nothing
// requires wire-compatible error codes, so their order is whatever
// groups naturally.
type Kind int

const (
	KindUnknown Kind = iota

	// Invariant / configuration
	KindAlreadyInUse
	KindInvalidProgramAddress
	KindInvalidState
	KindAccountNotRentExempt
	KindWrongAccountMint
	KindWrongManager
	KindWrongStaker

	// Arithmetic and rate
	KindCalculationFailure
	KindFeeTooHigh
	KindFeeIncreaseTooHigh

	// Size and threshold
	KindDepositTooSmall
	KindWithdrawalTooSmall
	KindStakeLamportsNotEqualToMinimum
	KindSlippageExceeded

	// Validator lifecycle
	KindValidatorAlreadyAdded
	KindValidatorNotFound
	KindTooManyValidators
	KindTransientAccountInUse
	KindTooManyPoolTokensRequested
	KindIncorrectDepositVoteAddress
	KindIncorrectWithdrawVoteAddress

	// Epoch / ordering
	KindStakeListOutOfDate
	KindStakeListAndPoolOutOfDate
	KindStakeNotUpdatedYet

	// Session flow
	KindUserStakeNotActive
	KindInvalidSession
	KindSessionExpired
)

var kindNames = map[Kind]string{
	KindUnknown:                         "Unknown",
	KindAlreadyInUse:                    "AlreadyInUse",
	KindInvalidProgramAddress:           "InvalidProgramAddress",
	KindInvalidState:                    "InvalidState",
	KindAccountNotRentExempt:            "AccountNotRentExempt",
	KindWrongAccountMint:                "WrongAccountMint",
	KindWrongManager:                    "WrongManager",
	KindWrongStaker:                     "WrongStaker",
	KindCalculationFailure:              "CalculationFailure",
	KindFeeTooHigh:                      "FeeTooHigh",
	KindFeeIncreaseTooHigh:              "FeeIncreaseTooHigh",
	KindDepositTooSmall:                 "DepositTooSmall",
	KindWithdrawalTooSmall:              "WithdrawalTooSmall",
	KindStakeLamportsNotEqualToMinimum:  "StakeLamportsNotEqualToMinimum",
	KindSlippageExceeded:                "SlippageExceeded",
	KindValidatorAlreadyAdded:           "ValidatorAlreadyAdded",
	KindValidatorNotFound:               "ValidatorNotFound",
	KindTooManyValidators:               "TooManyValidators",
	KindTransientAccountInUse:           "TransientAccountInUse",
	KindTooManyPoolTokensRequested:      "TooManyPoolTokensRequested",
	KindIncorrectDepositVoteAddress:     "IncorrectDepositVoteAddress",
	KindIncorrectWithdrawVoteAddress:    "IncorrectWithdrawVoteAddress",
	KindStakeListOutOfDate:              "StakeListOutOfDate",
	KindStakeListAndPoolOutOfDate:       "StakeListAndPoolOutOfDate",
	KindStakeNotUpdatedYet:              "StakeNotUpdatedYet",
	KindUserStakeNotActive:              "UserStakeNotActive",
	KindInvalidSession:                  "InvalidSession",
	KindSessionExpired:                  "SessionExpired",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Error is the carrier every core operation returns on a recoverable
// failure. The discriminant is Kind; Msg carries operator-facing
// detail that must never be matched on.
type Error struct {
	Kind Kind
	Msg  string
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Kind is not an error value, so errors.Is cannot match on it; callers
// compare kinds through KindOf.

// KindOf unwraps err looking for a *Error and returns its Kind, or
// KindUnknown if err does not carry one.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// Wrap attaches a Kind to an arbitrary lower-level error, folding the
// original error's text into Msg.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	if msg == "" {
		msg = err.Error()
	} else {
		msg = msg + ": " + err.Error()
	}
	return &Error{Kind: kind, Msg: msg}
}
