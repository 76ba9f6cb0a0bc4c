// Package instruction implements the external interface: a single
// dispatch entry point keyed by the leading tag byte, with fixed
// little-endian payload layouts, method-table style.
package instruction

// Tag is the instruction variant discriminant: data[0] on the wire.
type Tag uint8

const (
	TagInitialize Tag = iota
	TagAddValidatorToPool
	TagRemoveValidatorFromPool
	TagDecreaseValidatorStake
	TagIncreaseValidatorStake
	TagUpdateValidatorListBalance
	TagUpdateStakePoolBalance
	TagCleanupRemovedValidatorEntries
	TagDepositStake
	TagWithdrawStake
	TagSetManager
	TagSetFee
	TagSetStaker
	TagDepositSol
	TagSetFundingAuthority
	TagWithdrawSol
	TagIncreaseAdditionalValidatorStake
	TagDecreaseAdditionalValidatorStake
	TagRedelegate
	TagDepositWsolWithSession
	TagWithdrawWsolWithSession
	TagWithdrawStakeWithSession
	TagWithdrawFromStakeAccountWithSession
)
