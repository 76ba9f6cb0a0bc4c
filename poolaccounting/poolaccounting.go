// Package poolaccounting implements exchange-rate conversions, fee
// assessment, epoch-fee minting, and the two-epoch fee-change
// countdown, following an accumulate-then-apply pattern.
package poolaccounting

import (
	"github.com/holiman/uint256"

	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

// MaxWithdrawalFeeIncrease and WithdrawalBaselineFee bound a
// withdrawal-fee increase via SetFee
var (
	MaxWithdrawalFeeIncreaseNumerator   uint64 = 3
	MaxWithdrawalFeeIncreaseDenominator uint64 = 2
	WithdrawalBaselineFee                      = fixedpoint.Ratio{Numerator: 1, Denominator: 1000}
)

// TokensForDeposit mirrors tokens_for_deposit.
func TokensForDeposit(lamports uint64, p codec.Pool) (uint64, error) {
	return fixedpoint.TokensForDeposit(lamports, p.TotalLamports, p.PoolTokenSupply)
}

// LamportsForWithdraw mirrors lamports_for_withdraw.
func LamportsForWithdraw(tokens uint64, p codec.Pool) (uint64, error) {
	return fixedpoint.LamportsForWithdraw(tokens, p.TotalLamports, p.PoolTokenSupply)
}

// StakeDepositFee, StakeWithdrawalFee, SolDepositFee, SolWithdrawalFee
// each apply the corresponding ratio to the input amount.
func StakeDepositFee(p codec.Pool, minted uint64) (uint64, error) {
	return fixedpoint.Apply(p.StakeDepositFee, minted)
}

func StakeWithdrawalFee(p codec.Pool, tokens uint64) (uint64, error) {
	return fixedpoint.Apply(p.StakeWithdrawalFee, tokens)
}

func SolDepositFee(p codec.Pool, minted uint64) (uint64, error) {
	return fixedpoint.Apply(p.SolDepositFee, minted)
}

func SolWithdrawalFee(p codec.Pool, tokens uint64) (uint64, error) {
	return fixedpoint.Apply(p.SolWithdrawalFee, tokens)
}

// StakeReferral and SolReferral split a fee amount by the pool's
// referral percentage
func StakeReferral(p codec.Pool, depositFee uint64) (uint64, error) {
	return fixedpoint.PercentOf(depositFee, p.StakeReferralFee)
}

func SolReferral(p codec.Pool, depositFee uint64) (uint64, error) {
	return fixedpoint.PercentOf(depositFee, p.SolReferralFee)
}

// EpochFeeTokens computes the manager's epoch-fee mint in pool tokens
// against the post-reward book, per epoch_fee formula:
// let L' = total+reward, F = apply(epoch_fee, reward); if L'==F or
// supply==0, mint reward tokens; else mint supply*F/(L'-F) tokens.
func EpochFeeTokens(p codec.Pool, reward uint64) (uint64, error) {
	if reward == 0 {
		return 0, nil
	}
	lPrime, err := fixedpoint.SafeAdd64(p.TotalLamports, reward)
	if err != nil {
		return 0, err
	}
	f, err := fixedpoint.Apply(p.EpochFee, reward)
	if err != nil {
		return 0, err
	}
	if lPrime == f || p.PoolTokenSupply == 0 {
		return reward, nil
	}
	denom := lPrime - f
	minted, _, err := fixedpoint.MulDivFloor(p.PoolTokenSupply, f, denom)
	return minted, err
}

// TickFeeSchedules advances every delayed-fee countdown by one epoch
// pass and installs any value whose countdown has reached None.
// p is taken by value; the updated copy is returned.
func TickFeeSchedules(p codec.Pool) codec.Pool {
	next, installed := p.EpochFeeNext.Tick()
	p.EpochFeeNext = next
	if installed != nil {
		p.EpochFee = *installed
	}

	next, installed = p.StakeWithdrawalNext.Tick()
	p.StakeWithdrawalNext = next
	if installed != nil {
		p.StakeWithdrawalFee = *installed
	}

	next, installed = p.SolWithdrawalNext.Tick()
	p.SolWithdrawalNext = next
	if installed != nil {
		p.SolWithdrawalFee = *installed
	}

	return p
}

// ProposeWithdrawalFeeChange validates and schedules a withdrawal-fee
// change subject to rate limit: the proposed fee must
// not exceed current*MAX_WITHDRAWAL_FEE_INCREASE (current substituted
// by WITHDRAWAL_BASELINE_FEE when the live fee is zero).
func ProposeWithdrawalFeeChange(current fixedpoint.Ratio, proposed fixedpoint.Ratio) (codec.FutureFee, error) {
	baseline := current
	if baseline.Numerator == 0 {
		baseline = WithdrawalBaselineFee
	}

	// proposed <= baseline * MAX_WITHDRAWAL_FEE_INCREASE
	// <=> proposed.num * baseline.denom * maxDenom
	//     <= baseline.num * proposed.denom * maxNum
	// Cross-multiplied in 256 bits so the comparison never wraps.
	lhs := new(uint256.Int).Mul(uint256.NewInt(proposed.Numerator), uint256.NewInt(baseline.Denominator))
	lhs.Mul(lhs, uint256.NewInt(MaxWithdrawalFeeIncreaseDenominator))
	rhs := new(uint256.Int).Mul(uint256.NewInt(baseline.Numerator), uint256.NewInt(proposed.Denominator))
	rhs.Mul(rhs, uint256.NewInt(MaxWithdrawalFeeIncreaseNumerator))
	if baseline.Denominator != 0 && proposed.Denominator != 0 && lhs.Cmp(rhs) > 0 {
		return codec.FutureFee{}, stakepoolerr.New(stakepoolerr.KindFeeIncreaseTooHigh, "")
	}

	return codec.Propose(proposed), nil
}

// ValidateFeeNotTooHigh rejects a ratio greater than 1 (100%).
func ValidateFeeNotTooHigh(r fixedpoint.Ratio) error {
	if r.Denominator != 0 && r.Numerator > r.Denominator {
		return stakepoolerr.New(stakepoolerr.KindFeeTooHigh, "")
	}
	return nil
}
