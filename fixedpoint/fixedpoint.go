// Package fixedpoint implements the stake pool's rounding-safe ratio
// arithmetic: fee application and the two exchange-rate conversions.
// Every intermediate product is widened through uint256 so a u64*u64
// multiply never overflows before the final division.
package fixedpoint

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ErrOverflow is returned whenever a computed result does not fit in
// a uint64; callers map this to stakepoolerr.KindCalculationFailure.
var ErrOverflow = errors.New("fixedpoint: result overflows uint64")

// SafeAdd64 and SafeSub64 guard the running-total accumulations
// (TotalLamports, PoolTokenSupply) against silent wraparound.
func SafeAdd64(a, b uint64) (uint64, error) {
	result, overflow := math.SafeAdd(a, b)
	if overflow {
		return 0, ErrOverflow
	}
	return result, nil
}

func SafeSub64(a, b uint64) (uint64, error) {
	result, underflow := math.SafeSub(a, b)
	if underflow {
		return 0, ErrOverflow
	}
	return result, nil
}

// Ratio is a numerator/denominator fee or conversion rate.
type Ratio struct {
	Numerator   uint64
	Denominator uint64
}

// Apply computes ceil(amount*numerator/denominator).
// Returns 0 if denominator is 0 (a ratio of 0/0 or x/0 degenerates to
// "no fee" rather than a division error).
func Apply(r Ratio, amount uint64) (uint64, error) {
	if r.Denominator == 0 {
		return 0, nil
	}
	num := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(r.Numerator))
	denom := uint256.NewInt(r.Denominator)

	sum, overflow := new(uint256.Int).AddOverflow(num, new(uint256.Int).Sub(denom, uint256.NewInt(1)))
	if overflow {
		return 0, ErrOverflow
	}
	result := new(uint256.Int).Div(sum, denom)
	if !result.IsUint64() {
		return 0, ErrOverflow
	}
	return result.Uint64(), nil
}

// MulDivFloor computes floor(a*b/c), used by the exchange-rate
// conversions below. Returns (0, false) if c == 0.
func MulDivFloor(a, b, c uint64) (uint64, bool, error) {
	if c == 0 {
		return 0, false, nil
	}
	num := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	result := new(uint256.Int).Div(num, uint256.NewInt(c))
	if !result.IsUint64() {
		return 0, false, ErrOverflow
	}
	return result.Uint64(), true, nil
}

// TokensForDeposit converts a lamport deposit into newly minted pool
// tokens. Bootstrap case (empty pool) mints 1:1.
func TokensForDeposit(lamports, totalLamports, poolTokenSupply uint64) (uint64, error) {
	if totalLamports == 0 || poolTokenSupply == 0 {
		return lamports, nil
	}
	tokens, _, err := MulDivFloor(lamports, poolTokenSupply, totalLamports)
	return tokens, err
}

// LamportsForWithdraw converts pool tokens being burned into lamports
// to release, with the dust-to-zero rule: if tokens*totalLamports <
// poolTokenSupply the result is 0 rather than erroring.
func LamportsForWithdraw(tokens, totalLamports, poolTokenSupply uint64) (uint64, error) {
	if poolTokenSupply == 0 {
		return 0, nil
	}
	num := new(uint256.Int).Mul(uint256.NewInt(tokens), uint256.NewInt(totalLamports))
	if num.Cmp(uint256.NewInt(poolTokenSupply)) < 0 {
		return 0, nil
	}
	result := new(uint256.Int).Div(num, uint256.NewInt(poolTokenSupply))
	if !result.IsUint64() {
		return 0, ErrOverflow
	}
	return result.Uint64(), nil
}

// LamportsPerPoolToken returns ceil(totalLamports/poolTokenSupply),
// the pool's exchange rate. Returns 0 for an empty pool.
func LamportsPerPoolToken(totalLamports, poolTokenSupply uint64) (uint64, error) {
	if poolTokenSupply == 0 {
		return 0, nil
	}
	return Apply(Ratio{Numerator: 1, Denominator: poolTokenSupply}, totalLamports)
}

// PercentOf computes floor(amount*pct/100), used for stake/sol
// referral-fee splits (pct in 0..100).
func PercentOf(amount uint64, pct uint8) (uint64, error) {
	v, _, err := MulDivFloor(amount, uint64(pct), 100)
	return v, err
}
