package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyCeilDivision(t *testing.T) {
	v, err := Apply(Ratio{Numerator: 1, Denominator: 100}, 150)
	require.NoError(t, err)
	require.Equal(t, uint64(2), v) // ceil(1.5) == 2
}

func TestApplyZeroDenominatorIsNoFee(t *testing.T) {
	v, err := Apply(Ratio{Numerator: 1, Denominator: 0}, 150)
	require.NoError(t, err)
	require.Equal(t, uint64(0), v)
}

func TestTokensForDepositBootstrap(t *testing.T) {
	tokens, err := TokensForDeposit(1_000_000_000, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000), tokens)
}

func TestTokensForDepositProRata(t *testing.T) {
	// pool has 2000 lamports backing 1000 tokens (2:1); depositing 100
	// lamports should mint floor(100*1000/2000) = 50 tokens.
	tokens, err := TokensForDeposit(100, 2000, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(50), tokens)
}

func TestLamportsForWithdrawDustRule(t *testing.T) {
	// 1 token * 1 lamport total < 1000 supply: dust, rounds to zero.
	lamports, err := LamportsForWithdraw(1, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(0), lamports)
}

func TestLamportsForWithdrawNormal(t *testing.T) {
	lamports, err := LamportsForWithdraw(500, 2000, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), lamports)
}

func TestRoundingFavoursPoolByAtMostOneLamport(t *testing.T) {
	// Deposit a then immediately withdraw the tokens minted: user
	// receives at least a-1 lamports back (deposit-then-withdraw rounding bound).
	const a = 999_999_937
	tokens, err := TokensForDeposit(a, 0, 0)
	require.NoError(t, err)
	lamports, err := LamportsForWithdraw(tokens, a, tokens)
	require.NoError(t, err)
	require.GreaterOrEqual(t, lamports, uint64(a-1))
	require.LessOrEqual(t, lamports, uint64(a))
}
