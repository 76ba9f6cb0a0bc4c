package instruction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
)

func TestDecodeUpdateValidatorListBalance(t *testing.T) {
	var buf []byte
	buf = codec.PutUint32(buf, 7)
	buf = append(buf, 1)

	pl, err := DecodeUpdateValidatorListBalance(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(7), pl.StartIndex)
	require.True(t, pl.NoMerge)
}

func TestDecodeUpdateValidatorListBalanceShort(t *testing.T) {
	_, err := DecodeUpdateValidatorListBalance([]byte{1, 2})
	require.Error(t, err)
}

func TestDecodeWithdrawStake(t *testing.T) {
	var buf []byte
	buf = codec.PutUint64(buf, 123456)
	pl, err := DecodeWithdrawStake(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(123456), pl.PoolTokens)
}

func TestDecodeSetFee(t *testing.T) {
	var buf []byte
	buf = append(buf, byte(2))
	buf = codec.EncodeFee(fixedpoint.Ratio{Numerator: 3, Denominator: 100}, buf)

	pl, err := DecodeSetFee(buf)
	require.NoError(t, err)
	require.EqualValues(t, 2, pl.Target)
	require.Equal(t, uint64(3), pl.Value.Numerator)
	require.Equal(t, uint64(100), pl.Value.Denominator)
}

func TestDecodeSetFundingAuthority(t *testing.T) {
	addr := codec.OptionAddress{Valid: true}
	addr.Value[0] = 0xAB

	var buf []byte
	buf = append(buf, byte(1))
	buf = addr.Encode(buf)

	pl, err := DecodeSetFundingAuthority(buf)
	require.NoError(t, err)
	require.EqualValues(t, 1, pl.Kind)
	require.True(t, pl.Authority.Valid)
	require.Equal(t, byte(0xAB), pl.Authority.Value[0])
}

func TestDecodeWithdrawStakeWithSession(t *testing.T) {
	var buf []byte
	buf = codec.PutUint64(buf, 10)
	buf = codec.PutUint64(buf, 9)
	buf = codec.PutUint64(buf, 42)

	pl, err := DecodeWithdrawStakeWithSession(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(10), pl.PoolTokens)
	require.Equal(t, uint64(9), pl.MinLamports)
	require.Equal(t, uint64(42), pl.Seed)
}

func TestDecodeWithdrawFromStakeAccountWithSession(t *testing.T) {
	var buf []byte
	buf = codec.PutUint64(buf, ^uint64(0))
	buf = codec.PutUint64(buf, 5)

	pl, err := DecodeWithdrawFromStakeAccountWithSession(buf)
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), pl.LamportsOrMax)
	require.Equal(t, uint64(5), pl.Seed)
}
