package instruction

import (
	"github.com/Tempest-Finance/fogo-stake-pool/codec"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

func decodeU64(b []byte) (uint64, []byte, error) {
	v, err := codec.GetUint64(b)
	if err != nil {
		return 0, nil, err
	}
	return v, b[8:], nil
}

func decodeU32(b []byte) (uint32, []byte, error) {
	v, err := codec.GetUint32(b)
	if err != nil {
		return 0, nil, err
	}
	return v, b[4:], nil
}

func decodeBool(b []byte) (bool, []byte, error) {
	if len(b) < 1 {
		return false, nil, codec.ErrShortBuffer
	}
	return b[0] != 0, b[1:], nil
}

// UpdateValidatorListBalancePayload decodes
// UpdateValidatorListBalance(start_index: u32, no_merge: bool).
type UpdateValidatorListBalancePayload struct {
	StartIndex uint32
	NoMerge    bool
}

func DecodeUpdateValidatorListBalance(data []byte) (UpdateValidatorListBalancePayload, error) {
	start, rest, err := decodeU32(data)
	if err != nil {
		return UpdateValidatorListBalancePayload{}, err
	}
	noMerge, _, err := decodeBool(rest)
	if err != nil {
		return UpdateValidatorListBalancePayload{}, err
	}
	return UpdateValidatorListBalancePayload{StartIndex: start, NoMerge: noMerge}, nil
}

// WithdrawStakePayload decodes WithdrawStake(pool_tokens: u64).
type WithdrawStakePayload struct {
	PoolTokens uint64
}

func DecodeWithdrawStake(data []byte) (WithdrawStakePayload, error) {
	tokens, _, err := decodeU64(data)
	if err != nil {
		return WithdrawStakePayload{}, err
	}
	return WithdrawStakePayload{PoolTokens: tokens}, nil
}

// DepositSolPayload decodes DepositSol(lamports: u64).
type DepositSolPayload struct {
	Lamports uint64
}

func DecodeDepositSol(data []byte) (DepositSolPayload, error) {
	lamports, _, err := decodeU64(data)
	if err != nil {
		return DepositSolPayload{}, err
	}
	return DepositSolPayload{Lamports: lamports}, nil
}

// WithdrawSolPayload decodes WithdrawSol(pool_tokens: u64).
type WithdrawSolPayload struct {
	PoolTokens uint64
}

func DecodeWithdrawSol(data []byte) (WithdrawSolPayload, error) {
	tokens, _, err := decodeU64(data)
	if err != nil {
		return WithdrawSolPayload{}, err
	}
	return WithdrawSolPayload{PoolTokens: tokens}, nil
}

// SetFeePayload decodes SetFee(FeeType): one byte selecting the
// target, followed by the Fee payload.
type SetFeePayload struct {
	Target stakepool.FeeTarget
	Value  fixedpoint.Ratio
}

func DecodeSetFee(data []byte) (SetFeePayload, error) {
	if len(data) < 1 {
		return SetFeePayload{}, codec.ErrShortBuffer
	}
	fee, _, err := codec.DecodeFee(data[1:])
	if err != nil {
		return SetFeePayload{}, err
	}
	return SetFeePayload{Target: stakepool.FeeTarget(data[0]), Value: fee}, nil
}

// SetFundingAuthorityPayload decodes SetFundingAuthority(Kind): one
// byte selecting which optional authority, then an OptionAddress.
type SetFundingAuthorityPayload struct {
	Kind      stakepool.FundingAuthorityKind
	Authority codec.OptionAddress
}

func DecodeSetFundingAuthority(data []byte) (SetFundingAuthorityPayload, error) {
	if len(data) < 1 {
		return SetFundingAuthorityPayload{}, codec.ErrShortBuffer
	}
	opt, _, err := codec.DecodeOptionAddress(data[1:])
	if err != nil {
		return SetFundingAuthorityPayload{}, err
	}
	return SetFundingAuthorityPayload{Kind: stakepool.FundingAuthorityKind(data[0]), Authority: opt}, nil
}

// DepositWsolWithSessionPayload decodes
// DepositWsolWithSession(lamports: u64, min_out: u64).
type DepositWsolWithSessionPayload struct {
	Lamports uint64
	MinOut   uint64
}

func DecodeDepositWsolWithSession(data []byte) (DepositWsolWithSessionPayload, error) {
	lamports, rest, err := decodeU64(data)
	if err != nil {
		return DepositWsolWithSessionPayload{}, err
	}
	minOut, _, err := decodeU64(rest)
	if err != nil {
		return DepositWsolWithSessionPayload{}, err
	}
	return DepositWsolWithSessionPayload{Lamports: lamports, MinOut: minOut}, nil
}

// WithdrawWsolWithSessionPayload decodes
// WithdrawWsolWithSession(pool_tokens: u64, min_out: u64).
type WithdrawWsolWithSessionPayload struct {
	PoolTokens uint64
	MinOut     uint64
}

func DecodeWithdrawWsolWithSession(data []byte) (WithdrawWsolWithSessionPayload, error) {
	tokens, rest, err := decodeU64(data)
	if err != nil {
		return WithdrawWsolWithSessionPayload{}, err
	}
	minOut, _, err := decodeU64(rest)
	if err != nil {
		return WithdrawWsolWithSessionPayload{}, err
	}
	return WithdrawWsolWithSessionPayload{PoolTokens: tokens, MinOut: minOut}, nil
}

// WithdrawStakeWithSessionPayload decodes
// WithdrawStakeWithSession(pool_tokens: u64, min_lamports: u64, seed: u64).
type WithdrawStakeWithSessionPayload struct {
	PoolTokens  uint64
	MinLamports uint64
	Seed        uint64
}

func DecodeWithdrawStakeWithSession(data []byte) (WithdrawStakeWithSessionPayload, error) {
	tokens, rest, err := decodeU64(data)
	if err != nil {
		return WithdrawStakeWithSessionPayload{}, err
	}
	minLamports, rest, err := decodeU64(rest)
	if err != nil {
		return WithdrawStakeWithSessionPayload{}, err
	}
	seed, _, err := decodeU64(rest)
	if err != nil {
		return WithdrawStakeWithSessionPayload{}, err
	}
	return WithdrawStakeWithSessionPayload{PoolTokens: tokens, MinLamports: minLamports, Seed: seed}, nil
}

// WithdrawFromStakeAccountWithSessionPayload decodes
// WithdrawFromStakeAccountWithSession(lamports_or_max: u64, seed: u64).
type WithdrawFromStakeAccountWithSessionPayload struct {
	LamportsOrMax uint64
	Seed          uint64
}

func DecodeWithdrawFromStakeAccountWithSession(data []byte) (WithdrawFromStakeAccountWithSessionPayload, error) {
	lamports, rest, err := decodeU64(data)
	if err != nil {
		return WithdrawFromStakeAccountWithSessionPayload{}, err
	}
	seed, _, err := decodeU64(rest)
	if err != nil {
		return WithdrawFromStakeAccountWithSessionPayload{}, err
	}
	return WithdrawFromStakeAccountWithSessionPayload{LamportsOrMax: lamports, Seed: seed}, nil
}

// IncreaseAdditionalValidatorStakePayload decodes
// IncreaseAdditionalValidatorStake(lamports: u64, transient_seed: u64, ephemeral_seed: u64).
type IncreaseAdditionalValidatorStakePayload struct {
	Lamports      uint64
	TransientSeed uint64
	EphemeralSeed uint64
}

func DecodeIncreaseAdditionalValidatorStake(data []byte) (IncreaseAdditionalValidatorStakePayload, error) {
	lamports, rest, err := decodeU64(data)
	if err != nil {
		return IncreaseAdditionalValidatorStakePayload{}, err
	}
	transientSeed, rest, err := decodeU64(rest)
	if err != nil {
		return IncreaseAdditionalValidatorStakePayload{}, err
	}
	ephemeralSeed, _, err := decodeU64(rest)
	if err != nil {
		return IncreaseAdditionalValidatorStakePayload{}, err
	}
	return IncreaseAdditionalValidatorStakePayload{Lamports: lamports, TransientSeed: transientSeed, EphemeralSeed: ephemeralSeed}, nil
}

// DecreaseAdditionalValidatorStakePayload decodes
// DecreaseAdditionalValidatorStake(lamports: u64, transient_seed: u64, ephemeral_seed: u64).
type DecreaseAdditionalValidatorStakePayload struct {
	Lamports      uint64
	TransientSeed uint64
	EphemeralSeed uint64
}

func DecodeDecreaseAdditionalValidatorStake(data []byte) (DecreaseAdditionalValidatorStakePayload, error) {
	lamports, rest, err := decodeU64(data)
	if err != nil {
		return DecreaseAdditionalValidatorStakePayload{}, err
	}
	transientSeed, rest, err := decodeU64(rest)
	if err != nil {
		return DecreaseAdditionalValidatorStakePayload{}, err
	}
	ephemeralSeed, _, err := decodeU64(rest)
	if err != nil {
		return DecreaseAdditionalValidatorStakePayload{}, err
	}
	return DecreaseAdditionalValidatorStakePayload{Lamports: lamports, TransientSeed: transientSeed, EphemeralSeed: ephemeralSeed}, nil
}

// RedelegatePayload decodes
// Redelegate(lamports: u64, ephemeral_seed: u64, destination_transient_seed: u64).
type RedelegatePayload struct {
	Lamports                 uint64
	EphemeralSeed            uint64
	DestinationTransientSeed uint64
}

func DecodeRedelegate(data []byte) (RedelegatePayload, error) {
	lamports, rest, err := decodeU64(data)
	if err != nil {
		return RedelegatePayload{}, err
	}
	ephemeralSeed, rest, err := decodeU64(rest)
	if err != nil {
		return RedelegatePayload{}, err
	}
	destSeed, _, err := decodeU64(rest)
	if err != nil {
		return RedelegatePayload{}, err
	}
	return RedelegatePayload{Lamports: lamports, EphemeralSeed: ephemeralSeed, DestinationTransientSeed: destSeed}, nil
}

func decodeErr(err error) error {
	if err == nil {
		return nil
	}
	return stakepoolerr.Wrap(stakepoolerr.KindInvalidState, err, "decoding instruction payload")
}
