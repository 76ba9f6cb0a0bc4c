// Package instruction implements the external interface: a single
// dispatch entry point keyed by the leading tag byte, with fixed
// little-endian payload layouts, method-table style.
package instruction

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/computeunits"
	"github.com/Tempest-Finance/fogo-stake-pool/epoch"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepool"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

// Accounts carries every account role any variant might reference.
// The wire shape is an opaque accounts[] array; a real runtime
// adapter is responsible for picking the right positional accounts[]
// entries into these named fields per tag before calling Dispatch.
type Accounts struct {
	Caller accountstate.Address

	Vote                  accountstate.Address
	DestVote              accountstate.Address
	ValidatorStakeAccount accountstate.Address
	DepositStakeAccount   accountstate.Address
	DestinationStake      accountstate.Address
	UserTokenAccount      accountstate.Address
	Referrer              *accountstate.Address

	Funder        accountstate.Address
	Destination   accountstate.Address
	NewManager    accountstate.Address
	NewFeeAccount accountstate.Address
	NewStaker     accountstate.Address
	NewAuthority  *accountstate.Address

	ReserveLamports uint64

	SessionAddr          accountstate.Address
	UserWallet           accountstate.Address
	UserWrappedNative    accountstate.Address
	FeePayer             accountstate.Address
	RecipientTokenAddr   accountstate.Address
	RecipientTokenExists bool
	AtaRentLamports      uint64
}

// Dispatch reads data[0] as the variant tag, decodes the remaining
// bytes per that variant's fixed layout, and invokes the matching
// stakepool.Pool operation.
func Dispatch(p *stakepool.Pool, accts Accounts, data []byte, meter *computeunits.Meter) error {
	if len(data) < 1 {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "empty instruction data")
	}
	tag := Tag(data[0])
	payload := data[1:]

	switch tag {
	case TagUpdateValidatorListBalance:
		pl, err := DecodeUpdateValidatorListBalance(payload)
		if err != nil {
			return decodeErr(err)
		}
		_, err = epoch.UpdateValidatorListBalance(p, pl.StartIndex, pl.NoMerge, meter)
		return err

	case TagUpdateStakePoolBalance:
		return epoch.UpdateStakePoolBalance(p, accts.ReserveLamports)

	case TagCleanupRemovedValidatorEntries:
		epoch.CleanupRemovedValidatorEntries(p)
		return nil

	case TagAddValidatorToPool:
		return p.AddValidatorToPool(accts.Caller, accts.Vote, accts.ValidatorStakeAccount, 0)

	case TagRemoveValidatorFromPool:
		return p.RemoveValidatorFromPool(accts.Caller, accts.Vote)

	case TagIncreaseValidatorStake:
		lamports, rest, err := decodeU64(payload)
		if err != nil {
			return decodeErr(err)
		}
		seed, _, err := decodeU64(rest)
		if err != nil {
			return decodeErr(err)
		}
		return p.IncreaseValidatorStake(accts.Caller, accts.Vote, lamports, seed)

	case TagDecreaseValidatorStake:
		lamports, rest, err := decodeU64(payload)
		if err != nil {
			return decodeErr(err)
		}
		seed, _, err := decodeU64(rest)
		if err != nil {
			return decodeErr(err)
		}
		return p.DecreaseValidatorStake(accts.Caller, accts.Vote, lamports, seed)

	case TagIncreaseAdditionalValidatorStake:
		pl, err := DecodeIncreaseAdditionalValidatorStake(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.IncreaseAdditionalValidatorStake(accts.Caller, accts.Vote, pl.Lamports, pl.TransientSeed, pl.EphemeralSeed)

	case TagDecreaseAdditionalValidatorStake:
		pl, err := DecodeDecreaseAdditionalValidatorStake(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.DecreaseAdditionalValidatorStake(accts.Caller, accts.Vote, pl.Lamports, pl.TransientSeed, pl.EphemeralSeed)

	case TagRedelegate:
		pl, err := DecodeRedelegate(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.Redelegate(accts.Caller, accts.Vote, accts.DestVote, pl.Lamports, pl.EphemeralSeed, pl.DestinationTransientSeed)

	case TagDepositStake:
		return p.DepositStake(accts.Caller, accts.Vote, accts.DepositStakeAccount, accts.UserTokenAccount, accts.Referrer)

	case TagWithdrawStake:
		pl, err := DecodeWithdrawStake(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.WithdrawStake(accts.Caller, accts.Vote, accts.UserTokenAccount, accts.DestinationStake, pl.PoolTokens)

	case TagDepositSol:
		pl, err := DecodeDepositSol(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.DepositSol(accts.Funder, accts.UserTokenAccount, pl.Lamports, accts.Referrer)

	case TagWithdrawSol:
		pl, err := DecodeWithdrawSol(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.WithdrawSol(accts.Caller, accts.UserTokenAccount, accts.Destination, pl.PoolTokens)

	case TagSetManager:
		return p.SetManager(accts.Caller, accts.NewManager, accts.NewFeeAccount)

	case TagSetStaker:
		return p.SetStaker(accts.Caller, accts.NewStaker)

	case TagSetFee:
		pl, err := DecodeSetFee(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.SetFee(accts.Caller, pl.Target, pl.Value)

	case TagSetFundingAuthority:
		pl, err := DecodeSetFundingAuthority(payload)
		if err != nil {
			return decodeErr(err)
		}
		var authority *accountstate.Address
		if pl.Authority.Valid {
			v := pl.Authority.Value
			authority = &v
		}
		return p.SetFundingAuthority(accts.Caller, pl.Kind, authority)

	case TagDepositWsolWithSession:
		pl, err := DecodeDepositWsolWithSession(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.DepositWsolWithSession(stakepool.DepositWsolWithSessionParams{
			SessionAddr:          accts.SessionAddr,
			UserWallet:           accts.UserWallet,
			UserWrappedNative:    accts.UserWrappedNative,
			FeePayer:             accts.FeePayer,
			RecipientTokenAddr:   accts.RecipientTokenAddr,
			RecipientTokenExists: accts.RecipientTokenExists,
			AtaRentLamports:      accts.AtaRentLamports,
			Amount:               pl.Lamports,
			MinPoolTokensOut:     pl.MinOut,
			Referrer:             accts.Referrer,
		})

	case TagWithdrawWsolWithSession:
		pl, err := DecodeWithdrawWsolWithSession(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.WithdrawWsolWithSession(stakepool.WithdrawWsolWithSessionParams{
			SessionAddr:       accts.SessionAddr,
			UserWallet:        accts.UserWallet,
			UserWrappedNative: accts.UserWrappedNative,
			FeePayer:          accts.FeePayer,
			UserTokenAccount:  accts.UserTokenAccount,
			PoolTokens:        pl.PoolTokens,
			MinLamportsOut:    pl.MinOut,
		})

	case TagWithdrawStakeWithSession:
		pl, err := DecodeWithdrawStakeWithSession(payload)
		if err != nil {
			return decodeErr(err)
		}
		_, err = p.WithdrawStakeWithSession(accts.SessionAddr, accts.UserWallet, accts.Vote, pl.PoolTokens, pl.MinLamports, pl.Seed)
		return err

	case TagWithdrawFromStakeAccountWithSession:
		pl, err := DecodeWithdrawFromStakeAccountWithSession(payload)
		if err != nil {
			return decodeErr(err)
		}
		return p.WithdrawFromStakeAccountWithSession(accts.SessionAddr, accts.UserWallet, pl.Seed, pl.LamportsOrMax)

	default:
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "unrecognized instruction tag")
	}
}

// DispatchInitialize handles the Initialize variant separately from
// Dispatch: every other variant mutates an existing *stakepool.Pool,
// but Initialize constructs one from scratch, so it returns the new
// pool rather than fitting the uniform error-only signature above.
func DispatchInitialize(programID, poolAddress accountstate.Address, params stakepool.InitializeParams, deps stakepool.Dependencies, data []byte) (*stakepool.Pool, error) {
	if len(data) < 1 || Tag(data[0]) != TagInitialize {
		return nil, stakepoolerr.New(stakepoolerr.KindInvalidState, "expected Initialize tag")
	}
	return stakepool.Initialize(programID, poolAddress, params, deps)
}
