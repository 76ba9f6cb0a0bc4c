package stakepool

import (
	"github.com/Tempest-Finance/fogo-stake-pool/accountstate"
	"github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"
	"github.com/Tempest-Finance/fogo-stake-pool/poolaccounting"
	"github.com/Tempest-Finance/fogo-stake-pool/stakepoolerr"
)

func (p *Pool) tokensForDeposit(lamports uint64) (uint64, error) {
	tokens, err := poolaccounting.TokensForDeposit(lamports, p.Record)
	if err != nil {
		return 0, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "tokens for deposit")
	}
	return tokens, nil
}

func (p *Pool) lamportsForWithdraw(tokens uint64) (uint64, error) {
	lamports, err := poolaccounting.LamportsForWithdraw(tokens, p.Record)
	if err != nil {
		return 0, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "lamports for withdraw")
	}
	return lamports, nil
}

func (p *Pool) stakeWithdrawalFee(tokens uint64) (uint64, error) {
	fee, err := poolaccounting.StakeWithdrawalFee(p.Record, tokens)
	if err != nil {
		return 0, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "stake withdrawal fee")
	}
	return fee, nil
}

func (p *Pool) solWithdrawalFee(tokens uint64) (uint64, error) {
	fee, err := poolaccounting.SolWithdrawalFee(p.Record, tokens)
	if err != nil {
		return 0, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "sol withdrawal fee")
	}
	return fee, nil
}

func (p *Pool) splitSolDepositFee(newTokens uint64) (feeTokens, referralTokens, userTokens uint64, err error) {
	feeTokens, err = poolaccounting.SolDepositFee(p.Record, newTokens)
	if err != nil {
		return 0, 0, 0, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "sol deposit fee")
	}
	referralTokens, err = poolaccounting.SolReferral(p.Record, feeTokens)
	if err != nil {
		return 0, 0, 0, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "sol referral split")
	}
	return feeTokens, referralTokens, newTokens - feeTokens, nil
}

func (p *Pool) splitStakeDepositFee(newTokens uint64) (feeTokens, referralTokens, userTokens uint64, err error) {
	feeTokens, err = poolaccounting.StakeDepositFee(p.Record, newTokens)
	if err != nil {
		return 0, 0, 0, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "stake deposit fee")
	}
	referralTokens, err = poolaccounting.StakeReferral(p.Record, feeTokens)
	if err != nil {
		return 0, 0, 0, stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "stake referral split")
	}
	return feeTokens, referralTokens, newTokens - feeTokens, nil
}

// mintDepositTokens mints userTokens to the depositor, (feeTokens -
// referralTokens) to the manager, and referralTokens to referrer when
// present, per DepositSol contract.
func (p *Pool) mintDepositTokens(userTokenAccount accountstate.Address, referrer *accountstate.Address, userTokens, feeTokens, referralTokens uint64) error {
	if err := p.Deps.Token.MintTo(p.Record.PoolMint, userTokenAccount, userTokens); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "minting user tokens")
	}
	managerTokens := feeTokens - referralTokens
	if managerTokens > 0 {
		if err := p.Deps.Token.MintTo(p.Record.PoolMint, p.Record.ManagerFeeAccount, managerTokens); err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "minting manager fee tokens")
		}
	}
	if referralTokens > 0 && referrer != nil {
		if err := p.Deps.Token.MintTo(p.Record.PoolMint, *referrer, referralTokens); err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "minting referral tokens")
		}
	}
	minted, err := fixedpoint.SafeAdd64(userTokens, managerTokens)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "summing minted tokens")
	}
	minted, err = fixedpoint.SafeAdd64(minted, referralTokens)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "summing minted tokens")
	}
	total, err := fixedpoint.SafeAdd64(p.Record.PoolTokenSupply, minted)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "accumulating pool token supply")
	}
	p.Record.PoolTokenSupply = total
	return nil
}

// DepositSol moves amount lamports from funder into the reserve and
// mints pool tokens net of the sol deposit fee and referral split.
func (p *Pool) DepositSol(funder, userTokenAccount accountstate.Address, amount uint64, referrer *accountstate.Address) error {
	if err := p.requireCurrent(); err != nil {
		return err
	}
	if amount == 0 {
		return stakepoolerr.New(stakepoolerr.KindDepositTooSmall, "")
	}
	if p.Record.SolDepositAuthority.Valid && !p.Record.SolDepositAuthority.Value.Equal(funder) {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "sol deposit authority required")
	}

	newTokens, err := p.tokensForDeposit(amount)
	if err != nil {
		return err
	}
	if newTokens == 0 {
		return stakepoolerr.New(stakepoolerr.KindDepositTooSmall, "")
	}
	feeTokens, referralTokens, userTokens, err := p.splitSolDepositFee(newTokens)
	if err != nil {
		return err
	}
	if userTokens == 0 {
		return stakepoolerr.New(stakepoolerr.KindDepositTooSmall, "")
	}

	if err := p.Deps.Token.Transfer(funder, p.Record.ReserveStake, amount); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "moving lamports to reserve")
	}
	if err := p.mintDepositTokens(userTokenAccount, referrer, userTokens, feeTokens, referralTokens); err != nil {
		return err
	}

	total, err := fixedpoint.SafeAdd64(p.Record.TotalLamports, amount)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "accumulating total lamports")
	}
	p.Record.TotalLamports = total
	return nil
}

// WithdrawSol burns poolTokens (net of the sol withdrawal fee, which
// is instead transferred to the manager) and releases the
// corresponding lamports from the reserve.
func (p *Pool) WithdrawSol(owner, userTokenAccount, destination accountstate.Address, poolTokens uint64) error {
	if err := p.requireCurrent(); err != nil {
		return err
	}
	if p.Record.SolWithdrawAuthority.Valid && !p.Record.SolWithdrawAuthority.Value.Equal(owner) {
		return stakepoolerr.New(stakepoolerr.KindInvalidState, "sol withdraw authority required")
	}

	fee, err := p.solWithdrawalFee(poolTokens)
	if err != nil {
		return err
	}
	netTokens := poolTokens - fee
	lamports, err := p.lamportsForWithdraw(netTokens)
	if err != nil {
		return err
	}
	if lamports == 0 {
		return stakepoolerr.New(stakepoolerr.KindWithdrawalTooSmall, "")
	}

	if err := p.Deps.Token.Burn(p.Record.PoolMint, userTokenAccount, netTokens); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "burning pool tokens")
	}
	if fee > 0 {
		if err := p.Deps.Token.Transfer(userTokenAccount, p.Record.ManagerFeeAccount, fee); err != nil {
			return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "paying manager withdrawal fee")
		}
	}
	if err := p.Deps.Token.Transfer(p.Record.ReserveStake, destination, lamports); err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "releasing reserve lamports")
	}

	totalLamports, err := fixedpoint.SafeSub64(p.Record.TotalLamports, lamports)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "decrementing total lamports")
	}
	supply, err := fixedpoint.SafeSub64(p.Record.PoolTokenSupply, netTokens)
	if err != nil {
		return stakepoolerr.Wrap(stakepoolerr.KindCalculationFailure, err, "decrementing pool token supply")
	}
	p.Record.TotalLamports = totalLamports
	p.Record.PoolTokenSupply = supply
	return nil
}
