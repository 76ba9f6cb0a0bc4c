package codec

import "github.com/Tempest-Finance/fogo-stake-pool/accountstate"

// AccountType discriminates the pool record from the validator-list
// record (and an uninitialised account) in the first byte of each.
type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypePool
	AccountTypeValidatorList
)

// Pool is the singleton pool record Optional
// authorities are tagged variants so every field stays at a fixed
// offset whether or not it is set.
type Pool struct {
	AccountType AccountType

	Manager Address32
	Staker  Address32

	StakeDepositAuthority accountstate.Address
	WithdrawAuthorityBump uint8

	ValidatorList     accountstate.Address
	ReserveStake      accountstate.Address
	PoolMint          accountstate.Address
	ManagerFeeAccount accountstate.Address
	TokenProgramID    accountstate.Address

	TotalLamports   uint64
	PoolTokenSupply uint64

	LastUpdateEpoch uint64

	LockupUnixTimestamp int64
	LockupEpoch         uint64
	LockupCustodian     accountstate.Address

	EpochFee            Fee
	EpochFeeNext        FutureFee
	StakeDepositFee     Fee
	StakeWithdrawalFee  Fee
	StakeWithdrawalNext FutureFee
	SolDepositFee       Fee
	SolWithdrawalFee    Fee
	SolWithdrawalNext   FutureFee
	StakeReferralFee    uint8
	SolReferralFee      uint8

	PreferredDepositValidator  OptionAddress
	PreferredWithdrawValidator OptionAddress

	SolDepositAuthority  OptionAddress
	SolWithdrawAuthority OptionAddress

	LastEpochPoolTokenSupply uint64
	LastEpochTotalLamports   uint64
}

// Address32 is a plain alias kept distinct from accountstate.Address
// only for readability at call sites that specifically mean "signer
// authority" rather than "any account".
type Address32 = accountstate.Address

func (p Pool) Encode() []byte {
	buf := make([]byte, 0, 512)
	buf = append(buf, byte(p.AccountType))
	buf = append(buf, p.Manager[:]...)
	buf = append(buf, p.Staker[:]...)
	buf = append(buf, p.StakeDepositAuthority[:]...)
	buf = append(buf, p.WithdrawAuthorityBump)
	buf = append(buf, p.ValidatorList[:]...)
	buf = append(buf, p.ReserveStake[:]...)
	buf = append(buf, p.PoolMint[:]...)
	buf = append(buf, p.ManagerFeeAccount[:]...)
	buf = append(buf, p.TokenProgramID[:]...)
	buf = PutUint64(buf, p.TotalLamports)
	buf = PutUint64(buf, p.PoolTokenSupply)
	buf = PutUint64(buf, p.LastUpdateEpoch)
	buf = PutUint64(buf, uint64(p.LockupUnixTimestamp))
	buf = PutUint64(buf, p.LockupEpoch)
	buf = append(buf, p.LockupCustodian[:]...)
	buf = EncodeFee(p.EpochFee, buf)
	buf = p.EpochFeeNext.Encode(buf)
	buf = EncodeFee(p.StakeDepositFee, buf)
	buf = EncodeFee(p.StakeWithdrawalFee, buf)
	buf = p.StakeWithdrawalNext.Encode(buf)
	buf = EncodeFee(p.SolDepositFee, buf)
	buf = EncodeFee(p.SolWithdrawalFee, buf)
	buf = p.SolWithdrawalNext.Encode(buf)
	buf = append(buf, p.StakeReferralFee, p.SolReferralFee)
	buf = p.PreferredDepositValidator.Encode(buf)
	buf = p.PreferredWithdrawValidator.Encode(buf)
	buf = p.SolDepositAuthority.Encode(buf)
	buf = p.SolWithdrawAuthority.Encode(buf)
	buf = PutUint64(buf, p.LastEpochPoolTokenSupply)
	buf = PutUint64(buf, p.LastEpochTotalLamports)
	return buf
}

func DecodePool(b []byte) (Pool, error) {
	var p Pool
	off := 0
	need := func(n int) error {
		if len(b) < off+n {
			return ErrShortBuffer
		}
		return nil
	}
	readAddr := func() (accountstate.Address, error) {
		if err := need(32); err != nil {
			return accountstate.Address{}, err
		}
		var a accountstate.Address
		copy(a[:], b[off:off+32])
		off += 32
		return a, nil
	}
	readU64 := func() (uint64, error) {
		if err := need(8); err != nil {
			return 0, err
		}
		v, _ := GetUint64(b[off:])
		off += 8
		return v, nil
	}

	if err := need(1); err != nil {
		return p, err
	}
	p.AccountType = AccountType(b[off])
	off++

	var err error
	if p.Manager, err = readAddr(); err != nil {
		return p, err
	}
	if p.Staker, err = readAddr(); err != nil {
		return p, err
	}
	if p.StakeDepositAuthority, err = readAddr(); err != nil {
		return p, err
	}
	if err := need(1); err != nil {
		return p, err
	}
	p.WithdrawAuthorityBump = b[off]
	off++
	if p.ValidatorList, err = readAddr(); err != nil {
		return p, err
	}
	if p.ReserveStake, err = readAddr(); err != nil {
		return p, err
	}
	if p.PoolMint, err = readAddr(); err != nil {
		return p, err
	}
	if p.ManagerFeeAccount, err = readAddr(); err != nil {
		return p, err
	}
	if p.TokenProgramID, err = readAddr(); err != nil {
		return p, err
	}
	if p.TotalLamports, err = readU64(); err != nil {
		return p, err
	}
	if p.PoolTokenSupply, err = readU64(); err != nil {
		return p, err
	}
	if p.LastUpdateEpoch, err = readU64(); err != nil {
		return p, err
	}
	lockupTs, err := readU64()
	if err != nil {
		return p, err
	}
	p.LockupUnixTimestamp = int64(lockupTs)
	if p.LockupEpoch, err = readU64(); err != nil {
		return p, err
	}
	if p.LockupCustodian, err = readAddr(); err != nil {
		return p, err
	}

	decodeFeeField := func() (Fee, error) {
		if err := need(feeLen); err != nil {
			return Fee{}, err
		}
		f, n, err := DecodeFee(b[off:])
		off += n
		return f, err
	}
	decodeFutureField := func() (FutureFee, error) {
		if err := need(futureFeeLen); err != nil {
			return FutureFee{}, err
		}
		f, n, err := DecodeFutureFee(b[off:])
		off += n
		return f, err
	}

	if p.EpochFee, err = decodeFeeField(); err != nil {
		return p, err
	}
	if p.EpochFeeNext, err = decodeFutureField(); err != nil {
		return p, err
	}
	if p.StakeDepositFee, err = decodeFeeField(); err != nil {
		return p, err
	}
	if p.StakeWithdrawalFee, err = decodeFeeField(); err != nil {
		return p, err
	}
	if p.StakeWithdrawalNext, err = decodeFutureField(); err != nil {
		return p, err
	}
	if p.SolDepositFee, err = decodeFeeField(); err != nil {
		return p, err
	}
	if p.SolWithdrawalFee, err = decodeFeeField(); err != nil {
		return p, err
	}
	if p.SolWithdrawalNext, err = decodeFutureField(); err != nil {
		return p, err
	}

	if err := need(2); err != nil {
		return p, err
	}
	p.StakeReferralFee = b[off]
	p.SolReferralFee = b[off+1]
	off += 2

	decodeOption := func() (OptionAddress, error) {
		if err := need(optionAddressLen); err != nil {
			return OptionAddress{}, err
		}
		o, n, err := DecodeOptionAddress(b[off:])
		off += n
		return o, err
	}

	if p.PreferredDepositValidator, err = decodeOption(); err != nil {
		return p, err
	}
	if p.PreferredWithdrawValidator, err = decodeOption(); err != nil {
		return p, err
	}
	if p.SolDepositAuthority, err = decodeOption(); err != nil {
		return p, err
	}
	if p.SolWithdrawAuthority, err = decodeOption(); err != nil {
		return p, err
	}
	if p.LastEpochPoolTokenSupply, err = readU64(); err != nil {
		return p, err
	}
	if p.LastEpochTotalLamports, err = readU64(); err != nil {
		return p, err
	}

	return p, nil
}

// IsValid reports whether a decoded record is tagged AccountTypePool.
func (p Pool) IsValid() bool {
	return p.AccountType == AccountTypePool
}

func (p Pool) IsUninitialized() bool {
	return p.AccountType == AccountTypeUninitialized
}

// ValidatorListHeader precedes the packed ValidatorEntry array.
type ValidatorListHeader struct {
	AccountType   AccountType
	MaxValidators uint32
}

const ValidatorListHeaderLen = 1 + 4

func (h ValidatorListHeader) Encode() []byte {
	buf := make([]byte, 0, ValidatorListHeaderLen)
	buf = append(buf, byte(h.AccountType))
	buf = PutUint32(buf, h.MaxValidators)
	return buf
}

func DecodeValidatorListHeader(b []byte) (ValidatorListHeader, error) {
	if len(b) < ValidatorListHeaderLen {
		return ValidatorListHeader{}, ErrShortBuffer
	}
	maxV, _ := GetUint32(b[1:5])
	return ValidatorListHeader{AccountType: AccountType(b[0]), MaxValidators: maxV}, nil
}

// EncodeValidatorList writes the header followed by every entry
// back-to-back in the fixed packed layout, no per-entry framing.
func EncodeValidatorList(h ValidatorListHeader, entries []ValidatorEntry) []byte {
	buf := make([]byte, 0, ValidatorListHeaderLen+len(entries)*ValidatorEntryLen)
	buf = append(buf, h.Encode()...)
	for _, e := range entries {
		buf = append(buf, e.Encode()...)
	}
	return buf
}

// DecodeValidatorList reads a header plus as many packed entries as
// the remaining bytes hold. A trailing partial entry is ErrShortBuffer.
func DecodeValidatorList(b []byte) (ValidatorListHeader, []ValidatorEntry, error) {
	h, err := DecodeValidatorListHeader(b)
	if err != nil {
		return ValidatorListHeader{}, nil, err
	}
	rest := b[ValidatorListHeaderLen:]
	if len(rest)%ValidatorEntryLen != 0 {
		return ValidatorListHeader{}, nil, ErrShortBuffer
	}
	entries := make([]ValidatorEntry, 0, len(rest)/ValidatorEntryLen)
	for off := 0; off < len(rest); off += ValidatorEntryLen {
		e, err := DecodeValidatorEntry(rest[off:])
		if err != nil {
			return ValidatorListHeader{}, nil, err
		}
		entries = append(entries, e)
	}
	return h, entries, nil
}
