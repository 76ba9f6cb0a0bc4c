package codec

import "github.com/Tempest-Finance/fogo-stake-pool/fixedpoint"

// Fee is the wire representation of a numerator/denominator ratio.
type Fee = fixedpoint.Ratio

const feeLen = 16

func EncodeFee(f Fee, buf []byte) []byte {
	buf = PutUint64(buf, f.Numerator)
	buf = PutUint64(buf, f.Denominator)
	return buf
}

func DecodeFee(b []byte) (Fee, int, error) {
	if len(b) < feeLen {
		return Fee{}, 0, ErrShortBuffer
	}
	num, _ := GetUint64(b[0:8])
	den, _ := GetUint64(b[8:16])
	return Fee{Numerator: num, Denominator: den}, feeLen, nil
}

// CountdownState is the three-valued tag of the delayed-fee schedule:
// None (no change pending), One (one tick remaining until it becomes
// live), Two (two ticks remaining).
type CountdownState uint8

const (
	CountdownNone CountdownState = 0
	CountdownOne  CountdownState = 1
	CountdownTwo  CountdownState = 2
)

// FutureFee is the pending-change slot for one of the three
// epoch-delayed fees (epoch_fee, stake_withdrawal_fee,
// sol_withdrawal_fee). It is encoded as one tag byte followed by the
// Fee payload, which is written for every tag value (including None)
// so the slot has a fixed size. A single record covers
// both the live value and the pending one, and the tick logic lives
// in exactly one place (poolaccounting's epoch-pass tick).
type FutureFee struct {
	State CountdownState
	Value Fee
}

const futureFeeLen = 1 + feeLen

func (f FutureFee) Encode(buf []byte) []byte {
	buf = append(buf, byte(f.State))
	buf = EncodeFee(f.Value, buf)
	return buf
}

func DecodeFutureFee(b []byte) (FutureFee, int, error) {
	if len(b) < futureFeeLen {
		return FutureFee{}, 0, ErrShortBuffer
	}
	state := CountdownState(b[0])
	fee, _, err := DecodeFee(b[1:futureFeeLen])
	if err != nil {
		return FutureFee{}, 0, err
	}
	return FutureFee{State: state, Value: fee}, futureFeeLen, nil
}

// Tick advances the countdown by one epoch pass: Two->One, One->None
// (installing Value into the returned live fee), None stays None.
// Returns the updated FutureFee and, when the tick installs a new
// value, that value to be written into the live fee slot.
func (f FutureFee) Tick() (updated FutureFee, installed *Fee) {
	switch f.State {
	case CountdownTwo:
		return FutureFee{State: CountdownOne, Value: f.Value}, nil
	case CountdownOne:
		v := f.Value
		return FutureFee{State: CountdownNone}, &v
	default:
		return FutureFee{State: CountdownNone}, nil
	}
}

// Get returns the pending value only once the countdown has reached
// One — the change installing on the next tick — and nil otherwise.
func (f FutureFee) Get() *Fee {
	if f.State != CountdownOne {
		return nil
	}
	v := f.Value
	return &v
}

// Propose starts (or restarts) the two-epoch countdown for a newly
// requested fee value.
func Propose(value Fee) FutureFee {
	return FutureFee{State: CountdownTwo, Value: value}
}
