// Package computeunits tracks per-invocation compute-unit consumption
// so bounded-work operations — chiefly the validator-list pass — can
// be throttled the way the runtime's real compute budget would
// throttle them: an entry scan costs 1 unit, a transient merge 4, and
// caller-specified units count as charged.
package computeunits

// Meter accumulates compute units consumed during one instruction and
// reports a per-category breakdown for diagnostics. A limit of zero
// means unbounded.
type Meter struct {
	limit           uint64
	entriesScanned  uint64
	transientMerges uint64
	customUnits     uint64
}

func New() *Meter {
	return &Meter{}
}

// NewWithLimit caps the meter at limit units; work loops check
// Exhausted before each unit of bounded work and stop early once the
// budget is spent.
func NewWithLimit(limit uint64) *Meter {
	return &Meter{limit: limit}
}

// ChargeEntryScan accounts for inspecting one validator entry.
func (m *Meter) ChargeEntryScan() {
	m.entriesScanned++
}

// ChargeTransientMerge accounts for merging a transient stake account
// back into the reserve, a heavier operation than a plain scan.
func (m *Meter) ChargeTransientMerge() {
	m.transientMerges++
}

// Charge accounts for a caller-specified number of generic units.
func (m *Meter) Charge(units uint64) {
	m.customUnits += units
}

// TotalUnits returns the total compute units consumed so far.
func (m *Meter) TotalUnits() uint64 {
	return m.entriesScanned + m.transientMerges*4 + m.customUnits
}

// Exhausted reports whether a limited meter has spent its budget.
func (m *Meter) Exhausted() bool {
	return m.limit != 0 && m.TotalUnits() >= m.limit
}

// Breakdown reports the per-category counts, for logging.
func (m *Meter) Breakdown() (entriesScanned, transientMerges, customUnits uint64) {
	return m.entriesScanned, m.transientMerges, m.customUnits
}
