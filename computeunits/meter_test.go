package computeunits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeterBreakdownAndTotal(t *testing.T) {
	m := New()
	m.ChargeEntryScan()
	m.ChargeEntryScan()
	m.ChargeTransientMerge()
	m.Charge(3)

	scans, merges, custom := m.Breakdown()
	require.Equal(t, uint64(2), scans)
	require.Equal(t, uint64(1), merges)
	require.Equal(t, uint64(3), custom)
	require.Equal(t, uint64(2+1*4+3), m.TotalUnits())
}

func TestUnlimitedMeterNeverExhausts(t *testing.T) {
	m := New()
	m.Charge(1 << 40)
	require.False(t, m.Exhausted())
}

func TestLimitedMeterExhausts(t *testing.T) {
	m := NewWithLimit(2)
	require.False(t, m.Exhausted())
	m.ChargeEntryScan()
	require.False(t, m.Exhausted())
	m.ChargeEntryScan()
	require.True(t, m.Exhausted())
}
