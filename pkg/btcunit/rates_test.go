package btcunit

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestFeeForWeightRoundUp checks that the fee for a weight is charged on the
// rounded-up virtual size.
func TestFeeForWeightRoundUp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		rate     btcutil.Amount
		weight   uint64
		expected btcutil.Amount
	}{
		{
			name:     "exact vbytes",
			rate:     2,
			weight:   400,
			expected: 200,
		},
		{
			name:     "one extra weight unit",
			rate:     2,
			weight:   401,
			expected: 202,
		},
		{
			name:     "zero rate",
			rate:     0,
			weight:   1234,
			expected: 0,
		},
		{
			name:     "p2pkh one-in one-out",
			rate:     1,
			weight:   768,
			expected: 192,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewSatPerVByte(tc.rate)
			fee := r.FeeForWeight(NewWeightUnit(tc.weight))
			require.Equal(t, tc.expected, fee)
		})
	}
}

// TestFeeRateComparisons tests the comparison methods of the fee rate type.
func TestFeeRateComparisons(t *testing.T) {
	t.Parallel()

	r1 := NewSatPerVByte(1)
	r2 := NewSatPerVByte(2)
	r3 := NewSatPerVByte(1)

	require.True(t, r1.Equal(r3))
	require.False(t, r1.Equal(r2))
	require.True(t, r2.GreaterThan(r1))
	require.False(t, r1.GreaterThan(r3))
	require.True(t, r1.LessThan(r2))
	require.False(t, r2.LessThan(r1))

	require.Equal(t, btcutil.Amount(2000), r2.FeePerKVByte())
	require.Equal(t, "2 sat/vb", r2.String())
}
