package btcunit

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// SatPerVByte is an integer fee rate expressed in satoshis per virtual
// byte. It is the "weight base" applied to a rounded-up virtual size.
type SatPerVByte struct {
	rate btcutil.Amount
}

// NewSatPerVByte creates a new fee rate in sat/vb.
func NewSatPerVByte(rate btcutil.Amount) SatPerVByte {
	return SatPerVByte{rate: rate}
}

// Amount returns the number of satoshis charged per virtual byte.
func (s SatPerVByte) Amount() btcutil.Amount {
	return s.rate
}

// FeeForVSize calculates the fee resulting from this fee rate and the given
// vsize in vbytes.
func (s SatPerVByte) FeeForVSize(vb VByte) btcutil.Amount {
	return s.rate * btcutil.Amount(vb.val)
}

// FeeForWeight calculates the fee resulting from this fee rate and the
// given weight. The weight is first rounded up to whole virtual bytes, so
// the result is ceil(weight / 4) * rate.
func (s SatPerVByte) FeeForWeight(wu WeightUnit) btcutil.Amount {
	return s.FeeForVSize(wu.ToVB())
}

// FeePerKVByte converts the rate to sat/kvb.
func (s SatPerVByte) FeePerKVByte() btcutil.Amount {
	return s.rate * 1000
}

// String returns a human-readable string of the fee rate.
func (s SatPerVByte) String() string {
	return fmt.Sprintf("%d sat/vb", int64(s.rate))
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (s SatPerVByte) Equal(other SatPerVByte) bool {
	return s.rate == other.rate
}

// GreaterThan returns true if the fee rate is greater than the other fee
// rate.
func (s SatPerVByte) GreaterThan(other SatPerVByte) bool {
	return s.rate > other.rate
}

// LessThan returns true if the fee rate is less than the other fee rate.
func (s SatPerVByte) LessThan(other SatPerVByte) bool {
	return s.rate < other.rate
}
