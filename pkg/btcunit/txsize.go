package btcunit

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
)

// WeightUnit defines a unit to express the transaction size. One weight unit
// is 1/4_000_000 of the max block size. The tx weight is calculated using
// `Base tx size * 3 + Total tx size`.
//   - Base tx size is size of the transaction serialized without the witness
//     data.
//   - Total tx size is the transaction size in bytes serialized according
//     #BIP144.
type WeightUnit struct {
	val uint64
}

// NewWeightUnit creates a new WeightUnit from a uint64.
func NewWeightUnit(val uint64) WeightUnit {
	return WeightUnit{val: val}
}

// NonWitnessWeight returns the weight of n bytes that are serialized outside
// of the witness, i.e. scaled by the witness scale factor.
func NonWitnessWeight(n int) WeightUnit {
	return WeightUnit{val: uint64(n) * blockchain.WitnessScaleFactor}
}

// WitnessWeight returns the weight of n witness bytes, which are not scaled.
func WitnessWeight(n int) WeightUnit {
	return WeightUnit{val: uint64(n)}
}

// Add returns the sum of two weights.
func (wu WeightUnit) Add(other WeightUnit) WeightUnit {
	return WeightUnit{val: wu.val + other.val}
}

// Uint64 returns the raw number of weight units.
func (wu WeightUnit) Uint64() uint64 {
	return wu.val
}

// ToVB converts a value expressed in weight units to virtual bytes.
func (wu WeightUnit) ToVB() VByte {
	// According to BIP141: Virtual transaction size is defined as
	// Transaction weight / 4 (rounded up to the next integer).
	scale := uint64(blockchain.WitnessScaleFactor)
	return VByte{val: (wu.val + scale - 1) / scale}
}

// String returns the string representation of the weight unit.
func (wu WeightUnit) String() string {
	return fmt.Sprintf("%d wu", wu.val)
}

// VByte defines a unit to express the transaction size. One virtual byte is
// 1/4th of a weight unit. The tx virtual bytes is calculated using `TxWeight /
// 4`.
type VByte struct {
	val uint64
}

// NewVByte creates a new VByte from a uint64.
func NewVByte(val uint64) VByte {
	return VByte{val: val}
}

// ToWU converts a value expressed in virtual bytes to weight units.
func (vb VByte) ToWU() WeightUnit {
	return WeightUnit{val: vb.val * blockchain.WitnessScaleFactor}
}

// Uint64 returns the raw number of virtual bytes.
func (vb VByte) Uint64() uint64 {
	return vb.val
}

// String returns the string representation of the virtual byte.
func (vb VByte) String() string {
	return fmt.Sprintf("%d vb", vb.val)
}
