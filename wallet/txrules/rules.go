// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrules

import (
	"errors"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
)

// DefaultDustRelayFeePerKb is the default dust relay fee policy for a
// mempool. An output is dust when spending it at this rate costs more than
// its value.
const DefaultDustRelayFeePerKb btcutil.Amount = 3e3

const (
	// redeemInputBaseSize is the serialized size of an input without its
	// signature script: outpoint, script length and sequence.
	redeemInputBaseSize = 32 + 4 + 1 + 4

	// redeemSigAndKeySize is the typical size of a signature and compressed
	// public key spending a key hash output.
	redeemSigAndKeySize = 107
)

// IsDustAmount determines whether a transaction output value and script
// would cause the output to be considered dust at the given dust relay fee.
// Transactions with dust outputs are not standard and are rejected by
// mempools with default policies.
func IsDustAmount(amount btcutil.Amount, pkScript []byte,
	dustRelayFeePerKb btcutil.Amount) bool {

	// Calculate the total (estimated) cost to the network. This is
	// calculated using the serialize size of the output plus the serial
	// size of a transaction input which redeems it.
	scriptSize := len(pkScript)
	totalSize := 8 + wire.VarIntSerializeSize(uint64(scriptSize)) +
		scriptSize + redeemInputBaseSize
	if txscript.IsWitnessProgram(pkScript) {
		totalSize += redeemSigAndKeySize / blockchain.WitnessScaleFactor
	} else {
		totalSize += redeemSigAndKeySize
	}

	// Dust is defined as an output value below the cost of creating and
	// spending it (output size + input size) at the dust relay fee.
	return int64(amount)*1000/int64(totalSize) < int64(dustRelayFeePerKb)
}

// IsDustOutput determines whether a transaction output is considered dust.
// Transactions with dust outputs are not standard and are rejected by
// mempools with default policies.
func IsDustOutput(output *wire.TxOut,
	dustRelayFeePerKb btcutil.Amount) bool {

	// Unspendable outputs which solely carry data are not checked for dust.
	if txscript.GetScriptClass(output.PkScript) == txscript.NullDataTy {
		return false
	}

	// All other unspendable outputs are considered dust.
	if txscript.IsUnspendable(output.PkScript) {
		return true
	}

	return IsDustAmount(btcutil.Amount(output.Value), output.PkScript,
		dustRelayFeePerKb)
}

// Transaction rule violations
var (
	ErrAmountNegative   = errors.New("transaction output amount is negative")
	ErrAmountExceedsMax = errors.New("transaction output amount exceeds maximum value")
	ErrOutputIsDust     = errors.New("transaction output is dust")
)

// CheckOutputValue performs the consensus range check on an output value.
func CheckOutputValue(value btcutil.Amount) error {
	if value < 0 {
		return ErrAmountNegative
	}
	if value > btcutil.MaxSatoshi {
		return ErrAmountExceedsMax
	}
	return nil
}

// CheckOutput performs simple consensus and policy tests on a transaction
// output.
func CheckOutput(output *wire.TxOut,
	dustRelayFeePerKb btcutil.Amount) error {

	if err := CheckOutputValue(btcutil.Amount(output.Value)); err != nil {
		return err
	}
	if IsDustOutput(output, dustRelayFeePerKb) {
		return ErrOutputIsDust
	}
	return nil
}

// FeeForWeight calculates the fee for a transaction of the given weight at
// a fee rate per virtual byte. The weight is rounded up to whole virtual
// bytes.
func FeeForWeight(feeRate btcunit.SatPerVByte,
	weight btcunit.WeightUnit) btcutil.Amount {

	fee := feeRate.FeeForWeight(weight)
	if fee < 0 || fee > btcutil.MaxSatoshi {
		fee = btcutil.MaxSatoshi
	}

	return fee
}
