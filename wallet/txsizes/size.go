// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txsizes computes the weight of transaction skeletons whose inputs
// carry provisional (placeholder signed) claims.
package txsizes

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
)

// Worst case script and input/output size estimates. They describe what the
// placeholder claims serialize to and are kept as reference points for the
// measured weights.
const (
	// RedeemP2PKHSigScriptSize is the worst case (largest) serialize size
	// of a transaction input script that redeems a compressed P2PKH output.
	// It is calculated as:
	//
	//   - OP_DATA_73
	//   - 72 bytes DER signature + 1 byte sighash
	//   - OP_DATA_33
	//   - 33 bytes serialized compressed pubkey
	RedeemP2PKHSigScriptSize = 1 + 73 + 1 + 33

	// P2PKHPkScriptSize is the size of a transaction output script that
	// pays to a compressed pubkey hash.  It is calculated as:
	//
	//   - OP_DUP
	//   - OP_HASH160
	//   - OP_DATA_20
	//   - 20 bytes pubkey hash
	//   - OP_EQUALVERIFY
	//   - OP_CHECKSIG
	P2PKHPkScriptSize = 1 + 1 + 1 + 20 + 1 + 1

	// RedeemP2PKHInputSize is the worst case (largest) serialize size of a
	// transaction input redeeming a compressed P2PKH output.  It is
	// calculated as:
	//
	//   - 32 bytes previous tx
	//   - 4 bytes output index
	//   - 1 byte compact int encoding value 108
	//   - 108 bytes signature script
	//   - 4 bytes sequence
	RedeemP2PKHInputSize = 32 + 4 + 1 + RedeemP2PKHSigScriptSize + 4

	// P2PKHOutputSize is the serialize size of a transaction output with a
	// P2PKH output script.  It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 25
	//   - 25 bytes P2PKH output script
	P2PKHOutputSize = 8 + 1 + P2PKHPkScriptSize

	// P2SHPkScriptSize is the size of a transaction output script that
	// pays to a script hash. It is calculated as:
	//
	//   - OP_HASH160
	//   - OP_DATA_20
	//   - 20 bytes script hash
	//   - OP_EQUAL
	P2SHPkScriptSize = 1 + 1 + 20 + 1

	// P2WPKHPkScriptSize is the size of a transaction output script that
	// pays to a witness pubkey hash. It is calculated as:
	//
	//   - OP_0
	//   - OP_DATA_20
	//   - 20 bytes pubkey hash
	P2WPKHPkScriptSize = 1 + 1 + 20

	// P2WPKHOutputSize is the serialize size of a transaction output with a
	// P2WPKH output script. It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 22
	//   - 22 bytes P2PKH output script
	P2WPKHOutputSize = 8 + 1 + P2WPKHPkScriptSize

	// P2WSHPkScriptSize is the size of a transaction output script that
	// pays to a witness script hash. It is calculated as:
	//
	//   - OP_0
	//   - OP_DATA_32
	//   - 32 bytes script hash
	P2WSHPkScriptSize = 1 + 1 + 32

	// RedeemP2WPKHInputSize is the worst case size of a transaction
	// input redeeming a P2WPKH output. It is calculated as:
	//
	//   - 32 bytes previous tx
	//   - 4 bytes output index
	//   - 1 byte encoding empty redeem script
	//   - 0 bytes redeem script
	//   - 4 bytes sequence
	RedeemP2WPKHInputSize = 32 + 4 + 1 + 4

	// P2TRPkScriptSize is the size of a transaction output script that
	// pays to a taproot pubkey. It is calculated as:
	//
	//   - OP_1
	//   - OP_DATA_32
	//   - 32 bytes pubkey
	P2TRPkScriptSize = 1 + 1 + 32

	// P2TROutputSize is the serialize size of a transaction output with a
	// P2TR output script. It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 34
	//   - 34 bytes P2TR output script
	P2TROutputSize = 8 + 1 + P2TRPkScriptSize

	// RedeemP2TRInputSize is the size of a transaction input redeeming a
	// P2TR output, which has an empty signature script.
	RedeemP2TRInputSize = 32 + 4 + 1 + 4

	// RedeemP2WPKHInputWitnessWeight is the worst case weight of
	// a witness for spending P2WPKH outputs. It is calculated as:
	//
	//   - 1 wu compact int encoding value 2 (number of items)
	//   - 1 wu compact int encoding value 73
	//   - 72 wu DER signature + 1 wu sighash
	//   - 1 wu compact int encoding value 33
	//   - 33 wu serialized compressed pubkey
	RedeemP2WPKHInputWitnessWeight = 1 + 1 + 73 + 1 + 33

	// RedeemP2TRInputWitnessWeight is the weight of a witness for a key
	// path spend signed with SIGHASH_DEFAULT. It is calculated as:
	//
	//   - 1 wu compact int encoding value 1 (number of items)
	//   - 1 wu compact int encoding value 64
	//   - 64 wu BIP-340 schnorr signature
	RedeemP2TRInputWitnessWeight = 1 + 1 + 64

	// RedeemP2TRExplicitSigHashWitnessWeight is the weight of a key path
	// witness whose signature carries an explicit sighash byte.
	RedeemP2TRExplicitSigHashWitnessWeight = 1 + 1 + 64 + 1
)

// SumOutputSerializeSizes sums up the serialized size of the supplied outputs.
func SumOutputSerializeSizes(outputs []*wire.TxOut) (serializeSize int) {
	for _, txOut := range outputs {
		serializeSize += txOut.SerializeSize()
	}
	return serializeSize
}

// InputBaseSize returns the serialized size of an input excluding its
// witness.
func InputBaseSize(txIn *wire.TxIn) int {
	// Outpoint 36 bytes + sequence 4 bytes + the signature script with
	// its length prefix.
	return 32 + 4 + 4 +
		wire.VarIntSerializeSize(uint64(len(txIn.SignatureScript))) +
		len(txIn.SignatureScript)
}

// InputWeight returns the weight an input contributes to a transaction that
// carries witness data, i.e. its scaled base size plus its witness stack
// including the item count.
func InputWeight(txIn *wire.TxIn) btcunit.WeightUnit {
	return btcunit.NonWitnessWeight(InputBaseSize(txIn)).Add(
		btcunit.WitnessWeight(txIn.Witness.SerializeSize()),
	)
}

// OutputWeight returns the weight of an output.
func OutputWeight(txOut *wire.TxOut) btcunit.WeightUnit {
	return btcunit.NonWitnessWeight(txOut.SerializeSize())
}

// OutputWeightForScript returns the weight of an output paying to a script
// of the given size.
func OutputWeightForScript(scriptSize int) btcunit.WeightUnit {
	return btcunit.NonWitnessWeight(8 +
		wire.VarIntSerializeSize(uint64(scriptSize)) + scriptSize)
}

// EstimateWeight returns the weight of a transaction with the given inputs,
// outputs and an optional extra output paying to a script of
// changeScriptSize bytes (zero means no change output). Inputs are measured
// with whatever claims they carry, so inputs holding placeholder signatures
// yield the weight of the signed transaction.
func EstimateWeight(txIns []*wire.TxIn, txOuts []*wire.TxOut,
	changeScriptSize int) btcunit.WeightUnit {

	outputCount := len(txOuts)
	changeWeight := btcunit.NewWeightUnit(0)
	if changeScriptSize > 0 {
		changeWeight = OutputWeightForScript(changeScriptSize)
		outputCount++
	}

	// Version 4 bytes + LockTime 4 bytes + Serialized var int size for the
	// number of transaction inputs and outputs.
	baseSize := 8 +
		wire.VarIntSerializeSize(uint64(len(txIns))) +
		wire.VarIntSerializeSize(uint64(outputCount)) +
		SumOutputSerializeSizes(txOuts)
	for _, txIn := range txIns {
		baseSize += InputBaseSize(txIn)
	}

	weight := btcunit.NonWitnessWeight(baseSize).Add(changeWeight)

	// If this transaction has any witness inputs, every input serializes
	// a witness stack (empty stacks as a single zero count) and the
	// segwit marker and flag add 2 weight units.
	if !hasWitness(txIns) {
		return weight
	}
	witnessSize := 2
	for _, txIn := range txIns {
		witnessSize += txIn.Witness.SerializeSize()
	}

	return weight.Add(btcunit.WitnessWeight(witnessSize))
}

func hasWitness(txIns []*wire.TxIn) bool {
	for _, txIn := range txIns {
		if len(txIn.Witness) != 0 {
			return true
		}
	}
	return false
}
