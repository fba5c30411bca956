// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txbuilder turns recipient descriptions into transaction inputs,
// outputs and the unlocking data (claims) that spend them.
package txbuilder

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// SpendClaim is the unlocking data of an input.
type SpendClaim struct {
	SignatureScript []byte
	Witness         wire.TxWitness
}

// UtxoDescriptor is a spendable previous output together with everything
// needed to compute its sighash and assemble its claim.
type UtxoDescriptor struct {
	OutPoint wire.OutPoint
	Value    btcutil.Amount

	// PkScript is the locking script of the previous output.
	PkScript []byte

	// SignScript is the script a legacy or segwit v0 signature commits
	// to: the redeem script of a P2SH spend, PkScript otherwise.
	SignScript []byte

	Method   recipient.SigningMethod
	HashType txscript.SigHashType
	Sequence uint32

	// LeafHash and MerkleRoot are only set for taproot script path
	// spends. LeafVersion is the version of the leaf SignScript is.
	LeafHash    fn.Option[chainhash.Hash]
	MerkleRoot  fn.Option[chainhash.Hash]
	LeafVersion txscript.TapscriptLeafVersion

	// TapTweak is set for key path spends of an internal key. The
	// private key must be tweaked with this script root (empty for
	// BIP-86) before signing.
	TapTweak fn.Option[[]byte]

	// Recipient is the resolved spend description used to rebuild the
	// claim once a real signature is available.
	Recipient recipient.Recipient

	// Claim is the provisional claim, built with the caller's signature
	// or a placeholder of the same length.
	Claim *SpendClaim
}

// TxIn returns the input spending u, carrying the provisional claim.
func (u *UtxoDescriptor) TxIn() *wire.TxIn {
	txIn := wire.NewTxIn(&u.OutPoint, nil, nil)
	txIn.Sequence = u.Sequence
	if u.Claim != nil {
		txIn.SignatureScript = u.Claim.SignatureScript
		txIn.Witness = u.Claim.Witness
	}
	return txIn
}

// UnsignedTxIn returns the input spending u with empty unlocking data.
func (u *UtxoDescriptor) UnsignedTxIn() *wire.TxIn {
	txIn := wire.NewTxIn(&u.OutPoint, nil, nil)
	txIn.Sequence = u.Sequence
	return txIn
}

// PrevOut returns the previous output u spends.
func (u *UtxoDescriptor) PrevOut() *wire.TxOut {
	return wire.NewTxOut(int64(u.Value), u.PkScript)
}

// OutputDescriptor is a transaction output together with the taproot data
// a later script path spend of it needs.
type OutputDescriptor struct {
	Value    btcutil.Amount
	PkScript []byte

	// TapLeafScript and ControlBlock are set for outputs committing to a
	// BRC20 inscription.
	TapLeafScript []byte
	ControlBlock  []byte
}

// TxOut returns the wire form of o.
func (o *OutputDescriptor) TxOut() *wire.TxOut {
	return wire.NewTxOut(int64(o.Value), o.PkScript)
}

// SumUtxoValues sums up the values of the supplied descriptors.
func SumUtxoValues(utxos []*UtxoDescriptor) (total btcutil.Amount) {
	for _, u := range utxos {
		total += u.Value
	}
	return total
}

// SumOutputValues sums up the values of the supplied descriptors.
func SumOutputValues(outputs []*OutputDescriptor) (total btcutil.Amount) {
	for _, o := range outputs {
		total += o.Value
	}
	return total
}
