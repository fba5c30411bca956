// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package recipient describes who can spend an output and resolves those
// descriptions, or address strings, into canonical locking scripts.
package recipient

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// Recipient is a sealed set of script family descriptions. Every consumer
// switches over the concrete types below and rejects anything else.
type Recipient interface {
	isRecipient()
}

// P2PKH pays to the hash of a public key. Exactly one of PubKey and
// PubKeyHash is set; spending requires PubKey.
type P2PKH struct {
	PubKey     []byte
	PubKeyHash []byte
}

// P2SH pays to the hash of a redeem script. Spending requires
// RedeemScript.
type P2SH struct {
	RedeemScript []byte
	ScriptHash   []byte
}

// P2WPKH pays to a version 0 witness public key hash. Spending requires a
// compressed PubKey.
type P2WPKH struct {
	PubKey     []byte
	PubKeyHash []byte
}

// P2WSH pays to a version 0 witness script hash. Only outputs can be built
// from it.
type P2WSH struct {
	WitnessScript []byte
	ScriptHash    []byte
}

// P2TRKeyPath pays to a taproot output spendable by key. PubKey is an
// internal key which gets the BIP-86 tweak. TweakedKey is an output key
// that is used as-is, its tweak is never verified.
type P2TRKeyPath struct {
	PubKey     []byte
	TweakedKey []byte
	OnePrevout bool
}

// P2TRScriptPath pays to, or spends through, a tapscript leaf. Outputs need
// InternalKey plus MerkleRoot or LeafScript; spends need LeafScript and
// ControlBlock.
type P2TRScriptPath struct {
	InternalKey  []byte
	LeafScript   []byte
	MerkleRoot   []byte
	ControlBlock []byte
	OnePrevout   bool
}

// BRC20Transfer commits to, or reveals, a BRC20 transfer inscription
// locked to PubKey.
type BRC20Transfer struct {
	PubKey     []byte
	Ticker     string
	Amount     string
	OnePrevout bool
}

// Ordinal is an ordinal NFT inscription. It is recognized but cannot be
// built.
type Ordinal struct {
	PubKey   []byte
	MimeType string
	Payload  []byte
}

// Custom carries caller-built scripts which are passed through unchecked.
type Custom struct {
	PkScript  []byte
	ScriptSig []byte
	Witness   wire.TxWitness
	Method    SigningMethod
}

// Address is an encoded address string resolved through DecodeAddress.
type Address struct {
	Address string
}

func (P2PKH) isRecipient()          {}
func (P2SH) isRecipient()           {}
func (P2WPKH) isRecipient()         {}
func (P2WSH) isRecipient()          {}
func (P2TRKeyPath) isRecipient()    {}
func (P2TRScriptPath) isRecipient() {}
func (BRC20Transfer) isRecipient()  {}
func (Ordinal) isRecipient()        {}
func (Custom) isRecipient()         {}
func (Address) isRecipient()        {}

// ParsePubKey parses a compressed or uncompressed secp256k1 public key.
func ParsePubKey(b []byte) (*btcec.PublicKey, error) {
	key, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"invalid public key", err)
	}
	return key, nil
}

// ParseCompressedPubKey parses a public key and rejects the uncompressed
// form, which is non-standard in witness programs.
func ParseCompressedPubKey(b []byte) (*btcec.PublicKey, error) {
	if len(b) != btcec.PubKeyBytesLenCompressed {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"witness public key must be %d bytes, got %d",
			btcec.PubKeyBytesLenCompressed, len(b))
	}
	return ParsePubKey(b)
}

// ParseTaprootKey parses either an x-only (32 byte) or a SEC encoded public
// key for use as a taproot key.
func ParseTaprootKey(b []byte) (*btcec.PublicKey, error) {
	if len(b) == schnorr.PubKeyBytesLen {
		key, err := schnorr.ParsePubKey(b)
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"invalid x-only public key", err)
		}
		return key, nil
	}
	return ParsePubKey(b)
}
