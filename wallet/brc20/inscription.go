// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package brc20 builds the ordinal envelope used to inscribe BRC20 transfer
// operations and the single-leaf taproot tree that commits to it.
package brc20

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

const (
	// TickerLen is the required length of a BRC20 ticker.
	TickerLen = 4

	// ContentType is the MIME type recorded in the envelope.
	ContentType = "text/plain;charset=utf-8"

	// protocolTag is the envelope marker recognized by ordinal indexers.
	protocolTag = "ord"

	// contentTypeTag precedes the content type push.
	contentTypeTag = 0x01
)

var (
	// ErrInvalidTicker is returned when a ticker is not exactly TickerLen
	// bytes long.
	ErrInvalidTicker = errors.New("brc20 ticker must be 4 characters")

	// ErrInvalidAmount is returned when a transfer amount is not a
	// positive decimal number.
	ErrInvalidAmount = errors.New("brc20 transfer amount must be a " +
		"positive decimal number")
)

// Ticker is a validated BRC20 ticker.
type Ticker string

// NewTicker validates s and returns it as a Ticker.
func NewTicker(s string) (Ticker, error) {
	if len(s) != TickerLen {
		return "", fmt.Errorf("%w: got %q", ErrInvalidTicker, s)
	}
	return Ticker(s), nil
}

// transferPayload is the JSON body of a transfer inscription. Field order
// matches the order indexers expect.
type transferPayload struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	Ticker    string `json:"tick"`
	Amount    string `json:"amt"`
}

// TransferInscription is a BRC20 transfer envelope committed to by a
// single-leaf taproot tree.
type TransferInscription struct {
	internalKey *btcec.PublicKey
	payload     []byte
	leaf        txscript.TapLeaf
	tree        *txscript.IndexedTapScriptTree
}

// NewTransferInscription builds the envelope for transferring amount units
// of ticker. The leaf is locked to the x-only form of internalKey, which
// also serves as the taproot internal key.
func NewTransferInscription(internalKey *btcec.PublicKey, ticker Ticker,
	amount string) (*TransferInscription, error) {

	if internalKey == nil {
		return nil, errors.New("brc20 inscription requires a public key")
	}
	if len(ticker) != TickerLen {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidTicker, ticker)
	}
	if !validAmount(amount) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidAmount, amount)
	}

	payload, err := json.Marshal(transferPayload{
		Protocol:  "brc-20",
		Operation: "transfer",
		Ticker:    string(ticker),
		Amount:    amount,
	})
	if err != nil {
		return nil, err
	}

	script, err := envelopeScript(internalKey, []byte(ContentType), payload)
	if err != nil {
		return nil, err
	}

	leaf := txscript.NewBaseTapLeaf(script)
	return &TransferInscription{
		internalKey: internalKey,
		payload:     payload,
		leaf:        leaf,
		tree:        txscript.AssembleTaprootScriptTree(leaf),
	}, nil
}

// validAmount reports whether s is a decimal number with at most one
// fractional point and at least one non-zero digit.
func validAmount(s string) bool {
	var digits, dots int
	nonZero := false
	for _, c := range s {
		switch {
		case c == '.':
			dots++
		case c >= '0' && c <= '9':
			digits++
			nonZero = nonZero || c != '0'
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1 && nonZero
}

// envelopeScript assembles
//
//	<xonly key> OP_CHECKSIG OP_FALSE OP_IF "ord" 0x01 <content type> OP_0
//	<payload chunks> OP_ENDIF
//
// with the payload split into pushes of at most MaxScriptElementSize bytes.
func envelopeScript(key *btcec.PublicKey, contentType,
	payload []byte) ([]byte, error) {

	b := txscript.NewScriptBuilder()
	b.AddData(schnorr.SerializePubKey(key))
	b.AddOp(txscript.OP_CHECKSIG)
	b.AddOp(txscript.OP_FALSE)
	b.AddOp(txscript.OP_IF)
	b.AddData([]byte(protocolTag))

	// Raw OP_DATA_1 0x01. AddData would shorten it to OP_1.
	b.AddOps([]byte{txscript.OP_DATA_1, contentTypeTag})
	b.AddData(contentType)
	b.AddOp(txscript.OP_0)
	for len(payload) > 0 {
		n := len(payload)
		if n > txscript.MaxScriptElementSize {
			n = txscript.MaxScriptElementSize
		}
		b.AddFullData(payload[:n])
		payload = payload[n:]
	}
	b.AddOp(txscript.OP_ENDIF)

	return b.Script()
}

// Payload returns the JSON body of the inscription.
func (t *TransferInscription) Payload() []byte {
	return t.payload
}

// InternalKey returns the taproot internal key.
func (t *TransferInscription) InternalKey() *btcec.PublicKey {
	return t.internalKey
}

// LeafScript returns the tapscript holding the envelope.
func (t *TransferInscription) LeafScript() []byte {
	return t.leaf.Script
}

// LeafHash returns the tapleaf hash committed to by a script-path sighash.
func (t *TransferInscription) LeafHash() chainhash.Hash {
	return t.leaf.TapHash()
}

// MerkleRoot returns the root of the single-leaf tree.
func (t *TransferInscription) MerkleRoot() chainhash.Hash {
	return t.tree.RootNode.TapHash()
}

// OutputKey returns the tweaked taproot output key.
func (t *TransferInscription) OutputKey() *btcec.PublicKey {
	root := t.MerkleRoot()
	return txscript.ComputeTaprootOutputKey(t.internalKey, root[:])
}

// PkScript returns the P2TR locking script that commits to the inscription.
func (t *TransferInscription) PkScript() ([]byte, error) {
	return txscript.PayToTaprootScript(t.OutputKey())
}

// ControlBlock returns the serialized control block revealing the
// inscription leaf.
func (t *TransferInscription) ControlBlock() ([]byte, error) {
	cb := t.tree.LeafMerkleProofs[0].ToControlBlock(t.internalKey)
	return cb.ToBytes()
}
