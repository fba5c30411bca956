// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compiler

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/internal/zero"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/signer"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// KeyRing provides the private key that spends a previous output.
type KeyRing interface {
	PrivKey(op wire.OutPoint) ([]byte, error)
}

// KeyMap is a KeyRing holding one key per outpoint.
type KeyMap map[wire.OutPoint][]byte

// A compile time check to ensure KeyMap implements the KeyRing interface.
var _ KeyRing = KeyMap(nil)

// PrivKey implements KeyRing.
func (m KeyMap) PrivKey(op wire.OutPoint) ([]byte, error) {
	key, ok := m[op]
	if !ok {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"no private key for input %v", op)
	}
	return key, nil
}

// Zero clears every key and empties the map.
func (m KeyMap) Zero() {
	zero.Keys(m)
}

// SingleKey is a KeyRing that spends every input with the same key.
type SingleKey []byte

// PrivKey implements KeyRing.
func (k SingleKey) PrivKey(wire.OutPoint) ([]byte, error) {
	return k, nil
}

// Sign runs Sign with the standard sighash rules.
func Sign(req *SigningRequest, keys KeyRing,
	opts ...signer.SignOption) (*CompileOutput, error) {

	return defaultCompiler.Sign(req, keys, opts...)
}

// Sign computes the digests of req, signs each of them with the key keys
// returns for the input and compiles the signed transaction. P2SH and
// custom inputs carry caller-built claims and are not signed.
func (c *Compiler) Sign(req *SigningRequest, keys KeyRing,
	opts ...signer.SignOption) (*CompileOutput, error) {

	pre, err := c.PreImageHashes(req)
	if err != nil {
		return nil, err
	}

	sigs := make([]SignatureInput, len(pre.Inputs))
	for i, in := range pre.Inputs {
		switch in.Recipient.(type) {
		case recipient.P2SH, recipient.Custom:
			continue
		}

		privKey, err := keys.PrivKey(in.OutPoint)
		if err != nil {
			return nil, err
		}

		sigOpts := opts
		in.TapTweak.WhenSome(func(root []byte) {
			sigOpts = append(
				sigOpts[:len(sigOpts):len(sigOpts)],
				signer.WithTaprootTweak(root),
			)
		})

		sig, err := signer.Sign(in.Method, privKey, pre.Digests[i],
			sigOpts...)
		if err != nil {
			return nil, err
		}

		pubKey, err := missingPubKey(in, privKey)
		if err != nil {
			return nil, err
		}

		sigs[i] = SignatureInput{Signature: sig, PubKey: pubKey}
	}

	return c.Compile(req, sigs)
}

// missingPubKey derives the public key of a P2PKH or P2WPKH input that was
// described by its hash. Nil is returned for every other input.
func missingPubKey(in *txbuilder.UtxoDescriptor, privKey []byte) ([]byte,
	error) {

	var hash []byte
	switch r := in.Recipient.(type) {
	case recipient.P2PKH:
		if len(r.PubKey) > 0 {
			return nil, nil
		}
		hash = r.PubKeyHash

	case recipient.P2WPKH:
		if len(r.PubKey) > 0 {
			return nil, nil
		}
		hash = r.PubKeyHash

	default:
		return nil, nil
	}

	key, err := signer.ParsePrivKey(privKey)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	pubKey := key.PubKey()
	if compressed := pubKey.SerializeCompressed(); bytes.Equal(
		btcutil.Hash160(compressed), hash) {

		return compressed, nil
	}

	// Legacy outputs may commit to the uncompressed form.
	if _, ok := in.Recipient.(recipient.P2PKH); ok {
		uncompressed := pubKey.SerializeUncompressed()
		if bytes.Equal(btcutil.Hash160(uncompressed), hash) {
			return uncompressed, nil
		}
	}

	return nil, txerror.Newf(txerror.ErrMalformed,
		"private key does not match input %v", in.OutPoint)
}
