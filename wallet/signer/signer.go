// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signer computes ECDSA and BIP-340 Schnorr signatures over
// precomputed sighash digests, picking the scheme from the input's signing
// method.
package signer

import (
	"crypto/rand"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/txerror"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// DigestLen is the length of every sighash digest.
	DigestLen = 32

	// PrivKeyLen is the length of a serialized private key.
	PrivKeyLen = 32

	// compactSigMagicOffset is the base of the recovery code that
	// SignCompact prepends.
	compactSigMagicOffset = 27

	// compactSigCompPubKey is added to the recovery code for compressed
	// public keys.
	compactSigCompPubKey = 4
)

type signOptions struct {
	disableAuxRand bool
	tweak          fn.Option[[]byte]
	rand           io.Reader
}

// SignOption modifies how Sign produces a signature.
type SignOption func(*signOptions)

// WithDisableAuxRand makes Schnorr signatures deterministic by using
// all-zero auxiliary randomness. It has no effect on ECDSA, which is always
// deterministic (RFC6979).
func WithDisableAuxRand() SignOption {
	return func(o *signOptions) {
		o.disableAuxRand = true
	}
}

// WithTaprootTweak signs a taproot key path spend with the private key
// tweaked by scriptRoot, as described in BIP-341. An empty scriptRoot gives
// the BIP-86 tweak.
func WithTaprootTweak(scriptRoot []byte) SignOption {
	return func(o *signOptions) {
		o.tweak = fn.Some(scriptRoot)
	}
}

// WithRandReader overrides the source of auxiliary randomness.
func WithRandReader(r io.Reader) SignOption {
	return func(o *signOptions) {
		o.rand = r
	}
}

// ParsePrivKey parses a 32 byte private key, rejecting zero and values not
// below the group order.
func ParsePrivKey(privKey []byte) (*btcec.PrivateKey, error) {
	if len(privKey) != PrivKeyLen {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"private key must be %d bytes, got %d", PrivKeyLen,
			len(privKey))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(privKey); overflow {
		scalar.Zero()
		return nil, txerror.Newf(txerror.ErrMalformed,
			"private key exceeds the group order")
	}
	if scalar.IsZero() {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"private key is zero")
	}

	return secp256k1.NewPrivateKey(&scalar), nil
}

// Sign signs digest with privKey using the scheme selected by method.
func Sign(method recipient.SigningMethod, privKey, digest []byte,
	opts ...SignOption) (Signature, error) {

	if len(digest) != DigestLen {
		return Signature{}, txerror.Newf(txerror.ErrMalformed,
			"digest must be %d bytes, got %d", DigestLen,
			len(digest))
	}

	o := &signOptions{rand: rand.Reader}
	for _, opt := range opts {
		opt(o)
	}

	key, err := ParsePrivKey(privKey)
	if err != nil {
		return Signature{}, err
	}
	defer key.Zero()

	switch method {
	case recipient.Legacy, recipient.Segwit:
		return signECDSA(key, digest)

	case recipient.TaprootKeyPathAll, recipient.TaprootKeyPathOnePrevout:
		return signSchnorr(key, digest, o)

	default:
		return Signature{}, txerror.Newf(txerror.ErrUnimplemented,
			"no signature scheme for %v", method)
	}
}

// signECDSA produces R || S || recovery id.
func signECDSA(key *btcec.PrivateKey, digest []byte) (Signature, error) {
	compact := ecdsa.SignCompact(key, digest, true)

	recID := compact[0] - compactSigMagicOffset - compactSigCompPubKey
	sig := make([]byte, ECDSASignatureLen)
	copy(sig, compact[1:])
	sig[64] = recID

	return Signature{kind: KindECDSA, sig: sig}, nil
}

func signSchnorr(key *btcec.PrivateKey, digest []byte,
	o *signOptions) (Signature, error) {

	signKey := key
	o.tweak.WhenSome(func(root []byte) {
		signKey = txscript.TweakTaprootPrivKey(*key, root)
	})
	if signKey != key {
		defer signKey.Zero()
	}

	var aux [32]byte
	if !o.disableAuxRand {
		if _, err := io.ReadFull(o.rand, aux[:]); err != nil {
			return Signature{}, err
		}
	}

	sig, err := schnorr.Sign(signKey, digest, schnorr.CustomNonce(aux))
	if err != nil {
		return Signature{}, txerror.New(txerror.ErrMalformed,
			"unable to produce schnorr signature", err)
	}

	return Signature{kind: KindSchnorr, sig: sig.Serialize()}, nil
}

// Verify checks sig over digest against pubKey. Taproot methods expect the
// key the signature was made with, i.e. the tweaked output key for key
// path spends.
func Verify(method recipient.SigningMethod, pubKey *btcec.PublicKey,
	digest []byte, sig Signature) bool {

	if sig.CheckMethod(method) != nil || len(digest) != DigestLen {
		return false
	}

	switch sig.kind {
	case KindECDSA:
		recovered, err := RecoverPubKey(digest, sig)
		if err != nil {
			return false
		}
		return recovered.IsEqual(pubKey)

	case KindSchnorr:
		parsed, err := schnorr.ParseSignature(sig.sig)
		if err != nil {
			return false
		}
		return parsed.Verify(digest, pubKey)
	}
	return false
}

// RecoverPubKey returns the public key that produced an ECDSA signature.
func RecoverPubKey(digest []byte, sig Signature) (*btcec.PublicKey, error) {
	if sig.kind != KindECDSA {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"only ecdsa signatures are recoverable")
	}

	compact := make([]byte, ECDSASignatureLen)
	compact[0] = compactSigMagicOffset + compactSigCompPubKey + sig.sig[64]
	copy(compact[1:], sig.sig[:64])

	key, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"unable to recover public key", err)
	}
	return key, nil
}
