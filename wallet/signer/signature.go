// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signer

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/txerror"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

const (
	// ECDSASignatureLen is the length of a recoverable ECDSA signature:
	// 32 byte R, 32 byte S and a one byte recovery id.
	ECDSASignatureLen = 65

	// SchnorrSignatureLen is the length of a BIP-340 signature.
	SchnorrSignatureLen = 64

	// ECDSAPlaceholderLen is the length of the stand-in used for unsigned
	// ECDSA inputs while estimating fees.
	ECDSAPlaceholderLen = ECDSASignatureLen

	// SchnorrPlaceholderLen is the length of the stand-in used for
	// unsigned Schnorr inputs while estimating fees.
	SchnorrPlaceholderLen = SchnorrSignatureLen

	// placeholderByte fills placeholders. All-ones R and S give the
	// longest possible DER encoding.
	placeholderByte = 0xff
)

// Kind tags the scheme a Signature was produced with.
type Kind uint8

const (
	// KindECDSA is a recoverable ECDSA signature over secp256k1.
	KindECDSA Kind = iota + 1

	// KindSchnorr is a BIP-340 signature.
	KindSchnorr
)

// String returns the Kind in human-readable form.
func (k Kind) String() string {
	switch k {
	case KindECDSA:
		return "ecdsa"
	case KindSchnorr:
		return "schnorr"
	default:
		return fmt.Sprintf("unknown signature kind (%d)", uint8(k))
	}
}

// KindForMethod returns the signature scheme a signing method uses.
func KindForMethod(method recipient.SigningMethod) Kind {
	if method.IsTaproot() {
		return KindSchnorr
	}
	return KindECDSA
}

// Signature is a fixed length ECDSA or Schnorr signature. The zero value
// is no signature.
type Signature struct {
	kind Kind
	sig  []byte
}

// NewECDSASignature wraps a 65 byte R || S || recovery id signature.
func NewECDSASignature(sig []byte) (Signature, error) {
	if len(sig) != ECDSASignatureLen {
		return Signature{}, txerror.Newf(txerror.ErrMalformed,
			"ecdsa signature must be %d bytes, got %d",
			ECDSASignatureLen, len(sig))
	}
	return Signature{kind: KindECDSA, sig: append([]byte(nil), sig...)}, nil
}

// NewSchnorrSignature wraps a 64 byte BIP-340 signature.
func NewSchnorrSignature(sig []byte) (Signature, error) {
	if len(sig) != SchnorrSignatureLen {
		return Signature{}, txerror.Newf(txerror.ErrMalformed,
			"schnorr signature must be %d bytes, got %d",
			SchnorrSignatureLen, len(sig))
	}
	return Signature{kind: KindSchnorr, sig: append([]byte(nil), sig...)}, nil
}

// ParseSignature wraps raw signature bytes, choosing the kind from method.
func ParseSignature(method recipient.SigningMethod,
	sig []byte) (Signature, error) {

	if KindForMethod(method) == KindSchnorr {
		return NewSchnorrSignature(sig)
	}
	return NewECDSASignature(sig)
}

// Placeholder returns the stand-in signature for method. It has the exact
// length of a real signature.
func Placeholder(method recipient.SigningMethod) Signature {
	n := ECDSAPlaceholderLen
	kind := KindForMethod(method)
	if kind == KindSchnorr {
		n = SchnorrPlaceholderLen
	}
	return Signature{
		kind: kind,
		sig:  bytes.Repeat([]byte{placeholderByte}, n),
	}
}

// Kind returns the signature scheme.
func (s Signature) Kind() Kind {
	return s.kind
}

// Bytes returns the raw signature.
func (s Signature) Bytes() []byte {
	return s.sig
}

// IsZero reports whether s holds no signature.
func (s Signature) IsZero() bool {
	return s.kind == 0
}

// CheckMethod fails when s was not produced by the scheme method uses.
func (s Signature) CheckMethod(method recipient.SigningMethod) error {
	if s.kind != KindForMethod(method) {
		return txerror.Newf(txerror.ErrMalformed,
			"%v signature cannot sign a %v input", s.kind, method)
	}
	return nil
}

// Serialize returns the signature in the form it takes inside a script or
// witness. ECDSA signatures are DER encoded and always followed by the
// sighash byte. Schnorr signatures are followed by the sighash byte unless
// it is SigHashDefault.
func (s Signature) Serialize(hashType txscript.SigHashType) ([]byte, error) {
	switch s.kind {
	case KindECDSA:
		der, err := derEncode(s.sig[:32], s.sig[32:64])
		if err != nil {
			return nil, err
		}
		return append(der, byte(hashType)), nil

	case KindSchnorr:
		out := append([]byte(nil), s.sig...)
		if hashType != txscript.SigHashDefault {
			out = append(out, byte(hashType))
		}
		return out, nil

	default:
		return nil, txerror.Newf(txerror.ErrMalformed,
			"cannot serialize an empty signature")
	}
}

// derEncode encodes r and s as an ASN.1 SEQUENCE of two INTEGERs.
func derEncode(r, s []byte) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(new(big.Int).SetBytes(r))
		b.AddASN1BigInt(new(big.Int).SetBytes(s))
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"unable to encode signature", err)
	}
	return der, nil
}
