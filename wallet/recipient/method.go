// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package recipient

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
)

// SigningMethod selects the signature hash algorithm and signature scheme
// used to spend an output.
type SigningMethod uint8

const (
	// Legacy signs the pre-segwit signature hash with ECDSA.
	Legacy SigningMethod = iota

	// Segwit signs the BIP-143 signature hash with ECDSA.
	Segwit

	// TaprootKeyPathAll signs the BIP-341 signature hash committing to
	// every previous output with Schnorr.
	TaprootKeyPathAll

	// TaprootKeyPathOnePrevout signs the BIP-341 signature hash committing
	// only to the spent previous output (ANYONECANPAY) with Schnorr.
	TaprootKeyPathOnePrevout
)

var signingMethodStrings = map[SigningMethod]string{
	Legacy:                   "legacy",
	Segwit:                   "segwit",
	TaprootKeyPathAll:        "taproot-all",
	TaprootKeyPathOnePrevout: "taproot-one-prevout",
}

// String returns the SigningMethod in human-readable form.
func (m SigningMethod) String() string {
	if s, ok := signingMethodStrings[m]; ok {
		return s
	}
	return fmt.Sprintf("unknown signing method (%d)", uint8(m))
}

// ParseSigningMethod parses the output of SigningMethod.String.
func ParseSigningMethod(s string) (SigningMethod, error) {
	for m, name := range signingMethodStrings {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown signing method %q", s)
}

// IsTaproot returns whether the method produces Schnorr signatures.
func (m SigningMethod) IsTaproot() bool {
	return m == TaprootKeyPathAll || m == TaprootKeyPathOnePrevout
}

// DefaultHashType returns the sighash type used when the caller does not
// override it.
func (m SigningMethod) DefaultHashType() txscript.SigHashType {
	switch m {
	case TaprootKeyPathAll:
		return txscript.SigHashDefault
	case TaprootKeyPathOnePrevout:
		return txscript.SigHashAll | txscript.SigHashAnyOneCanPay
	default:
		return txscript.SigHashAll
	}
}
