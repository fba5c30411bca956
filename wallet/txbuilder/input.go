// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txbuilder

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/signer"
	"github.com/btcsuite/txcompiler/wallet/txerror"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// placeholderPubKey stands in for the public key of a P2WPKH input that
// was described by its hash only. Witness spends require a compressed key.
var placeholderPubKey = append(
	[]byte{0x02}, bytes.Repeat([]byte{0xff}, 32)...,
)

// placeholderLegacyPubKey stands in for the public key of a hash-only P2PKH
// input. The hash may commit to an uncompressed key, so the estimate
// assumes one.
var placeholderLegacyPubKey = append(
	[]byte{0x04}, bytes.Repeat([]byte{0xff}, 64)...,
)

// InputRequest describes a previous output to spend.
type InputRequest struct {
	OutPoint  wire.OutPoint
	Value     btcutil.Amount
	Recipient recipient.Recipient

	// Sequence defaults to wire.MaxTxInSequenceNum.
	Sequence fn.Option[uint32]

	// HashType overrides the signing method's default sighash type.
	HashType fn.Option[txscript.SigHashType]

	// Signature is an already computed signature. When it is the zero
	// value a placeholder of the same length is used instead.
	Signature signer.Signature
}

// BuildInput resolves req into a UtxoDescriptor carrying a provisional
// claim. Address recipients are decoded with params first.
func BuildInput(req *InputRequest, params *chaincfg.Params) (*UtxoDescriptor,
	error) {

	if req.Value < 0 || req.Value > btcutil.MaxSatoshi {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"input %v has invalid value %d", req.OutPoint,
			int64(req.Value))
	}

	r := req.Recipient
	if addr, ok := r.(recipient.Address); ok {
		decoded, err := recipient.DecodeAddress(addr.Address, params)
		if err != nil {
			return nil, err
		}
		r = decoded
	}

	u := &UtxoDescriptor{
		OutPoint:  req.OutPoint,
		Value:     req.Value,
		Sequence:  req.Sequence.UnwrapOr(wire.MaxTxInSequenceNum),
		Recipient: r,
	}

	// claimRecipient is what the provisional claim is built from. It
	// differs from r only when a public key has to be stood in for.
	claimRecipient := r

	switch r := r.(type) {
	case recipient.P2PKH:
		script, err := recipient.LockingScript(r, params)
		if err != nil {
			return nil, err
		}
		u.PkScript = script.PkScript
		u.SignScript = script.PkScript
		u.Method = script.Method
		if len(r.PubKey) == 0 {
			r.PubKey = placeholderLegacyPubKey
			claimRecipient = r
		}

	case recipient.P2WPKH:
		script, err := recipient.LockingScript(r, params)
		if err != nil {
			return nil, err
		}
		u.PkScript = script.PkScript
		u.SignScript = script.PkScript
		u.Method = script.Method
		if len(r.PubKey) == 0 {
			r.PubKey = placeholderPubKey
			claimRecipient = r
		}

	case recipient.P2SH:
		if len(r.RedeemScript) == 0 {
			return nil, txerror.Newf(txerror.ErrMalformed,
				"spending p2sh input %v requires the redeem "+
					"script", req.OutPoint)
		}
		script, err := recipient.LockingScript(r, params)
		if err != nil {
			return nil, err
		}
		u.PkScript = script.PkScript
		u.SignScript = r.RedeemScript
		u.Method = script.Method

	case recipient.P2TRKeyPath:
		script, err := recipient.LockingScript(r, params)
		if err != nil {
			return nil, err
		}
		u.PkScript = script.PkScript
		u.SignScript = script.PkScript
		u.Method = script.Method
		if len(r.PubKey) > 0 {
			u.TapTweak = fn.Some([]byte(nil))
		}

	case recipient.P2TRScriptPath:
		if err := buildScriptPathInput(u, r); err != nil {
			return nil, err
		}

	case recipient.BRC20Transfer:
		ins, err := recipient.NewBRC20Inscription(r)
		if err != nil {
			return nil, err
		}
		pkScript, err := ins.PkScript()
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"unable to build inscription script", err)
		}
		u.PkScript = pkScript
		u.SignScript = ins.LeafScript()
		u.Method = taprootMethod(r.OnePrevout)
		u.LeafHash = fn.Some(ins.LeafHash())
		u.MerkleRoot = fn.Some(ins.MerkleRoot())
		u.LeafVersion = txscript.BaseLeafVersion

	case recipient.Custom:
		u.PkScript = r.PkScript
		u.SignScript = r.PkScript
		u.Method = r.Method

	case recipient.P2WSH:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"spending p2wsh input %v is not supported", req.OutPoint)

	case recipient.Ordinal:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"spending ordinal input %v is not supported",
			req.OutPoint)

	case nil:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"input %v has no recipient", req.OutPoint)

	default:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"input %v has unsupported recipient %T", req.OutPoint, r)
	}

	hashType, err := resolveHashType(u.Method, req.HashType)
	if err != nil {
		return nil, err
	}
	u.HashType = hashType

	sig := req.Signature
	if sig.IsZero() {
		sig = signer.Placeholder(u.Method)
	}

	claim, err := BuildClaim(&ClaimRequest{
		Recipient: claimRecipient,
		Method:    u.Method,
		HashType:  hashType,
		Signature: sig,
	})
	if err != nil {
		return nil, err
	}
	u.Claim = claim

	return u, nil
}

// buildScriptPathInput derives the locking script, leaf hash and merkle
// root of a tapscript spend from its leaf script and control block.
func buildScriptPathInput(u *UtxoDescriptor, r recipient.P2TRScriptPath) error {
	if len(r.LeafScript) == 0 || len(r.ControlBlock) == 0 {
		return txerror.Newf(txerror.ErrMalformed, "spending script "+
			"path input %v requires leaf script and control block",
			u.OutPoint)
	}
	cb, err := txscript.ParseControlBlock(r.ControlBlock)
	if err != nil {
		return txerror.New(txerror.ErrMalformed,
			"invalid control block", err)
	}

	if len(r.InternalKey) > 0 {
		internalKey, err := recipient.ParseTaprootKey(r.InternalKey)
		if err != nil {
			return err
		}
		if !bytes.Equal(schnorr.SerializePubKey(internalKey),
			schnorr.SerializePubKey(cb.InternalKey)) {

			return txerror.Newf(txerror.ErrMalformed,
				"control block internal key does not match "+
					"input %v", u.OutPoint)
		}
	}

	var root chainhash.Hash
	copy(root[:], cb.RootHash(r.LeafScript))
	if len(r.MerkleRoot) > 0 && !bytes.Equal(r.MerkleRoot, root[:]) {
		return txerror.Newf(txerror.ErrMalformed, "control block "+
			"does not prove merkle root of input %v", u.OutPoint)
	}

	outputKey := txscript.ComputeTaprootOutputKey(cb.InternalKey, root[:])
	yIsOdd := outputKey.SerializeCompressed()[0] ==
		secp256k1.PubKeyFormatCompressedOdd
	if yIsOdd != cb.OutputKeyYIsOdd {
		return txerror.Newf(txerror.ErrMalformed, "control block "+
			"output key parity mismatch for input %v", u.OutPoint)
	}

	pkScript, err := txscript.PayToTaprootScript(outputKey)
	if err != nil {
		return txerror.New(txerror.ErrMalformed,
			"unable to build taproot script", err)
	}

	leaf := txscript.NewTapLeaf(cb.LeafVersion, r.LeafScript)
	u.PkScript = pkScript
	u.SignScript = r.LeafScript
	u.Method = taprootMethod(r.OnePrevout)
	u.LeafHash = fn.Some(leaf.TapHash())
	u.MerkleRoot = fn.Some(root)
	u.LeafVersion = cb.LeafVersion

	return nil
}

// resolveHashType returns the sighash type an input signs with, rejecting
// types its signing method cannot express.
func resolveHashType(method recipient.SigningMethod,
	override fn.Option[txscript.SigHashType]) (txscript.SigHashType, error) {

	hashType := override.UnwrapOr(method.DefaultHashType())

	base := hashType &^ txscript.SigHashAnyOneCanPay
	switch {
	case method.IsTaproot() && hashType == txscript.SigHashDefault:
		return hashType, nil

	case base < txscript.SigHashAll || base > txscript.SigHashSingle:
		return 0, txerror.Newf(txerror.ErrMalformed,
			"invalid sighash type 0x%02x for %v input",
			uint32(hashType), method)
	}

	// A one-prevout spend commits to its own previous output only.
	if method == recipient.TaprootKeyPathOnePrevout &&
		hashType&txscript.SigHashAnyOneCanPay == 0 {

		return 0, txerror.Newf(txerror.ErrMalformed,
			"sighash type 0x%02x of %v input must set "+
				"ANYONECANPAY", uint32(hashType), method)
	}

	return hashType, nil
}

func taprootMethod(onePrevout bool) recipient.SigningMethod {
	if onePrevout {
		return recipient.TaprootKeyPathOnePrevout
	}
	return recipient.TaprootKeyPathAll
}
