// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txbuilder

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/signer"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// ClaimRequest carries what is needed to unlock one input.
type ClaimRequest struct {
	Recipient recipient.Recipient
	Method    recipient.SigningMethod
	HashType  txscript.SigHashType
	Signature signer.Signature

	// PubKey supplies the public key of a P2PKH or P2WPKH input that was
	// described by its hash. It must hash to that value.
	PubKey []byte
}

// BuildClaim assembles the signature script and witness that unlock an
// input locked to req.Recipient.
func BuildClaim(req *ClaimRequest) (*SpendClaim, error) {
	r, err := BindPubKey(req.Recipient, req.PubKey)
	if err != nil {
		return nil, err
	}

	switch r := r.(type) {
	case recipient.P2PKH:
		sig, err := serializeSig(req)
		if err != nil {
			return nil, err
		}
		if len(r.PubKey) == 0 {
			return nil, txerror.Newf(txerror.ErrMalformed,
				"p2pkh claim requires a public key")
		}
		sigScript, err := txscript.NewScriptBuilder().
			AddData(sig).AddData(r.PubKey).Script()
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"unable to build p2pkh signature script", err)
		}
		return &SpendClaim{SignatureScript: sigScript}, nil

	case recipient.P2SH:
		sigScript, err := txscript.NewScriptBuilder().
			AddData(r.RedeemScript).Script()
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"unable to push redeem script", err)
		}
		return &SpendClaim{SignatureScript: sigScript}, nil

	case recipient.P2WPKH:
		sig, err := serializeSig(req)
		if err != nil {
			return nil, err
		}
		if len(r.PubKey) != btcec.PubKeyBytesLenCompressed {
			return nil, txerror.Newf(txerror.ErrMalformed,
				"p2wpkh claim requires a compressed public key")
		}
		return &SpendClaim{Witness: wire.TxWitness{sig, r.PubKey}}, nil

	case recipient.P2TRKeyPath:
		sig, err := serializeSig(req)
		if err != nil {
			return nil, err
		}
		return &SpendClaim{Witness: wire.TxWitness{sig}}, nil

	case recipient.P2TRScriptPath:
		sig, err := serializeSig(req)
		if err != nil {
			return nil, err
		}
		if len(r.LeafScript) == 0 || len(r.ControlBlock) == 0 {
			return nil, txerror.Newf(txerror.ErrMalformed,
				"script path claim requires leaf script and "+
					"control block")
		}
		return &SpendClaim{
			Witness: wire.TxWitness{sig, r.LeafScript, r.ControlBlock},
		}, nil

	case recipient.BRC20Transfer:
		sig, err := serializeSig(req)
		if err != nil {
			return nil, err
		}
		ins, err := recipient.NewBRC20Inscription(r)
		if err != nil {
			return nil, err
		}
		controlBlock, err := ins.ControlBlock()
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"unable to build inscription control block", err)
		}
		return &SpendClaim{
			Witness: wire.TxWitness{
				sig, ins.LeafScript(), controlBlock,
			},
		}, nil

	case recipient.Custom:
		return &SpendClaim{
			SignatureScript: r.ScriptSig,
			Witness:         r.Witness,
		}, nil

	case recipient.P2WSH:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"p2wsh claims are not supported")

	case recipient.Ordinal:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"ordinal claims are not supported")

	case recipient.Address:
		return nil, txerror.Newf(txerror.ErrMalformed,
			"address %q must be resolved before building a claim",
			r.Address)

	case nil:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"no recipient to build a claim for")

	default:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"unsupported claim recipient %T", r)
	}
}

// BindPubKey fills in the public key of a hash-only P2PKH or P2WPKH
// recipient. Other recipients, and an empty pubKey, are returned as-is. A
// key that does not match the recipient is rejected.
func BindPubKey(r recipient.Recipient,
	pubKey []byte) (recipient.Recipient, error) {

	if len(pubKey) == 0 {
		return r, nil
	}

	switch r := r.(type) {
	case recipient.P2PKH:
		if err := matchPubKey(r.PubKey, r.PubKeyHash, pubKey); err != nil {
			return nil, err
		}
		if _, err := recipient.ParsePubKey(pubKey); err != nil {
			return nil, err
		}
		r.PubKey = pubKey
		return r, nil

	case recipient.P2WPKH:
		if err := matchPubKey(r.PubKey, r.PubKeyHash, pubKey); err != nil {
			return nil, err
		}
		if _, err := recipient.ParseCompressedPubKey(pubKey); err != nil {
			return nil, err
		}
		r.PubKey = pubKey
		return r, nil

	default:
		return r, nil
	}
}

func matchPubKey(known, hash, pubKey []byte) error {
	switch {
	case len(known) > 0 && !bytes.Equal(known, pubKey):
		return txerror.Newf(txerror.ErrMalformed,
			"public key does not match the input")

	case len(hash) > 0 && !bytes.Equal(btcutil.Hash160(pubKey), hash):
		return txerror.Newf(txerror.ErrMalformed,
			"public key does not hash to %x", hash)
	}
	return nil
}

// serializeSig checks the signature against the method and returns its
// script form.
func serializeSig(req *ClaimRequest) ([]byte, error) {
	if req.Signature.IsZero() {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"missing %v signature", req.Method)
	}
	if err := req.Signature.CheckMethod(req.Method); err != nil {
		return nil, err
	}
	return req.Signature.Serialize(req.HashType)
}
