// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package recipient

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/txcompiler/wallet/brc20"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// Script is a resolved locking script together with the signing method a
// spend of it will use.
type Script struct {
	PkScript []byte
	Method   SigningMethod
}

// LockingScript resolves r into its canonical locking script.
func LockingScript(r Recipient, params *chaincfg.Params) (*Script, error) {
	switch r := r.(type) {
	case P2PKH:
		hash, err := pubKeyHash(r.PubKey, r.PubKeyHash, false)
		if err != nil {
			return nil, err
		}
		addr, err := btcutil.NewAddressPubKeyHash(hash, params)
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"invalid public key hash", err)
		}
		return payToAddr(addr, Legacy)

	case P2SH:
		var (
			addr *btcutil.AddressScriptHash
			err  error
		)
		switch {
		case len(r.RedeemScript) > 0:
			addr, err = btcutil.NewAddressScriptHash(
				r.RedeemScript, params,
			)
		case len(r.ScriptHash) > 0:
			addr, err = btcutil.NewAddressScriptHashFromHash(
				r.ScriptHash, params,
			)
		default:
			return nil, txerror.Newf(txerror.ErrMalformed,
				"p2sh recipient has neither script nor hash")
		}
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"invalid script hash", err)
		}
		return payToAddr(addr, Legacy)

	case P2WPKH:
		hash, err := pubKeyHash(r.PubKey, r.PubKeyHash, true)
		if err != nil {
			return nil, err
		}
		addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, params)
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"invalid witness public key hash", err)
		}
		return payToAddr(addr, Segwit)

	case P2WSH:
		var program []byte
		switch {
		case len(r.WitnessScript) > 0:
			program = chainhash.HashB(r.WitnessScript)
		case len(r.ScriptHash) > 0:
			program = r.ScriptHash
		default:
			return nil, txerror.Newf(txerror.ErrMalformed,
				"p2wsh recipient has neither script nor hash")
		}
		addr, err := btcutil.NewAddressWitnessScriptHash(
			program, params,
		)
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"invalid witness script hash", err)
		}
		return payToAddr(addr, Segwit)

	case P2TRKeyPath:
		var outputKey *btcec.PublicKey
		switch {
		case len(r.PubKey) > 0:
			internalKey, err := ParseTaprootKey(r.PubKey)
			if err != nil {
				return nil, err
			}
			outputKey = txscript.ComputeTaprootKeyNoScript(
				internalKey,
			)

		case len(r.TweakedKey) > 0:
			// The key is trusted to be tweaked already.
			key, err := ParseTaprootKey(r.TweakedKey)
			if err != nil {
				return nil, err
			}
			outputKey = key

		default:
			return nil, txerror.Newf(txerror.ErrMalformed,
				"p2tr recipient has no key")
		}
		return payToTaproot(outputKey, taprootMethod(r.OnePrevout))

	case P2TRScriptPath:
		internalKey, err := ParseTaprootKey(r.InternalKey)
		if err != nil {
			return nil, err
		}
		root, err := ScriptPathRoot(r)
		if err != nil {
			return nil, err
		}
		outputKey := txscript.ComputeTaprootOutputKey(
			internalKey, root[:],
		)
		return payToTaproot(outputKey, taprootMethod(r.OnePrevout))

	case BRC20Transfer:
		ins, err := NewBRC20Inscription(r)
		if err != nil {
			return nil, err
		}
		return payToTaproot(ins.OutputKey(), taprootMethod(r.OnePrevout))

	case Custom:
		return &Script{PkScript: r.PkScript, Method: r.Method}, nil

	case Address:
		decoded, err := DecodeAddress(r.Address, params)
		if err != nil {
			return nil, err
		}
		return LockingScript(decoded, params)

	case Ordinal:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"ordinal inscriptions are not supported")

	case nil:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"no recipient provided")

	default:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"unsupported recipient %T", r)
	}
}

// ScriptPathRoot returns the taproot merkle root of a script-path
// recipient. An explicit MerkleRoot wins, then the root proven by
// ControlBlock, and finally the single-leaf tree of LeafScript.
func ScriptPathRoot(r P2TRScriptPath) (chainhash.Hash, error) {
	var root chainhash.Hash
	switch {
	case len(r.MerkleRoot) > 0:
		if len(r.MerkleRoot) != chainhash.HashSize {
			return root, txerror.Newf(txerror.ErrMalformed,
				"merkle root must be %d bytes, got %d",
				chainhash.HashSize, len(r.MerkleRoot))
		}
		copy(root[:], r.MerkleRoot)

	case len(r.LeafScript) > 0 && len(r.ControlBlock) > 0:
		cb, err := txscript.ParseControlBlock(r.ControlBlock)
		if err != nil {
			return root, txerror.New(txerror.ErrMalformed,
				"invalid control block", err)
		}
		copy(root[:], cb.RootHash(r.LeafScript))

	case len(r.LeafScript) > 0:
		root = txscript.NewBaseTapLeaf(r.LeafScript).TapHash()

	default:
		return root, txerror.Newf(txerror.ErrMalformed,
			"script path recipient has no merkle root or leaf")
	}
	return root, nil
}

// NewBRC20Inscription builds the transfer inscription described by r.
func NewBRC20Inscription(r BRC20Transfer) (*brc20.TransferInscription,
	error) {

	key, err := ParseTaprootKey(r.PubKey)
	if err != nil {
		return nil, err
	}
	ticker, err := brc20.NewTicker(r.Ticker)
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"invalid brc20 ticker", err)
	}
	ins, err := brc20.NewTransferInscription(key, ticker, r.Amount)
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"invalid brc20 transfer", err)
	}
	return ins, nil
}

func taprootMethod(onePrevout bool) SigningMethod {
	if onePrevout {
		return TaprootKeyPathOnePrevout
	}
	return TaprootKeyPathAll
}

func payToAddr(addr btcutil.Address, method SigningMethod) (*Script, error) {
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"unable to build locking script", err)
	}
	return &Script{PkScript: pkScript, Method: method}, nil
}

func payToTaproot(key *btcec.PublicKey, method SigningMethod) (*Script,
	error) {

	pkScript, err := txscript.PayToTaprootScript(key)
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"unable to build taproot script", err)
	}
	return &Script{PkScript: pkScript, Method: method}, nil
}

// pubKeyHash returns hash160(pubKey) or the supplied 20 byte hash.
func pubKeyHash(pubKey, hash []byte, witness bool) ([]byte, error) {
	switch {
	case len(pubKey) > 0:
		parse := ParsePubKey
		if witness {
			parse = ParseCompressedPubKey
		}
		if _, err := parse(pubKey); err != nil {
			return nil, err
		}
		return btcutil.Hash160(pubKey), nil

	case len(hash) > 0:
		if len(hash) != 20 {
			return nil, txerror.Newf(txerror.ErrMalformed,
				"public key hash must be 20 bytes, got %d",
				len(hash))
		}
		return hash, nil

	default:
		return nil, txerror.Newf(txerror.ErrMalformed,
			"recipient has neither public key nor hash")
	}
}
