// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package recipient

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// DecodeAddress maps an encoded address onto the explicit recipient it pays
// to. Base58 addresses must carry the network's pubkey-hash or script-hash
// version, segwit addresses must be witness v0 (20 or 32 byte program) or
// v1 (32 byte program). A v1 program is taken as an already tweaked output
// key.
func DecodeAddress(addr string, params *chaincfg.Params) (Recipient, error) {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		var (
			verErr btcutil.UnsupportedWitnessVerError
			lenErr btcutil.UnsupportedWitnessProgLenError
		)
		switch {
		case errors.Is(err, btcutil.ErrUnknownAddressType),
			errors.As(err, &verErr), errors.As(err, &lenErr):

			return nil, txerror.New(txerror.ErrUnimplemented,
				"unsupported address type", err)
		}
		return nil, txerror.New(txerror.ErrInvalidRecipient,
			"invalid address", err)
	}
	if !decoded.IsForNet(params) {
		return nil, txerror.Newf(txerror.ErrInvalidRecipient,
			"address %s is not for %s", addr, params.Name)
	}

	switch a := decoded.(type) {
	case *btcutil.AddressPubKeyHash:
		return P2PKH{PubKeyHash: a.ScriptAddress()}, nil

	case *btcutil.AddressScriptHash:
		return P2SH{ScriptHash: a.ScriptAddress()}, nil

	case *btcutil.AddressWitnessPubKeyHash:
		if a.WitnessVersion() != 0 {
			return nil, txerror.Newf(txerror.ErrUnimplemented,
				"unsupported witness version %d",
				a.WitnessVersion())
		}
		return P2WPKH{PubKeyHash: a.ScriptAddress()}, nil

	case *btcutil.AddressWitnessScriptHash:
		if a.WitnessVersion() != 0 {
			return nil, txerror.Newf(txerror.ErrUnimplemented,
				"unsupported witness version %d",
				a.WitnessVersion())
		}
		return P2WSH{ScriptHash: a.ScriptAddress()}, nil

	case *btcutil.AddressTaproot:
		return P2TRKeyPath{TweakedKey: a.ScriptAddress()}, nil

	default:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"unsupported address type %T", decoded)
	}
}
