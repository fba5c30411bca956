// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compiler

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// SighashComputer computes the digest an input's signature commits to.
type SighashComputer interface {
	// SigHash returns the digest for input idx of tx, which spends in.
	// sigHashes and fetcher cover every input of tx.
	SigHash(tx *wire.MsgTx, idx int, in *txbuilder.UtxoDescriptor,
		sigHashes *txscript.TxSigHashes,
		fetcher txscript.PrevOutputFetcher) ([]byte, error)
}

// StandardSighash computes legacy, BIP-143 and BIP-341 digests with btcd's
// txscript.
type StandardSighash struct{}

// A compile time check to ensure StandardSighash implements the
// SighashComputer interface.
var _ SighashComputer = StandardSighash{}

// SigHash implements SighashComputer.
func (StandardSighash) SigHash(tx *wire.MsgTx, idx int,
	in *txbuilder.UtxoDescriptor, sigHashes *txscript.TxSigHashes,
	fetcher txscript.PrevOutputFetcher) ([]byte, error) {

	var (
		digest []byte
		err    error
	)
	switch in.Method {
	case recipient.Legacy:
		digest, err = txscript.CalcSignatureHash(
			in.SignScript, in.HashType, tx, idx,
		)

	case recipient.Segwit:
		digest, err = txscript.CalcWitnessSigHash(
			in.SignScript, sigHashes, in.HashType, tx, idx,
			int64(in.Value),
		)

	case recipient.TaprootKeyPathAll, recipient.TaprootKeyPathOnePrevout:
		if in.LeafHash.IsNone() {
			digest, err = txscript.CalcTaprootSignatureHash(
				sigHashes, in.HashType, tx, idx, fetcher,
			)
			break
		}

		leaf := txscript.NewTapLeaf(in.LeafVersion, in.SignScript)
		want := in.LeafHash.UnwrapOr(chainhash.Hash{})
		if leaf.TapHash() != want {
			return nil, txerror.Newf(txerror.ErrMalformed,
				"leaf script of input %d does not match its "+
					"leaf hash %v", idx, want)
		}
		digest, err = txscript.CalcTapscriptSignaturehash(
			sigHashes, in.HashType, tx, idx, fetcher, leaf,
		)

	default:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"no sighash for signing method %v", in.Method)
	}
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"unable to compute sighash", err)
	}

	return digest, nil
}
