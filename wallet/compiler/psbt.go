// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compiler

import (
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// ToPSBT exports the unsigned transaction of out as a BIP-174 packet for
// an external signer. Witness and taproot inputs carry their previous
// output. Legacy inputs carry none since only the output, not the full
// previous transaction, is known.
func ToPSBT(out *PreSigningOutput) (*psbt.Packet, error) {
	packet, err := psbt.NewFromUnsignedTx(out.Tx.Copy())
	if err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"unable to create psbt", err)
	}

	for i, in := range out.Inputs {
		pIn := &packet.Inputs[i]
		pIn.SighashType = in.HashType

		if in.Method != recipient.Legacy {
			pIn.WitnessUtxo = in.PrevOut()
		}

		if err := addInputScripts(pIn, in); err != nil {
			return nil, err
		}
	}

	if err := packet.SanityCheck(); err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"invalid psbt", err)
	}

	log.Debugf("Exported tx %v with %d inputs as psbt",
		out.Tx.TxHash(), len(out.Inputs))

	return packet, nil
}

// addInputScripts records the scripts a signer needs beyond the previous
// output.
func addInputScripts(pIn *psbt.PInput, in *txbuilder.UtxoDescriptor) error {
	switch r := in.Recipient.(type) {
	case recipient.P2SH:
		pIn.RedeemScript = r.RedeemScript

	case recipient.P2TRKeyPath:
		if len(r.PubKey) == 0 {
			return nil
		}
		key, err := recipient.ParseTaprootKey(r.PubKey)
		if err != nil {
			return err
		}
		pIn.TaprootInternalKey = schnorr.SerializePubKey(key)

	case recipient.P2TRScriptPath:
		pIn.TaprootLeafScript = []*psbt.TaprootTapLeafScript{{
			ControlBlock: r.ControlBlock,
			Script:       r.LeafScript,
			LeafVersion:  in.LeafVersion,
		}}

	case recipient.BRC20Transfer:
		ins, err := recipient.NewBRC20Inscription(r)
		if err != nil {
			return err
		}
		controlBlock, err := ins.ControlBlock()
		if err != nil {
			return txerror.New(txerror.ErrMalformed,
				"unable to build control block", err)
		}
		pIn.TaprootInternalKey = schnorr.SerializePubKey(
			ins.InternalKey(),
		)
		pIn.TaprootLeafScript = []*psbt.TaprootTapLeafScript{{
			ControlBlock: controlBlock,
			Script:       ins.LeafScript(),
			LeafVersion:  in.LeafVersion,
		}}
	}

	return nil
}
