// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txbuilder

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/txerror"
	"github.com/btcsuite/txcompiler/wallet/txrules"
)

// OutputRequest describes a payment.
type OutputRequest struct {
	Value     btcutil.Amount
	Recipient recipient.Recipient
}

// BuildOutput resolves req into an OutputDescriptor.
func BuildOutput(req *OutputRequest, params *chaincfg.Params) (
	*OutputDescriptor, error) {

	if err := txrules.CheckOutputValue(req.Value); err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"invalid output value", err)
	}

	script, err := recipient.LockingScript(req.Recipient, params)
	if err != nil {
		return nil, err
	}
	out := &OutputDescriptor{
		Value:    req.Value,
		PkScript: script.PkScript,
	}

	// A commit output has to remember how its inscription is revealed.
	if r, ok := req.Recipient.(recipient.BRC20Transfer); ok {
		ins, err := recipient.NewBRC20Inscription(r)
		if err != nil {
			return nil, err
		}
		controlBlock, err := ins.ControlBlock()
		if err != nil {
			return nil, txerror.New(txerror.ErrMalformed,
				"unable to build inscription control block", err)
		}
		out.TapLeafScript = ins.LeafScript()
		out.ControlBlock = controlBlock
	}

	return out, nil
}

// BuildChangeOutput returns the locking script change is paid to.
func BuildChangeOutput(r recipient.Recipient,
	params *chaincfg.Params) ([]byte, error) {

	script, err := recipient.LockingScript(r, params)
	if err != nil {
		return nil, err
	}
	return script.PkScript, nil
}
