// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txauthor selects the coins that fund a transaction and computes
// its weight, fee and change.
package txauthor

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// SelectionRequest describes the coins available to fund a set of outputs.
type SelectionRequest struct {
	// Utxos are the candidate inputs, in the caller's order.
	Utxos []*txbuilder.UtxoDescriptor

	// Outputs are the required outputs. They are never reordered.
	Outputs []*txbuilder.OutputDescriptor

	Strategy InputSelectionStrategy
	FeeRate  btcunit.SatPerVByte

	// ChangeScript receives the change. It must be set unless
	// DisableChange is.
	ChangeScript  []byte
	DisableChange bool
}

// SelectionResult is a funded transaction skeleton.
type SelectionResult struct {
	// Inputs are the selected coins in selection order.
	Inputs []*txbuilder.UtxoDescriptor

	// Outputs are the required outputs followed by the change output, if
	// one was kept.
	Outputs []*txbuilder.OutputDescriptor

	// ChangeIndex is the position of the change output in Outputs, or -1.
	ChangeIndex int

	// Weight is the weight of the transaction once every input carries a
	// claim of the size of its provisional one.
	Weight btcunit.WeightUnit

	// Fee is the fee the transaction pays at the requested rate. Any
	// surplus not returned as change is paid on top of it.
	Fee btcutil.Amount

	TotalInput btcutil.Amount
}

// SelectCoins chooses inputs from req.Utxos according to req.Strategy
// until they pay for the outputs and the fee of the resulting transaction.
// Change is added only if its value is positive.
//
// A nil result is returned together with an ErrInsufficientInputs error
// if every candidate has been considered and the outputs plus fee are
// still not covered.
func SelectCoins(req *SelectionRequest) (*SelectionResult, error) {
	if !req.DisableChange && len(req.ChangeScript) == 0 {
		return nil, txerror.Newf(txerror.ErrMissingChangeScript,
			"change is enabled but no change script was given")
	}
	if req.FeeRate.Amount() < 0 {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"negative fee rate %v", req.FeeRate)
	}

	candidates, err := req.Strategy.order(req.Utxos)
	if err != nil {
		return nil, err
	}

	outputs := make([]*wire.TxOut, 0, len(req.Outputs))
	for _, out := range req.Outputs {
		outputs = append(outputs, out.TxOut())
	}

	state := &inputState{
		feeRate:      req.FeeRate,
		targetAmount: txbuilder.SumOutputValues(req.Outputs),
		outputs:      outputs,
	}
	if !req.DisableChange {
		state.changeScript = req.ChangeScript
	}

	switch req.Strategy {
	case UseAll:
		state.add(candidates...)

	default:
		// Fold over the candidates one at a time and stop at the
		// first sufficient prefix.
		for _, utxo := range candidates {
			if state.enoughInput() {
				break
			}
			state.add(utxo)
		}
	}

	if !state.enoughInput() {
		log.Debugf("Insufficient inputs: %d of %d candidates "+
			"totalling %v cannot pay %v plus fee %v",
			len(state.inputs), len(candidates), state.inputTotal,
			state.targetAmount, state.txFee)

		return nil, txerror.Newf(txerror.ErrInsufficientInputs,
			"insufficient funds available to construct "+
				"transaction: amount: %v, minimum fee: %v, "+
				"available amount: %v", state.targetAmount,
			state.txFee, state.inputTotal)
	}

	result := state.result(req.Outputs)

	log.Debugf("Selected %d of %d %s (%v) for %d %s, fee %v at %v, "+
		"weight %v, change index %d", len(result.Inputs),
		len(candidates), pickNoun(len(candidates), "input", "inputs"),
		result.TotalInput, len(req.Outputs),
		pickNoun(len(req.Outputs), "output", "outputs"), result.Fee,
		req.FeeRate, result.Weight, result.ChangeIndex)

	return result, nil
}

// UnsignedTx returns the transaction skeleton with empty unlocking data.
func (r *SelectionResult) UnsignedTx(version int32,
	lockTime uint32) *wire.MsgTx {

	tx := wire.NewMsgTx(version)
	tx.LockTime = lockTime
	for _, in := range r.Inputs {
		tx.AddTxIn(in.UnsignedTxIn())
	}
	for _, out := range r.Outputs {
		tx.AddTxOut(out.TxOut())
	}
	return tx
}

// PrevOutFetcher returns a fetcher for the previous outputs spent by the
// selected inputs.
func (r *SelectionResult) PrevOutFetcher() *txscript.MultiPrevOutFetcher {
	return PrevOutFetcher(r.Inputs)
}

// PrevOutFetcher creates a txscript.PrevOutFetcher over the previous outputs
// of the given inputs.
func PrevOutFetcher(
	inputs []*txbuilder.UtxoDescriptor) *txscript.MultiPrevOutFetcher {

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for _, in := range inputs {
		fetcher.AddPrevOut(in.OutPoint, in.PrevOut())
	}
	return fetcher
}

// pickNoun returns the singular or plural form of a noun depending
// on the count n.
func pickNoun(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
