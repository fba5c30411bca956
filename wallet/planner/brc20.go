// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package planner prepares the pair of transactions that inscribe a BRC20
// transfer: a commit paying to the inscription's taproot output, and a
// reveal spending it through the inscription leaf.
package planner

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/btcsuite/txcompiler/wallet/compiler"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/txauthor"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// BRC20Request describes a BRC20 transfer inscription to plan.
type BRC20Request struct {
	Inscription recipient.BRC20Transfer

	// TaggedOutput is the output of the reveal transaction that receives
	// the inscribed satoshis.
	TaggedOutput txbuilder.OutputRequest

	// Inputs fund the commit transaction.
	Inputs   []txbuilder.InputRequest
	Strategy txauthor.InputSelectionStrategy
	FeeRate  btcunit.SatPerVByte

	ChangeRecipient recipient.Recipient
	DisableChange   bool

	Params *chaincfg.Params
}

// BRC20Plan holds the commit and reveal transactions as fully determined
// signing requests. Both use the UseAll strategy with change disabled and
// a zero fee rate, so compiling them reproduces the planned transactions
// exactly. Their fees are the difference between inputs and outputs.
type BRC20Plan struct {
	Commit *compiler.SigningRequest
	Reveal *compiler.SigningRequest

	// CommitTxID is the hash of the unsigned commit transaction, which
	// the reveal spends. It is the final txid as long as every commit
	// input is a witness spend.
	CommitTxID chainhash.Hash

	// CommitValue is the value of the inscription output, enough to pay
	// the reveal fee and the tagged output.
	CommitValue btcutil.Amount

	// CommitFee is everything the commit inputs do not pay to outputs.
	CommitFee btcutil.Amount
	RevealFee btcutil.Amount
}

// PlanBRC20 sizes the reveal transaction, funds a commit output that pays
// for it, and returns both transactions.
func PlanBRC20(req *BRC20Request) (*BRC20Plan, error) {
	params := req.Params
	if params == nil {
		params = &chaincfg.MainNetParams
	}

	revealFee, err := estimateRevealFee(req, params)
	if err != nil {
		return nil, err
	}

	commitValue := revealFee + req.TaggedOutput.Value
	commitOutput := txbuilder.OutputRequest{
		Value:     commitValue,
		Recipient: req.Inscription,
	}

	commit, err := compiler.PreImageHashes(&compiler.SigningRequest{
		Inputs:          req.Inputs,
		Outputs:         []txbuilder.OutputRequest{commitOutput},
		Strategy:        req.Strategy,
		FeeRate:         req.FeeRate,
		ChangeRecipient: req.ChangeRecipient,
		DisableChange:   req.DisableChange,
		Params:          params,
	})
	if err != nil {
		return nil, err
	}
	commitTxID := commit.Tx.TxHash()

	// Without change any surplus of the selection is paid as fee too.
	commitFee := txbuilder.SumUtxoValues(commit.Inputs) -
		txbuilder.SumOutputValues(commit.Outputs)

	// Pin the commit to what was just selected: the chosen inputs in
	// selection order and the change as a regular output.
	selected, err := selectedInputs(req.Inputs, commit.Inputs)
	if err != nil {
		return nil, err
	}
	outputs := []txbuilder.OutputRequest{commitOutput}
	if commit.ChangeIndex >= 0 {
		outputs = append(outputs, txbuilder.OutputRequest{
			Value:     commit.Outputs[commit.ChangeIndex].Value,
			Recipient: req.ChangeRecipient,
		})
	}

	plan := &BRC20Plan{
		Commit: &compiler.SigningRequest{
			Inputs:        selected,
			Outputs:       outputs,
			Strategy:      txauthor.UseAll,
			DisableChange: true,
			Params:        params,
		},
		Reveal: &compiler.SigningRequest{
			Inputs: []txbuilder.InputRequest{{
				OutPoint:  wire.OutPoint{Hash: commitTxID},
				Value:     commitValue,
				Recipient: req.Inscription,
			}},
			Outputs:       []txbuilder.OutputRequest{req.TaggedOutput},
			Strategy:      txauthor.UseAll,
			DisableChange: true,
			Params:        params,
		},
		CommitTxID:  commitTxID,
		CommitValue: commitValue,
		CommitFee:   commitFee,
		RevealFee:   revealFee,
	}

	log.Infof("Planned brc20 transfer of %s %s: commit %v (fee %v), "+
		"reveal fee %v", req.Inscription.Amount, req.Inscription.Ticker,
		commitTxID, commitFee, revealFee)

	return plan, nil
}

// estimateRevealFee returns the fee of a reveal transaction spending the
// inscription to the tagged output at the requested rate.
func estimateRevealFee(req *BRC20Request,
	params *chaincfg.Params) (btcutil.Amount, error) {

	// The input value only has to cover the output, it does not affect
	// the weight.
	dummy, err := compiler.PreImageHashes(&compiler.SigningRequest{
		Inputs: []txbuilder.InputRequest{{
			Value:     btcutil.MaxSatoshi,
			Recipient: req.Inscription,
		}},
		Outputs:       []txbuilder.OutputRequest{req.TaggedOutput},
		Strategy:      txauthor.UseAll,
		FeeRate:       req.FeeRate,
		DisableChange: true,
		Params:        params,
	})
	if err != nil {
		return 0, err
	}

	log.Debugf("Estimated reveal weight %v, fee %v", dummy.Weight,
		dummy.Fee)

	return dummy.Fee, nil
}

// selectedInputs returns the requests of the selected inputs in selection
// order.
func selectedInputs(inputs []txbuilder.InputRequest,
	selected []*txbuilder.UtxoDescriptor) ([]txbuilder.InputRequest, error) {

	byOutPoint := make(map[wire.OutPoint]txbuilder.InputRequest, len(inputs))
	for _, in := range inputs {
		byOutPoint[in.OutPoint] = in
	}

	reqs := make([]txbuilder.InputRequest, 0, len(selected))
	for _, u := range selected {
		in, ok := byOutPoint[u.OutPoint]
		if !ok {
			return nil, txerror.Newf(txerror.ErrMalformed,
				"selected input %v was not requested",
				u.OutPoint)
		}
		reqs = append(reqs, in)
	}
	return reqs, nil
}
