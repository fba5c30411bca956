// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
	"github.com/btcsuite/txcompiler/wallet/txrules"
	"github.com/btcsuite/txcompiler/wallet/txsizes"
)

// InputSelectionStrategy defines how funds are selected when building a
// transaction.
type InputSelectionStrategy int

const (
	// UseAll spends every candidate, even if fewer would be sufficient.
	UseAll InputSelectionStrategy = iota

	// SelectInOrder adds candidates in the given order until the
	// selection pays for the outputs and the fee.
	SelectInOrder

	// SelectAscending sorts the candidates by ascending value and then
	// selects like SelectInOrder.
	SelectAscending

	// SelectDescending sorts the candidates by descending value and then
	// selects like SelectInOrder.
	SelectDescending
)

var strategyStrings = []string{
	UseAll:           "all",
	SelectInOrder:    "in-order",
	SelectAscending:  "ascending",
	SelectDescending: "descending",
}

// String returns the InputSelectionStrategy in human-readable form.
func (s InputSelectionStrategy) String() string {
	if s >= 0 && int(s) < len(strategyStrings) {
		return strategyStrings[s]
	}
	return fmt.Sprintf("unknown strategy (%d)", int(s))
}

// ParseStrategy parses the output of InputSelectionStrategy.String.
func ParseStrategy(s string) (InputSelectionStrategy, error) {
	for i, name := range strategyStrings {
		if name == s {
			return InputSelectionStrategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown input selection strategy %q", s)
}

// order returns the candidates in the order the strategy considers them.
// The caller's slice is never modified and equal values keep their
// relative order.
func (s InputSelectionStrategy) order(
	utxos []*txbuilder.UtxoDescriptor) ([]*txbuilder.UtxoDescriptor, error) {

	candidates := make([]*txbuilder.UtxoDescriptor, len(utxos))
	copy(candidates, utxos)

	switch s {
	case UseAll, SelectInOrder:

	case SelectAscending:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Value < candidates[j].Value
		})

	case SelectDescending:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Value > candidates[j].Value
		})

	default:
		return nil, txerror.Newf(txerror.ErrUnimplemented,
			"unknown input selection strategy %d", int(s))
	}

	return candidates, nil
}

// inputState holds the current state of the transaction including all inputs
// which were selected so far.
type inputState struct {
	// feeRate is the feerate which is used for fee calculation.
	feeRate btcunit.SatPerVByte

	// txFee is the fee of the current transaction state, including the
	// change output if change is enabled.
	txFee btcutil.Amount

	// weight is the weight txFee was computed for.
	weight btcunit.WeightUnit

	// inputTotal is the total value of all selected inputs.
	inputTotal btcutil.Amount

	// targetAmount is the amount we want to fund with the transaction
	// not including the change.
	targetAmount btcutil.Amount

	// changeScript is the change output script, nil if change is
	// disabled.
	changeScript []byte

	// inputs is the set of inputs selected so far. Their provisional
	// claims make the weight estimate exact.
	inputs []*txbuilder.UtxoDescriptor
	txIns  []*wire.TxIn

	// outputs are the required outputs of the transaction.
	//
	// NOTE: This might also be empty in case we sweep a wallet for example.
	outputs []*wire.TxOut
}

// weightEstimate returns the weight of the transaction with the current set
// of inputs, with or without a change output.
func (t *inputState) weightEstimate(change bool) btcunit.WeightUnit {
	changeScriptSize := 0
	if change {
		changeScriptSize = len(t.changeScript)
	}
	return txsizes.EstimateWeight(t.txIns, t.outputs, changeScriptSize)
}

// add adds inputs to the selection and recomputes the fee. The fee accounts
// for a change output whenever change is enabled.
func (t *inputState) add(inputs ...*txbuilder.UtxoDescriptor) {
	for _, input := range inputs {
		t.inputs = append(t.inputs, input)
		t.txIns = append(t.txIns, input.TxIn())
		t.inputTotal += input.Value
	}

	t.weight = t.weightEstimate(t.changeScript != nil)
	t.txFee = txrules.FeeForWeight(t.feeRate, t.weight)

	log.Tracef("Selection of %d %s totals %v, weight %v, fee %v",
		len(t.inputs), pickNoun(len(t.inputs), "input", "inputs"),
		t.inputTotal, t.weight, t.txFee)
}

// change returns what is left for a change output after paying the outputs
// and a fee that includes the change output. It may be zero or negative.
func (t *inputState) change() btcutil.Amount {
	return t.inputTotal - t.targetAmount - t.txFee
}

// enoughInput returns true if the selected inputs pay for the outputs and
// the fee and the transaction would have at least one output.
func (t *inputState) enoughInput() bool {
	if len(t.inputs) == 0 {
		return false
	}
	if t.inputTotal < t.targetAmount+t.txFee {
		return false
	}

	// Without required outputs the change output is the only one left.
	if len(t.outputs) == 0 {
		return t.changeScript != nil && t.change() > 0
	}

	return true
}

// result finalizes the selection. The change output is kept only if it
// carries a positive value, otherwise the weight and fee are recomputed
// without it and the surplus goes to the fee.
func (t *inputState) result(
	required []*txbuilder.OutputDescriptor) *SelectionResult {

	outputs := make([]*txbuilder.OutputDescriptor, len(required),
		len(required)+1)
	copy(outputs, required)

	res := &SelectionResult{
		Inputs:      t.inputs,
		ChangeIndex: -1,
		Weight:      t.weight,
		Fee:         t.txFee,
		TotalInput:  t.inputTotal,
	}

	if t.changeScript != nil {
		if change := t.change(); change > 0 {
			res.ChangeIndex = len(outputs)
			outputs = append(outputs, &txbuilder.OutputDescriptor{
				Value:    change,
				PkScript: t.changeScript,
			})
		} else {
			res.Weight = t.weightEstimate(false)
			res.Fee = txrules.FeeForWeight(t.feeRate, res.Weight)
		}
	}
	res.Outputs = outputs

	return res
}
