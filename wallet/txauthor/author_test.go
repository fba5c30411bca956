// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
	"github.com/btcsuite/txcompiler/wallet/txsizes"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

var (
	params = &chaincfg.RegressionNetParams

	_, testPub = btcec.PrivKeyFromBytes([]byte{0x2a})

	// changeScript is a P2WPKH script. Only its length matters.
	changeScript = append(
		[]byte{0x00, 0x14}, make([]byte, 20)...,
	)
)

// createUtxos creates P2WPKH coins of the given values carrying placeholder
// claims.
func createUtxos(t *testing.T, values ...btcutil.Amount) []*txbuilder.UtxoDescriptor {
	utxos := make([]*txbuilder.UtxoDescriptor, 0, len(values))
	for i, value := range values {
		u, err := txbuilder.BuildInput(&txbuilder.InputRequest{
			OutPoint: wire.OutPoint{
				Hash:  chainhash.Hash{byte(i + 1)},
				Index: uint32(i),
			},
			Value: value,
			Recipient: recipient.P2WPKH{
				PubKey: testPub.SerializeCompressed(),
			},
		}, params)
		require.NoError(t, err)
		utxos = append(utxos, u)
	}
	return utxos
}

// createOutputs creates P2WPKH outputs of the given values.
func createOutputs(values ...btcutil.Amount) []*txbuilder.OutputDescriptor {
	outputs := make([]*txbuilder.OutputDescriptor, 0, len(values))
	for _, value := range values {
		outputs = append(outputs, &txbuilder.OutputDescriptor{
			Value:    value,
			PkScript: make([]byte, txsizes.P2WPKHPkScriptSize),
		})
	}
	return outputs
}

func values(utxos []*txbuilder.UtxoDescriptor) []btcutil.Amount {
	v := make([]btcutil.Amount, 0, len(utxos))
	for _, u := range utxos {
		v = append(v, u.Value)
	}
	return v
}

// checkResult asserts the invariants every successful selection holds and
// that the reported weight matches the consensus weight of the skeleton.
func checkResult(t *testing.T, req *SelectionRequest, res *SelectionResult) {
	t.Helper()

	in := txbuilder.SumUtxoValues(res.Inputs)
	out := txbuilder.SumOutputValues(res.Outputs)
	require.Equal(t, in, res.TotalInput)
	require.GreaterOrEqual(t, int64(in), int64(out+res.Fee),
		spew.Sdump(res))

	require.Equal(t, req.FeeRate.FeeForWeight(res.Weight), res.Fee)

	if res.ChangeIndex >= 0 {
		require.Equal(t, len(res.Outputs)-1, res.ChangeIndex)
		require.Positive(t, int64(res.Outputs[res.ChangeIndex].Value))
		require.Equal(t, in, out+res.Fee)
	} else {
		require.Len(t, res.Outputs, len(req.Outputs))
	}
	require.Equal(t, req.Outputs, res.Outputs[:len(req.Outputs)])

	tx := res.UnsignedTx(wire.TxVersion, 0)
	for i, u := range res.Inputs {
		tx.TxIn[i] = u.TxIn()
	}
	require.EqualValues(t,
		blockchain.GetTransactionWeight(btcutil.NewTx(tx)),
		res.Weight.Uint64())
}

// TestSelectCoinsScenarios runs the reference selection scenarios at a fee
// rate of 2 sat/vb.
//
// The weights of the P2WPKH skeletons below are:
//
//	1 input, 1 output:            439 wu (110 vb)
//	1 input, 1 output + change:   563 wu (141 vb)
//	2 inputs, 1 output + change:  836 wu (209 vb)
//	2 inputs, 2 outputs:          836 wu (209 vb)
//	2 inputs, 2 outputs + change: 960 wu (240 vb)
//	3 inputs, 1 output:           985 wu (247 vb)
//	3 inputs, 1 output + change: 1109 wu (278 vb)
func TestSelectCoinsScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		utxos         []btcutil.Amount
		outputs       []btcutil.Amount
		strategy      InputSelectionStrategy
		disableChange bool

		selected []btcutil.Amount
		fee      btcutil.Amount
		change   btcutil.Amount
	}{{
		name:          "use all without change",
		utxos:         []btcutil.Amount{1000, 2000, 3000},
		outputs:       []btcutil.Amount{500},
		strategy:      UseAll,
		disableChange: true,
		selected:      []btcutil.Amount{1000, 2000, 3000},
		fee:           494,
	}, {
		name:     "use all with change",
		utxos:    []btcutil.Amount{1000, 2000, 3000},
		outputs:  []btcutil.Amount{500},
		strategy: UseAll,
		selected: []btcutil.Amount{1000, 2000, 3000},
		fee:      556,
		change:   6000 - 500 - 556,
	}, {
		name:          "in order without change",
		utxos:         []btcutil.Amount{1000, 3000, 4000},
		outputs:       []btcutil.Amount{1000, 1000},
		strategy:      SelectInOrder,
		disableChange: true,
		selected:      []btcutil.Amount{1000, 3000},
		fee:           418,
	}, {
		name:     "in order with change",
		utxos:    []btcutil.Amount{1000, 3000, 4000},
		outputs:  []btcutil.Amount{1000, 1000},
		strategy: SelectInOrder,
		selected: []btcutil.Amount{1000, 3000},
		fee:      480,
		change:   4000 - 2000 - 480,
	}, {
		name:     "ascending with change",
		utxos:    []btcutil.Amount{8000, 4000, 2000},
		outputs:  []btcutil.Amount{3000},
		strategy: SelectAscending,
		selected: []btcutil.Amount{2000, 4000},
		fee:      418,
		change:   6000 - 3000 - 418,
	}, {
		name:     "descending with change",
		utxos:    []btcutil.Amount{1000, 5000, 3000},
		outputs:  []btcutil.Amount{1000},
		strategy: SelectDescending,
		selected: []btcutil.Amount{5000},
		fee:      282,
		change:   5000 - 1000 - 282,
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			req := &SelectionRequest{
				Utxos:         createUtxos(t, test.utxos...),
				Outputs:       createOutputs(test.outputs...),
				Strategy:      test.strategy,
				FeeRate:       btcunit.NewSatPerVByte(2),
				ChangeScript:  changeScript,
				DisableChange: test.disableChange,
			}
			res, err := SelectCoins(req)
			require.NoError(t, err)
			checkResult(t, req, res)

			require.Equal(t, test.selected, values(res.Inputs))
			require.Equal(t, test.fee, res.Fee)

			if test.change == 0 {
				require.Equal(t, -1, res.ChangeIndex)
				require.Len(t, res.Outputs, len(test.outputs))
				return
			}
			require.Len(t, res.Outputs, len(test.outputs)+1)
			require.Equal(t, test.change,
				res.Outputs[res.ChangeIndex].Value)
			require.Equal(t, changeScript,
				res.Outputs[res.ChangeIndex].PkScript)
		})
	}
}

// TestSelectCoinsInsufficient checks that a coin covering the outputs but
// not the fee fails without a partial result.
func TestSelectCoinsInsufficient(t *testing.T) {
	t.Parallel()

	for _, disableChange := range []bool{true, false} {
		for _, strategy := range []InputSelectionStrategy{
			UseAll, SelectInOrder, SelectAscending,
			SelectDescending,
		} {
			res, err := SelectCoins(&SelectionRequest{
				Utxos:         createUtxos(t, 2000),
				Outputs:       createOutputs(1000, 1000),
				Strategy:      strategy,
				FeeRate:       btcunit.NewSatPerVByte(2),
				ChangeScript:  changeScript,
				DisableChange: disableChange,
			})
			require.Nil(t, res)
			require.True(t, txerror.Is(err,
				txerror.ErrInsufficientInputs), "%v", err)
		}
	}

	// No candidates at all.
	res, err := SelectCoins(&SelectionRequest{
		Outputs:       createOutputs(1),
		Strategy:      SelectInOrder,
		DisableChange: true,
	})
	require.Nil(t, res)
	require.True(t, txerror.Is(err, txerror.ErrInsufficientInputs))

	// Without outputs only a positive change output can be created.
	res, err = SelectCoins(&SelectionRequest{
		Utxos:         createUtxos(t, 1000),
		Strategy:      UseAll,
		DisableChange: true,
	})
	require.Nil(t, res)
	require.True(t, txerror.Is(err, txerror.ErrInsufficientInputs))
}

// TestSelectCoinsMissingChangeScript checks that an enabled change output
// without a script fails before any selection, even if change would not be
// needed.
func TestSelectCoinsMissingChangeScript(t *testing.T) {
	t.Parallel()

	for _, utxos := range [][]btcutil.Amount{nil, {1e8}} {
		res, err := SelectCoins(&SelectionRequest{
			Utxos:    createUtxos(t, utxos...),
			Outputs:  createOutputs(1000),
			Strategy: UseAll,
			FeeRate:  btcunit.NewSatPerVByte(1),
		})
		require.Nil(t, res)
		require.True(t, txerror.Is(err, txerror.ErrMissingChangeScript))
	}
}

// TestSelectCoinsChangeBoundary checks that change is dropped when it would
// be exactly zero and kept when it is a single satoshi.
func TestSelectCoinsChangeBoundary(t *testing.T) {
	t.Parallel()

	const (
		// Fees at 1 sat/vb with and without a change output.
		feeWithChange    = 141
		feeWithoutChange = 110
	)

	tests := []struct {
		name   string
		output btcutil.Amount
		change btcutil.Amount
	}{
		{"zero change", 1e5 - feeWithChange, 0},
		{"one satoshi change", 1e5 - feeWithChange - 1, 1},
	}

	for _, test := range tests {
		req := &SelectionRequest{
			Utxos:        createUtxos(t, 1e5),
			Outputs:      createOutputs(test.output),
			Strategy:     SelectInOrder,
			FeeRate:      btcunit.NewSatPerVByte(1),
			ChangeScript: changeScript,
		}
		res, err := SelectCoins(req)
		require.NoError(t, err, test.name)
		checkResult(t, req, res)

		if test.change == 0 {
			require.Equal(t, -1, res.ChangeIndex, test.name)
			require.Equal(t, btcutil.Amount(feeWithoutChange),
				res.Fee, test.name)
			continue
		}
		require.Equal(t, 1, res.ChangeIndex, test.name)
		require.Equal(t, test.change, res.Outputs[1].Value, test.name)
		require.Equal(t, btcutil.Amount(feeWithChange), res.Fee,
			test.name)
	}
}

// TestSelectCoinsDoesNotReorderCaller checks that sorting strategies work
// on a copy of the candidates.
func TestSelectCoinsDoesNotReorderCaller(t *testing.T) {
	t.Parallel()

	utxos := createUtxos(t, 3000, 1000, 2000)
	_, err := SelectCoins(&SelectionRequest{
		Utxos:         utxos,
		Outputs:       createOutputs(100),
		Strategy:      SelectAscending,
		FeeRate:       btcunit.NewSatPerVByte(1),
		DisableChange: true,
	})
	require.NoError(t, err)
	require.Equal(t, []btcutil.Amount{3000, 1000, 2000}, values(utxos))
}

// TestSelectCoinsProperties checks the selection invariants over random
// requests.
func TestSelectCoinsProperties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		coins := make([]btcutil.Amount, 1+rng.Intn(6))
		for j := range coins {
			coins[j] = btcutil.Amount(500 + rng.Intn(20000))
		}
		outs := make([]btcutil.Amount, 1+rng.Intn(3))
		for j := range outs {
			outs[j] = btcutil.Amount(1 + rng.Intn(15000))
		}

		req := &SelectionRequest{
			Utxos:         createUtxos(t, coins...),
			Outputs:       createOutputs(outs...),
			Strategy:      InputSelectionStrategy(rng.Intn(4)),
			FeeRate:       btcunit.NewSatPerVByte(btcutil.Amount(1 + rng.Intn(20))),
			ChangeScript:  changeScript,
			DisableChange: rng.Intn(2) == 0,
		}
		res, err := SelectCoins(req)
		if err != nil {
			require.Nil(t, res)
			require.True(t, txerror.Is(err,
				txerror.ErrInsufficientInputs), "%v", err)
			continue
		}
		checkResult(t, req, res)

		selected := values(res.Inputs)
		switch req.Strategy {
		case UseAll:
			require.Equal(t, coins, selected)

		case SelectInOrder:
			require.Equal(t, coins[:len(selected)], selected)

		case SelectAscending:
			for j := 1; j < len(selected); j++ {
				require.LessOrEqual(t, selected[j-1], selected[j])
			}

		case SelectDescending:
			for j := 1; j < len(selected); j++ {
				require.GreaterOrEqual(t, selected[j-1],
					selected[j])
			}
		}

		if req.DisableChange {
			require.Len(t, res.Outputs, len(req.Outputs))
		}
	}
}

// TestStrategyString checks strategy names round trip.
func TestStrategyString(t *testing.T) {
	t.Parallel()

	for _, s := range []InputSelectionStrategy{
		UseAll, SelectInOrder, SelectAscending, SelectDescending,
	} {
		parsed, err := ParseStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	_, err := ParseStrategy("random")
	require.Error(t, err)

	_, err = SelectCoins(&SelectionRequest{
		Strategy:      InputSelectionStrategy(9),
		DisableChange: true,
	})
	require.True(t, txerror.Is(err, txerror.ErrUnimplemented))
}

// TestPrevOutFetcher checks that the fetcher serves every selected input.
func TestPrevOutFetcher(t *testing.T) {
	t.Parallel()

	utxos := createUtxos(t, 1000, 2000)
	fetcher := PrevOutFetcher(utxos)
	for _, u := range utxos {
		require.Equal(t, u.PrevOut(), fetcher.FetchPrevOutput(u.OutPoint))
	}
}
