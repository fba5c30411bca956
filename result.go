// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/txcompiler/netparams"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/btcsuite/txcompiler/wallet/compiler"
	"github.com/btcsuite/txcompiler/wallet/planner"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
	"github.com/btcsuite/txcompiler/wallet/txrules"
)

type jsonInputResult struct {
	TxID        string   `json:"txid"`
	Vout        uint32   `json:"vout"`
	Value       int64    `json:"value"`
	Method      string   `json:"method"`
	SigHashType uint32   `json:"sigHashType"`
	Digest      hexBytes `json:"digest,omitempty"`
}

type jsonOutputResult struct {
	Value    int64    `json:"value"`
	PkScript hexBytes `json:"pkScript"`
	Dust     bool     `json:"dust,omitempty"`
}

type jsonPreImage struct {
	Inputs      []jsonInputResult  `json:"inputs"`
	Outputs     []jsonOutputResult `json:"outputs"`
	ChangeIndex int                `json:"changeIndex"`
	Weight      uint64             `json:"weight"`
	VSize       uint64             `json:"vsize"`
	Fee         int64              `json:"fee"`
	PaidFee     int64              `json:"paidFee"`
	UnsignedTx  hexBytes           `json:"unsignedTx"`
	PSBT        string             `json:"psbt,omitempty"`
}

type jsonCompiled struct {
	TxID        string             `json:"txid"`
	Tx          hexBytes           `json:"tx"`
	Inputs      []jsonInputResult  `json:"inputs"`
	Outputs     []jsonOutputResult `json:"outputs"`
	ChangeIndex int                `json:"changeIndex"`
	Weight      uint64             `json:"weight"`
	VSize       uint64             `json:"vsize"`
	Fee         int64              `json:"fee"`
	PaidFee     int64              `json:"paidFee"`
}

type jsonPlan struct {
	CommitTxID  string `json:"commitTxid"`
	CommitValue int64  `json:"commitValue"`
	CommitFee   int64  `json:"commitFee"`
	RevealFee   int64  `json:"revealFee"`

	Commit *jsonPreImage `json:"commit"`
	Reveal *jsonPreImage `json:"reveal"`

	SignedCommit *jsonCompiled `json:"signedCommit,omitempty"`
	SignedReveal *jsonCompiled `json:"signedReveal,omitempty"`
}

type jsonError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// jsonResult is what is printed for one request file.
type jsonResult struct {
	Request  string        `json:"request"`
	PreImage *jsonPreImage `json:"preimage,omitempty"`
	Compiled *jsonCompiled `json:"compiled,omitempty"`
	Plan     *jsonPlan     `json:"plan,omitempty"`
	Error    *jsonError    `json:"error,omitempty"`
}

// newJSONError reports err with its code when it is one of the compiler's
// errors.
func newJSONError(err error) *jsonError {
	e := &jsonError{Message: err.Error()}
	if code, ok := txerror.Code(err); ok {
		e.Code = code.String()
	}
	return e
}

func inputResults(inputs []*txbuilder.UtxoDescriptor,
	digests [][]byte) []jsonInputResult {

	results := make([]jsonInputResult, 0, len(inputs))
	for i, in := range inputs {
		r := jsonInputResult{
			TxID:        in.OutPoint.Hash.String(),
			Vout:        in.OutPoint.Index,
			Value:       int64(in.Value),
			Method:      in.Method.String(),
			SigHashType: uint32(in.HashType),
		}
		if i < len(digests) {
			r.Digest = digests[i]
		}
		results = append(results, r)
	}
	return results
}

// outputResults flags the outputs that are dust under the relay fee of net.
func outputResults(outputs []*txbuilder.OutputDescriptor,
	net *netparams.Params) []jsonOutputResult {

	results := make([]jsonOutputResult, 0, len(outputs))
	for _, out := range outputs {
		dust := txrules.IsDustOutput(out.TxOut(), net.DustRelayFee)
		if dust {
			log.Warnf("Output of %v to %x is dust", out.Value,
				out.PkScript)
		}
		results = append(results, jsonOutputResult{
			Value:    int64(out.Value),
			PkScript: out.PkScript,
			Dust:     dust,
		})
	}
	return results
}

// preImageResult describes pre and, when withPSBT is set, exports it as a
// PSBT packet.
func preImageResult(pre *compiler.PreSigningOutput, net *netparams.Params,
	withPSBT bool) (*jsonPreImage, error) {

	var buf bytes.Buffer
	if err := pre.Tx.Serialize(&buf); err != nil {
		return nil, err
	}

	result := &jsonPreImage{
		Inputs:      inputResults(pre.Inputs, pre.Digests),
		Outputs:     outputResults(pre.Outputs, net),
		ChangeIndex: pre.ChangeIndex,
		Weight:      pre.Weight.Uint64(),
		VSize:       pre.Weight.ToVB().Uint64(),
		Fee:         int64(pre.Fee),
		PaidFee:     int64(pre.PaidFee),
		UnsignedTx:  buf.Bytes(),
	}

	if withPSBT {
		packet, err := compiler.ToPSBT(pre)
		if err != nil {
			return nil, err
		}
		result.PSBT, err = packet.B64Encode()
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func compiledResult(out *compiler.CompileOutput,
	net *netparams.Params) *jsonCompiled {

	return &jsonCompiled{
		TxID:        out.TxID.String(),
		Tx:          out.Encoded,
		Inputs:      inputResults(out.Inputs, nil),
		Outputs:     outputResults(out.Outputs, net),
		ChangeIndex: out.ChangeIndex,
		Weight:      out.Weight.Uint64(),
		VSize:       out.Weight.ToVB().Uint64(),
		Fee:         int64(out.Fee),
		PaidFee:     int64(out.PaidFee),
	}
}

func planResult(plan *planner.BRC20Plan) *jsonPlan {
	return &jsonPlan{
		CommitTxID:  plan.CommitTxID.String(),
		CommitValue: int64(plan.CommitValue),
		CommitFee:   int64(plan.CommitFee),
		RevealFee:   int64(plan.RevealFee),
	}
}

// feeRateOf returns the effective fee rate of a transaction, rounded down.
func feeRateOf(fee btcutil.Amount, weight btcunit.WeightUnit) btcutil.Amount {
	vsize := weight.ToVB().Uint64()
	if vsize == 0 {
		return 0
	}
	return fee / btcutil.Amount(vsize)
}
