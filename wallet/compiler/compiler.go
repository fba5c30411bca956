// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package compiler turns a signing request into the digests its inputs must
// sign and, given the signatures, into a serialized transaction.
//
// The compiler holds no state between the two steps. Both re-run coin
// selection on the full request, so callers must supply the same request
// to PreImageHashes and Compile.
package compiler

import (
	"bytes"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/signer"
	"github.com/btcsuite/txcompiler/wallet/txauthor"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/btcsuite/txcompiler/wallet/txerror"
)

// DefaultTxVersion is the transaction version used when a request leaves
// it unset.
const DefaultTxVersion = 2

// SigningRequest is everything needed to build a transaction.
type SigningRequest struct {
	// Version defaults to DefaultTxVersion when zero.
	Version  int32
	LockTime uint32

	// Inputs are the candidate coins. Only the selected ones end up in
	// the transaction.
	Inputs  []txbuilder.InputRequest
	Outputs []txbuilder.OutputRequest

	Strategy txauthor.InputSelectionStrategy
	FeeRate  btcunit.SatPerVByte

	// ChangeRecipient receives the change. It is required unless
	// DisableChange is set.
	ChangeRecipient recipient.Recipient
	DisableChange   bool

	// Params defaults to mainnet.
	Params *chaincfg.Params
}

// PreSigningOutput is the unsigned transaction and one digest per
// selected input.
type PreSigningOutput struct {
	// Digests[i] is the digest Inputs[i] must sign.
	Digests [][]byte

	Inputs      []*txbuilder.UtxoDescriptor
	Outputs     []*txbuilder.OutputDescriptor
	ChangeIndex int

	Weight btcunit.WeightUnit
	Fee    btcutil.Amount

	// PaidFee is what the inputs leave to miners: Fee plus any surplus
	// not returned as change.
	PaidFee btcutil.Amount

	// Tx is the transaction with empty unlocking data. Its hash equals
	// the final txid only if every input is a witness spend.
	Tx *wire.MsgTx
}

// SignatureInput is the signature of one selected input, keyed by the
// input's position in the selection.
type SignatureInput struct {
	// Signature may be left empty for inputs that need none (P2SH and
	// custom claims).
	Signature signer.Signature

	// PubKey is required for P2PKH and P2WPKH inputs that were
	// described by a hash.
	PubKey []byte
}

// CompileOutput is the signed transaction.
type CompileOutput struct {
	Encoded []byte
	TxID    chainhash.Hash
	Tx      *wire.MsgTx

	Inputs      []*txbuilder.UtxoDescriptor
	Outputs     []*txbuilder.OutputDescriptor
	ChangeIndex int

	// Weight is the weight of the signed transaction. Fee was computed
	// from the estimate, which is never below it.
	Weight  btcunit.WeightUnit
	Fee     btcutil.Amount
	PaidFee btcutil.Amount
}

// Compiler computes digests and assembles transactions.
type Compiler struct {
	sighash SighashComputer
}

// New returns a Compiler computing digests with sighash.
func New(sighash SighashComputer) *Compiler {
	return &Compiler{sighash: sighash}
}

var defaultCompiler = New(StandardSighash{})

// PreImageHashes runs PreImageHashes with the standard sighash rules.
func PreImageHashes(req *SigningRequest) (*PreSigningOutput, error) {
	return defaultCompiler.PreImageHashes(req)
}

// Compile runs Compile with the standard sighash rules.
func Compile(req *SigningRequest, sigs []SignatureInput) (*CompileOutput,
	error) {

	return defaultCompiler.Compile(req, sigs)
}

// PreImageHashes selects the inputs of req and returns the digest every
// selected input has to sign.
func (c *Compiler) PreImageHashes(req *SigningRequest) (*PreSigningOutput,
	error) {

	sel, err := c.selectCoins(req)
	if err != nil {
		return nil, err
	}

	tx := sel.UnsignedTx(txVersion(req), req.LockTime)
	digests, err := c.digests(tx, sel)
	if err != nil {
		return nil, err
	}

	log.Debugf("Computed %d digests for tx %v", len(digests), tx.TxHash())

	return &PreSigningOutput{
		Digests:     digests,
		Inputs:      sel.Inputs,
		Outputs:     sel.Outputs,
		ChangeIndex: sel.ChangeIndex,
		Weight:      sel.Weight,
		Fee:         sel.Fee,
		PaidFee:     paidFee(sel),
		Tx:          tx,
	}, nil
}

// Compile selects the inputs of req, attaches a claim built from sigs to
// each of them and serializes the result. sigs[i] belongs to the i-th
// selected input.
func (c *Compiler) Compile(req *SigningRequest,
	sigs []SignatureInput) (*CompileOutput, error) {

	sel, err := c.selectCoins(req)
	if err != nil {
		return nil, err
	}
	if len(sigs) != len(sel.Inputs) {
		return nil, txerror.Newf(txerror.ErrMalformed,
			"got %d signatures for %d selected inputs", len(sigs),
			len(sel.Inputs))
	}

	tx := sel.UnsignedTx(txVersion(req), req.LockTime)
	for i, in := range sel.Inputs {
		claim, err := txbuilder.BuildClaim(&txbuilder.ClaimRequest{
			Recipient: in.Recipient,
			Method:    in.Method,
			HashType:  in.HashType,
			Signature: sigs[i].Signature,
			PubKey:    sigs[i].PubKey,
		})
		if err != nil {
			log.Debugf("Unable to build claim for input %v: %v",
				in.OutPoint, err)
			return nil, err
		}
		tx.TxIn[i].SignatureScript = claim.SignatureScript
		tx.TxIn[i].Witness = claim.Witness
	}

	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, txerror.New(txerror.ErrMalformed,
			"unable to serialize transaction", err)
	}

	weight := btcunit.NewWeightUnit(uint64(
		blockchain.GetTransactionWeight(btcutil.NewTx(tx)),
	))
	txid := tx.TxHash()
	paid := paidFee(sel)

	log.Infof("Compiled tx %v: %d inputs, %d outputs, weight %v, fee %v",
		txid, len(tx.TxIn), len(tx.TxOut), weight, paid)

	return &CompileOutput{
		Encoded:     buf.Bytes(),
		TxID:        txid,
		Tx:          tx,
		Inputs:      sel.Inputs,
		Outputs:     sel.Outputs,
		ChangeIndex: sel.ChangeIndex,
		Weight:      weight,
		Fee:         sel.Fee,
		PaidFee:     paid,
	}, nil
}

// selectCoins builds the inputs and outputs of req and runs coin
// selection over them.
func (c *Compiler) selectCoins(req *SigningRequest) (
	*txauthor.SelectionResult, error) {

	if !req.DisableChange && req.ChangeRecipient == nil {
		return nil, txerror.Newf(txerror.ErrMissingChangeScript,
			"change is enabled but no change recipient was given")
	}

	params := req.Params
	if params == nil {
		params = &chaincfg.MainNetParams
	}

	utxos := make([]*txbuilder.UtxoDescriptor, 0, len(req.Inputs))
	seen := make(map[wire.OutPoint]struct{}, len(req.Inputs))
	for i := range req.Inputs {
		in := &req.Inputs[i]
		if _, ok := seen[in.OutPoint]; ok {
			return nil, txerror.Newf(txerror.ErrMalformed,
				"input %v is listed twice", in.OutPoint)
		}
		seen[in.OutPoint] = struct{}{}

		utxo, err := txbuilder.BuildInput(in, params)
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, utxo)
	}

	outputs := make([]*txbuilder.OutputDescriptor, 0, len(req.Outputs))
	for i := range req.Outputs {
		out, err := txbuilder.BuildOutput(&req.Outputs[i], params)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	var changeScript []byte
	if !req.DisableChange {
		script, err := txbuilder.BuildChangeOutput(
			req.ChangeRecipient, params,
		)
		if err != nil {
			return nil, err
		}
		changeScript = script
	}

	return txauthor.SelectCoins(&txauthor.SelectionRequest{
		Utxos:         utxos,
		Outputs:       outputs,
		Strategy:      req.Strategy,
		FeeRate:       req.FeeRate,
		ChangeScript:  changeScript,
		DisableChange: req.DisableChange,
	})
}

// digests computes the digest of every input of tx.
func (c *Compiler) digests(tx *wire.MsgTx,
	sel *txauthor.SelectionResult) ([][]byte, error) {

	fetcher := sel.PrevOutFetcher()
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	digests := make([][]byte, 0, len(sel.Inputs))
	for i, in := range sel.Inputs {
		digest, err := c.sighash.SigHash(tx, i, in, sigHashes, fetcher)
		if err != nil {
			return nil, err
		}
		digests = append(digests, digest)
	}
	return digests, nil
}

// paidFee returns the value of the selected inputs not spent on outputs.
func paidFee(sel *txauthor.SelectionResult) btcutil.Amount {
	return sel.TotalInput - txbuilder.SumOutputValues(sel.Outputs)
}

func txVersion(req *SigningRequest) int32 {
	if req.Version == 0 {
		return DefaultTxVersion
	}
	return req.Version
}
