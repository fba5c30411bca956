// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/btcsuite/txcompiler/wallet/compiler"
	"github.com/btcsuite/txcompiler/wallet/planner"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/signer"
	"github.com/btcsuite/txcompiler/wallet/txauthor"
	"github.com/btcsuite/txcompiler/wallet/txbuilder"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// hexBytes is a byte slice that is a hex string in JSON.
type hexBytes []byte

// MarshalJSON implements json.Marshaler.
func (h hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex %q: %w", s, err)
	}
	*h = b
	return nil
}

// Recipient types accepted in the "type" field of a recipient.
const (
	recipientP2PKH      = "p2pkh"
	recipientP2SH       = "p2sh"
	recipientP2WPKH     = "p2wpkh"
	recipientP2WSH      = "p2wsh"
	recipientP2TR       = "p2tr"
	recipientP2TRScript = "p2tr-script"
	recipientBRC20      = "brc20"
	recipientOrdinal    = "ordinal"
	recipientCustom     = "custom"
)

// jsonRecipient is either {"address": ...} or a typed script description.
type jsonRecipient struct {
	Address string `json:"address,omitempty"`
	Type    string `json:"type,omitempty"`

	PubKey        hexBytes `json:"pubKey,omitempty"`
	PubKeyHash    hexBytes `json:"pubKeyHash,omitempty"`
	RedeemScript  hexBytes `json:"redeemScript,omitempty"`
	WitnessScript hexBytes `json:"witnessScript,omitempty"`
	ScriptHash    hexBytes `json:"scriptHash,omitempty"`
	TweakedKey    hexBytes `json:"tweakedKey,omitempty"`
	InternalKey   hexBytes `json:"internalKey,omitempty"`
	LeafScript    hexBytes `json:"leafScript,omitempty"`
	MerkleRoot    hexBytes `json:"merkleRoot,omitempty"`
	ControlBlock  hexBytes `json:"controlBlock,omitempty"`
	OnePrevout    bool     `json:"onePrevout,omitempty"`

	Ticker string `json:"ticker,omitempty"`
	Amount string `json:"amount,omitempty"`

	MimeType string   `json:"mimeType,omitempty"`
	Payload  hexBytes `json:"payload,omitempty"`

	PkScript  hexBytes   `json:"pkScript,omitempty"`
	ScriptSig hexBytes   `json:"scriptSig,omitempty"`
	Witness   []hexBytes `json:"witness,omitempty"`
	Method    string     `json:"method,omitempty"`
}

// recipient converts r. A nil r is no recipient.
func (r *jsonRecipient) recipient() (recipient.Recipient, error) {
	if r == nil {
		return nil, nil
	}

	if r.Address != "" {
		if r.Type != "" {
			return nil, fmt.Errorf("recipient has both address and " +
				"type")
		}
		return recipient.Address{Address: r.Address}, nil
	}

	switch r.Type {
	case recipientP2PKH:
		return recipient.P2PKH{
			PubKey:     r.PubKey,
			PubKeyHash: r.PubKeyHash,
		}, nil

	case recipientP2SH:
		return recipient.P2SH{
			RedeemScript: r.RedeemScript,
			ScriptHash:   r.ScriptHash,
		}, nil

	case recipientP2WPKH:
		return recipient.P2WPKH{
			PubKey:     r.PubKey,
			PubKeyHash: r.PubKeyHash,
		}, nil

	case recipientP2WSH:
		return recipient.P2WSH{
			WitnessScript: r.WitnessScript,
			ScriptHash:    r.ScriptHash,
		}, nil

	case recipientP2TR:
		return recipient.P2TRKeyPath{
			PubKey:     r.PubKey,
			TweakedKey: r.TweakedKey,
			OnePrevout: r.OnePrevout,
		}, nil

	case recipientP2TRScript:
		return recipient.P2TRScriptPath{
			InternalKey:  r.InternalKey,
			LeafScript:   r.LeafScript,
			MerkleRoot:   r.MerkleRoot,
			ControlBlock: r.ControlBlock,
			OnePrevout:   r.OnePrevout,
		}, nil

	case recipientBRC20:
		return recipient.BRC20Transfer{
			PubKey:     r.PubKey,
			Ticker:     r.Ticker,
			Amount:     r.Amount,
			OnePrevout: r.OnePrevout,
		}, nil

	case recipientOrdinal:
		return recipient.Ordinal{
			PubKey:   r.PubKey,
			MimeType: r.MimeType,
			Payload:  r.Payload,
		}, nil

	case recipientCustom:
		method := recipient.Segwit
		if r.Method != "" {
			var err error
			method, err = recipient.ParseSigningMethod(r.Method)
			if err != nil {
				return nil, err
			}
		}
		var witness wire.TxWitness
		for _, item := range r.Witness {
			witness = append(witness, item)
		}
		return recipient.Custom{
			PkScript:  r.PkScript,
			ScriptSig: r.ScriptSig,
			Witness:   witness,
			Method:    method,
		}, nil

	case "":
		return nil, fmt.Errorf("recipient needs an address or a type")

	default:
		return nil, fmt.Errorf("unknown recipient type %q", r.Type)
	}
}

type jsonInput struct {
	TxID        string         `json:"txid"`
	Vout        uint32         `json:"vout"`
	Value       int64          `json:"value"`
	Recipient   *jsonRecipient `json:"recipient"`
	Sequence    *uint32        `json:"sequence,omitempty"`
	SigHashType *uint32        `json:"sigHashType,omitempty"`
	Signature   hexBytes       `json:"signature,omitempty"`
}

type jsonOutput struct {
	Value     int64          `json:"value"`
	Recipient *jsonRecipient `json:"recipient"`
}

type jsonSignature struct {
	Signature hexBytes `json:"signature,omitempty"`
	PubKey    hexBytes `json:"pubKey,omitempty"`
}

type jsonBRC20 struct {
	PubKey       hexBytes   `json:"pubKey"`
	Ticker       string     `json:"ticker"`
	Amount       string     `json:"amount"`
	OnePrevout   bool       `json:"onePrevout,omitempty"`
	TaggedOutput jsonOutput `json:"taggedOutput"`
}

// jsonRequest is one request file. Signatures are only read in compile
// mode and BRC20 only in plan mode.
type jsonRequest struct {
	Version       int32           `json:"version,omitempty"`
	LockTime      uint32          `json:"lockTime,omitempty"`
	Inputs        []jsonInput     `json:"inputs"`
	Outputs       []jsonOutput    `json:"outputs,omitempty"`
	Strategy      string          `json:"strategy,omitempty"`
	FeeRate       *int64          `json:"feeRate,omitempty"`
	Change        *jsonRecipient  `json:"change,omitempty"`
	DisableChange bool            `json:"disableChange,omitempty"`
	Signatures    []jsonSignature `json:"signatures,omitempty"`
	BRC20         *jsonBRC20      `json:"brc20,omitempty"`
}

// requestDefaults fill in what a request leaves unset.
type requestDefaults struct {
	feeRate  btcunit.SatPerVByte
	strategy txauthor.InputSelectionStrategy
	params   *chaincfg.Params
}

// decodeRequest reads one request. Unknown fields are rejected so typos do
// not silently change a transaction.
func decodeRequest(r io.Reader) (*jsonRequest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var req jsonRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("unable to decode request: %w", err)
	}
	return &req, nil
}

// parseSignature wraps sig by its length. Empty is no signature.
func parseSignature(sig []byte) (signer.Signature, error) {
	switch len(sig) {
	case 0:
		return signer.Signature{}, nil
	case signer.SchnorrSignatureLen:
		return signer.NewSchnorrSignature(sig)
	default:
		return signer.NewECDSASignature(sig)
	}
}

func (in *jsonInput) inputRequest() (txbuilder.InputRequest, error) {
	hash, err := chainhash.NewHashFromStr(in.TxID)
	if err != nil {
		return txbuilder.InputRequest{}, fmt.Errorf("invalid txid "+
			"%q: %w", in.TxID, err)
	}
	op := wire.OutPoint{Hash: *hash, Index: in.Vout}

	r, err := in.Recipient.recipient()
	if err != nil {
		return txbuilder.InputRequest{}, fmt.Errorf("input %v: %w", op,
			err)
	}
	sig, err := parseSignature(in.Signature)
	if err != nil {
		return txbuilder.InputRequest{}, fmt.Errorf("input %v: %w", op,
			err)
	}

	req := txbuilder.InputRequest{
		OutPoint:  op,
		Value:     btcutil.Amount(in.Value),
		Recipient: r,
		Signature: sig,
	}
	if in.Sequence != nil {
		req.Sequence = fn.Some(*in.Sequence)
	}
	if in.SigHashType != nil {
		req.HashType = fn.Some(txscript.SigHashType(*in.SigHashType))
	}

	return req, nil
}

func (out *jsonOutput) outputRequest() (txbuilder.OutputRequest, error) {
	r, err := out.Recipient.recipient()
	if err != nil {
		return txbuilder.OutputRequest{}, err
	}
	return txbuilder.OutputRequest{
		Value:     btcutil.Amount(out.Value),
		Recipient: r,
	}, nil
}

// funding converts the fields a signing request and a BRC20 request share.
func (r *jsonRequest) funding(defaults *requestDefaults) (
	[]txbuilder.InputRequest, txauthor.InputSelectionStrategy,
	btcunit.SatPerVByte, recipient.Recipient, error) {

	inputs := make([]txbuilder.InputRequest, 0, len(r.Inputs))
	for i := range r.Inputs {
		in, err := r.Inputs[i].inputRequest()
		if err != nil {
			return nil, 0, btcunit.SatPerVByte{}, nil, err
		}
		inputs = append(inputs, in)
	}

	strategy := defaults.strategy
	if r.Strategy != "" {
		var err error
		strategy, err = txauthor.ParseStrategy(r.Strategy)
		if err != nil {
			return nil, 0, btcunit.SatPerVByte{}, nil, err
		}
	}

	feeRate := defaults.feeRate
	if r.FeeRate != nil {
		if *r.FeeRate < 0 {
			return nil, 0, btcunit.SatPerVByte{}, nil,
				fmt.Errorf("fee rate %d is negative", *r.FeeRate)
		}
		feeRate = btcunit.NewSatPerVByte(btcutil.Amount(*r.FeeRate))
	}

	change, err := r.Change.recipient()
	if err != nil {
		return nil, 0, btcunit.SatPerVByte{}, nil,
			fmt.Errorf("change: %w", err)
	}

	return inputs, strategy, feeRate, change, nil
}

// signingRequest converts r for the compiler.
func (r *jsonRequest) signingRequest(
	defaults *requestDefaults) (*compiler.SigningRequest, error) {

	inputs, strategy, feeRate, change, err := r.funding(defaults)
	if err != nil {
		return nil, err
	}

	outputs := make([]txbuilder.OutputRequest, 0, len(r.Outputs))
	for i := range r.Outputs {
		out, err := r.Outputs[i].outputRequest()
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		outputs = append(outputs, out)
	}

	return &compiler.SigningRequest{
		Version:         r.Version,
		LockTime:        r.LockTime,
		Inputs:          inputs,
		Outputs:         outputs,
		Strategy:        strategy,
		FeeRate:         feeRate,
		ChangeRecipient: change,
		DisableChange:   r.DisableChange,
		Params:          defaults.params,
	}, nil
}

// brc20Request converts r for the planner.
func (r *jsonRequest) brc20Request(
	defaults *requestDefaults) (*planner.BRC20Request, error) {

	if r.BRC20 == nil {
		return nil, fmt.Errorf("plan request has no brc20 inscription")
	}
	if len(r.Outputs) > 0 {
		return nil, fmt.Errorf("plan request takes no outputs besides " +
			"the tagged output")
	}

	inputs, strategy, feeRate, change, err := r.funding(defaults)
	if err != nil {
		return nil, err
	}
	tagged, err := r.BRC20.TaggedOutput.outputRequest()
	if err != nil {
		return nil, fmt.Errorf("tagged output: %w", err)
	}

	return &planner.BRC20Request{
		Inscription: recipient.BRC20Transfer{
			PubKey:     r.BRC20.PubKey,
			Ticker:     r.BRC20.Ticker,
			Amount:     r.BRC20.Amount,
			OnePrevout: r.BRC20.OnePrevout,
		},
		TaggedOutput:    tagged,
		Inputs:          inputs,
		Strategy:        strategy,
		FeeRate:         feeRate,
		ChangeRecipient: change,
		DisableChange:   r.DisableChange,
		Params:          defaults.params,
	}, nil
}

// signatureInputs converts the externally produced signatures of r.
func (r *jsonRequest) signatureInputs() ([]compiler.SignatureInput, error) {
	sigs := make([]compiler.SignatureInput, 0, len(r.Signatures))
	for i, s := range r.Signatures {
		sig, err := parseSignature(s.Signature)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		sigs = append(sigs, compiler.SignatureInput{
			Signature: sig,
			PubKey:    s.PubKey,
		})
	}
	return sigs, nil
}
