// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netparams groups the chain parameters of every network the
// compiler encodes addresses for with the relay policy used to report dust.
package netparams

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/txcompiler/wallet/txrules"
)

// DefaultDustRelayFee is the relay fee, per kilo virtual byte, below which
// spending an output costs more than it is worth.
const DefaultDustRelayFee = txrules.DefaultDustRelayFeePerKb

// Params is used to group parameters for various networks such as the main
// network and test networks.
type Params struct {
	*chaincfg.Params

	// DustRelayFee is the fee rate per kvB outputs are checked for dust
	// against.
	DustRelayFee btcutil.Amount
}

// MainNetParams contains parameters specific to the main network
// (wire.MainNet).
var MainNetParams = Params{
	Params:       &chaincfg.MainNetParams,
	DustRelayFee: DefaultDustRelayFee,
}

// TestNet3Params contains parameters specific to the test network (version
// 3) (wire.TestNet3).
var TestNet3Params = Params{
	Params:       &chaincfg.TestNet3Params,
	DustRelayFee: DefaultDustRelayFee,
}

// TestNet4Params contains parameters specific to the test network (version
// 4).
var TestNet4Params = Params{
	Params:       &TestNet4ChainParams,
	DustRelayFee: DefaultDustRelayFee,
}

// RegressionNetParams contains parameters specific to the regression test
// network (wire.TestNet).
var RegressionNetParams = Params{
	Params:       &chaincfg.RegressionNetParams,
	DustRelayFee: DefaultDustRelayFee,
}

// SigNetParams contains parameters specific to the default signet
// (wire.SigNet).
var SigNetParams = Params{
	Params:       &chaincfg.SigNetParams,
	DustRelayFee: DefaultDustRelayFee,
}

// SimNetParams contains parameters specific to the simulation test network
// (wire.SimNet).
var SimNetParams = Params{
	Params:       &chaincfg.SimNetParams,
	DustRelayFee: DefaultDustRelayFee,
}
