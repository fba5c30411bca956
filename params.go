// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import "github.com/btcsuite/txcompiler/netparams"

// activeNet is the network addresses are encoded for and decoded with. It
// is selected by the network flags and defaults to mainnet.
var activeNet = &netparams.MainNetParams
