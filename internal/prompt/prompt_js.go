// Copyright (c) 2015-2021 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prompt

import (
	"bufio"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

func PrivateKey(_ *bufio.Reader, _ *chaincfg.Params) ([]byte, error) {
	return nil, fmt.Errorf("prompt not supported in WebAssembly")
}

func Confirm(_ *bufio.Reader, _ string) (bool, error) {
	return false, fmt.Errorf("prompt not supported in WebAssembly")
}
