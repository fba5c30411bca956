// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package prompt reads private keys and confirmations from the user.
package prompt

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// ParsePrivateKey decodes a private key given either as 64 hex characters
// or in wallet import format. WIF keys must be encoded for params.
func ParsePrivateKey(s string, params *chaincfg.Params) ([]byte, error) {
	s = strings.TrimSpace(s)

	if len(s) == 64 {
		key, err := hex.DecodeString(s)
		if err == nil {
			return key, nil
		}
	}

	wif, err := btcutil.DecodeWIF(s)
	if err != nil {
		return nil, fmt.Errorf("private key is neither hex nor WIF: %w",
			err)
	}
	if !wif.IsForNet(params) {
		return nil, fmt.Errorf("WIF private key is not for network %s",
			params.Name)
	}

	return wif.PrivKey.Serialize(), nil
}
