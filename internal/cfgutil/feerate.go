// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
)

// FeeRateFlag embeds a btcunit.SatPerVByte and implements the flags.Marshaler
// and Unmarshaler interfaces so it can be used as a config struct field.
type FeeRateFlag struct {
	btcunit.SatPerVByte
}

// NewFeeRateFlag creates a FeeRateFlag with a default fee rate.
func NewFeeRateFlag(defaultValue btcunit.SatPerVByte) *FeeRateFlag {
	return &FeeRateFlag{defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (f *FeeRateFlag) MarshalFlag() (string, error) {
	return f.SatPerVByte.String(), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface. The value is a
// whole number of satoshis per virtual byte, optionally suffixed with
// " sat/vb".
func (f *FeeRateFlag) UnmarshalFlag(value string) error {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(strings.ToLower(value), "sat/vb")
	rate, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return err
	}
	if rate < 0 {
		return fmt.Errorf("fee rate %d is negative", rate)
	}
	f.SatPerVByte = btcunit.NewSatPerVByte(btcutil.Amount(rate))
	return nil
}
