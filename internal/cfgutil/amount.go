// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// AmountFlag embeds a btcutil.Amount and implements the flags.Marshaler and
// Unmarshaler interfaces so it can be used as a config struct field. Values
// are given in BTC ("0.00003", "0.00003 BTC") or as whole satoshis
// ("3000 sat"). A negative amount marks the flag as unset.
type AmountFlag struct {
	btcutil.Amount
}

// NewAmountFlag creates an AmountFlag with a default btcutil.Amount.
func NewAmountFlag(defaultValue btcutil.Amount) *AmountFlag {
	return &AmountFlag{defaultValue}
}

// IsSet reports whether the flag holds an amount.
func (a *AmountFlag) IsSet() bool {
	return a.Amount >= 0
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (a *AmountFlag) MarshalFlag() (string, error) {
	if !a.IsSet() {
		return "", nil
	}
	return a.Amount.String(), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (a *AmountFlag) UnmarshalFlag(value string) error {
	value = strings.TrimSpace(value)

	var amount btcutil.Amount
	if sats, ok := cutUnit(value, "sats", "sat"); ok {
		n, err := strconv.ParseInt(sats, 10, 64)
		if err != nil {
			return err
		}
		amount = btcutil.Amount(n)
	} else {
		btc, _ := cutUnit(value, "btc")
		f, err := strconv.ParseFloat(btc, 64)
		if err != nil {
			return err
		}
		amount, err = btcutil.NewAmount(f)
		if err != nil {
			return err
		}
	}

	if amount < 0 {
		return fmt.Errorf("amount %v is negative", amount)
	}
	a.Amount = amount
	return nil
}

// cutUnit strips the first of units that value ends with, ignoring case,
// and returns the trimmed number in front of it.
func cutUnit(value string, units ...string) (string, bool) {
	lower := strings.ToLower(value)
	for _, unit := range units {
		if strings.HasSuffix(lower, unit) {
			return strings.TrimSpace(value[:len(value)-len(unit)]), true
		}
	}
	return value, false
}
