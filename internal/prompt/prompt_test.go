//go:build !js

package prompt

import (
	"bufio"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKey(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 32)
	raw[31] = 0x01
	privKey, _ := btcec.PrivKeyFromBytes(raw)

	mainWIF, err := btcutil.NewWIF(privKey, &chaincfg.MainNetParams, true)
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		params  *chaincfg.Params
		wantErr bool
	}{
		{
			name:   "hex",
			input:  hex.EncodeToString(raw),
			params: &chaincfg.MainNetParams,
		},
		{
			name:   "hex with whitespace",
			input:  "  " + hex.EncodeToString(raw) + "\n",
			params: &chaincfg.MainNetParams,
		},
		{
			name:   "wif",
			input:  mainWIF.String(),
			params: &chaincfg.MainNetParams,
		},
		{
			name:    "wif for other network",
			input:   mainWIF.String(),
			params:  &chaincfg.TestNet3Params,
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "not a key",
			params:  &chaincfg.MainNetParams,
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			key, err := ParsePrivateKey(test.input, test.params)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, raw, key)
		})
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "\n", want: false},
		{input: "maybe\nno\n", want: false},
		{input: "what\nyes\n", want: true},
	}

	for _, test := range tests {
		reader := bufio.NewReader(strings.NewReader(test.input))
		got, err := Confirm(reader, "Sign?")
		require.NoError(t, err, test.input)
		require.Equal(t, test.want, got, test.input)
	}

	// Running out of input is an error.
	_, err := Confirm(bufio.NewReader(strings.NewReader("maybe")), "Sign?")
	require.Error(t, err)
}
