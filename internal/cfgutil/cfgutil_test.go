package cfgutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/txcompiler/pkg/btcunit"
	"github.com/stretchr/testify/require"
)

func TestAmountFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    btcutil.Amount
		wantErr bool
	}{
		{value: "0.00003", want: 3000},
		{value: "1 BTC", want: btcutil.SatoshiPerBitcoin},
		{value: "0.5btc", want: btcutil.SatoshiPerBitcoin / 2},
		{value: "3000 sat", want: 3000},
		{value: " 1000 Sats ", want: 1000},
		{value: "0", want: 0},
		{value: "1.5 sat", wantErr: true},
		{value: "-1 sat", wantErr: true},
		{value: "-0.1", wantErr: true},
		{value: "abc", wantErr: true},
	}

	for _, test := range tests {
		flag := NewAmountFlag(0)
		err := flag.UnmarshalFlag(test.value)
		if test.wantErr {
			require.Error(t, err, test.value)
			continue
		}
		require.NoError(t, err, test.value)
		require.Equal(t, test.want, flag.Amount, test.value)
		require.True(t, flag.IsSet())
	}
}

func TestAmountFlagUnset(t *testing.T) {
	t.Parallel()

	flag := NewAmountFlag(-1)
	require.False(t, flag.IsSet())

	s, err := flag.MarshalFlag()
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestFeeRateFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    btcutil.Amount
		wantErr bool
	}{
		{value: "5", want: 5},
		{value: "12 sat/vB", want: 12},
		{value: " 0 ", want: 0},
		{value: "-1", wantErr: true},
		{value: "1.5", wantErr: true},
	}

	for _, test := range tests {
		flag := NewFeeRateFlag(btcunit.NewSatPerVByte(1))
		err := flag.UnmarshalFlag(test.value)
		if test.wantErr {
			require.Error(t, err, test.value)
			continue
		}
		require.NoError(t, err, test.value)
		require.Equal(t, test.want, flag.Amount(), test.value)

		s, err := flag.MarshalFlag()
		require.NoError(t, err)
		require.NoError(t, NewFeeRateFlag(flag.SatPerVByte).UnmarshalFlag(s))
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "txcompiler.conf")

	exists, err := FileExists(path)
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, os.WriteFile(path, nil, 0600))

	exists, err = FileExists(path)
	require.NoError(t, err)
	require.True(t, exists)

	_, err = FileExists(dir)
	require.Error(t, err)
}
