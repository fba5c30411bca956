package netparams

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

// TestTestNet4GenesisHash checks the hash against the published genesis
// block 00000000da84f2bafbbc53dee25a72ae507ff4914b867c565be350b0da8bf043.
func TestTestNet4GenesisHash(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"00000000da84f2bafbbc53dee25a72ae507ff4914b867c565be350b0da8bf043",
		TestNet4ChainParams.GenesisHash.String())
}

// TestTestNet4Addresses checks that testnet4 encodes addresses like
// testnet3.
func TestTestNet4Addresses(t *testing.T) {
	t.Parallel()

	hash := make([]byte, 20)

	for _, encode := range []func(*chaincfg.Params) (btcutil.Address,
		error){

		func(p *chaincfg.Params) (btcutil.Address, error) {
			return btcutil.NewAddressPubKeyHash(hash, p)
		},
		func(p *chaincfg.Params) (btcutil.Address, error) {
			return btcutil.NewAddressWitnessPubKeyHash(hash, p)
		},
	} {
		testnet4, err := encode(TestNet4Params.Params)
		require.NoError(t, err)
		testnet3, err := encode(TestNet3Params.Params)
		require.NoError(t, err)
		require.Equal(t, testnet3.EncodeAddress(), testnet4.EncodeAddress())

		decoded, err := btcutil.DecodeAddress(
			testnet4.EncodeAddress(), TestNet4Params.Params,
		)
		require.NoError(t, err)
		require.True(t, decoded.IsForNet(TestNet4Params.Params))
	}
}

func TestDustRelayFee(t *testing.T) {
	t.Parallel()

	for _, p := range []Params{MainNetParams, TestNet3Params,
		TestNet4Params, RegressionNetParams, SigNetParams,
		SimNetParams} {

		require.Equal(t, DefaultDustRelayFee, p.DustRelayFee, p.Name)
	}
}
