package txsizes

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func filled(n int) []byte {
	return bytes.Repeat([]byte{0xff}, n)
}

func makeInts(value int, n int) []int {
	v := make([]int, n)
	for i := range v {
		v[i] = value
	}
	return v
}

func legacyIn(sigScriptSize int) *wire.TxIn {
	return &wire.TxIn{SignatureScript: filled(sigScriptSize)}
}

func witnessIn(items ...int) *wire.TxIn {
	in := &wire.TxIn{}
	for _, n := range items {
		in.Witness = append(in.Witness, filled(n))
	}
	return in
}

func outs(scriptSizes ...int) []*wire.TxOut {
	txOuts := make([]*wire.TxOut, 0, len(scriptSizes))
	for _, n := range scriptSizes {
		txOuts = append(txOuts, wire.NewTxOut(1000, filled(n)))
	}
	return txOuts
}

// TestEstimateWeight checks the estimate against btcd's consensus weight
// for a range of input and output mixes.
func TestEstimateWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		txIns  []*wire.TxIn
		txOuts []*wire.TxOut
	}{
		0: {
			name:   "p2pkh to p2pkh",
			txIns:  []*wire.TxIn{legacyIn(RedeemP2PKHSigScriptSize)},
			txOuts: outs(P2PKHPkScriptSize),
		},
		1: {
			name:   "p2wpkh to p2wpkh and p2tr",
			txIns:  []*wire.TxIn{witnessIn(73, 33)},
			txOuts: outs(P2WPKHPkScriptSize, P2TRPkScriptSize),
		},
		2: {
			name: "mixed legacy and witness inputs",
			txIns: []*wire.TxIn{
				legacyIn(RedeemP2PKHSigScriptSize),
				witnessIn(73, 33),
				witnessIn(64),
			},
			txOuts: outs(P2SHPkScriptSize),
		},
		3: {
			name:   "taproot script path",
			txIns:  []*wire.TxIn{witnessIn(64, 120, 33)},
			txOuts: outs(P2TRPkScriptSize),
		},
		4: {
			name:   "no outputs",
			txIns:  []*wire.TxIn{witnessIn(64)},
			txOuts: nil,
		},
		5: {
			// 0xfd is discriminant for 16-bit compact ints.
			name:   "many outputs",
			txIns:  []*wire.TxIn{legacyIn(RedeemP2PKHSigScriptSize)},
			txOuts: outs(makeInts(P2PKHPkScriptSize, 0xfd)...),
		},
	}

	for i, test := range tests {
		tx := wire.NewMsgTx(wire.TxVersion)
		tx.TxIn = test.txIns
		tx.TxOut = test.txOuts

		want := blockchain.GetTransactionWeight(btcutil.NewTx(tx))
		got := EstimateWeight(test.txIns, test.txOuts, 0)
		require.EqualValues(t, want, got.Uint64(), "test %d: %s", i,
			test.name)
	}
}

// TestEstimateWeightChange checks that a prospective change output is
// accounted for exactly like a real output.
func TestEstimateWeightChange(t *testing.T) {
	t.Parallel()

	txIns := []*wire.TxIn{witnessIn(73, 33)}
	txOuts := outs(P2WPKHPkScriptSize)

	withChange := EstimateWeight(txIns, txOuts, P2TRPkScriptSize)
	explicit := EstimateWeight(
		txIns, append(outs(P2WPKHPkScriptSize),
			outs(P2TRPkScriptSize)...), 0,
	)
	require.Equal(t, explicit, withChange)

	without := EstimateWeight(txIns, txOuts, 0)
	require.Equal(t, uint64(P2TROutputSize*4),
		withChange.Uint64()-without.Uint64())
}

// TestEstimateWeightP2PKHVector checks a one-in one-out P2PKH transaction
// whose signature is 71 bytes of DER plus the sighash byte.
func TestEstimateWeightP2PKHVector(t *testing.T) {
	t.Parallel()

	// OP_DATA_72 <72 bytes> OP_DATA_33 <33 bytes>.
	weight := EstimateWeight(
		[]*wire.TxIn{legacyIn(1 + 72 + 1 + 33)}, outs(P2PKHPkScriptSize),
		0,
	)
	require.Equal(t, uint64(768), weight.Uint64())
	require.Equal(t, uint64(192), weight.ToVB().Uint64())
}

// TestInputOutputWeight checks the per-element helpers against the size
// constants.
func TestInputOutputWeight(t *testing.T) {
	t.Parallel()

	require.Equal(t, RedeemP2PKHInputSize,
		InputBaseSize(legacyIn(RedeemP2PKHSigScriptSize)))
	require.Equal(t, RedeemP2WPKHInputSize, InputBaseSize(witnessIn(73, 33)))
	require.Equal(t, uint64(RedeemP2WPKHInputSize*4+
		RedeemP2WPKHInputWitnessWeight),
		InputWeight(witnessIn(73, 33)).Uint64())
	require.Equal(t, uint64(RedeemP2TRInputSize*4+
		RedeemP2TRInputWitnessWeight),
		InputWeight(witnessIn(64)).Uint64())
	require.Equal(t, uint64(RedeemP2TRInputSize*4+
		RedeemP2TRExplicitSigHashWitnessWeight),
		InputWeight(witnessIn(65)).Uint64())

	require.Equal(t, uint64(P2PKHOutputSize*4),
		OutputWeight(outs(P2PKHPkScriptSize)[0]).Uint64())
	require.Equal(t, OutputWeight(outs(P2WPKHPkScriptSize)[0]),
		OutputWeightForScript(P2WPKHPkScriptSize))
}
