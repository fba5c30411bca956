package txbuilder

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/txcompiler/wallet/recipient"
	"github.com/btcsuite/txcompiler/wallet/signer"
	"github.com/btcsuite/txcompiler/wallet/txerror"
	"github.com/btcsuite/txcompiler/wallet/txsizes"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

var params = &chaincfg.MainNetParams

func testKey(b byte) *btcec.PrivateKey {
	key, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{b}, 32))
	return key
}

func outPoint(index uint32) wire.OutPoint {
	return wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: index}
}

func leafScript(t *testing.T, key *btcec.PublicKey) []byte {
	script, err := txscript.NewScriptBuilder().
		AddData(schnorr.SerializePubKey(key)).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)
	return script
}

// scriptPathSpend returns a control block proving a single leaf tree.
func scriptPathSpend(t *testing.T, internalKey *btcec.PublicKey,
	leaf []byte) ([]byte, []byte) {

	tree := txscript.AssembleTaprootScriptTree(txscript.NewBaseTapLeaf(leaf))
	cb := tree.LeafMerkleProofs[0].ToControlBlock(internalKey)
	cbBytes, err := cb.ToBytes()
	require.NoError(t, err)

	root := tree.RootNode.TapHash()
	pkScript, err := txscript.PayToTaprootScript(
		txscript.ComputeTaprootOutputKey(internalKey, root[:]),
	)
	require.NoError(t, err)

	return cbBytes, pkScript
}

// TestBuildInputPlaceholders checks the provisional claim sizes of every
// signature bearing input family.
func TestBuildInputPlaceholders(t *testing.T) {
	t.Parallel()

	pub := testKey(0x11).PubKey()
	compressed := pub.SerializeCompressed()

	tests := []struct {
		name         string
		recipient    recipient.Recipient
		method       recipient.SigningMethod
		hashType     txscript.SigHashType
		sigScriptLen int
		witnessLens  []int
	}{{
		name:         "p2pkh",
		recipient:    recipient.P2PKH{PubKey: compressed},
		method:       recipient.Legacy,
		hashType:     txscript.SigHashAll,
		sigScriptLen: txsizes.RedeemP2PKHSigScriptSize,
	}, {
		name: "p2pkh uncompressed",
		recipient: recipient.P2PKH{
			PubKey: pub.SerializeUncompressed(),
		},
		method:       recipient.Legacy,
		hashType:     txscript.SigHashAll,
		sigScriptLen: 1 + 73 + 1 + 65,
	}, {
		name:        "p2wpkh",
		recipient:   recipient.P2WPKH{PubKey: compressed},
		method:      recipient.Segwit,
		hashType:    txscript.SigHashAll,
		witnessLens: []int{73, 33},
	}, {
		name:        "p2tr key path",
		recipient:   recipient.P2TRKeyPath{PubKey: compressed},
		method:      recipient.TaprootKeyPathAll,
		hashType:    txscript.SigHashDefault,
		witnessLens: []int{64},
	}, {
		name: "p2tr key path one prevout",
		recipient: recipient.P2TRKeyPath{
			PubKey: compressed, OnePrevout: true,
		},
		method: recipient.TaprootKeyPathOnePrevout,
		hashType: txscript.SigHashAll |
			txscript.SigHashAnyOneCanPay,
		witnessLens: []int{65},
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			u, err := BuildInput(&InputRequest{
				OutPoint:  outPoint(0),
				Value:     1000,
				Recipient: test.recipient,
			}, params)
			require.NoError(t, err)

			require.Equal(t, test.method, u.Method)
			require.Equal(t, test.hashType, u.HashType)
			require.Equal(t, uint32(wire.MaxTxInSequenceNum),
				u.Sequence)
			require.Len(t, u.Claim.SignatureScript,
				test.sigScriptLen)
			require.Len(t, u.Claim.Witness, len(test.witnessLens))
			for i, n := range test.witnessLens {
				require.Len(t, u.Claim.Witness[i], n)
			}
			require.Equal(t, u.PkScript, u.SignScript)
			require.True(t, u.LeafHash.IsNone())
		})
	}
}

// TestBuildInputFromAddress checks that hash-only inputs decoded from an
// address are sized with the largest public key they may commit to.
func TestBuildInputFromAddress(t *testing.T) {
	t.Parallel()

	pub := testKey(0x22).PubKey().SerializeCompressed()
	hash := btcutil.Hash160(pub)

	p2pkh, err := btcutil.NewAddressPubKeyHash(hash, params)
	require.NoError(t, err)
	p2wpkh, err := btcutil.NewAddressWitnessPubKeyHash(hash, params)
	require.NoError(t, err)

	u, err := BuildInput(&InputRequest{
		OutPoint:  outPoint(1),
		Value:     5000,
		Recipient: recipient.Address{Address: p2pkh.EncodeAddress()},
	}, params)
	require.NoError(t, err)
	require.Equal(t, recipient.P2PKH{PubKeyHash: hash}, u.Recipient)

	// The hash may commit to an uncompressed key.
	require.Len(t, u.Claim.SignatureScript, 1+73+1+65)

	want, err := txscript.PayToAddrScript(p2pkh)
	require.NoError(t, err)
	require.Equal(t, want, u.PkScript)

	u, err = BuildInput(&InputRequest{
		OutPoint:  outPoint(2),
		Value:     5000,
		Recipient: recipient.Address{Address: p2wpkh.EncodeAddress()},
	}, params)
	require.NoError(t, err)
	require.Equal(t, recipient.Segwit, u.Method)
	require.Len(t, u.Claim.Witness, 2)
	require.Len(t, u.Claim.Witness[1], 33)

	// A taproot address is trusted as an already tweaked key.
	taprootAddr, err := btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(testKey(0x23).PubKey()), params,
	)
	require.NoError(t, err)
	u, err = BuildInput(&InputRequest{
		OutPoint:  outPoint(3),
		Value:     5000,
		Recipient: recipient.Address{Address: taprootAddr.EncodeAddress()},
	}, params)
	require.NoError(t, err)
	require.True(t, u.TapTweak.IsNone())
	require.Equal(t, recipient.TaprootKeyPathAll, u.Method)
}

// TestBuildInputP2SH checks that a P2SH spend pushes its redeem script and
// ignores any signature.
func TestBuildInputP2SH(t *testing.T) {
	t.Parallel()

	redeemScript := []byte{txscript.OP_TRUE}
	u, err := BuildInput(&InputRequest{
		OutPoint:  outPoint(0),
		Value:     1000,
		Recipient: recipient.P2SH{RedeemScript: redeemScript},
		Signature: signer.Placeholder(recipient.Legacy),
	}, params)
	require.NoError(t, err)

	require.Equal(t, recipient.Legacy, u.Method)
	require.Equal(t, redeemScript, u.SignScript)
	require.Equal(t, []byte{txscript.OP_DATA_1, txscript.OP_TRUE},
		u.Claim.SignatureScript)
	require.Empty(t, u.Claim.Witness)
	require.Equal(t, txscript.ScriptHashTy,
		txscript.GetScriptClass(u.PkScript))
}

// TestBuildInputScriptPath checks that a tapscript spend derives its
// locking script, leaf hash and merkle root from the control block.
func TestBuildInputScriptPath(t *testing.T) {
	t.Parallel()

	internalKey := testKey(0x33).PubKey()
	leaf := leafScript(t, testKey(0x34).PubKey())
	cb, pkScript := scriptPathSpend(t, internalKey, leaf)

	u, err := BuildInput(&InputRequest{
		OutPoint: outPoint(0),
		Value:    10000,
		Recipient: recipient.P2TRScriptPath{
			InternalKey:  internalKey.SerializeCompressed(),
			LeafScript:   leaf,
			ControlBlock: cb,
		},
	}, params)
	require.NoError(t, err)

	require.Equal(t, pkScript, u.PkScript)
	require.Equal(t, leaf, u.SignScript)
	require.Equal(t, recipient.TaprootKeyPathAll, u.Method)

	wantLeaf := txscript.NewBaseTapLeaf(leaf).TapHash()
	require.Equal(t, wantLeaf, u.LeafHash.UnwrapOr(chainhash.Hash{}))
	require.Equal(t, wantLeaf, u.MerkleRoot.UnwrapOr(chainhash.Hash{}))

	require.Len(t, u.Claim.Witness, 3)
	require.Len(t, u.Claim.Witness[0], signer.SchnorrPlaceholderLen)
	require.Equal(t, leaf, []byte(u.Claim.Witness[1]))
	require.Equal(t, cb, []byte(u.Claim.Witness[2]))

	// The control block must belong to the stated internal key.
	_, err = BuildInput(&InputRequest{
		OutPoint: outPoint(0),
		Value:    10000,
		Recipient: recipient.P2TRScriptPath{
			InternalKey:  testKey(0x35).PubKey().SerializeCompressed(),
			LeafScript:   leaf,
			ControlBlock: cb,
		},
	}, params)
	require.True(t, txerror.Is(err, txerror.ErrMalformed))
}

// TestBuildInputBRC20 checks the reveal input of a transfer inscription.
func TestBuildInputBRC20(t *testing.T) {
	t.Parallel()

	r := recipient.BRC20Transfer{
		PubKey: testKey(0x44).PubKey().SerializeCompressed(),
		Ticker: "oadf",
		Amount: "20",
	}
	u, err := BuildInput(&InputRequest{
		OutPoint:  outPoint(0),
		Value:     546,
		Recipient: r,
	}, params)
	require.NoError(t, err)

	ins, err := recipient.NewBRC20Inscription(r)
	require.NoError(t, err)
	pkScript, err := ins.PkScript()
	require.NoError(t, err)

	require.Equal(t, pkScript, u.PkScript)
	require.True(t, u.LeafHash.IsSome())
	require.Len(t, u.Claim.Witness, 3)
	require.Equal(t, ins.LeafScript(), []byte(u.Claim.Witness[1]))
}

// TestBuildInputErrors checks that unsupported and malformed inputs fail
// with the right code.
func TestBuildInputErrors(t *testing.T) {
	t.Parallel()

	pub := testKey(0x55).PubKey().SerializeCompressed()
	ecdsaSig := signer.Placeholder(recipient.Legacy)

	tests := []struct {
		name string
		req  InputRequest
		code txerror.ErrorCode
	}{{
		name: "nil recipient",
		req:  InputRequest{Value: 1},
		code: txerror.ErrUnimplemented,
	}, {
		name: "p2wsh",
		req: InputRequest{
			Value:     1,
			Recipient: recipient.P2WSH{WitnessScript: []byte{0x51}},
		},
		code: txerror.ErrUnimplemented,
	}, {
		name: "ordinal",
		req: InputRequest{
			Value:     1,
			Recipient: recipient.Ordinal{PubKey: pub},
		},
		code: txerror.ErrUnimplemented,
	}, {
		name: "p2sh without redeem script",
		req: InputRequest{
			Value: 1,
			Recipient: recipient.P2SH{
				ScriptHash: make([]byte, 20),
			},
		},
		code: txerror.ErrMalformed,
	}, {
		name: "bad public key",
		req: InputRequest{
			Value:     1,
			Recipient: recipient.P2WPKH{PubKey: pub[1:]},
		},
		code: txerror.ErrMalformed,
	}, {
		name: "ecdsa signature on taproot input",
		req: InputRequest{
			Value:     1,
			Recipient: recipient.P2TRKeyPath{PubKey: pub},
			Signature: ecdsaSig,
		},
		code: txerror.ErrMalformed,
	}, {
		name: "default sighash on ecdsa input",
		req: InputRequest{
			Value:     1,
			Recipient: recipient.P2WPKH{PubKey: pub},
			HashType:  fn.Some(txscript.SigHashDefault),
		},
		code: txerror.ErrMalformed,
	}, {
		name: "one prevout without anyonecanpay",
		req: InputRequest{
			Value: 1,
			Recipient: recipient.P2TRKeyPath{
				PubKey: pub, OnePrevout: true,
			},
			HashType: fn.Some(txscript.SigHashAll),
		},
		code: txerror.ErrMalformed,
	}, {
		name: "negative value",
		req: InputRequest{
			Value:     -1,
			Recipient: recipient.P2WPKH{PubKey: pub},
		},
		code: txerror.ErrMalformed,
	}, {
		name: "wrong network address",
		req: InputRequest{
			Value: 1,
			Recipient: recipient.Address{
				Address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx",
			},
		},
		code: txerror.ErrInvalidRecipient,
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			u, err := BuildInput(&test.req, params)
			require.Nil(t, u)
			require.Error(t, err)
			require.True(t, txerror.Is(err, test.code), "got %v", err)
		})
	}
}

// TestBuildClaim checks claims built from real signatures and late bound
// public keys.
func TestBuildClaim(t *testing.T) {
	t.Parallel()

	key := testKey(0x66)
	pub := key.PubKey().SerializeCompressed()
	hash := btcutil.Hash160(pub)
	digest := chainhash.HashB([]byte("claim"))

	sig, err := signer.Sign(recipient.Segwit, key.Serialize(), digest)
	require.NoError(t, err)
	der, err := sig.Serialize(txscript.SigHashAll)
	require.NoError(t, err)

	claim, err := BuildClaim(&ClaimRequest{
		Recipient: recipient.P2WPKH{PubKeyHash: hash},
		Method:    recipient.Segwit,
		HashType:  txscript.SigHashAll,
		Signature: sig,
		PubKey:    pub,
	})
	require.NoError(t, err)
	require.Equal(t, wire.TxWitness{der, pub}, claim.Witness)

	claim, err = BuildClaim(&ClaimRequest{
		Recipient: recipient.P2PKH{PubKeyHash: hash},
		Method:    recipient.Legacy,
		HashType:  txscript.SigHashAll,
		Signature: sig,
		PubKey:    pub,
	})
	require.NoError(t, err)
	pushes, err := txscript.PushedData(claim.SignatureScript)
	require.NoError(t, err)
	require.Equal(t, [][]byte{der, pub}, pushes)

	// A key that does not hash to the input is rejected.
	_, err = BuildClaim(&ClaimRequest{
		Recipient: recipient.P2WPKH{PubKeyHash: hash},
		Method:    recipient.Segwit,
		HashType:  txscript.SigHashAll,
		Signature: sig,
		PubKey:    testKey(0x67).PubKey().SerializeCompressed(),
	})
	require.True(t, txerror.Is(err, txerror.ErrMalformed))

	// Signature-bearing claims need a signature.
	_, err = BuildClaim(&ClaimRequest{
		Recipient: recipient.P2WPKH{PubKey: pub},
		Method:    recipient.Segwit,
		HashType:  txscript.SigHashAll,
	})
	require.True(t, txerror.Is(err, txerror.ErrMalformed))

	// Custom claims pass through untouched.
	custom := recipient.Custom{
		ScriptSig: []byte{0x00},
		Witness:   wire.TxWitness{{0x01}, {0x02}},
	}
	claim, err = BuildClaim(&ClaimRequest{Recipient: custom})
	require.NoError(t, err)
	require.Equal(t, custom.ScriptSig, claim.SignatureScript)
	require.Equal(t, custom.Witness, claim.Witness)

	_, err = BuildClaim(&ClaimRequest{
		Recipient: recipient.Address{Address: "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"},
	})
	require.True(t, txerror.Is(err, txerror.ErrMalformed))

	_, err = BuildClaim(&ClaimRequest{Recipient: recipient.P2WSH{}})
	require.True(t, txerror.Is(err, txerror.ErrUnimplemented))
}

// TestBuildOutput checks output resolution and the value checks.
func TestBuildOutput(t *testing.T) {
	t.Parallel()

	pub := testKey(0x77).PubKey()
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pub.SerializeCompressed()), params,
	)
	require.NoError(t, err)
	want, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	out, err := BuildOutput(&OutputRequest{
		Value:     1000,
		Recipient: recipient.Address{Address: addr.EncodeAddress()},
	}, params)
	require.NoError(t, err)
	require.Equal(t, want, out.PkScript)
	require.Equal(t, wire.NewTxOut(1000, want), out.TxOut())
	require.Nil(t, out.ControlBlock)

	brc := recipient.BRC20Transfer{
		PubKey: pub.SerializeCompressed(),
		Ticker: "ordi",
		Amount: "1000",
	}
	out, err = BuildOutput(&OutputRequest{Value: 546, Recipient: brc}, params)
	require.NoError(t, err)
	require.NotEmpty(t, out.TapLeafScript)
	require.NotEmpty(t, out.ControlBlock)
	require.True(t, txscript.IsPayToTaproot(out.PkScript))

	_, err = BuildOutput(&OutputRequest{
		Value:     -1,
		Recipient: recipient.Address{Address: addr.EncodeAddress()},
	}, params)
	require.True(t, txerror.Is(err, txerror.ErrMalformed))

	_, err = BuildOutput(&OutputRequest{
		Value: btcutil.MaxSatoshi + 1,
		Recipient: recipient.P2WSH{
			WitnessScript: []byte{txscript.OP_TRUE},
		},
	}, params)
	require.True(t, txerror.Is(err, txerror.ErrMalformed))

	_, err = BuildOutput(&OutputRequest{
		Value:     1,
		Recipient: recipient.Ordinal{},
	}, params)
	require.True(t, txerror.Is(err, txerror.ErrUnimplemented))
}
