// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txmodel

import (
	"bytes"
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/stretchr/testify/require"
)

const (
	// signedP2PKHHex is a one input, one output legacy transaction.
	signedP2PKHHex = "02000000017be4e642bb278018ab12277de9427773ad1c5f5b" +
		"1d164a157e0d99aa48dc1c1e000000006a473044022078eda020d4b86fcb3" +
		"af78ef919912e6d79b81164dbbb0b0b96da6ac58a2de4b102201a5fd8d487" +
		"34d5a02371c4b5ee551a69dca3842edbf577d863cf8ae9fdbbd4590121036" +
		"666dd712e05a487916384bfcd5973eb53e8038eccbbf97f7eed775b873895" +
		"36ffffffff01c0aff629010000001976a9145eaaa4f458f9158f86afcba08" +
		"dd7448d27045e3d88ac00000000"

	signedP2PKHTxID = "c19f410bf1d70864220e93bca20f836aaaf8cdde84a46692" +
		"616e9f4480d54885"
)

// TestNormalizeSighashType checks the accepted sighash types per method.
func TestNormalizeSighashType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		raw    uint32
		method SigningMethod
		want   SighashType
		err    error
	}{{
		name:   "zero is all for ecdsa",
		raw:    0,
		method: Legacy,
		want:   SigHashAll,
	}, {
		name:   "single anyonecanpay segwit",
		raw:    0x83,
		method: Segwit,
		want:   SigHashSingle | SigHashAnyOneCanPay,
	}, {
		name:   "bch fork id",
		raw:    0x41,
		method: Legacy,
		want:   SigHashAll | SigHashForkID,
	}, {
		name:   "unknown base",
		raw:    0x04,
		method: Legacy,
		err:    utxoerr.ErrInvalidParams,
	}, {
		name:   "taproot all is default",
		raw:    0x01,
		method: TaprootKeyPath,
		want:   SigHashDefault,
	}, {
		name:   "taproot none",
		raw:    0x02,
		method: TaprootScriptPath,
		want:   SigHashNone,
	}, {
		name:   "taproot single",
		raw:    0x03,
		method: TaprootKeyPath,
		err:    ErrTaprootSingle,
	}, {
		name:   "taproot anyonecanpay",
		raw:    0x81,
		method: TaprootKeyPath,
		err:    ErrTaprootAnyoneCanPay,
	}, {
		name:   "taproot fork id",
		raw:    0x41,
		method: TaprootKeyPath,
		err:    utxoerr.ErrInvalidParams,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeSighashType(tc.raw, tc.method)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// TestHasher checks the three digests against known empty-input values.
func TestHasher(t *testing.T) {
	t.Parallel()

	sha256d := Sha256d.Hash(nil)
	require.Equal(
		t, "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d"+
			"4c9456", hex.EncodeToString(sha256d[:]),
	)

	sha := Sha256.Hash(nil)
	require.Equal(
		t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b78"+
			"52b855", hex.EncodeToString(sha[:]),
	)

	blake := Blake256.Hash(nil)
	require.Equal(
		t, "716f6e863f744b9ac22c97ec7b76ea5f5908bc5b2f67c61510bfc4751"+
			"384ea7a", hex.EncodeToString(blake[:]),
	)
}

// TestStdTx checks sizes and the txid of a decoded legacy transaction.
func TestStdTx(t *testing.T) {
	t.Parallel()

	raw, err := hex.DecodeString(signedP2PKHHex)
	require.NoError(t, err)

	msg := wire.NewMsgTx(0)
	require.NoError(t, msg.Deserialize(bytes.NewReader(raw)))

	tx := WrapMsgTx(msg, Sha256d)
	require.Equal(t, signedP2PKHTxID, tx.TxID().String())
	require.False(t, tx.HasWitness())

	// A legacy transaction has equal base and total sizes.
	size := Size(tx)
	require.EqualValues(t, 191, size.Base)
	require.EqualValues(t, 191, size.Total)
	require.EqualValues(t, 764, size.Weight().Uint64())
	require.EqualValues(t, 191, size.VSize().Uint64())

	// Encoding gives back the original bytes.
	encoded, err := Encode(tx)
	require.NoError(t, err)
	require.Equal(t, raw, encoded)

	// A different hasher changes the txid but not the encoding.
	single := WrapMsgTx(msg, Sha256)
	require.NotEqual(t, tx.TxID(), single.TxID())

	// Clones are independent.
	clone := tx.Clone()
	clone.Inputs()[0].Sequence = 1
	require.Equal(t, uint32(wire.MaxTxInSequenceNum), msg.TxIn[0].Sequence)
}

// TestUnsignedTxEstimate checks that placeholder claims size a P2PKH input
// at 149 bytes.
func TestUnsignedTxEstimate(t *testing.T) {
	t.Parallel()

	pub, err := hex.DecodeString("036666dd712e05a487916384bfcd5973eb53e" +
		"8038eccbbf97f7eed775b87389536")
	require.NoError(t, err)

	pkScript := script.P2PKH(script.Hash160(pub))

	tx := NewStdTx(2, 0, Sha256d)
	tx.SetInputs([]*wire.TxIn{wire.NewTxIn(&wire.OutPoint{}, nil, nil)})
	tx.SetOutputs([]*wire.TxOut{wire.NewTxOut(1000, pkScript)})

	unsigned, err := NewUnsignedTx(tx, []*UtxoToSign{{
		PrevOutScript: pkScript,
		ScriptCode:    pkScript,
		Amount:        5000,
		Method:        Legacy,
		SighashType:   SigHashAll,
		SpenderPubKey: pub,
		Claimer:       script.P2PKHClaim{PubKey: pub},
	}})
	require.NoError(t, err)

	estimate, err := unsigned.Estimate()
	require.NoError(t, err)

	// 10 bytes of overhead, one 149 byte input, one 34 byte output.
	require.Equal(t, 10+149+34, estimate.TotalSize())

	// The unsigned transaction itself is not claimed.
	require.Empty(t, unsigned.Tx().Inputs()[0].SignatureScript)
	require.EqualValues(t, 5000, unsigned.TotalInput())
	require.EqualValues(t, 1000, unsigned.TotalOutput())

	// A witness on a legacy input is rejected.
	_, err = unsigned.Compile([]*script.Claim{{
		Witness: wire.TxWitness{{0x01}},
	}})
	require.ErrorIs(t, err, ErrUnexpectedWitness)

	// Mismatched lengths are rejected.
	_, err = NewUnsignedTx(tx, nil)
	require.ErrorIs(t, err, ErrInputCountMismatch)
}

// Input and output templates for the weight checks, sized like their
// signed forms.
var (
	legacyIn = func() *wire.TxIn {
		return &wire.TxIn{SignatureScript: bytes.Repeat([]byte{1}, 107)}
	}
	segwitIn = func() *wire.TxIn {
		return &wire.TxIn{Witness: wire.TxWitness{
			bytes.Repeat([]byte{2}, 72), bytes.Repeat([]byte{3}, 33),
		}}
	}
	keyPathIn = func() *wire.TxIn {
		return &wire.TxIn{Witness: wire.TxWitness{
			bytes.Repeat([]byte{4}, 64),
		}}
	}
	scriptPathIn = func() *wire.TxIn {
		return &wire.TxIn{Witness: wire.TxWitness{
			bytes.Repeat([]byte{5}, 64), bytes.Repeat([]byte{6}, 40),
			bytes.Repeat([]byte{7}, 65),
		}}
	}

	inputKinds = []func() *wire.TxIn{
		legacyIn, segwitIn, keyPathIn, scriptPathIn,
	}
	outputSizes = []int{25, 22, 34, 34, 83}
)

// requireWeightLaw checks the size of tx against btcd's weight and the
// vsize rounding.
func requireWeightLaw(t *testing.T, tx *StdTx) {
	t.Helper()

	size := Size(tx)
	weight := size.Weight().Uint64()

	require.Equal(t, size.Base*3+size.Total, weight)
	require.Equal(t, (weight+3)/4, size.VSize().Uint64())

	// The sizes match the encoding and btcd's weight.
	encoded, err := Encode(tx)
	require.NoError(t, err)
	require.EqualValues(t, len(encoded), size.Total)
	require.EqualValues(
		t, blockchain.GetTransactionWeight(btcutil.NewTx(tx.MsgTx())),
		weight,
	)

	if !tx.HasWitness() {
		require.Equal(t, size.Base, size.Total)
	}
}

// buildSizedTx returns a transaction with the given inputs and outputs of
// the given script sizes.
func buildSizedTx(ins []func() *wire.TxIn, outs []int) *StdTx {
	tx := NewStdTx(2, 0, Sha256d)

	txIns := make([]*wire.TxIn, len(ins))
	for i, in := range ins {
		txIns[i] = in()
		txIns[i].PreviousOutPoint.Index = uint32(i)
		txIns[i].Sequence = wire.MaxTxInSequenceNum
	}
	tx.SetInputs(txIns)

	txOuts := make([]*wire.TxOut, len(outs))
	for i, n := range outs {
		txOuts[i] = wire.NewTxOut(
			int64(1_000+i), bytes.Repeat([]byte{8}, n),
		)
	}
	tx.SetOutputs(txOuts)

	return tx
}

// TestWeightLaw checks that weight is base*3 + total and vsize is the
// weight over four rounded up, across input and output mixes.
func TestWeightLaw(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		ins  []func() *wire.TxIn
		outs []int
	}{{
		name: "legacy only",
		ins:  []func() *wire.TxIn{legacyIn, legacyIn},
		outs: []int{25, 25},
	}, {
		name: "segwit only",
		ins:  []func() *wire.TxIn{segwitIn},
		outs: []int{22},
	}, {
		name: "taproot key path",
		ins:  []func() *wire.TxIn{keyPathIn},
		outs: []int{34},
	}, {
		name: "taproot script path",
		ins:  []func() *wire.TxIn{scriptPathIn, keyPathIn},
		outs: []int{34, 83},
	}, {
		name: "mixed",
		ins: []func() *wire.TxIn{
			legacyIn, segwitIn, keyPathIn, scriptPathIn,
		},
		outs: []int{25, 22, 34},
	}, {
		name: "legacy next to witness",
		ins:  []func() *wire.TxIn{legacyIn, segwitIn},
		outs: []int{25},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			requireWeightLaw(t, buildSizedTx(tc.ins, tc.outs))
		})
	}

	// Random mixes from a fixed seed.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		ins := make([]func() *wire.TxIn, 1+rng.Intn(8))
		for j := range ins {
			ins[j] = inputKinds[rng.Intn(len(inputKinds))]
		}

		outs := make([]int, 1+rng.Intn(5))
		for j := range outs {
			outs[j] = outputSizes[rng.Intn(len(outputSizes))]
		}

		requireWeightLaw(t, buildSizedTx(ins, outs))
	}
}
