// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zcash

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/stretchr/testify/require"
)

const (
	saplingTxHex = "0400008085202f890153685b8809efc50dd7d5cb0906b307" +
		"a1b8aa5157baa5fc1bd6fe2d0344dd193a000000006b483045022100ca0be9" +
		"f37a4975432a52bb65b25e483f6f93d577955290bb7fb0060a93bfc9200220" +
		"3e0627dff004d3c72a957dc9f8e4e0e696e69d125e4d8e275d119001924d3b" +
		"48012103b243171fae5516d1dc15f9178cfcc5fdc67b0a883055c117b01ba8" +
		"af29b953f6ffffffff0140720700000000001976a91449964a736f3713d642" +
		"83fd0018626ba50091c7e988ac000000000000000000000000000000000000" +
		"00"

	saplingTxID = "ec9033381c1cc53ada837ef9981c03ead1c7c41700ff3a954389c" +
		"faddc949256"

	senderPubHex = "03b243171fae5516d1dc15f9178cfcc5fdc67b0a883055c117b01" +
		"ba8af29b953f6"

	derSigHex = "3045022100ca0be9f37a4975432a52bb65b25e483f6f93d577955290b" +
		"b7fb0060a93bfc92002203e0627dff004d3c72a957dc9f8e4e0e696e69d125e4d" +
		"8e275d119001924d3b48"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

// saplingFixture rebuilds the broadcast Sapling transaction.
func saplingFixture(t *testing.T) (*Tx, *txmodel.UtxoToSign) {
	t.Helper()

	prevHash, err := chainhash.NewHashFromStr("3a19dd44032dfed61bfca5ba57" +
		"51aab8a107b30609cbd5d70dc5ef09885b6853")
	require.NoError(t, err)

	senderPub := mustHex(t, senderPubHex)
	senderScript := script.P2PKH(script.Hash160(senderPub))

	var toHash script.PubKeyHash
	copy(toHash[:], mustHex(t, "49964a736f3713d64283fd0018626ba50091c7e9"))

	tx := NewTx(0, 0, SaplingBranchID)
	tx.SetInputs([]*wire.TxIn{
		wire.NewTxIn(wire.NewOutPoint(prevHash, 0), nil, nil),
	})
	tx.SetOutputs([]*wire.TxOut{
		wire.NewTxOut(488_000, script.P2PKH(toHash)),
	})

	utxo := &txmodel.UtxoToSign{
		PrevOutScript: senderScript,
		ScriptCode:    senderScript,
		Amount:        494_000,
		Method:        txmodel.Legacy,
		SighashType:   txmodel.SigHashAll,
		SpenderPubKey: senderPub,
		Claimer:       script.P2PKHClaim{PubKey: senderPub},
	}

	return tx, utxo
}

// TestSaplingEncoding checks the encoding and txid of a signed Sapling
// transaction.
func TestSaplingEncoding(t *testing.T) {
	t.Parallel()

	tx, utxo := saplingFixture(t)

	// Place the broadcast signature into the input.
	sig := append(mustHex(t, derSigHex), byte(txmodel.SigHashAll))
	claim, err := utxo.Claimer.Claim(sig)
	require.NoError(t, err)
	tx.Inputs()[0].SignatureScript = claim.ScriptSig

	encoded, err := txmodel.Encode(tx)
	require.NoError(t, err)
	require.Equal(t, saplingTxHex, hex.EncodeToString(encoded))
	require.Equal(t, saplingTxID, tx.TxID().String())

	// No witness discount: weight is four times the size.
	require.Equal(t, 211, tx.TotalSize())
	size := txmodel.Size(tx)
	require.EqualValues(t, 211*4, size.Weight().Uint64())
	require.EqualValues(t, 211, size.VSize().Uint64())
}

// TestSaplingSighash checks the ZIP-243 digest by verifying the broadcast
// signature against it.
func TestSaplingSighash(t *testing.T) {
	t.Parallel()

	tx, utxo := saplingFixture(t)

	hash, err := tx.ChainSighash(0, []*txmodel.UtxoToSign{utxo})
	require.NoError(t, err)

	pub, err := btcec.ParsePubKey(utxo.SpenderPubKey)
	require.NoError(t, err)

	sig, err := ecdsa.ParseDERSignature(mustHex(t, derSigHex))
	require.NoError(t, err)
	require.True(t, sig.Verify(hash[:], pub))

	// The branch id is committed to.
	other := NewTx(0, 0, 0xc2d6d0b4)
	other.SetInputs(tx.Inputs())
	other.SetOutputs(tx.Outputs())
	otherHash, err := other.ChainSighash(0, []*txmodel.UtxoToSign{utxo})
	require.NoError(t, err)
	require.NotEqual(t, hash, otherHash)

	// Segwit and taproot inputs are not supported.
	segwit := *utxo
	segwit.Method = txmodel.Segwit
	_, err = tx.ChainSighash(0, []*txmodel.UtxoToSign{&segwit})
	require.ErrorIs(t, err, utxoerr.ErrNotSupported)

	// Clones do not share inputs.
	clone := tx.Clone()
	clone.Inputs()[0].Sequence = 7
	require.Equal(t, uint32(wire.MaxTxInSequenceNum), tx.Inputs()[0].Sequence)
}
