// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sighash

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// testKey returns a deterministic private key.
func testKey(seed byte) *btcec.PrivateKey {
	var b [32]byte
	b[31] = seed
	b[0] = 0x11

	priv, _ := btcec.PrivKeyFromBytes(b[:])

	return priv
}

// mixedTx is a transaction spending one input of every signing method.
type mixedTx struct {
	msg     *wire.MsgTx
	utxos   []*txmodel.UtxoToSign
	fetcher *txscript.MultiPrevOutFetcher
	leaf    txscript.TapLeaf
}

func newMixedTx(t *testing.T, legacyType, segwitType,
	taprootType txmodel.SighashType) *mixedTx {

	t.Helper()

	legacyKey := testKey(1).PubKey().SerializeCompressed()
	segwitKey := testKey(2).PubKey().SerializeCompressed()
	keyPathKey := testKey(3).PubKey()
	leafKey := testKey(4).PubKey()

	p2pkh := script.P2PKH(script.Hash160(legacyKey))
	p2wpkh := script.P2WPKH(script.Hash160(segwitKey))
	keyPath := script.P2TR(script.TaprootOutputKey(keyPathKey, nil))

	leafScript, err := txscript.NewScriptBuilder().
		AddData(schnorr.SerializePubKey(leafKey)).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)

	leaf := txscript.NewBaseTapLeaf(leafScript)
	tree := txscript.AssembleTaprootScriptTree(leaf)
	root := tree.RootNode.TapHash()
	scriptPath := script.P2TR(script.TaprootOutputKey(keyPathKey, root[:]))

	msg := wire.NewMsgTx(2)
	msg.LockTime = 800_000

	prevScripts := [][]byte{p2pkh, p2wpkh, keyPath, scriptPath}
	amounts := []int64{10_000, 20_000, 30_000, 40_000}
	fetcher := txscript.NewMultiPrevOutFetcher(
		make(map[wire.OutPoint]*wire.TxOut),
	)

	for i := range prevScripts {
		op := wire.OutPoint{Hash: chainhash.Hash{byte(i + 1)}, Index: 1}
		in := wire.NewTxIn(&op, nil, nil)
		in.Sequence = 0xfffffffd - uint32(i)
		msg.AddTxIn(in)

		fetcher.AddPrevOut(op, wire.NewTxOut(amounts[i], prevScripts[i]))
	}

	msg.AddTxOut(wire.NewTxOut(50_000, p2wpkh))
	msg.AddTxOut(wire.NewTxOut(45_000, keyPath))

	utxos := []*txmodel.UtxoToSign{{
		PrevOutScript: p2pkh,
		ScriptCode:    p2pkh,
		Amount:        amounts[0],
		Method:        txmodel.Legacy,
		SighashType:   legacyType,
		SpenderPubKey: legacyKey,
	}, {
		PrevOutScript: p2wpkh,
		ScriptCode:    script.P2PKH(script.Hash160(segwitKey)),
		Amount:        amounts[1],
		Method:        txmodel.Segwit,
		SighashType:   segwitType,
		SpenderPubKey: segwitKey,
	}, {
		PrevOutScript: keyPath,
		Amount:        amounts[2],
		Method:        txmodel.TaprootKeyPath,
		SighashType:   taprootType,
		SpenderPubKey: schnorr.SerializePubKey(keyPathKey),
		TaprootTweak:  fn.Some(txmodel.TaprootTweak{}),
	}, {
		PrevOutScript: scriptPath,
		Amount:        amounts[3],
		Method:        txmodel.TaprootScriptPath,
		SighashType:   taprootType,
		SpenderPubKey: schnorr.SerializePubKey(leafKey),
		LeafHash:      fn.Some(leaf.TapHash()),
	}}

	return &mixedTx{
		msg:     msg,
		utxos:   utxos,
		fetcher: fetcher,
		leaf:    leaf,
	}
}

// TestComputeMatchesTxscript cross-checks every digest against the btcd
// reference implementation for several sighash types.
func TestComputeMatchesTxscript(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		legacy  txmodel.SighashType
		segwit  txmodel.SighashType
		taproot txmodel.SighashType
	}{{
		name:    "all",
		legacy:  txmodel.SigHashAll,
		segwit:  txmodel.SigHashAll,
		taproot: txmodel.SigHashDefault,
	}, {
		name:    "none anyonecanpay",
		legacy:  txmodel.SigHashNone | txmodel.SigHashAnyOneCanPay,
		segwit:  txmodel.SigHashNone | txmodel.SigHashAnyOneCanPay,
		taproot: txmodel.SigHashNone,
	}, {
		name:    "single",
		legacy:  txmodel.SigHashSingle,
		segwit:  txmodel.SigHashSingle,
		taproot: txmodel.SigHashAll,
	}, {
		name:    "single anyonecanpay",
		legacy:  txmodel.SigHashSingle | txmodel.SigHashAnyOneCanPay,
		segwit:  txmodel.SigHashSingle | txmodel.SigHashAnyOneCanPay,
		taproot: txmodel.SigHashDefault,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := newMixedTx(t, tc.legacy, tc.segwit, tc.taproot)
			tx := txmodel.WrapMsgTx(m.msg, txmodel.Sha256d)

			got, err := Compute(tx, m.utxos)
			require.NoError(t, err)
			require.Len(t, got, 4)

			sigHashes := txscript.NewTxSigHashes(m.msg, m.fetcher)

			// Legacy input.
			want, err := txscript.CalcSignatureHash(
				m.utxos[0].ScriptCode,
				txscript.SigHashType(tc.legacy), m.msg, 0,
			)
			require.NoError(t, err)
			require.Equal(t, want, got[0].Hash[:])

			// BIP143 input.
			want, err = txscript.CalcWitnessSigHash(
				m.utxos[1].PrevOutScript, sigHashes,
				txscript.SigHashType(tc.segwit), m.msg, 1,
				m.utxos[1].Amount,
			)
			require.NoError(t, err)
			require.Equal(t, want, got[1].Hash[:])

			// BIP341 key path input. ALL is committed as DEFAULT.
			tapType := tc.taproot
			if tapType == txmodel.SigHashAll {
				tapType = txmodel.SigHashDefault
			}
			m.utxos[2].SighashType = tapType
			m.utxos[3].SighashType = tapType

			got, err = Compute(tx, m.utxos)
			require.NoError(t, err)

			want, err = txscript.CalcTaprootSignatureHash(
				sigHashes, txscript.SigHashType(tapType), m.msg, 2,
				m.fetcher,
			)
			require.NoError(t, err)
			require.Equal(t, want, got[2].Hash[:])

			// BIP341 script path input.
			want, err = txscript.CalcTapscriptSignaturehash(
				sigHashes, txscript.SigHashType(tapType), m.msg, 3,
				m.fetcher, m.leaf,
			)
			require.NoError(t, err)
			require.Equal(t, want, got[3].Hash[:])
		})
	}
}

// TestLegacySingleOutOfRange checks the consensus digest of a
// SIGHASH_SINGLE input without a matching output.
func TestLegacySingleOutOfRange(t *testing.T) {
	t.Parallel()

	m := newMixedTx(
		t, txmodel.SigHashAll, txmodel.SigHashAll, txmodel.SigHashDefault,
	)
	m.msg.TxOut = m.msg.TxOut[:0]
	tx := txmodel.WrapMsgTx(m.msg, txmodel.Sha256d)

	m.utxos[0].SighashType = txmodel.SigHashSingle
	hash, err := Legacy(tx, 0, m.utxos[0])
	require.NoError(t, err)

	want, err := txscript.CalcSignatureHash(
		m.utxos[0].ScriptCode, txscript.SigHashSingle, m.msg, 0,
	)
	require.NoError(t, err)
	require.Equal(t, want, hash[:])
}

// TestForkIDUsesWitnessDigest checks that a legacy input with the fork id
// flag is hashed with the BIP143 algorithm.
func TestForkIDUsesWitnessDigest(t *testing.T) {
	t.Parallel()

	m := newMixedTx(
		t, txmodel.SigHashAll|txmodel.SigHashForkID, txmodel.SigHashAll,
		txmodel.SigHashDefault,
	)
	tx := txmodel.WrapMsgTx(m.msg, txmodel.Sha256d)

	got, err := Compute(tx, m.utxos)
	require.NoError(t, err)

	want, err := WitnessV0(tx, 0, m.utxos[0])
	require.NoError(t, err)
	require.Equal(t, want, got[0].Hash)

	legacy, err := Legacy(tx, 0, m.utxos[0])
	require.NoError(t, err)
	require.NotEqual(t, legacy, got[0].Hash)
}

// TestTaprootUnsupportedTypes checks taproot ANYONECANPAY and SINGLE are
// hard errors.
func TestTaprootUnsupportedTypes(t *testing.T) {
	t.Parallel()

	m := newMixedTx(
		t, txmodel.SigHashAll, txmodel.SigHashAll, txmodel.SigHashDefault,
	)
	tx := txmodel.WrapMsgTx(m.msg, txmodel.Sha256d)

	m.utxos[2].SighashType = txmodel.SigHashSingle
	_, err := Compute(tx, m.utxos)
	require.ErrorIs(t, err, txmodel.ErrTaprootSingle)

	m.utxos[2].SighashType = txmodel.SigHashAll |
		txmodel.SigHashAnyOneCanPay
	_, err = Taproot(tx, 2, m.utxos)
	require.ErrorIs(t, err, txmodel.ErrTaprootAnyoneCanPay)

	// A script path without a leaf hash cannot be hashed.
	m.utxos[2].SighashType = txmodel.SigHashDefault
	m.utxos[3].LeafHash = fn.None[chainhash.Hash]()
	_, err = Compute(tx, m.utxos)
	require.ErrorIs(t, err, ErrMissingLeafHash)
}

// TestScenarioLegacyP2PKH checks the legacy digest of the P2PKH fixture.
func TestScenarioLegacyP2PKH(t *testing.T) {
	t.Parallel()

	alicePub, err := hex.DecodeString("036666dd712e05a487916384bfcd5973eb5" +
		"3e8038eccbbf97f7eed775b87389536")
	require.NoError(t, err)
	bobPub, err := hex.DecodeString("037ed9a436e11ec4947ac4b7823787e24ba7" +
		"3180f1edd2857bff19c9f4d62b65bf")
	require.NoError(t, err)

	prevHash, err := chainhash.NewHashFromStr("1e1cdc48aa990d7e154a161d5b" +
		"5f1cad737742e97d2712ab188027bb42e6e47b")
	require.NoError(t, err)

	aliceScript := script.P2PKH(script.Hash160(alicePub))

	msg := wire.NewMsgTx(2)
	msg.AddTxIn(wire.NewTxIn(wire.NewOutPoint(prevHash, 0), nil, nil))
	msg.AddTxOut(wire.NewTxOut(
		50*100_000_000-1_000_000, script.P2PKH(script.Hash160(bobPub)),
	))

	utxo := &txmodel.UtxoToSign{
		PrevOutScript: aliceScript,
		ScriptCode:    aliceScript,
		Amount:        50 * 100_000_000,
		Method:        txmodel.Legacy,
		SighashType:   txmodel.SigHashAll,
		SpenderPubKey: alicePub,
	}

	got, err := Compute(
		txmodel.WrapMsgTx(msg, txmodel.Sha256d),
		[]*txmodel.UtxoToSign{utxo},
	)
	require.NoError(t, err)
	require.Equal(
		t, "6a0e072da66b141fdb448323d54765cafcaf084a06d2fa13c8aed0c694"+
			"e50d18", hex.EncodeToString(got[0].Hash[:]),
	)

	// The external signature as r || s || v verifies and encodes to the
	// DER form found in the signed transaction.
	rawSig, err := hex.DecodeString("78eda020d4b86fcb3af78ef919912e6d79b8" +
		"1164dbbb0b0b96da6ac58a2de4b11a5fd8d48734d5a02371c4b5ee551a69" +
		"dca3842edbf577d863cf8ae9fdbbd45900")
	require.NoError(t, err)

	encoded, err := got[0].Verify(alicePub, rawSig)
	require.NoError(t, err)
	require.Equal(
		t, "3044022078eda020d4b86fcb3af78ef919912e6d79b81164dbbb0b0b96da"+
			"6ac58a2de4b102201a5fd8d48734d5a02371c4b5ee551a69dca3842edbf5"+
			"77d863cf8ae9fdbbd45901", hex.EncodeToString(encoded),
	)

	// The wrong key is rejected before verification.
	_, err = got[0].Verify(bobPub, rawSig)
	require.ErrorIs(t, err, ErrPubKeyMismatch)

	// A corrupted signature does not verify.
	rawSig[10] ^= 0x01
	_, err = got[0].Verify(nil, rawSig)
	require.ErrorIs(t, err, ErrSignatureMismatch)
}

// TestVerifySchnorrKeyPath checks that a key-path signature verifies
// against the tweaked key.
func TestVerifySchnorrKeyPath(t *testing.T) {
	t.Parallel()

	m := newMixedTx(
		t, txmodel.SigHashAll, txmodel.SigHashAll, txmodel.SigHashDefault,
	)
	tx := txmodel.WrapMsgTx(m.msg, txmodel.Sha256d)

	got, err := Compute(tx, m.utxos)
	require.NoError(t, err)

	// Sign with the BIP86 tweaked key.
	tweaked := txscript.TweakTaprootPrivKey(*testKey(3), nil)
	sig, err := schnorr.Sign(tweaked, got[2].Hash[:])
	require.NoError(t, err)

	encoded, err := got[2].Verify(m.utxos[2].SpenderPubKey, sig.Serialize())
	require.NoError(t, err)
	require.Len(t, encoded, schnorr.SignatureSize)

	// The untweaked key does not produce a valid key-path signature.
	sig, err = schnorr.Sign(testKey(3), got[2].Hash[:])
	require.NoError(t, err)
	_, err = got[2].Verify(nil, sig.Serialize())
	require.ErrorIs(t, err, ErrSignatureMismatch)

	// A DER encoded ECDSA signature is accepted as well.
	ecdsaSig := ecdsa.Sign(testKey(1), got[0].Hash[:])
	encoded, err = got[0].Verify(nil, ecdsaSig.Serialize())
	require.NoError(t, err)
	require.Equal(
		t, EncodeECDSA(ecdsaSig, txmodel.SigHashAll), encoded,
	)
}
