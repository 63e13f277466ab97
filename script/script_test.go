// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/stretchr/testify/require"
)

const (
	alicePubHex = "036666dd712e05a487916384bfcd5973eb53e8038eccbbf97f7eed" +
		"775b87389536"
	bobPubHex = "037ed9a436e11ec4947ac4b7823787e24ba73180f1edd2857bff19c9" +
		"f4d62b65bf"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

// TestBuildAndParse checks that every builder output is recognized by Parse
// with the same payload.
func TestBuildAndParse(t *testing.T) {
	t.Parallel()

	bob := mustHex(t, bobPubHex)
	hash := Hash160(bob)

	// Bob's pubkey hash is the one used by the legacy signing fixture.
	require.Equal(
		t, "5eaaa4f458f9158f86afcba08dd7448d27045e3d",
		hex.EncodeToString(hash[:]),
	)

	p2pk, err := P2PK(bob)
	require.NoError(t, err)

	// Legacy outputs may still pay to an uncompressed key.
	bobKey, err := btcec.ParsePubKey(bob)
	require.NoError(t, err)
	bobFull := bobKey.SerializeUncompressed()
	p2pkFull := append([]byte{txscript.OP_DATA_65}, bobFull...)
	p2pkFull = append(p2pkFull, txscript.OP_CHECKSIG)

	var wsh WitnessScriptHash
	wsh[0] = 0xaa

	var xonly XOnlyKey
	copy(xonly[:], bob[1:])

	testCases := []struct {
		name   string
		script []byte
		class  Class
		data   []byte
	}{{
		name:   "p2pk",
		script: p2pk,
		class:  PubKeyTy,
		data:   bob,
	}, {
		name:   "p2pk uncompressed",
		script: p2pkFull,
		class:  PubKeyTy,
		data:   bobFull,
	}, {
		name:   "p2pkh",
		script: P2PKH(hash),
		class:  PubKeyHashTy,
		data:   hash[:],
	}, {
		name:   "p2sh",
		script: P2SH(ScriptHash(hash)),
		class:  ScriptHashTy,
		data:   hash[:],
	}, {
		name:   "p2wpkh",
		script: P2WPKH(hash),
		class:  WitnessV0PubKeyHashTy,
		data:   hash[:],
	}, {
		name:   "p2wsh",
		script: P2WSH(wsh),
		class:  WitnessV0ScriptHashTy,
		data:   wsh[:],
	}, {
		name:   "p2tr",
		script: P2TR(xonly),
		class:  WitnessV1TaprootTy,
		data:   xonly[:],
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parsed := Parse(tc.script)
			require.Equal(t, tc.class, parsed.Class)
			require.Equal(t, tc.data, parsed.Data)
		})
	}
}

// TestBuildersMatchTxscript cross-checks the fixed templates against the
// txscript address encoders.
func TestBuildersMatchTxscript(t *testing.T) {
	t.Parallel()

	bob := mustHex(t, bobPubHex)
	hash := Hash160(bob)
	params := &chaincfg.MainNetParams

	pkh, err := btcutil.NewAddressPubKeyHash(hash[:], params)
	require.NoError(t, err)
	expected, err := txscript.PayToAddrScript(pkh)
	require.NoError(t, err)
	require.Equal(t, expected, P2PKH(hash))

	wpkh, err := btcutil.NewAddressWitnessPubKeyHash(hash[:], params)
	require.NoError(t, err)
	expected, err = txscript.PayToAddrScript(wpkh)
	require.NoError(t, err)
	require.Equal(t, expected, P2WPKH(hash))

	// Decoding the encoded address gives back the same script.
	fromAddr, err := FromAddress(wpkh.EncodeAddress(), params)
	require.NoError(t, err)
	require.Equal(t, P2WPKH(hash), fromAddr)

	// An address of another network is rejected.
	_, err = FromAddress(wpkh.EncodeAddress(), &chaincfg.TestNet3Params)
	require.ErrorIs(t, err, utxoerr.ErrInvalidParams)
}

// TestParseUnknown checks malformed and non standard scripts.
func TestParseUnknown(t *testing.T) {
	t.Parallel()

	// Truncated P2PKH.
	require.Equal(t, Unknown, Parse(mustHex(t, "76a9145eaa88ac")).Class)

	// Empty script.
	require.Equal(t, Unknown, Parse(nil).Class)

	// A P2PK with a key that is not on the curve.
	bad := append([]byte{33, 0x02}, make([]byte, 32)...)
	bad = append(bad, txscript.OP_CHECKSIG)
	bad[2] = 0xff
	for i := 3; i < 34; i++ {
		bad[i] = 0xff
	}
	require.Equal(t, Unknown, Parse(bad).Class)

	// OP_RETURN carries no payload in the parse result.
	opReturn, err := OpReturn([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, NullDataTy, Parse(opReturn).Class)
	require.True(t, IsOpReturn(opReturn))

	_, err = OpReturn(make([]byte, MaxOpReturnData+1))
	require.ErrorIs(t, err, ErrOpReturnTooLarge)
}

// TestClaims checks the claim layouts of the single signature templates.
func TestClaims(t *testing.T) {
	t.Parallel()

	alice := mustHex(t, alicePubHex)
	sig := make([]byte, ECDSAPlaceholderSize)

	// P2PKH: 1+73 + 1+33 bytes of pushes and no witness.
	claim, err := P2PKHClaim{PubKey: alice}.Claim(sig)
	require.NoError(t, err)
	require.Len(t, claim.ScriptSig, 108)
	require.Empty(t, claim.Witness)

	// P2PK: a single push.
	claim, err = P2PKClaim{}.Claim(sig)
	require.NoError(t, err)
	require.Len(t, claim.ScriptSig, 74)

	// P2WPKH: empty scriptSig, two witness items.
	claim, err = P2WPKHClaim{PubKey: alice}.Claim(sig)
	require.NoError(t, err)
	require.Empty(t, claim.ScriptSig)
	require.Len(t, claim.Witness, 2)

	// Taproot key path: one witness item.
	claim, err = TaprootKeyPathClaim{}.Claim(make([]byte, 64))
	require.NoError(t, err)
	require.Len(t, claim.Witness, 1)

	// Taproot script path: sig, script and control block.
	claim, err = TaprootScriptPathClaim{
		LeafScript:   []byte{txscript.OP_TRUE},
		ControlBlock: make([]byte, 33),
	}.Claim(make([]byte, 64))
	require.NoError(t, err)
	require.Len(t, claim.Witness, 3)
}
