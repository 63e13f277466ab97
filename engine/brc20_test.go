// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/utxoengine/chains"
	"github.com/btcsuite/utxoengine/dust"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/stretchr/testify/require"
)

const (
	brc20AlicePriv = "e253373989199da27c48680e3a3fc0f648d50f9a727ef17a7fe6a4" +
		"dc3b159129"

	brc20CommitID = "797d17d47ae66e598341f9dfdea020b04d4017dcf9cc33f0e51f" +
		"7a6082171fb1"
	brc20RevealID = "7046dc2689a27e143ea2ad1039710885147e9485ab6453fa7e87" +
		"464aa7dd3eca"

	brc20Dust btcutil.Amount = 546
)

// brc20RevealInput spends the inscription committed by brc20CommitTx back
// to alice, leaving all but the dust amount to the miner.
func brc20RevealInput(t *testing.T) *SigningInput {
	t.Helper()

	alice := pubKeyOf(t, brc20AlicePriv)

	return &SigningInput{
		Chain:  chains.Bitcoin,
		TxArgs: chains.TxArgs{Version: 2},
		Inputs: []Input{{
			OutPoint:    outPoint(t, brc20CommitID, 0),
			Value:       7_000,
			SighashType: uint32(txmodel.SigHashAll),
			Claim: ClaimBRC20Inscription{
				PubKey: alice,
				Ticker: "oadf",
				Amount: "20",
			},
		}},
		Outputs: []Output{{
			Value: brc20Dust,
			To:    ToP2WPKH{PubKey: alice},
		}},
		Dust:        dust.Fixed(brc20Dust),
		PrivateKeys: [][]byte{mustHex(t, brc20AlicePriv)},
	}
}

// TestBRC20Inscription checks the commit and reveal transactions of a
// BRC-20 transfer inscription.
func TestBRC20Inscription(t *testing.T) {
	t.Parallel()

	e := testEngine()
	alice := pubKeyOf(t, brc20AlicePriv)

	// Commit: the inscription output and the change back to alice.
	commit := &SigningInput{
		Chain:  chains.Bitcoin,
		TxArgs: chains.TxArgs{Version: 2},
		Inputs: []Input{{
			OutPoint: outPoint(t, "8ec895b4d30adb01e38471ca1019bfc8c3"+
				"e5fbd1f28d9e7b5653260d89989008", 1),
			Value: 26_400,
			Claim: ClaimP2WPKH{PubKey: alice},
		}},
		Outputs: []Output{
			{
				Value: 7_000,
				To: ToBRC20Inscribe{
					PubKey: alice,
					Ticker: "oadf",
					Amount: "20",
				},
			},
			{
				Value: 16_400,
				To:    ToP2WPKH{PubKey: alice},
			},
		},
		Dust:        dust.Fixed(brc20Dust),
		PrivateKeys: [][]byte{mustHex(t, brc20AlicePriv)},
	}
	requireSigned(
		t, e.Sign(commit), brc20CommitTx, brc20CommitID, 153, 610, 3_000,
	)

	// The reveal is estimated with a sighash type byte it does not
	// carry once signed.
	plan := e.Plan(brc20RevealInput(t))
	require.Nil(t, plan.Error)
	require.EqualValues(t, 131, plan.VSizeEstimate.Uint64())
	require.Equal(t, 7_000-brc20Dust, plan.FeeEstimate)
	require.Zero(t, plan.Change)

	requireSigned(
		t, e.Sign(brc20RevealInput(t)), brc20RevealTx, brc20RevealID,
		131, 522, 7_000-brc20Dust,
	)

	// The broadcast reveal signature verifies against the digest and
	// compiles into the same transaction.
	in := brc20RevealInput(t)
	in.PrivateKeys = nil

	pre := e.PreImageHashes(in)
	require.Nil(t, pre.Error)
	require.Len(t, pre.Sighashes, 1)
	require.Equal(t, txmodel.TaprootScriptPath, pre.Sighashes[0].Method)
	require.Equal(t, txmodel.SigHashDefault, pre.Sighashes[0].SighashType)

	sig := mustHex(t, "6a35548b8fa4620028e021a944c1d3dc6e947243a7bfc901bf"+
		"63fefae0d2460efa149a6440cab51966aa4f09faef2d1e5efcba23ab4ca6e6"+
		"69da598022dbcfe3")
	parsed, err := schnorr.ParseSignature(sig)
	require.NoError(t, err)

	key, err := pre.Sighashes[0].SigningKey()
	require.NoError(t, err)
	require.True(t, parsed.Verify(pre.Sighashes[0].Hash[:], key))

	out := e.Compile(in, [][]byte{sig}, [][]byte{alice})
	require.Nil(t, out.Error)
	require.Equal(t, brc20RevealTx, hex.EncodeToString(out.Encoded))
}

// TestBRC20InscriptionErrors checks that malformed inscriptions are
// rejected as invalid parameters.
func TestBRC20InscriptionErrors(t *testing.T) {
	t.Parallel()

	alice := pubKeyOf(t, brc20AlicePriv)

	tests := []struct {
		name   string
		pubKey []byte
		ticker string
		amount string
		err    error
	}{
		{
			name:   "short ticker",
			pubKey: alice,
			ticker: "oad",
			amount: "20",
			err:    script.ErrInvalidTicker,
		},
		{
			name:   "long ticker",
			pubKey: alice,
			ticker: "oadfx",
			amount: "20",
			err:    script.ErrInvalidTicker,
		},
		{
			name:   "no amount",
			pubKey: alice,
			ticker: "oadf",
			err:    utxoerr.ErrInvalidParams,
		},
		{
			name:   "bad key",
			pubKey: alice[2:],
			ticker: "oadf",
			amount: "20",
			err:    script.ErrInvalidPubKey,
		},
	}

	r := &resolver{chain: chains.Bitcoin}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ToBRC20Inscribe{
				PubKey: tc.pubKey,
				Ticker: tc.ticker,
				Amount: tc.amount,
			}.pkScript(r)
			require.ErrorIs(t, err, tc.err)
			require.ErrorIs(t, err, utxoerr.ErrInvalidParams)

			_, err = ClaimBRC20Inscription{
				PubKey: tc.pubKey,
				Ticker: tc.ticker,
				Amount: tc.amount,
			}.resolve(r)
			require.ErrorIs(t, err, tc.err)
		})
	}
}
