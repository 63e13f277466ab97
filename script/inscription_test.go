// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/stretchr/testify/require"
)

const (
	inscriberPubHex = "030f209b6ada5edb42c77fd2bc64ad650ae38314c8f451f3e36d" +
		"80bc8e26f132cb"

	// brc20LeafHex is the envelope revealed on mainnet by
	// 7046dc2689a27e143ea2ad1039710885147e9485ab6453fa7e87464aa7dd3eca.
	brc20LeafHex = "0063036f7264010118746578742f706c61696e3b636861727365" +
		"743d7574662d3800377b2270223a226272632d3230222c226f70223a2274" +
		"72616e73666572222c227469636b223a226f616466222c22616d74223a22" +
		"3230227d68"
)

// TestBRC20Transfer checks the inscription of a BRC-20 transfer against
// the commit and reveal transactions broadcast on mainnet.
func TestBRC20Transfer(t *testing.T) {
	t.Parallel()

	payload, err := BRC20TransferPayload("oadf", "20")
	require.NoError(t, err)
	require.Equal(t,
		`{"p":"brc-20","op":"transfer","tick":"oadf","amt":"20"}`,
		string(payload))

	pub := mustHex(t, inscriberPubHex)
	inscription, err := NewBRC20Transfer(pub, "oadf", "20")
	require.NoError(t, err)

	require.Equal(t, brc20LeafHex, hex.EncodeToString(inscription.LeafScript))
	require.Equal(t, "c0"+inscriberPubHex[2:],
		hex.EncodeToString(inscription.ControlBlock))
	require.Equal(t, "5120e8b706a97732e705e22ae7710703e7f589ed13c636324461"+
		"afa443016134cc05", hex.EncodeToString(inscription.PkScript))

	// The control block proves the leaf against the output key.
	block, err := txscript.ParseControlBlock(inscription.ControlBlock)
	require.NoError(t, err)
	require.NoError(t, txscript.VerifyTaprootLeafCommitment(
		block, inscription.PkScript[2:], inscription.LeafScript,
	))

	leaf := txscript.NewBaseTapLeaf(inscription.LeafScript)
	require.Equal(t, leaf.TapHash(), inscription.LeafHash)
	require.Equal(t, leaf.TapHash(), inscription.MerkleRoot)

	// The x-only form of the key commits to the same output.
	xOnly, err := NewBRC20Transfer(pub[1:], "oadf", "20")
	require.NoError(t, err)
	require.Equal(t, inscription, xOnly)

	claim, err := inscription.Claimer().Claim(make([]byte, 64))
	require.NoError(t, err)
	require.Len(t, claim.Witness, 3)
	require.Equal(t, inscription.LeafScript, []byte(claim.Witness[1]))
	require.Equal(t, inscription.ControlBlock, []byte(claim.Witness[2]))
}

// TestInscriptionScript checks the envelope layout of large and empty
// payloads.
func TestInscriptionScript(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0xab}, 2*txscript.MaxScriptElementSize+60)
	s, err := InscriptionScript("application/octet-stream", payload)
	require.NoError(t, err)

	var (
		ops    []byte
		pushes [][]byte
	)
	tokenizer := txscript.MakeScriptTokenizer(0, s)
	for tokenizer.Next() {
		ops = append(ops, tokenizer.Opcode())
		pushes = append(pushes, tokenizer.Data())
	}
	require.NoError(t, tokenizer.Err())

	require.Equal(t, byte(txscript.OP_FALSE), ops[0])
	require.Equal(t, byte(txscript.OP_IF), ops[1])
	require.Equal(t, []byte("ord"), pushes[2])
	require.Equal(t, byte(txscript.OP_DATA_1), ops[3])
	require.Equal(t, []byte{0x01}, pushes[3])
	require.Equal(t, []byte("application/octet-stream"), pushes[4])
	require.Equal(t, byte(txscript.OP_0), ops[5])

	// The payload is split into element sized pushes.
	require.Len(t, ops, 10)
	require.Len(t, pushes[6], txscript.MaxScriptElementSize)
	require.Len(t, pushes[7], txscript.MaxScriptElementSize)
	require.Len(t, pushes[8], 60)
	require.Equal(t, payload, bytes.Join(pushes[6:9], nil))
	require.Equal(t, byte(txscript.OP_ENDIF), ops[9])

	_, err = InscriptionScript(BRC20ContentType, nil)
	require.ErrorIs(t, err, ErrEmptyInscription)
	require.ErrorIs(t, err, utxoerr.ErrInvalidParams)

	_, err = BRC20TransferPayload("oadf", "")
	require.ErrorIs(t, err, utxoerr.ErrInvalidParams)
}
