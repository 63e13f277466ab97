// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/utxoerr"
)

const (
	// BRC20TickerSize is the length of a BRC-20 ticker.
	BRC20TickerSize = 4

	// BRC20ContentType is the content type of BRC-20 inscriptions.
	BRC20ContentType = "text/plain;charset=utf-8"

	// inscriptionContentTypeTag precedes the content type in an ordinals
	// envelope.
	inscriptionContentTypeTag = 0x01
)

var (
	// ErrInvalidTicker is returned for a BRC-20 ticker that is not
	// BRC20TickerSize bytes.
	ErrInvalidTicker = fmt.Errorf("%w: invalid BRC-20 ticker",
		utxoerr.ErrInvalidParams)

	// ErrEmptyInscription is returned for an inscription without a
	// payload.
	ErrEmptyInscription = fmt.Errorf("%w: empty inscription",
		utxoerr.ErrInvalidParams)
)

// brc20Transfer is the BRC-20 transfer operation. The fields are encoded in
// declaration order.
type brc20Transfer struct {
	Protocol string `json:"p"`
	Op       string `json:"op"`
	Ticker   string `json:"tick"`
	Amount   string `json:"amt"`
}

// BRC20TransferPayload returns the JSON transfer operation of amount units
// of ticker.
func BRC20TransferPayload(ticker, amount string) ([]byte, error) {
	if len(ticker) != BRC20TickerSize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	if amount == "" {
		return nil, fmt.Errorf("%w: no transfer amount",
			utxoerr.ErrInvalidParams)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(brc20Transfer{
		Protocol: "brc-20",
		Op:       "transfer",
		Ticker:   ticker,
		Amount:   amount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utxoerr.ErrInvalidParams, err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// InscriptionScript returns the ordinals envelope
// `OP_FALSE OP_IF "ord" 0x01 <content type> OP_0 <payload> OP_ENDIF`. The
// payload is split into pushes of at most MaxScriptElementSize bytes.
func InscriptionScript(contentType string, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyInscription
	}

	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_FALSE)
	b.AddOp(txscript.OP_IF)
	b.AddData([]byte("ord"))

	// The tag is pushed as data, a minimal push would turn it into OP_1.
	b.AddOps([]byte{txscript.OP_DATA_1, inscriptionContentTypeTag})
	b.AddData([]byte(contentType))
	b.AddOp(txscript.OP_0)

	for len(payload) > 0 {
		n := min(len(payload), txscript.MaxScriptElementSize)
		b.AddData(payload[:n])
		payload = payload[n:]
	}

	b.AddOp(txscript.OP_ENDIF)

	s, err := b.Script()
	if err != nil {
		return nil, fmt.Errorf("%w: inscription: %w",
			utxoerr.ErrInvalidParams, err)
	}

	return s, nil
}

// Inscription is a taproot output whose only leaf is an ordinals envelope.
// The reveal transaction spends it through that leaf.
type Inscription struct {
	// LeafScript is the envelope.
	LeafScript []byte

	// LeafHash is the BIP341 hash of the leaf.
	LeafHash chainhash.Hash

	// MerkleRoot is the root of the single leaf tree.
	MerkleRoot chainhash.Hash

	// ControlBlock proves the leaf against the output key.
	ControlBlock []byte

	// PkScript is the P2TR script of the commit output.
	PkScript []byte
}

// NewInscription commits an envelope to a taproot output with the given
// internal key.
func NewInscription(internalKey []byte, contentType string,
	payload []byte) (*Inscription, error) {

	pub, err := ParseTaprootKey(internalKey)
	if err != nil {
		return nil, err
	}

	leafScript, err := InscriptionScript(contentType, payload)
	if err != nil {
		return nil, err
	}

	leaf := txscript.NewBaseTapLeaf(leafScript)
	tree := txscript.AssembleTaprootScriptTree(leaf)
	root := tree.RootNode.TapHash()

	block := tree.LeafMerkleProofs[0].ToControlBlock(pub)
	controlBlock, err := block.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: control block: %w",
			utxoerr.ErrInternal, err)
	}

	return &Inscription{
		LeafScript:   leafScript,
		LeafHash:     leaf.TapHash(),
		MerkleRoot:   root,
		ControlBlock: controlBlock,
		PkScript:     P2TR(TaprootOutputKey(pub, root[:])),
	}, nil
}

// NewBRC20Transfer returns the inscription of a BRC-20 transfer of amount
// units of ticker.
func NewBRC20Transfer(internalKey []byte, ticker,
	amount string) (*Inscription, error) {

	payload, err := BRC20TransferPayload(ticker, amount)
	if err != nil {
		return nil, err
	}

	return NewInscription(internalKey, BRC20ContentType, payload)
}

// Claimer returns the claimer of the reveal input.
func (i *Inscription) Claimer() TaprootScriptPathClaim {
	return TaprootScriptPathClaim{
		LeafScript:   i.LeafScript,
		ControlBlock: i.ControlBlock,
	}
}
