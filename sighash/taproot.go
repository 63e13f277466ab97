// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sighash

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/txmodel"
)

const (
	// sighashEpoch prefixes every BIP341 signature message.
	sighashEpoch = 0x00

	// keyVersion is the BIP342 public key version.
	keyVersion = 0x00

	// codeSeparatorNone is the committed position when no
	// OP_CODESEPARATOR was executed.
	codeSeparatorNone = 0xffffffff
)

// taprootHashes are the BIP341 per-transaction hashes shared by every
// input's signature message.
type taprootHashes struct {
	prevouts      [32]byte
	amounts       [32]byte
	scriptPubKeys [32]byte
	sequences     [32]byte
	outputs       [32]byte
}

func newTaprootHashes(tx txmodel.Tx,
	utxos []*txmodel.UtxoToSign) *taprootHashes {

	var prevouts, amounts, scripts, sequences, outputs bytes.Buffer

	for i, in := range tx.Inputs() {
		writeOutPoint(&prevouts, &in.PreviousOutPoint)
		writeUint32(&sequences, in.Sequence)

		writeUint64(&amounts, uint64(utxos[i].Amount))

		// Writing to a bytes.Buffer cannot fail.
		_ = wire.WriteVarBytes(&scripts, 0, utxos[i].PrevOutScript)
	}

	for _, out := range tx.Outputs() {
		writeTxOut(&outputs, out)
	}

	return &taprootHashes{
		prevouts:      sha256.Sum256(prevouts.Bytes()),
		amounts:       sha256.Sum256(amounts.Bytes()),
		scriptPubKeys: sha256.Sum256(scripts.Bytes()),
		sequences:     sha256.Sum256(sequences.Bytes()),
		outputs:       sha256.Sum256(outputs.Bytes()),
	}
}

// Taproot returns the BIP341 digest of the input at idx. Script-path inputs
// extend the message with their leaf hash. ANYONECANPAY and SINGLE are
// rejected. The utxos are aligned with the transaction inputs.
func Taproot(tx txmodel.Tx, idx int,
	utxos []*txmodel.UtxoToSign) (chainhash.Hash, error) {

	if len(tx.Inputs()) != len(utxos) {
		return chainhash.Hash{}, txmodel.ErrInputCountMismatch
	}
	if err := checkIndex(tx, idx); err != nil {
		return chainhash.Hash{}, err
	}

	return taprootDigest(
		tx, idx, utxos[idx], newTaprootHashes(tx, utxos),
	)
}

func taprootDigest(tx txmodel.Tx, idx int, utxo *txmodel.UtxoToSign,
	hashes *taprootHashes) (chainhash.Hash, error) {

	hashType := utxo.SighashType
	switch {
	case hashType.AnyOneCanPay():
		return chainhash.Hash{}, txmodel.ErrTaprootAnyoneCanPay

	case hashType.Base() == txmodel.SigHashSingle:
		return chainhash.Hash{}, txmodel.ErrTaprootSingle
	}

	var b bytes.Buffer
	b.WriteByte(sighashEpoch)
	b.WriteByte(byte(hashType))
	writeUint32(&b, uint32(tx.Version()))
	writeUint32(&b, tx.LockTime())

	b.Write(hashes.prevouts[:])
	b.Write(hashes.amounts[:])
	b.Write(hashes.scriptPubKeys[:])
	b.Write(hashes.sequences[:])

	if hashType.Base() != txmodel.SigHashNone {
		b.Write(hashes.outputs[:])
	}

	// Bit 0 of the spend type is the annex flag, which is never set. Bit
	// 1 marks a script-path spend.
	var spendType byte
	if utxo.Method == txmodel.TaprootScriptPath {
		spendType = 2
	}
	b.WriteByte(spendType)

	writeUint32(&b, uint32(idx))

	if utxo.Method == txmodel.TaprootScriptPath {
		leafHash, err := utxo.LeafHash.UnwrapOrErr(ErrMissingLeafHash)
		if err != nil {
			return chainhash.Hash{}, fmt.Errorf("input %d: %w", idx,
				err)
		}

		b.Write(leafHash[:])
		b.WriteByte(keyVersion)
		writeUint32(&b, codeSeparatorNone)
	}

	return *chainhash.TaggedHash(chainhash.TagTapSighash, b.Bytes()), nil
}
