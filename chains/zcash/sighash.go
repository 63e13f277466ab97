// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zcash

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/sighash"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	blake2b "github.com/minio/blake2b-simd"
)

const (
	sigHashPersonalization  = "ZcashSigHash"
	prevoutsPersonalization = "ZcashPrevoutHash"
	sequencePersonalization = "ZcashSequencHash"
	outputsPersonalization  = "ZcashOutputsHash"
)

// ErrNotTransparent is returned for inputs that are not signed with the
// legacy method. Zcash has no segwit or taproot.
var ErrNotTransparent = fmt.Errorf("%w: zcash supports transparent legacy "+
	"inputs only", utxoerr.ErrNotSupported)

// blake2bPersonal returns the 32-byte BLAKE2b digest of data with the given
// personalization.
func blake2bPersonal(person []byte, data []byte) chainhash.Hash {
	h, err := blake2b.New(&blake2b.Config{Size: 32, Person: person})
	if err != nil {
		// The size and personalization lengths are constant and valid.
		panic(fmt.Sprintf("blake2b config: %v", err))
	}

	h.Write(data)

	var digest chainhash.Hash
	copy(digest[:], h.Sum(nil))

	return digest
}

// ChainSighash implements sighash.ChainSighasher with the ZIP-243 digest.
func (t *Tx) ChainSighash(idx int,
	utxos []*txmodel.UtxoToSign) (chainhash.Hash, error) {

	if idx < 0 || idx >= len(t.txIn) || len(utxos) != len(t.txIn) {
		return chainhash.Hash{}, sighash.ErrInputIndex
	}

	utxo := utxos[idx]
	if utxo.Method != txmodel.Legacy {
		return chainhash.Hash{}, ErrNotTransparent
	}

	var (
		hashType = utxo.SighashType
		base     = hashType.Base()
		in       = t.txIn[idx]
	)

	var hashPrevouts, hashSequence, hashOutputs chainhash.Hash

	if !hashType.AnyOneCanPay() {
		var b bytes.Buffer
		for _, txIn := range t.txIn {
			b.Write(txIn.PreviousOutPoint.Hash[:])
			putUint32(&b, txIn.PreviousOutPoint.Index)
		}
		hashPrevouts = blake2bPersonal([]byte(prevoutsPersonalization),
			b.Bytes())
	}

	if !hashType.AnyOneCanPay() && base != txmodel.SigHashSingle &&
		base != txmodel.SigHashNone {

		var b bytes.Buffer
		for _, txIn := range t.txIn {
			putUint32(&b, txIn.Sequence)
		}
		hashSequence = blake2bPersonal([]byte(sequencePersonalization),
			b.Bytes())
	}

	switch {
	case base != txmodel.SigHashSingle && base != txmodel.SigHashNone:
		var b bytes.Buffer
		for _, out := range t.txOut {
			_ = wire.WriteTxOut(&b, 0, 0, out)
		}
		hashOutputs = blake2bPersonal([]byte(outputsPersonalization),
			b.Bytes())

	case base == txmodel.SigHashSingle && idx < len(t.txOut):
		var b bytes.Buffer
		_ = wire.WriteTxOut(&b, 0, 0, t.txOut[idx])
		hashOutputs = blake2bPersonal([]byte(outputsPersonalization),
			b.Bytes())
	}

	var b bytes.Buffer
	putUint32(&b, t.header())
	putUint32(&b, t.versionGroupID)
	b.Write(hashPrevouts[:])
	b.Write(hashSequence[:])
	b.Write(hashOutputs[:])

	// Joinsplits, shielded spends and shielded outputs are empty.
	var zero chainhash.Hash
	b.Write(zero[:])
	b.Write(zero[:])
	b.Write(zero[:])

	putUint32(&b, t.lockTime)
	putUint32(&b, t.expiryHeight)

	// Value balance.
	b.Write(make([]byte, 8))

	putUint32(&b, uint32(hashType))

	b.Write(in.PreviousOutPoint.Hash[:])
	putUint32(&b, in.PreviousOutPoint.Index)
	_ = wire.WriteVarBytes(&b, 0, utxo.ScriptCode)

	var amount [8]byte
	binary.LittleEndian.PutUint64(amount[:], uint64(utxo.Amount))
	b.Write(amount[:])
	putUint32(&b, in.Sequence)

	person := make([]byte, 0, 16)
	person = append(person, sigHashPersonalization...)
	person = binary.LittleEndian.AppendUint32(person, t.branchID)

	return blake2bPersonal(person, b.Bytes()), nil
}

func putUint32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}

// A compile time check to ensure Tx has its own sighash.
var _ sighash.ChainSighasher = (*Tx)(nil)
