// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sighash

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/txmodel"
)

// WitnessV0 returns the BIP143 digest of the input at idx. Bitcoin Cash
// inputs use the same digest with the fork id flag set in the type. Every
// intermediate hash and the final digest use the input's tx hasher.
func WitnessV0(tx txmodel.Tx, idx int, utxo *txmodel.UtxoToSign) (
	chainhash.Hash, error) {

	if err := checkIndex(tx, idx); err != nil {
		return chainhash.Hash{}, err
	}

	var (
		hashType = utxo.SighashType
		hasher   = utxo.TxHasher
		ins      = tx.Inputs()
		outs     = tx.Outputs()
		base     = hashType.Base()
		in       = ins[idx]
	)

	var hashPrevouts, hashSequence, hashOutputs chainhash.Hash

	if !hashType.AnyOneCanPay() {
		var b bytes.Buffer
		for _, txIn := range ins {
			writeOutPoint(&b, &txIn.PreviousOutPoint)
		}
		hashPrevouts = hasher.Hash(b.Bytes())
	}

	if !hashType.AnyOneCanPay() && base != txmodel.SigHashSingle &&
		base != txmodel.SigHashNone {

		var b bytes.Buffer
		for _, txIn := range ins {
			writeUint32(&b, txIn.Sequence)
		}
		hashSequence = hasher.Hash(b.Bytes())
	}

	switch {
	case base != txmodel.SigHashSingle && base != txmodel.SigHashNone:
		var b bytes.Buffer
		for _, out := range outs {
			writeTxOut(&b, out)
		}
		hashOutputs = hasher.Hash(b.Bytes())

	case base == txmodel.SigHashSingle && idx < len(outs):
		var b bytes.Buffer
		writeTxOut(&b, outs[idx])
		hashOutputs = hasher.Hash(b.Bytes())
	}

	var b bytes.Buffer
	writeUint32(&b, uint32(tx.Version()))
	b.Write(hashPrevouts[:])
	b.Write(hashSequence[:])
	writeOutPoint(&b, &in.PreviousOutPoint)

	// Writing to a bytes.Buffer cannot fail.
	_ = wire.WriteVarBytes(&b, 0, utxo.ScriptCode)

	writeUint64(&b, uint64(utxo.Amount))
	writeUint32(&b, in.Sequence)
	b.Write(hashOutputs[:])
	writeUint32(&b, tx.LockTime())
	writeUint32(&b, uint32(hashType))

	return hasher.Hash(b.Bytes()), nil
}

func writeUint32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}

func writeUint64(b *bytes.Buffer, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	b.Write(buf[:])
}

func writeOutPoint(b *bytes.Buffer, op *wire.OutPoint) {
	b.Write(op.Hash[:])
	writeUint32(b, op.Index)
}

func writeTxOut(b *bytes.Buffer, out *wire.TxOut) {
	writeUint64(b, uint64(out.Value))

	// Writing to a bytes.Buffer cannot fail.
	_ = wire.WriteVarBytes(b, 0, out.PkScript)
}
