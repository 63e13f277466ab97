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

// singleOutOfRange is the digest consensus assigns to a SIGHASH_SINGLE
// input without a matching output: the little endian integer one.
var singleOutOfRange = chainhash.Hash{0x01}

// Legacy returns the pre-segwit digest of the input at idx. The input's
// script code replaces its scriptSig, every other scriptSig is blanked and
// the copy is masked according to the sighash type before hashing.
func Legacy(tx txmodel.Tx, idx int, utxo *txmodel.UtxoToSign) (
	chainhash.Hash, error) {

	if err := checkIndex(tx, idx); err != nil {
		return chainhash.Hash{}, err
	}

	hashType := utxo.SighashType
	outs := tx.Outputs()

	if hashType.Base() == txmodel.SigHashSingle && idx >= len(outs) {
		return singleOutOfRange, nil
	}

	msg := &wire.MsgTx{
		Version:  tx.Version(),
		LockTime: tx.LockTime(),
	}

	for i, in := range tx.Inputs() {
		stripped := &wire.TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			Sequence:         in.Sequence,
		}

		if i == idx {
			stripped.SignatureScript = utxo.ScriptCode
		} else if hashType.Base() == txmodel.SigHashNone ||
			hashType.Base() == txmodel.SigHashSingle {

			stripped.Sequence = 0
		}

		msg.TxIn = append(msg.TxIn, stripped)
	}

	switch hashType.Base() {
	case txmodel.SigHashNone:
		msg.TxOut = nil

	case txmodel.SigHashSingle:
		msg.TxOut = make([]*wire.TxOut, idx+1)
		for i := 0; i < idx; i++ {
			msg.TxOut[i] = &wire.TxOut{Value: -1}
		}
		msg.TxOut[idx] = outs[idx]

	default:
		msg.TxOut = outs
	}

	if hashType.AnyOneCanPay() {
		msg.TxIn = msg.TxIn[idx : idx+1]
	}

	var buf bytes.Buffer
	buf.Grow(msg.SerializeSizeStripped() + 4)

	// Writing to a bytes.Buffer cannot fail.
	_ = msg.SerializeNoWitness(&buf)

	var typeBytes [4]byte
	binary.LittleEndian.PutUint32(typeBytes[:], uint32(hashType))
	buf.Write(typeBytes[:])

	return utxo.TxHasher.Hash(buf.Bytes()), nil
}
