// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package decred implements Decred transactions: a prefix carrying the
// outpoints and outputs, and a witness section carrying the input values
// and signature scripts, both hashed with BLAKE-256.
package decred

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/txmodel"
	dcrhash "github.com/decred/dcrd/chaincfg/chainhash"
	dcrwire "github.com/decred/dcrd/wire"
)

const (
	// TxVersion is the only transaction version produced.
	TxVersion = dcrwire.TxVersion

	// NoExpiry disables transaction expiry.
	NoExpiry = dcrwire.NoExpiryValue
)

// Tx is a Decred transaction. Inputs and outputs are kept in the btcd types
// shared by the planner and the claim builders, with the value of each
// spent output alongside. The Decred encoding is produced by MsgTx.
type Tx struct {
	lockTime uint32
	expiry   uint32

	txIn  []*wire.TxIn
	txOut []*wire.TxOut

	valueIn map[wire.OutPoint]int64
}

// NewTx creates an empty transaction.
func NewTx(lockTime, expiry uint32) *Tx {
	return &Tx{
		lockTime: lockTime,
		expiry:   expiry,
		valueIn:  make(map[wire.OutPoint]int64),
	}
}

// MsgTx returns the Decred wire form of the transaction with full
// serialization. Spent outputs are in the regular tree at an unknown block
// position.
func (t *Tx) MsgTx() *dcrwire.MsgTx {
	msg := dcrwire.NewMsgTx()
	msg.Version = TxVersion
	msg.LockTime = t.lockTime
	msg.Expiry = t.expiry

	for _, in := range t.txIn {
		op := dcrwire.NewOutPoint(
			(*dcrhash.Hash)(&in.PreviousOutPoint.Hash),
			in.PreviousOutPoint.Index, dcrwire.TxTreeRegular,
		)

		txIn := dcrwire.NewTxIn(
			op, t.valueIn[in.PreviousOutPoint], in.SignatureScript,
		)
		txIn.Sequence = in.Sequence
		txIn.BlockHeight = dcrwire.NullBlockHeight
		txIn.BlockIndex = dcrwire.NullBlockIndex

		msg.AddTxIn(txIn)
	}

	for _, out := range t.txOut {
		msg.AddTxOut(dcrwire.NewTxOut(out.Value, out.PkScript))
	}

	return msg
}

// Expiry returns the height after which the transaction is invalid.
func (t *Tx) Expiry() uint32 {
	return t.expiry
}

// SetInputValue implements txmodel.InputValueSetter.
func (t *Tx) SetInputValue(op wire.OutPoint, value int64) {
	t.valueIn[op] = value
}

// InputValue returns the value committed for the spent output.
func (t *Tx) InputValue(op wire.OutPoint) int64 {
	return t.valueIn[op]
}

// Version implements txmodel.Tx.
func (t *Tx) Version() int32 {
	return int32(TxVersion)
}

// LockTime implements txmodel.Tx.
func (t *Tx) LockTime() uint32 {
	return t.lockTime
}

// Inputs implements txmodel.Tx.
func (t *Tx) Inputs() []*wire.TxIn {
	return t.txIn
}

// Outputs implements txmodel.Tx.
func (t *Tx) Outputs() []*wire.TxOut {
	return t.txOut
}

// SetInputs implements txmodel.Tx.
func (t *Tx) SetInputs(ins []*wire.TxIn) {
	t.txIn = ins
}

// SetOutputs implements txmodel.Tx.
func (t *Tx) SetOutputs(outs []*wire.TxOut) {
	t.txOut = outs
}

// HasWitness implements txmodel.Tx. The Decred witness is not segregated
// for weight purposes.
func (t *Tx) HasWitness() bool {
	return false
}

// Serialize implements txmodel.Tx with the full encoding.
func (t *Tx) Serialize(w io.Writer) error {
	return t.MsgTx().Serialize(w)
}

// BaseSize implements txmodel.Tx. The whole encoding is weighted as base
// data.
func (t *Tx) BaseSize() int {
	return t.TotalSize()
}

// TotalSize implements txmodel.Tx.
func (t *Tx) TotalSize() int {
	return t.MsgTx().SerializeSize()
}

// TxID implements txmodel.Tx. The id commits to the prefix only.
func (t *Tx) TxID() chainhash.Hash {
	return chainhash.Hash(t.MsgTx().TxHash())
}

// Clone implements txmodel.Tx.
func (t *Tx) Clone() txmodel.Tx {
	clone := *t

	clone.txIn = make([]*wire.TxIn, len(t.txIn))
	for i, in := range t.txIn {
		clone.txIn[i] = &wire.TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			SignatureScript:  bytes.Clone(in.SignatureScript),
			Sequence:         in.Sequence,
		}
	}

	clone.txOut = make([]*wire.TxOut, len(t.txOut))
	for i, out := range t.txOut {
		clone.txOut[i] = wire.NewTxOut(
			out.Value, bytes.Clone(out.PkScript),
		)
	}

	clone.valueIn = make(map[wire.OutPoint]int64, len(t.valueIn))
	for op, v := range t.valueIn {
		clone.valueIn[op] = v
	}

	return &clone
}

// Compile time checks of the implemented interfaces.
var (
	_ txmodel.Tx               = (*Tx)(nil)
	_ txmodel.InputValueSetter = (*Tx)(nil)
)
