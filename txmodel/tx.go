// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txmodel holds the chain independent transaction model shared by
// planning, sighash computation and signing.
package txmodel

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/pkg/btcunit"
)

// Tx is the capability view the shared algorithms have over a chain
// specific transaction. Inputs and outputs use the btcd wire types, chains
// keep any extra fields in their own structs.
type Tx interface {
	// Version returns the transaction version.
	Version() int32

	// LockTime returns the transaction lock time.
	LockTime() uint32

	// Inputs returns the ordered inputs.
	Inputs() []*wire.TxIn

	// Outputs returns the ordered outputs.
	Outputs() []*wire.TxOut

	// SetInputs replaces the inputs.
	SetInputs(ins []*wire.TxIn)

	// SetOutputs replaces the outputs.
	SetOutputs(outs []*wire.TxOut)

	// HasWitness returns true if any input carries witness data that the
	// chain serializes separately.
	HasWitness() bool

	// Serialize writes the full encoding of the transaction.
	Serialize(w io.Writer) error

	// BaseSize returns the encoded size without segregated witness data.
	BaseSize() int

	// TotalSize returns the full encoded size.
	TotalSize() int

	// TxID returns the transaction id in internal byte order.
	TxID() chainhash.Hash

	// Clone returns a deep copy.
	Clone() Tx
}

// Size returns the base and total size of the transaction.
func Size(tx Tx) btcunit.TxSize {
	return btcunit.NewTxSize(tx.BaseSize(), tx.TotalSize())
}

// Encode returns the full encoding of the transaction.
func Encode(tx Tx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.TotalSize())

	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// SumOutputs returns the total value of the outputs.
func SumOutputs(outs []*wire.TxOut) int64 {
	var total int64
	for _, out := range outs {
		total += out.Value
	}

	return total
}

// StdTx is the Bitcoin transaction format shared by Bitcoin, Litecoin,
// Dogecoin, Bitcoin Cash and Groestlcoin. The txid hasher is the only chain
// specific part.
type StdTx struct {
	msg    *wire.MsgTx
	hasher Hasher
}

// NewStdTx creates an empty transaction.
func NewStdTx(version int32, lockTime uint32, hasher Hasher) *StdTx {
	msg := wire.NewMsgTx(version)
	msg.LockTime = lockTime

	return &StdTx{msg: msg, hasher: hasher}
}

// WrapMsgTx wraps an existing btcd transaction.
func WrapMsgTx(msg *wire.MsgTx, hasher Hasher) *StdTx {
	return &StdTx{msg: msg, hasher: hasher}
}

// MsgTx returns the underlying btcd transaction.
func (t *StdTx) MsgTx() *wire.MsgTx {
	return t.msg
}

// Version implements Tx.
func (t *StdTx) Version() int32 {
	return t.msg.Version
}

// LockTime implements Tx.
func (t *StdTx) LockTime() uint32 {
	return t.msg.LockTime
}

// Inputs implements Tx.
func (t *StdTx) Inputs() []*wire.TxIn {
	return t.msg.TxIn
}

// Outputs implements Tx.
func (t *StdTx) Outputs() []*wire.TxOut {
	return t.msg.TxOut
}

// SetInputs implements Tx.
func (t *StdTx) SetInputs(ins []*wire.TxIn) {
	t.msg.TxIn = ins
}

// SetOutputs implements Tx.
func (t *StdTx) SetOutputs(outs []*wire.TxOut) {
	t.msg.TxOut = outs
}

// HasWitness implements Tx.
func (t *StdTx) HasWitness() bool {
	return t.msg.HasWitness()
}

// Serialize implements Tx. Witness data is written in the BIP144 format
// when present.
func (t *StdTx) Serialize(w io.Writer) error {
	return t.msg.Serialize(w)
}

// BaseSize implements Tx.
func (t *StdTx) BaseSize() int {
	return t.msg.SerializeSizeStripped()
}

// TotalSize implements Tx.
func (t *StdTx) TotalSize() int {
	return t.msg.SerializeSize()
}

// TxID implements Tx.
func (t *StdTx) TxID() chainhash.Hash {
	if t.hasher == Sha256d {
		return t.msg.TxHash()
	}

	var buf bytes.Buffer
	buf.Grow(t.msg.SerializeSizeStripped())

	// Writing to a bytes.Buffer cannot fail.
	_ = t.msg.SerializeNoWitness(&buf)

	return t.hasher.Hash(buf.Bytes())
}

// Clone implements Tx.
func (t *StdTx) Clone() Tx {
	return &StdTx{msg: t.msg.Copy(), hasher: t.hasher}
}

// A compile time check to ensure StdTx implements Tx.
var _ Tx = (*StdTx)(nil)

// InputValueSetter is implemented by transactions that serialize the value
// of the spent output inside each input.
type InputValueSetter interface {
	SetInputValue(op wire.OutPoint, value int64)
}
