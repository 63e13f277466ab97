// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zcash implements the transparent part of Sapling (v4)
// transactions used by Zcash and Komodo, and their ZIP-243 sighash.
package zcash

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/txmodel"
)

const (
	// SaplingVersion is the transaction version of Sapling transactions.
	SaplingVersion = 4

	// SaplingVersionGroupID is the version group of Sapling
	// transactions.
	SaplingVersionGroupID uint32 = 0x892f2085

	// SaplingBranchID is the consensus branch id of the Sapling upgrade.
	SaplingBranchID uint32 = 0x76b809bb

	// overwinteredFlag is set in the header of every transaction since
	// Overwinter.
	overwinteredFlag uint32 = 1 << 31

	// shieldedTrailerSize is the size of the empty shielded parts: the
	// value balance and three empty vectors.
	shieldedTrailerSize = 8 + 3
)

// Tx is a Sapling transaction without shielded components.
type Tx struct {
	version        int32
	versionGroupID uint32
	branchID       uint32
	lockTime       uint32
	expiryHeight   uint32

	txIn  []*wire.TxIn
	txOut []*wire.TxOut
}

// NewTx creates an empty Sapling transaction committing to the given
// consensus branch.
func NewTx(lockTime, expiryHeight, branchID uint32) *Tx {
	return &Tx{
		version:        SaplingVersion,
		versionGroupID: SaplingVersionGroupID,
		branchID:       branchID,
		lockTime:       lockTime,
		expiryHeight:   expiryHeight,
	}
}

// BranchID returns the consensus branch id committed by the sighash.
func (t *Tx) BranchID() uint32 {
	return t.branchID
}

// ExpiryHeight returns the height after which the transaction is invalid.
func (t *Tx) ExpiryHeight() uint32 {
	return t.expiryHeight
}

// Version implements txmodel.Tx.
func (t *Tx) Version() int32 {
	return t.version
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

// HasWitness implements txmodel.Tx. Zcash has no segregated witness.
func (t *Tx) HasWitness() bool {
	return false
}

// header returns the version field with the overwintered flag.
func (t *Tx) header() uint32 {
	return uint32(t.version) | overwinteredFlag
}

// Serialize implements txmodel.Tx.
func (t *Tx) Serialize(w io.Writer) error {
	var buf [8]byte

	binary.LittleEndian.PutUint32(buf[:4], t.header())
	binary.LittleEndian.PutUint32(buf[4:], t.versionGroupID)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	if err := wire.WriteVarInt(w, 0, uint64(len(t.txIn))); err != nil {
		return err
	}
	for _, in := range t.txIn {
		if err := writeTxIn(w, in); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, 0, uint64(len(t.txOut))); err != nil {
		return err
	}
	for _, out := range t.txOut {
		if err := wire.WriteTxOut(w, 0, 0, out); err != nil {
			return err
		}
	}

	binary.LittleEndian.PutUint32(buf[:4], t.lockTime)
	binary.LittleEndian.PutUint32(buf[4:], t.expiryHeight)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	// Zero value balance and no spends, outputs or joinsplits.
	var trailer [shieldedTrailerSize]byte
	_, err := w.Write(trailer[:])

	return err
}

// BaseSize implements txmodel.Tx.
func (t *Tx) BaseSize() int {
	return t.TotalSize()
}

// TotalSize implements txmodel.Tx.
func (t *Tx) TotalSize() int {
	// Header, version group, lock time and expiry.
	n := 16 + shieldedTrailerSize

	n += wire.VarIntSerializeSize(uint64(len(t.txIn)))
	for _, in := range t.txIn {
		n += in.SerializeSize()
	}

	n += wire.VarIntSerializeSize(uint64(len(t.txOut)))
	for _, out := range t.txOut {
		n += out.SerializeSize()
	}

	return n
}

// TxID implements txmodel.Tx.
func (t *Tx) TxID() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(t.TotalSize())

	// Writing to a bytes.Buffer cannot fail.
	_ = t.Serialize(&buf)

	return chainhash.DoubleHashH(buf.Bytes())
}

// Clone implements txmodel.Tx.
func (t *Tx) Clone() txmodel.Tx {
	clone := *t

	clone.txIn = make([]*wire.TxIn, len(t.txIn))
	for i, in := range t.txIn {
		clone.txIn[i] = copyTxIn(in)
	}

	clone.txOut = make([]*wire.TxOut, len(t.txOut))
	for i, out := range t.txOut {
		clone.txOut[i] = wire.NewTxOut(
			out.Value, bytes.Clone(out.PkScript),
		)
	}

	return &clone
}

func writeTxIn(w io.Writer, in *wire.TxIn) error {
	if _, err := w.Write(in.PreviousOutPoint.Hash[:]); err != nil {
		return err
	}

	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], in.PreviousOutPoint.Index)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	if err := wire.WriteVarBytes(w, 0, in.SignatureScript); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(buf[:], in.Sequence)
	_, err := w.Write(buf[:])

	return err
}

func copyTxIn(in *wire.TxIn) *wire.TxIn {
	return &wire.TxIn{
		PreviousOutPoint: in.PreviousOutPoint,
		SignatureScript:  bytes.Clone(in.SignatureScript),
		Sequence:         in.Sequence,
	}
}

// A compile time check to ensure Tx implements the transaction interface.
var _ txmodel.Tx = (*Tx)(nil)
