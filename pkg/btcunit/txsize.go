// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcunit

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
)

// baseUnit stores the canonical representation of a transaction size, which is
// weight units (wu). All other size units are derived from this.
type baseUnit struct {
	wu uint64
}

// ToWU converts the unit to a WeightUnit.
func (b baseUnit) ToWU() WeightUnit {
	return WeightUnit{b}
}

// ToVB converts the unit to a VByte.
func (b baseUnit) ToVB() VByte {
	return VByte{b}
}

// WeightUnit defines a unit to express the transaction size. The tx weight is
// calculated using `Base tx size * 3 + Total tx size`.
//   - Base tx size is size of the transaction serialized without the witness
//     data.
//   - Total tx size is the transaction size in bytes serialized according
//     #BIP144.
type WeightUnit struct {
	// The internal size is recorded in weight units.
	baseUnit
}

// NewWeightUnit creates a new WeightUnit from a uint64 value.
func NewWeightUnit(val uint64) WeightUnit {
	return WeightUnit{baseUnit{wu: val}}
}

// Uint64 returns the raw number of weight units.
func (w WeightUnit) Uint64() uint64 {
	return w.wu
}

// String returns the string representation of the weight unit.
func (w WeightUnit) String() string {
	return fmt.Sprintf("%d wu", w.wu)
}

// VByte defines a unit to express the transaction size. One virtual byte is
// four weight units, a partial virtual byte always counts as a whole one.
type VByte struct {
	// The internal size is recorded in weight units.
	baseUnit
}

// NewVByte creates a new VByte from a uint64 value.
func NewVByte(val uint64) VByte {
	return VByte{baseUnit{wu: val * blockchain.WitnessScaleFactor}}
}

// Uint64 returns the number of virtual bytes, rounded up.
func (v VByte) Uint64() uint64 {
	return (v.wu + blockchain.WitnessScaleFactor - 1) /
		blockchain.WitnessScaleFactor
}

// String returns the string representation of the virtual byte.
func (v VByte) String() string {
	return fmt.Sprintf("%d vb", v.Uint64())
}

// TxSize records the two serialized lengths a transaction's weight is
// derived from.
type TxSize struct {
	// Base is the serialized size without witness data.
	Base uint64

	// Total is the serialized size including witness data.
	Total uint64
}

// NewTxSize creates a TxSize from the stripped and the full serialization
// lengths.
func NewTxSize(base, total int) TxSize {
	return TxSize{Base: uint64(base), Total: uint64(total)}
}

// Weight returns `Base * 3 + Total` in weight units, which equals
// `non-witness bytes * 4 + witness bytes`.
func (s TxSize) Weight() WeightUnit {
	scale := uint64(blockchain.WitnessScaleFactor)

	return NewWeightUnit(s.Base*(scale-1) + s.Total)
}

// VSize returns the virtual size, the weight divided by four rounded up.
func (s TxSize) VSize() VByte {
	return s.Weight().ToVB()
}
