// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcunit provides a set of types for dealing with bitcoin units.
package btcunit

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcutil"
)

// SatPerVByte is a whole-satoshi fee rate per virtual byte, the unit spend
// requests are expressed in.
type SatPerVByte struct {
	sats btcutil.Amount
}

// NewSatPerVByte creates a new fee rate in sat/vb.
func NewSatPerVByte(rate btcutil.Amount) SatPerVByte {
	return SatPerVByte{sats: rate}
}

// Amount returns the number of satoshis charged per virtual byte.
func (s SatPerVByte) Amount() btcutil.Amount {
	return s.sats
}

// FeeForVByte calculates the fee for the given virtual size. The virtual
// size is already rounded up, so the product is exact.
func (s SatPerVByte) FeeForVByte(vb VByte) btcutil.Amount {
	return s.sats * btcutil.Amount(safeUint64ToInt64(vb.Uint64()))
}

// FeeForWeight calculates the fee for the given weight, rounding the weight
// up to whole virtual bytes first.
func (s SatPerVByte) FeeForWeight(wu WeightUnit) btcutil.Amount {
	return s.FeeForVByte(wu.ToVB())
}

// String returns a human-readable string of the fee rate.
func (s SatPerVByte) String() string {
	return fmt.Sprintf("%d sat/vb", int64(s.sats))
}

// SatPerKVByte is a fee rate per kilo virtual byte, the unit relay fee
// policies are expressed in.
type SatPerKVByte struct {
	sats btcutil.Amount
}

// NewSatPerKVByte creates a new fee rate in sat/kvb.
func NewSatPerKVByte(rate btcutil.Amount) SatPerKVByte {
	return SatPerKVByte{sats: rate}
}

// Amount returns the number of satoshis charged per kilo virtual byte.
func (s SatPerKVByte) Amount() btcutil.Amount {
	return s.sats
}

// String returns a human-readable string of the fee rate.
func (s SatPerKVByte) String() string {
	return fmt.Sprintf("%d sat/kvb", int64(s.sats))
}

// safeUint64ToInt64 converts a uint64 to an int64, capping at math.MaxInt64.
func safeUint64ToInt64(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(u)
}
