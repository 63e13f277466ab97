// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dust decides which amounts are too small to be worth an output
// and removes or rejects them.
package dust

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/utxoengine/pkg/btcunit"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
)

// ErrDustOutput is returned when an output is below the dust threshold.
var ErrDustOutput = fmt.Errorf("%w: output below dust threshold",
	utxoerr.ErrDust)

// Policy decides whether an amount paid to a script is dust.
type Policy interface {
	// IsDust returns true if value paid to pkScript is below the
	// threshold.
	IsDust(value btcutil.Amount, pkScript []byte) bool
}

// Fixed treats every amount below the threshold as dust.
type Fixed btcutil.Amount

// IsDust implements Policy.
func (f Fixed) IsDust(value btcutil.Amount, _ []byte) bool {
	return value < btcutil.Amount(f)
}

// Disabled accepts every amount.
type Disabled struct{}

// IsDust implements Policy.
func (Disabled) IsDust(btcutil.Amount, []byte) bool {
	return false
}

// RelayFee derives the threshold from the cost of spending the script at the
// given relay fee rate, as standard relay policy does.
type RelayFee struct {
	// FeePerKb is the relay fee rate. Zero selects the default relay
	// fee.
	FeePerKb btcunit.SatPerKVByte
}

// IsDust implements Policy.
func (r RelayFee) IsDust(value btcutil.Amount, pkScript []byte) bool {
	rate := r.FeePerKb.Amount()
	if rate == 0 {
		rate = txrules.DefaultRelayFeePerKb
	}

	out := wire.NewTxOut(int64(value), pkScript)

	return txrules.IsDustOutput(out, rate)
}

// FilterInputs returns the inputs whose spent amount is not dust, in their
// original order.
func FilterInputs(policy Policy, inputs []txmodel.Input) []txmodel.Input {
	kept := make([]txmodel.Input, 0, len(inputs))
	for _, in := range inputs {
		amount := btcutil.Amount(in.Utxo.Amount)
		if policy.IsDust(amount, in.Utxo.PrevOutScript) {
			continue
		}

		kept = append(kept, in)
	}

	return kept
}

// CheckOutputs returns an error if any output of the transaction is dust.
// OP_RETURN outputs carry data, not value, and are exempt.
func CheckOutputs(policy Policy, tx txmodel.Tx) error {
	for i, out := range tx.Outputs() {
		if script.IsOpReturn(out.PkScript) {
			continue
		}

		amount := btcutil.Amount(out.Value)
		if policy.IsDust(amount, out.PkScript) {
			return fmt.Errorf("%w: output %d of %v", ErrDustOutput, i,
				amount)
		}
	}

	return nil
}
