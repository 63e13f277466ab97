// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fee computes the fee a planned transaction pays.
package fee

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/btcsuite/utxoengine/pkg/btcunit"
	"github.com/btcsuite/utxoengine/txmodel"
)

// Estimator prices a transaction. The transaction passed in is claimed with
// placeholder signatures so it has the size of the final one.
type Estimator interface {
	Fee(tx txmodel.Tx) btcutil.Amount
}

// PerVByte charges a fixed rate per virtual byte.
type PerVByte struct {
	Rate btcunit.SatPerVByte
}

// Fee implements Estimator.
func (p PerVByte) Fee(tx txmodel.Tx) btcutil.Amount {
	return p.Rate.FeeForWeight(txmodel.Size(tx).Weight())
}

// String returns the rate.
func (p PerVByte) String() string {
	return p.Rate.String()
}

const (
	// Zip317MarginalFee is the fee per logical action.
	Zip317MarginalFee btcutil.Amount = 5_000

	// Zip317GraceActions is the number of actions every transaction is
	// charged for at least.
	Zip317GraceActions = 2

	// Zip317P2PKHInputSize is the standard size of a transparent input.
	Zip317P2PKHInputSize = 150

	// Zip317P2PKHOutputSize is the standard size of a transparent
	// output.
	Zip317P2PKHOutputSize = 8 + 1 + txsizes.P2PKHPkScriptSize
)

// Zip317 charges the ZIP-317 conventional fee of a transaction with
// transparent parts only: the marginal fee per logical action, where the
// transparent actions are the inputs or the outputs measured in standard
// sizes, whichever is larger.
type Zip317 struct{}

// Fee implements Estimator.
func (Zip317) Fee(tx txmodel.Tx) btcutil.Amount {
	var inSize, outSize int
	for _, in := range tx.Inputs() {
		inSize += in.SerializeSize()
	}
	for _, out := range tx.Outputs() {
		outSize += out.SerializeSize()
	}

	actions := max(
		ceilDiv(inSize, Zip317P2PKHInputSize),
		ceilDiv(outSize, Zip317P2PKHOutputSize),
		Zip317GraceActions,
	)

	return Zip317MarginalFee * btcutil.Amount(actions)
}

// String returns the estimator name.
func (Zip317) String() string {
	return "zip-317"
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Estimation is the size and fee of an unsigned transaction once signed.
type Estimation struct {
	Size btcunit.TxSize
	Fee  btcutil.Amount
}

// VSize returns the estimated virtual size.
func (e *Estimation) VSize() btcunit.VByte {
	return e.Size.VSize()
}

// Estimate claims the transaction with placeholder signatures and prices
// it.
func Estimate(u *txmodel.UnsignedTx, est Estimator) (*Estimation, error) {
	tx, err := u.Estimate()
	if err != nil {
		return nil, fmt.Errorf("estimate size: %w", err)
	}

	return &Estimation{
		Size: txmodel.Size(tx),
		Fee:  est.Fee(tx),
	}, nil
}
