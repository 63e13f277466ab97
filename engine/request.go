// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/chains"
	"github.com/btcsuite/utxoengine/chains/zcash"
	"github.com/btcsuite/utxoengine/dust"
	"github.com/btcsuite/utxoengine/fee"
	"github.com/btcsuite/utxoengine/pkg/btcunit"
	"github.com/btcsuite/utxoengine/selector"
	"github.com/btcsuite/utxoengine/sighash"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// ErrChangeWithMax is returned for a request with both a change and a max
// output.
var ErrChangeWithMax = fmt.Errorf("%w: change and max output are "+
	"exclusive", utxoerr.ErrInvalidParams)

// SigningInput is a spend request.
type SigningInput struct {
	// Chain selects the transaction format, address encoding and
	// sighash variant. This field is required.
	Chain *chains.Params

	// TxArgs are the transaction header fields.
	TxArgs chains.TxArgs

	// Inputs are the candidate UTXOs.
	Inputs []Input

	// Outputs are the payments with fixed amounts.
	Outputs []Output

	// Change receives the surplus. The change output is left out when
	// the surplus is dust.
	Change fn.Option[Recipient]

	// MaxOutput receives everything the inputs hold after the fixed
	// outputs and the fee. It is placed after the fixed outputs, and
	// every candidate input is spent.
	MaxOutput fn.Option[Recipient]

	// Order selects which candidates are spent.
	Order selector.Order

	// FeePerVByte is the fee rate in satoshi per virtual byte.
	FeePerVByte btcutil.Amount

	// Zip317 prices the transaction with the ZIP-317 conventional fee
	// instead of FeePerVByte. Only Sapling chains support it.
	Zip317 bool

	// Dust filters the inputs and validates the outputs. Nil selects
	// the relay fee policy.
	Dust dust.Policy

	// PrivateKeys sign the inputs. Their public keys also resolve
	// claims that only commit to a key hash.
	PrivateKeys [][]byte

	// PublicKeys resolve claims that only commit to a key hash when the
	// private keys are held elsewhere.
	PublicKeys [][]byte
}

// estimator returns the fee estimator of the request.
func (in *SigningInput) estimator(template txmodel.Tx) (fee.Estimator,
	error) {

	if !in.Zip317 {
		return fee.PerVByte{
			Rate: btcunit.NewSatPerVByte(in.FeePerVByte),
		}, nil
	}

	if _, ok := template.(*zcash.Tx); !ok {
		return nil, fmt.Errorf("%w: %s", ErrZip317NotSupported,
			in.Chain.Name)
	}

	return fee.Zip317{}, nil
}

// dustPolicy returns the dust policy of the request.
func (in *SigningInput) dustPolicy() dust.Policy {
	if in.Dust == nil {
		return dust.RelayFee{}
	}

	return in.Dust
}

// PlannedInput is an input the planner selected.
type PlannedInput struct {
	OutPoint wire.OutPoint
	Value    btcutil.Amount
}

// TransactionPlan is the outcome of planning a spend without signing it.
type TransactionPlan struct {
	// Inputs are the selected inputs in transaction order.
	Inputs []PlannedInput

	// Outputs are the final outputs, the change or max output
	// included.
	Outputs []*wire.TxOut

	// VSizeEstimate is the estimated size once signed.
	VSizeEstimate btcunit.VByte

	// FeeEstimate is what the transaction pays: the inputs minus the
	// outputs.
	FeeEstimate btcutil.Amount

	// Change is the amount of the change output, zero if it was left
	// out.
	Change btcutil.Amount

	Error *Error
}

// SigningOutput is a signed transaction.
type SigningOutput struct {
	// Transaction is the signed transaction.
	Transaction txmodel.Tx

	// Encoded is the serialized transaction.
	Encoded []byte

	TxID   chainhash.Hash
	VSize  btcunit.VByte
	Weight btcunit.WeightUnit
	Fee    btcutil.Amount

	Error *Error
}

// PreSigningOutput holds the digests an external signer signs, one per
// input in transaction order.
type PreSigningOutput struct {
	Sighashes []*sighash.UtxoSighash

	Error *Error
}

// newPlan summarizes a selection.
func newPlan(sel *selector.Selection) *TransactionPlan {
	pairs := sel.Unsigned.Inputs()

	inputs := make([]PlannedInput, len(pairs))
	for i, in := range pairs {
		inputs[i] = PlannedInput{
			OutPoint: in.TxIn.PreviousOutPoint,
			Value:    btcutil.Amount(in.Utxo.Amount),
		}
	}

	return &TransactionPlan{
		Inputs:        inputs,
		Outputs:       sel.Unsigned.Tx().Outputs(),
		VSizeEstimate: sel.VSizeEstimate,
		FeeEstimate:   sel.Fee,
		Change:        sel.Change,
	}
}

// newSigningOutput describes a signed transaction.
func newSigningOutput(tx txmodel.Tx, txFee btcutil.Amount) (*SigningOutput,
	error) {

	encoded, err := txmodel.Encode(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: encode transaction: %w",
			utxoerr.ErrInternal, err)
	}

	size := txmodel.Size(tx)

	return &SigningOutput{
		Transaction: tx,
		Encoded:     encoded,
		TxID:        tx.TxID(),
		VSize:       size.VSize(),
		Weight:      size.Weight(),
		Fee:         txFee,
	}, nil
}
