// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package selector picks the inputs of a transaction and sizes its change
// or max output so that the fee is covered.
package selector

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/dust"
	"github.com/btcsuite/utxoengine/fee"
	"github.com/btcsuite/utxoengine/pkg/btcunit"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrInsufficientFunds is returned when the candidate inputs cannot
	// pay for the outputs and the fee.
	ErrInsufficientFunds = fmt.Errorf("%w: inputs do not cover outputs "+
		"and fee", utxoerr.ErrInsufficientFunds)

	// ErrNoInputs is returned when no candidate input is left after dust
	// filtering.
	ErrNoInputs = fmt.Errorf("%w: no spendable inputs",
		utxoerr.ErrInsufficientFunds)

	// ErrNoOutputs is returned for a request without any output.
	ErrNoOutputs = fmt.Errorf("%w: no outputs", utxoerr.ErrInvalidParams)

	// ErrMaxAmountDust is returned when the max output would be dust
	// after paying the fee.
	ErrMaxAmountDust = fmt.Errorf("%w: max amount below dust threshold",
		utxoerr.ErrDust)

	// ErrUnknownOrder is returned for an unknown selection order.
	ErrUnknownOrder = fmt.Errorf("%w: unknown input selection order",
		utxoerr.ErrInvalidParams)
)

// Order determines which candidate inputs are spent and in what order.
type Order uint8

const (
	// UseAll spends every candidate in the given order.
	UseAll Order = iota

	// InOrder adds candidates in the given order until the target is
	// met.
	InOrder

	// Ascending adds candidates from the smallest amount up.
	Ascending

	// Descending adds candidates from the largest amount down.
	Descending
)

// String returns the name of the order.
func (o Order) String() string {
	switch o {
	case UseAll:
		return "use-all"
	case InOrder:
		return "in-order"
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// sortByAmount sorts inputs by the amount they spend.
type sortByAmount []txmodel.Input

func (s sortByAmount) Len() int { return len(s) }
func (s sortByAmount) Less(i, j int) bool {
	return s[i].Utxo.Amount < s[j].Utxo.Amount
}
func (s sortByAmount) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// arrange returns a copy of the candidates in the order they are tried.
// Inputs of equal amount keep their given order.
func arrange(inputs []txmodel.Input, order Order) ([]txmodel.Input, error) {
	arranged := make([]txmodel.Input, len(inputs))
	copy(arranged, inputs)

	switch order {
	case UseAll, InOrder:

	case Ascending:
		sort.Stable(sortByAmount(arranged))

	case Descending:
		sort.Stable(sort.Reverse(sortByAmount(arranged)))

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOrder, order)
	}

	return arranged, nil
}

// Request describes what to spend and where to.
type Request struct {
	// Template is an empty transaction carrying the header fields. It is
	// cloned, never modified.
	Template txmodel.Tx

	// Inputs are the candidate inputs.
	Inputs []txmodel.Input

	// Outputs are the outputs with fixed amounts.
	Outputs []*wire.TxOut

	// Change receives the surplus of an exact selection. It is dropped
	// when the surplus is dust.
	Change fn.Option[[]byte]

	// Fee prices the transaction.
	Fee fee.Estimator

	// Dust filters the inputs and validates the outputs.
	Dust dust.Policy

	// Order selects the candidates.
	Order Order
}

// Selection is a planned, unsigned transaction.
type Selection struct {
	// Unsigned is the transaction with the selected inputs and the final
	// outputs.
	Unsigned *txmodel.UnsignedTx

	// VSizeEstimate is the size of the signed transaction as priced. It
	// includes the change output even if it was dropped.
	VSizeEstimate btcunit.VByte

	// Fee is what the transaction pays: the inputs minus the outputs.
	Fee btcutil.Amount

	// Change is the amount of the change output, zero if there is none.
	Change btcutil.Amount
}

// build returns an unsigned transaction spending inputs into outputs.
func build(template txmodel.Tx, inputs []txmodel.Input,
	outputs []*wire.TxOut) (*txmodel.UnsignedTx, error) {

	tx := template.Clone()

	outs := make([]*wire.TxOut, len(outputs))
	for i, out := range outputs {
		outs[i] = wire.NewTxOut(out.Value, out.PkScript)
	}
	tx.SetOutputs(outs)

	u, err := txmodel.NewUnsignedTx(tx, nil)
	if err != nil {
		return nil, err
	}
	u.SetInputs(inputs)

	return u, nil
}

// candidates returns the non-dust inputs in selection order.
func (r *Request) candidates() ([]txmodel.Input, error) {
	filtered := dust.FilterInputs(r.Dust, r.Inputs)
	if skipped := len(r.Inputs) - len(filtered); skipped > 0 {
		log.Debugf("Skipped %d dust inputs", skipped)
	}

	if len(filtered) == 0 {
		return nil, ErrNoInputs
	}

	return arrange(filtered, r.Order)
}

// SelectExact adds candidates until they pay for the outputs and the fee.
// The fee is re-estimated for every added input and always includes the
// change output, which receives the surplus unless it is dust.
func SelectExact(req *Request) (*Selection, error) {
	if len(req.Outputs) == 0 && req.Change.IsNone() {
		return nil, ErrNoOutputs
	}

	candidates, err := req.candidates()
	if err != nil {
		return nil, err
	}

	target := btcutil.Amount(txmodel.SumOutputs(req.Outputs))

	outputs := req.Outputs
	req.Change.WhenSome(func(pkScript []byte) {
		outputs = append(outputs[:len(outputs):len(outputs)],
			wire.NewTxOut(0, pkScript))
	})

	// Using all inputs is a single step of the loop below.
	start := 1
	if req.Order == UseAll {
		start = len(candidates)
	}

	var (
		selected []txmodel.Input
		u        *txmodel.UnsignedTx
		est      *fee.Estimation
		total    btcutil.Amount
		covered  bool
	)
	for n := start; n <= len(candidates); n++ {
		selected = candidates[:n]

		u, err = build(req.Template, selected, outputs)
		if err != nil {
			return nil, err
		}

		est, err = fee.Estimate(u, req.Fee)
		if err != nil {
			return nil, err
		}

		total = btcutil.Amount(u.TotalInput())
		if total >= target+est.Fee {
			covered = true
			break
		}
	}

	if !covered {
		return nil, fmt.Errorf("%w: have %v, need %v plus fee %v",
			ErrInsufficientFunds, total, target, est.Fee)
	}

	change := total - target - est.Fee

	sel := &Selection{
		Unsigned:      u,
		VSizeEstimate: est.VSize(),
	}

	changeScript := req.Change.UnwrapOr(nil)
	switch {
	case req.Change.IsNone():

	case change > 0 && !req.Dust.IsDust(change, changeScript):
		outs := u.Tx().Outputs()
		outs[len(outs)-1].Value = int64(change)
		sel.Change = change

	default:
		log.Debugf("Dropping change output of %v", change)

		outs := u.Tx().Outputs()
		u.SetOutputs(outs[:len(outs)-1])
	}

	sel.Fee = btcutil.Amount(u.TotalInput() - u.TotalOutput())

	log.Debugf("Selected %d of %d inputs (%v), fee %v, change %v",
		len(selected), len(candidates), req.Order, sel.Fee, sel.Change)

	if err := dust.CheckOutputs(req.Dust, u.Tx()); err != nil {
		return nil, err
	}

	return sel, nil
}

// SelectMax spends every candidate into the fixed outputs and one output
// of maximal amount, appended last.
func SelectMax(req *Request, maxScript []byte) (*Selection, error) {
	candidates, err := req.candidates()
	if err != nil {
		return nil, err
	}

	outputs := make([]*wire.TxOut, 0, len(req.Outputs)+1)
	outputs = append(outputs, req.Outputs...)
	outputs = append(outputs, wire.NewTxOut(0, maxScript))

	u, err := build(req.Template, candidates, outputs)
	if err != nil {
		return nil, err
	}

	est, err := fee.Estimate(u, req.Fee)
	if err != nil {
		return nil, err
	}

	var (
		total  = btcutil.Amount(u.TotalInput())
		fixed  = btcutil.Amount(txmodel.SumOutputs(req.Outputs))
		amount = total - fixed - est.Fee
	)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: have %v, need %v plus fee %v",
			ErrInsufficientFunds, total, fixed, est.Fee)
	}

	if req.Dust.IsDust(amount, maxScript) {
		return nil, fmt.Errorf("%w: %v", ErrMaxAmountDust, amount)
	}

	outs := u.Tx().Outputs()
	outs[len(outs)-1].Value = int64(amount)

	log.Debugf("Spending %d inputs (%v), max amount %v, fee %v",
		len(candidates), total, amount, est.Fee)

	if err := dust.CheckOutputs(req.Dust, u.Tx()); err != nil {
		return nil, err
	}

	return &Selection{
		Unsigned:      u,
		VSizeEstimate: est.VSize(),
		Fee:           est.Fee,
	}, nil
}
