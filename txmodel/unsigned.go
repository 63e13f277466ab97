// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txmodel

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrInputCountMismatch is returned when the inputs and their signing
	// metadata are not aligned one to one.
	ErrInputCountMismatch = fmt.Errorf("%w: inputs and utxos differ in "+
		"length", utxoerr.ErrInternal)

	// ErrClaimCountMismatch is returned when compiling with a number of
	// claims different from the number of inputs.
	ErrClaimCountMismatch = fmt.Errorf("%w: claims and inputs differ in "+
		"length", utxoerr.ErrInvalidParams)

	// ErrUnexpectedWitness is returned when a legacy input is claimed with
	// witness data.
	ErrUnexpectedWitness = errors.New("legacy input claimed with a witness")
)

// TaprootTweak is the data a key-path signer tweaks its internal key with.
// A nil merkle root is the BIP86 tweak of a key without a script tree.
type TaprootTweak struct {
	MerkleRoot []byte
}

// UtxoToSign describes the output spent by one input and how to sign for it.
type UtxoToSign struct {
	// PrevOutScript is the script_pubkey of the spent output.
	PrevOutScript []byte

	// ScriptCode is the script committed to by the legacy and BIP143
	// digests. It is the spent script itself for P2PK and P2PKH, and the
	// P2PKH form of the key hash for P2WPKH.
	ScriptCode []byte

	// Amount is the value of the spent output.
	Amount int64

	// Method selects the sighash algorithm and signature encoding.
	Method SigningMethod

	// SighashType is the normalized sighash type.
	SighashType SighashType

	// TxHasher finalizes the legacy and BIP143 digests.
	TxHasher Hasher

	// SpenderPubKey is the key expected to sign: compressed for ECDSA
	// methods, the internal key for TaprootKeyPath and the leaf key for
	// TaprootScriptPath.
	SpenderPubKey []byte

	// TaprootTweak is set for key-path spends.
	TaprootTweak fn.Option[TaprootTweak]

	// LeafHash is set for script-path spends.
	LeafHash fn.Option[chainhash.Hash]

	// Claimer builds the scriptSig and witness once signed.
	Claimer script.Claimer
}

// PlaceholderSignature returns a zeroed signature of the size assumed for
// fee estimation.
func (u *UtxoToSign) PlaceholderSignature() []byte {
	if u.Method.IsTaproot() {
		return make([]byte, script.SchnorrPlaceholderSize)
	}

	return make([]byte, script.ECDSAPlaceholderSize)
}

// Input pairs a transaction input with the output it spends.
type Input struct {
	TxIn *wire.TxIn
	Utxo *UtxoToSign
}

// UnsignedTx is a transaction whose inputs are not claimed yet together
// with the signing metadata of every input, in input order.
type UnsignedTx struct {
	tx    Tx
	utxos []*UtxoToSign
}

// NewUnsignedTx pairs a transaction with the signing metadata of its inputs.
func NewUnsignedTx(tx Tx, utxos []*UtxoToSign) (*UnsignedTx, error) {
	if len(tx.Inputs()) != len(utxos) {
		return nil, fmt.Errorf("%w: %d inputs, %d utxos",
			ErrInputCountMismatch, len(tx.Inputs()), len(utxos))
	}

	return &UnsignedTx{tx: tx, utxos: utxos}, nil
}

// Tx returns the unsigned transaction.
func (u *UnsignedTx) Tx() Tx {
	return u.tx
}

// Utxos returns the signing metadata in input order.
func (u *UnsignedTx) Utxos() []*UtxoToSign {
	return u.utxos
}

// Inputs returns the inputs paired with their metadata.
func (u *UnsignedTx) Inputs() []Input {
	ins := u.tx.Inputs()

	pairs := make([]Input, len(ins))
	for i, in := range ins {
		pairs[i] = Input{TxIn: in, Utxo: u.utxos[i]}
	}

	return pairs
}

// SetInputs replaces the inputs and their metadata.
func (u *UnsignedTx) SetInputs(inputs []Input) {
	ins := make([]*wire.TxIn, len(inputs))
	utxos := make([]*UtxoToSign, len(inputs))

	for i, in := range inputs {
		ins[i] = in.TxIn
		utxos[i] = in.Utxo
	}

	u.tx.SetInputs(ins)
	u.utxos = utxos
}

// SetOutputs replaces the outputs.
func (u *UnsignedTx) SetOutputs(outs []*wire.TxOut) {
	u.tx.SetOutputs(outs)
}

// TotalInput returns the sum of the spent amounts.
func (u *UnsignedTx) TotalInput() int64 {
	var total int64
	for _, utxo := range u.utxos {
		total += utxo.Amount
	}

	return total
}

// TotalOutput returns the sum of the output values.
func (u *UnsignedTx) TotalOutput() int64 {
	return SumOutputs(u.tx.Outputs())
}

// Clone returns a deep copy of the transaction. The metadata is shared as it
// is never mutated.
func (u *UnsignedTx) Clone() *UnsignedTx {
	utxos := make([]*UtxoToSign, len(u.utxos))
	copy(utxos, u.utxos)

	return &UnsignedTx{tx: u.tx.Clone(), utxos: utxos}
}

// Estimate returns a copy of the transaction claimed with placeholder
// signatures, sized like the final signed transaction.
func (u *UnsignedTx) Estimate() (Tx, error) {
	claims := make([]*script.Claim, len(u.utxos))
	for i, utxo := range u.utxos {
		claim, err := utxo.Claimer.Claim(utxo.PlaceholderSignature())
		if err != nil {
			return nil, fmt.Errorf("estimate input %d: %w", i, err)
		}

		claims[i] = claim
	}

	return u.Compile(claims)
}

// Compile returns a copy of the transaction with the claims placed into the
// inputs. The unsigned transaction is left untouched.
func (u *UnsignedTx) Compile(claims []*script.Claim) (Tx, error) {
	if len(claims) != len(u.utxos) {
		return nil, fmt.Errorf("%w: %d claims for %d inputs",
			ErrClaimCountMismatch, len(claims), len(u.utxos))
	}

	tx := u.tx.Clone()
	for i, in := range tx.Inputs() {
		claim := claims[i]

		if !u.utxos[i].Method.HasWitness() && len(claim.Witness) > 0 {
			return nil, fmt.Errorf("%w: input %d: %w",
				utxoerr.ErrInternal, i, ErrUnexpectedWitness)
		}

		in.SignatureScript = claim.ScriptSig
		in.Witness = claim.Witness
	}

	return tx, nil
}
