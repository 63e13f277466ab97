// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/utxoerr"
)

const (
	// ECDSAPlaceholderSize is the signature length assumed when estimating
	// the size of a not yet signed ECDSA input: a 72-byte DER signature plus
	// the sighash type byte.
	ECDSAPlaceholderSize = 73

	// SchnorrPlaceholderSize is the signature length assumed when estimating
	// the size of a not yet signed taproot input: a 64-byte signature plus
	// an explicit sighash type byte.
	SchnorrPlaceholderSize = 65
)

// ErrClaimScript is returned when a scriptSig cannot be assembled.
var ErrClaimScript = fmt.Errorf("%w: unable to build claim script",
	utxoerr.ErrInternal)

// Claim is the data placed into a transaction input to spend its UTXO.
type Claim struct {
	// ScriptSig is the signature script, empty for native segwit spends.
	ScriptSig []byte

	// Witness is the witness stack, empty for legacy spends.
	Witness wire.TxWitness
}

// Claimer turns a serialized signature into the claim for one input. The
// signature already carries its sighash type byte where the template needs
// one. Claimers are also called with placeholder signatures to estimate the
// final input size.
type Claimer interface {
	Claim(sig []byte) (*Claim, error)
}

// P2PKClaim spends `<pubkey> OP_CHECKSIG` with `<sig>`.
type P2PKClaim struct{}

// Claim implements Claimer.
func (P2PKClaim) Claim(sig []byte) (*Claim, error) {
	scriptSig, err := pushes(sig)
	if err != nil {
		return nil, err
	}

	return &Claim{ScriptSig: scriptSig}, nil
}

// P2PKHClaim spends a P2PKH output with `<sig> <pubkey>`.
type P2PKHClaim struct {
	PubKey []byte
}

// Claim implements Claimer.
func (c P2PKHClaim) Claim(sig []byte) (*Claim, error) {
	scriptSig, err := pushes(sig, c.PubKey)
	if err != nil {
		return nil, err
	}

	return &Claim{ScriptSig: scriptSig}, nil
}

// P2WPKHClaim spends a P2WPKH output with the witness `[sig, pubkey]`.
type P2WPKHClaim struct {
	PubKey []byte
}

// Claim implements Claimer.
func (c P2WPKHClaim) Claim(sig []byte) (*Claim, error) {
	return &Claim{Witness: wire.TxWitness{sig, c.PubKey}}, nil
}

// TaprootKeyPathClaim spends a P2TR output through the key path with the
// witness `[sig]`.
type TaprootKeyPathClaim struct{}

// Claim implements Claimer.
func (TaprootKeyPathClaim) Claim(sig []byte) (*Claim, error) {
	return &Claim{Witness: wire.TxWitness{sig}}, nil
}

// TaprootScriptPathClaim spends a single-signature leaf of a P2TR output
// with the witness `[sig, leaf script, control block]`.
type TaprootScriptPathClaim struct {
	LeafScript   []byte
	ControlBlock []byte
}

// Claim implements Claimer.
func (c TaprootScriptPathClaim) Claim(sig []byte) (*Claim, error) {
	return &Claim{
		Witness: wire.TxWitness{sig, c.LeafScript, c.ControlBlock},
	}, nil
}

// pushes builds a script that only pushes the given items.
func pushes(items ...[]byte) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	for _, item := range items {
		b.AddData(item)
	}

	s, err := b.Script()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClaimScript, err)
	}

	return s, nil
}

// A compile time check to ensure the claim templates implement Claimer.
var (
	_ Claimer = P2PKClaim{}
	_ Claimer = P2PKHClaim{}
	_ Claimer = P2WPKHClaim{}
	_ Claimer = TaprootKeyPathClaim{}
	_ Claimer = TaprootScriptPathClaim{}
)
