// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"

	"github.com/btcsuite/utxoengine/utxoerr"
)

var (
	// ErrNoChain is returned for a request without chain parameters.
	ErrNoChain = fmt.Errorf("%w: no chain", utxoerr.ErrInvalidParams)

	// ErrNoInputs is returned for a request without inputs.
	ErrNoInputs = fmt.Errorf("%w: no inputs", utxoerr.ErrInvalidParams)

	// ErrNoClaim is returned for an input without a claim.
	ErrNoClaim = fmt.Errorf("%w: input has no claim",
		utxoerr.ErrInvalidParams)

	// ErrNoRecipient is returned for an output without a recipient.
	ErrNoRecipient = fmt.Errorf("%w: output has no recipient",
		utxoerr.ErrInvalidParams)

	// ErrNegativeAmount is returned for a negative input or output
	// amount.
	ErrNegativeAmount = fmt.Errorf("%w: negative amount",
		utxoerr.ErrInvalidParams)

	// ErrUnknownPubKey is returned when no supplied key owns a script
	// that only commits to a key hash or a tweaked key.
	ErrUnknownPubKey = fmt.Errorf("%w: no known public key for script",
		utxoerr.ErrMissingPrivateKey)

	// ErrUnsupportedScript is returned for a spent script that has no
	// claim template.
	ErrUnsupportedScript = fmt.Errorf("%w: cannot claim script",
		utxoerr.ErrNotSupported)

	// ErrWitnessNotActive is returned for a witness script on a chain
	// without segwit or taproot.
	ErrWitnessNotActive = fmt.Errorf("%w: witness program not active "+
		"on chain", utxoerr.ErrNotSupported)

	// ErrZip317NotSupported is returned when the ZIP-317 fee is asked
	// for a chain without Sapling transactions.
	ErrZip317NotSupported = fmt.Errorf("%w: zip-317 fee on a non zcash "+
		"chain", utxoerr.ErrNotSupported)

	// ErrSignatureCount is returned when the external signatures or
	// public keys do not match the inputs one to one.
	ErrSignatureCount = fmt.Errorf("%w: signature count differs from "+
		"input count", utxoerr.ErrInvalidParams)
)

// Error is the error field of an output: the kind of the failure and a
// human readable message.
type Error struct {
	Kind    utxoerr.Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// newError converts a propagated error into the error field of an output.
func newError(err error) *Error {
	if err == nil {
		return nil
	}

	return &Error{Kind: utxoerr.KindOf(err), Message: err.Error()}
}

// SignatureError records the underlying error when signing or verifying the
// signature of one input.
type SignatureError struct {
	InputIndex int
	Err        error
}

// Error implements the error interface.
func (e *SignatureError) Error() string {
	return fmt.Sprintf("input %d: %v", e.InputIndex, e.Err)
}

// Unwrap returns the underlying error so the kind is preserved.
func (e *SignatureError) Unwrap() error {
	return e.Err
}
