// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package utxoerr defines the error kinds shared by every stage of the
// transaction engine. Packages declare their own sentinel errors wrapping one
// of the kinds below so callers can classify any returned error with
// errors.Is or KindOf.
package utxoerr

import "errors"

var (
	// ErrInvalidParams is the kind for malformed caller data such as bad
	// key or hash lengths, an unknown sighash type or an unknown network.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrMissingPrivateKey is the kind returned when a required signer is
	// not held by the keys manager.
	ErrMissingPrivateKey = errors.New("missing private key")

	// ErrInsufficientFunds is the kind returned when the selected inputs
	// cannot cover the outputs plus fee.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDust is the kind returned when an output or the computed change
	// would be below the dust threshold.
	ErrDust = errors.New("dust")

	// ErrNotSupported is the kind for paths that are deliberately not
	// implemented.
	ErrNotSupported = errors.New("not supported")

	// ErrParse is the kind for malformed serialized data such as PSBT or
	// transaction bytes.
	ErrParse = errors.New("parse error")

	// ErrInternal is the kind for broken internal invariants.
	ErrInternal = errors.New("internal error")
)

// Kind classifies an error returned by the engine.
type Kind uint8

const (
	// KindOK means no error.
	KindOK Kind = iota

	// KindInvalidParams maps to ErrInvalidParams.
	KindInvalidParams

	// KindMissingPrivateKey maps to ErrMissingPrivateKey.
	KindMissingPrivateKey

	// KindInsufficientFunds maps to ErrInsufficientFunds.
	KindInsufficientFunds

	// KindDust maps to ErrDust.
	KindDust

	// KindNotSupported maps to ErrNotSupported.
	KindNotSupported

	// KindParse maps to ErrParse.
	KindParse

	// KindInternal maps to ErrInternal and to any error that does not wrap
	// a known kind.
	KindInternal
)

// kinds pairs each kind with its sentinel, in match priority order.
var kinds = []struct {
	kind Kind
	err  error
}{
	{KindInvalidParams, ErrInvalidParams},
	{KindMissingPrivateKey, ErrMissingPrivateKey},
	{KindInsufficientFunds, ErrInsufficientFunds},
	{KindDust, ErrDust},
	{KindNotSupported, ErrNotSupported},
	{KindParse, ErrParse},
	{KindInternal, ErrInternal},
}

// KindOf returns the kind of err. A nil error is KindOK, an error that wraps
// none of the known kinds is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindOK
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindInternal
}

// String returns a human readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "OK"

	case KindInvalidParams:
		return "Error_invalid_params"

	case KindMissingPrivateKey:
		return "Error_missing_private_key"

	case KindInsufficientFunds:
		return "Error_insufficient_utxos"

	case KindDust:
		return "Error_dust_amount_requested"

	case KindNotSupported:
		return "Error_not_supported"

	case KindParse:
		return "Error_input_parse"

	default:
		return "Error_internal"
	}
}
