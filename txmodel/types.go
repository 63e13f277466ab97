// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txmodel

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/decred/dcrd/crypto/blake256"
)

var (
	// ErrInvalidSighashType is returned for a sighash type byte that is
	// not valid for the input's signing method.
	ErrInvalidSighashType = fmt.Errorf("%w: invalid sighash type",
		utxoerr.ErrInvalidParams)

	// ErrTaprootAnyoneCanPay is returned for taproot inputs requesting
	// SIGHASH_ANYONECANPAY.
	ErrTaprootAnyoneCanPay = fmt.Errorf("%w: taproot SIGHASH_ANYONECANPAY",
		utxoerr.ErrNotSupported)

	// ErrTaprootSingle is returned for taproot inputs requesting
	// SIGHASH_SINGLE.
	ErrTaprootSingle = fmt.Errorf("%w: taproot SIGHASH_SINGLE",
		utxoerr.ErrNotSupported)
)

// SigningMethod selects the sighash algorithm and signature encoding of an
// input. It is derived from the spent script when the input is planned and
// never changes afterwards.
type SigningMethod uint8

const (
	// Legacy inputs are signed with ECDSA over the pre-segwit digest.
	Legacy SigningMethod = iota

	// Segwit inputs are signed with ECDSA over the BIP143 digest.
	Segwit

	// TaprootKeyPath inputs are signed with BIP340 Schnorr by the tweaked
	// internal key over the BIP341 digest.
	TaprootKeyPath

	// TaprootScriptPath inputs are signed with BIP340 Schnorr by an
	// untweaked leaf key over the BIP341 digest extended with the leaf.
	TaprootScriptPath
)

// IsTaproot returns true for both taproot spend paths.
func (m SigningMethod) IsTaproot() bool {
	return m == TaprootKeyPath || m == TaprootScriptPath
}

// HasWitness returns true if inputs of this method carry a witness.
func (m SigningMethod) HasWitness() bool {
	return m != Legacy
}

// String returns the name of the signing method.
func (m SigningMethod) String() string {
	switch m {
	case Legacy:
		return "legacy"
	case Segwit:
		return "segwit"
	case TaprootKeyPath:
		return "taproot-key-path"
	case TaprootScriptPath:
		return "taproot-script-path"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// SighashType is the full 32-bit sighash type as committed by the legacy
// and BIP143 digests. Taproot commits only the low byte.
type SighashType uint32

const (
	// SigHashDefault is the taproot-only implicit ALL.
	SigHashDefault SighashType = 0x00

	// SigHashAll commits to all inputs and outputs.
	SigHashAll SighashType = 0x01

	// SigHashNone commits to no outputs.
	SigHashNone SighashType = 0x02

	// SigHashSingle commits to the output at the input's index.
	SigHashSingle SighashType = 0x03

	// SigHashForkID selects the replay protected BIP143 digest used by
	// Bitcoin Cash for every input.
	SigHashForkID SighashType = 0x40

	// SigHashAnyOneCanPay commits to the signed input only.
	SigHashAnyOneCanPay SighashType = 0x80

	// sigHashMask extracts the base type.
	sigHashMask SighashType = 0x1f
)

// Base returns ALL, NONE, SINGLE or DEFAULT.
func (s SighashType) Base() SighashType {
	return s & sigHashMask
}

// AnyOneCanPay returns true if the ANYONECANPAY flag is set.
func (s SighashType) AnyOneCanPay() bool {
	return s&SigHashAnyOneCanPay != 0
}

// ForkID returns true if the fork id flag is set.
func (s SighashType) ForkID() bool {
	return s&SigHashForkID != 0
}

// NormalizeSighashType validates the raw type for the given signing method.
// Zero means ALL for ECDSA methods and DEFAULT for taproot, and taproot ALL
// is committed as DEFAULT so the signature stays 64 bytes long.
func NormalizeSighashType(raw uint32, method SigningMethod) (SighashType,
	error) {

	s := SighashType(raw)

	if method.IsTaproot() {
		if raw > 0xff {
			return 0, fmt.Errorf("%w: %#x", ErrInvalidSighashType, raw)
		}

		if s.AnyOneCanPay() {
			return 0, ErrTaprootAnyoneCanPay
		}

		switch s {
		case SigHashDefault, SigHashAll:
			return SigHashDefault, nil

		case SigHashNone:
			return s, nil

		case SigHashSingle:
			return 0, ErrTaprootSingle

		default:
			return 0, fmt.Errorf("%w: %#x", ErrInvalidSighashType, raw)
		}
	}

	if s == SigHashDefault {
		return SigHashAll, nil
	}

	switch s.Base() {
	case SigHashAll, SigHashNone, SigHashSingle:
	default:
		return 0, fmt.Errorf("%w: %#x", ErrInvalidSighashType, raw)
	}

	// Only the fork id flag and its value may use the upper bits.
	if s > 0xff && !s.ForkID() {
		return 0, fmt.Errorf("%w: %#x", ErrInvalidSighashType, raw)
	}

	return s, nil
}

// Hasher is the digest a chain uses for txids and for the final step of the
// legacy and BIP143 sighash.
type Hasher uint8

const (
	// Sha256d is the double SHA256 used by Bitcoin.
	Sha256d Hasher = iota

	// Sha256 is the single SHA256 used by Groestlcoin.
	Sha256

	// Blake256 is the BLAKE-256 used by Decred.
	Blake256
)

// Hash returns the digest of b.
func (h Hasher) Hash(b []byte) chainhash.Hash {
	switch h {
	case Sha256:
		return sha256.Sum256(b)

	case Blake256:
		return blake256.Sum256(b)

	default:
		return chainhash.DoubleHashH(b)
	}
}
