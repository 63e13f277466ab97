// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sighash

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	// compactSigSize is an ECDSA signature encoded as r || s.
	compactSigSize = 64

	// recoverableSigSize is an ECDSA signature encoded as r || s || v.
	recoverableSigSize = 65
)

var (
	// ErrInvalidSignature is returned for a signature that cannot be
	// decoded.
	ErrInvalidSignature = fmt.Errorf("%w: invalid signature",
		utxoerr.ErrInvalidParams)

	// ErrSignatureMismatch is returned for a signature that does not
	// verify against the digest and public key.
	ErrSignatureMismatch = fmt.Errorf("%w: signature does not verify",
		utxoerr.ErrInvalidParams)

	// ErrPubKeyMismatch is returned when the supplied public key is not
	// the one the input expects.
	ErrPubKeyMismatch = fmt.Errorf("%w: unexpected public key",
		utxoerr.ErrInvalidParams)
)

// ParseECDSASignature decodes an ECDSA signature given as DER, as 64-byte
// r || s or as 65-byte r || s || v.
func ParseECDSASignature(raw []byte) (*ecdsa.Signature, error) {
	if len(raw) != compactSigSize && len(raw) != recoverableSigSize {
		sig, err := ecdsa.ParseDERSignature(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}

		return sig, nil
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(raw[:32]); overflow || r.IsZero() {
		return nil, fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(raw[32:64]); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}

	return ecdsa.NewSignature(&r, &s), nil
}

// EncodeECDSA serializes a signature for a scriptSig or witness: low-S DER
// followed by the sighash type byte.
func EncodeECDSA(sig *ecdsa.Signature, hashType txmodel.SighashType) []byte {
	der := sig.Serialize()
	return append(der, byte(hashType))
}

// EncodeSchnorr serializes a BIP340 signature for a witness. The sighash
// type byte is omitted for SIGHASH_DEFAULT.
func EncodeSchnorr(sig *schnorr.Signature,
	hashType txmodel.SighashType) []byte {

	raw := sig.Serialize()
	if hashType == txmodel.SigHashDefault {
		return raw
	}

	return append(raw, byte(hashType))
}

// SigningKey returns the key a signature over this digest verifies against:
// the spender key itself, or for key-path spends the spender key tweaked
// with the taproot commitment.
func (s *UtxoSighash) SigningKey() (*btcec.PublicKey, error) {
	if !s.Method.IsTaproot() {
		pub, err := btcec.ParsePubKey(s.SpenderPubKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", script.ErrInvalidPubKey,
				err)
		}

		return pub, nil
	}

	pub, err := script.ParseTaprootKey(s.SpenderPubKey)
	if err != nil {
		return nil, err
	}

	if s.Method == txmodel.TaprootKeyPath {
		tweak := s.TaprootTweak.UnwrapOr(txmodel.TaprootTweak{})
		pub = txscript.ComputeTaprootOutputKey(pub, tweak.MerkleRoot)
	}

	return pub, nil
}

// Verify checks a raw external signature against the digest and returns it
// encoded for the input's claim. The public key, when given, must be the
// one the input expects.
func (s *UtxoSighash) Verify(pubKey, sig []byte) ([]byte, error) {
	if len(pubKey) > 0 {
		if err := s.checkPubKey(pubKey); err != nil {
			return nil, err
		}
	}

	key, err := s.SigningKey()
	if err != nil {
		return nil, err
	}

	if s.Method.IsTaproot() {
		if len(sig) != schnorr.SignatureSize {
			return nil, fmt.Errorf("%w: schnorr signature of %d bytes",
				ErrInvalidSignature, len(sig))
		}

		parsed, err := schnorr.ParseSignature(sig)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}

		if !parsed.Verify(s.Hash[:], key) {
			return nil, fmt.Errorf("%w: input %d", ErrSignatureMismatch,
				s.Index)
		}

		return EncodeSchnorr(parsed, s.SighashType), nil
	}

	parsed, err := ParseECDSASignature(sig)
	if err != nil {
		return nil, err
	}

	if !parsed.Verify(s.Hash[:], key) {
		return nil, fmt.Errorf("%w: input %d", ErrSignatureMismatch,
			s.Index)
	}

	return EncodeECDSA(parsed, s.SighashType), nil
}

// checkPubKey compares the supplied key with the spender key. Taproot keys
// are compared by their x coordinate.
func (s *UtxoSighash) checkPubKey(pubKey []byte) error {
	if s.Method.IsTaproot() {
		want, err := script.ToXOnly(s.SpenderPubKey)
		if err != nil {
			return err
		}

		got, err := script.ToXOnly(pubKey)
		if err != nil {
			return err
		}

		if want != got {
			return fmt.Errorf("%w: input %d", ErrPubKeyMismatch,
				s.Index)
		}

		return nil
	}

	want, err := btcec.ParsePubKey(s.SpenderPubKey)
	if err != nil {
		return fmt.Errorf("%w: %w", script.ErrInvalidPubKey, err)
	}

	got, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return fmt.Errorf("%w: %w", script.ErrInvalidPubKey, err)
	}

	if !want.IsEqual(got) {
		return fmt.Errorf("%w: input %d", ErrPubKeyMismatch, s.Index)
	}

	return nil
}
