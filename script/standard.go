// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package script builds and recognizes the standard output scripts spent and
// created by the engine, and the scriptSig/witness data that claims them.
package script

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/utxoerr"
)

const (
	// HashSize is the length of a HASH160 or RIPEMD-160 digest.
	HashSize = 20

	// WitnessScriptHashSize is the length of a P2WSH program.
	WitnessScriptHashSize = 32

	// XOnlyKeySize is the length of a BIP340 public key.
	XOnlyKeySize = schnorr.PubKeyBytesLen

	// MaxOpReturnData is the largest payload a standard OP_RETURN output
	// can carry.
	MaxOpReturnData = txscript.MaxDataCarrierSize
)

var (
	// ErrInvalidPubKey is returned when a public key cannot be parsed.
	ErrInvalidPubKey = fmt.Errorf("%w: invalid public key",
		utxoerr.ErrInvalidParams)

	// ErrOpReturnTooLarge is returned when an OP_RETURN payload exceeds
	// MaxOpReturnData.
	ErrOpReturnTooLarge = fmt.Errorf("%w: OP_RETURN data too large",
		utxoerr.ErrInvalidParams)
)

// PubKeyHash is the HASH160 of a public key.
type PubKeyHash [HashSize]byte

// ScriptHash is the HASH160 of a redeem script.
type ScriptHash [HashSize]byte

// WitnessScriptHash is the SHA256 of a witness script.
type WitnessScriptHash [WitnessScriptHashSize]byte

// XOnlyKey is a BIP340 x-only public key.
type XOnlyKey [XOnlyKeySize]byte

// Hash160 returns the Bitcoin pubkey hash of the serialized key.
func Hash160(pubKey []byte) PubKeyHash {
	var h PubKeyHash
	copy(h[:], btcutil.Hash160(pubKey))

	return h
}

// P2PK returns `<pubkey> OP_CHECKSIG`. Both compressed and uncompressed keys
// are accepted.
func P2PK(pubKey []byte) ([]byte, error) {
	if _, err := btcec.ParsePubKey(pubKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}

	s := make([]byte, 0, len(pubKey)+2)
	s = append(s, byte(len(pubKey)))
	s = append(s, pubKey...)

	return append(s, txscript.OP_CHECKSIG), nil
}

// P2PKH returns `OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG`.
func P2PKH(hash PubKeyHash) []byte {
	s := make([]byte, 0, 25)
	s = append(s, txscript.OP_DUP, txscript.OP_HASH160, txscript.OP_DATA_20)
	s = append(s, hash[:]...)

	return append(s, txscript.OP_EQUALVERIFY, txscript.OP_CHECKSIG)
}

// P2SH returns `OP_HASH160 <hash> OP_EQUAL`.
func P2SH(hash ScriptHash) []byte {
	s := make([]byte, 0, 23)
	s = append(s, txscript.OP_HASH160, txscript.OP_DATA_20)
	s = append(s, hash[:]...)

	return append(s, txscript.OP_EQUAL)
}

// P2WPKH returns the version 0 witness program `OP_0 <hash>`.
func P2WPKH(hash PubKeyHash) []byte {
	s := make([]byte, 0, 22)
	s = append(s, txscript.OP_0, txscript.OP_DATA_20)

	return append(s, hash[:]...)
}

// P2WSH returns the version 0 witness program `OP_0 <sha256(script)>`.
func P2WSH(hash WitnessScriptHash) []byte {
	s := make([]byte, 0, 34)
	s = append(s, txscript.OP_0, txscript.OP_DATA_32)

	return append(s, hash[:]...)
}

// P2TR returns the version 1 witness program `OP_1 <key>` for an output key
// that is already tweaked.
func P2TR(outputKey XOnlyKey) []byte {
	s := make([]byte, 0, 34)
	s = append(s, txscript.OP_1, txscript.OP_DATA_32)

	return append(s, outputKey[:]...)
}

// TaprootOutputKey tweaks the internal key with the given merkle root. An
// empty root gives the BIP86 key-path-only commitment.
func TaprootOutputKey(internalKey *btcec.PublicKey,
	merkleRoot []byte) XOnlyKey {

	outputKey := txscript.ComputeTaprootOutputKey(internalKey, merkleRoot)

	var key XOnlyKey
	copy(key[:], schnorr.SerializePubKey(outputKey))

	return key
}

// P2TRKeyPath returns the P2TR script committing to the internal key and the
// optional merkle root.
func P2TRKeyPath(internalKey []byte, merkleRoot []byte) ([]byte, error) {
	pub, err := ParseTaprootKey(internalKey)
	if err != nil {
		return nil, err
	}

	return P2TR(TaprootOutputKey(pub, merkleRoot)), nil
}

// OpReturn returns `OP_RETURN <data>`.
func OpReturn(data []byte) ([]byte, error) {
	if len(data) > MaxOpReturnData {
		return nil, fmt.Errorf("%w: %d bytes", ErrOpReturnTooLarge,
			len(data))
	}

	s, err := txscript.NullDataScript(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpReturnTooLarge, err)
	}

	return s, nil
}

// ParseTaprootKey parses either a 32-byte x-only key or a 33-byte
// compressed key into a public key usable for taproot.
func ParseTaprootKey(key []byte) (*btcec.PublicKey, error) {
	var (
		pub *btcec.PublicKey
		err error
	)

	switch len(key) {
	case XOnlyKeySize:
		pub, err = schnorr.ParsePubKey(key)

	case btcec.PubKeyBytesLenCompressed:
		pub, err = btcec.ParsePubKey(key)

	default:
		return nil, fmt.Errorf("%w: taproot key of %d bytes",
			ErrInvalidPubKey, len(key))
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}

	return pub, nil
}

// ToXOnly returns the x-only serialization of a 32 or 33 byte key.
func ToXOnly(key []byte) (XOnlyKey, error) {
	pub, err := ParseTaprootKey(key)
	if err != nil {
		return XOnlyKey{}, err
	}

	var x XOnlyKey
	copy(x[:], schnorr.SerializePubKey(pub))

	return x, nil
}
