// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keys holds the private keys of a signing call and finds the one
// expected by each input.
package keys

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrMissingKey is returned when no held key matches the requested
	// public key.
	ErrMissingKey = fmt.Errorf("%w: no private key for public key",
		utxoerr.ErrMissingPrivateKey)

	// ErrInvalidPrivKey is returned for a private key that is not a valid
	// secp256k1 scalar.
	ErrInvalidPrivKey = fmt.Errorf("%w: invalid private key",
		utxoerr.ErrInvalidParams)
)

// Manager holds the private keys available to one signing call. It is not
// safe for concurrent use and must be zeroed once the call is done.
type Manager struct {
	keys []*btcec.PrivateKey
}

// NewManager parses 32-byte private keys into a manager.
func NewManager(privKeys ...[]byte) (*Manager, error) {
	m := &Manager{keys: make([]*btcec.PrivateKey, 0, len(privKeys))}

	for i, raw := range privKeys {
		if len(raw) != btcec.PrivKeyBytesLen {
			m.Zero()
			return nil, fmt.Errorf("%w: key %d has %d bytes",
				ErrInvalidPrivKey, i, len(raw))
		}

		// A scalar at or above the group order is rejected rather than
		// reduced into a different key.
		var scalar secp256k1.ModNScalar
		if overflow := scalar.SetByteSlice(raw); overflow {
			scalar.Zero()
			m.Zero()
			return nil, fmt.Errorf("%w: key %d is not below the "+
				"group order", ErrInvalidPrivKey, i)
		}
		if scalar.IsZero() {
			m.Zero()
			return nil, fmt.Errorf("%w: key %d is zero",
				ErrInvalidPrivKey, i)
		}

		m.keys = append(m.keys, btcec.PrivKeyFromScalar(&scalar))
		scalar.Zero()
	}

	return m, nil
}

// Len returns the number of held keys.
func (m *Manager) Len() int {
	return len(m.keys)
}

// PubKeys returns the compressed public keys of the held keys in the order
// they were given.
func (m *Manager) PubKeys() [][]byte {
	pubs := make([][]byte, len(m.keys))
	for i, priv := range m.keys {
		pubs[i] = priv.PubKey().SerializeCompressed()
	}

	return pubs
}

// ECDSA returns the key whose compressed or uncompressed public key is
// pubKey.
func (m *Manager) ECDSA(pubKey []byte) (*btcec.PrivateKey, error) {
	for _, priv := range m.keys {
		pub := priv.PubKey()
		if bytes.Equal(pub.SerializeCompressed(), pubKey) ||
			bytes.Equal(pub.SerializeUncompressed(), pubKey) {

			return priv, nil
		}
	}

	return nil, fmt.Errorf("%w: %x", ErrMissingKey, pubKey)
}

// Schnorr returns the key for a taproot signature by the given 32 or 33
// byte public key. With a tweak, pubKey is the internal key of a key-path
// spend and the returned key is tweaked with the commitment to the merkle
// root. The held keys are untweaked, a tweaked key is a new key the caller
// zeroes after use.
func (m *Manager) Schnorr(pubKey []byte,
	tweak fn.Option[txmodel.TaprootTweak]) (*btcec.PrivateKey, error) {

	want, err := script.ToXOnly(pubKey)
	if err != nil {
		return nil, err
	}

	for _, priv := range m.keys {
		internal := schnorr.SerializePubKey(priv.PubKey())
		if !bytes.Equal(internal, want[:]) {
			continue
		}

		signing := priv
		tweak.WhenSome(func(t txmodel.TaprootTweak) {
			signing = txscript.TweakTaprootPrivKey(*priv, t.MerkleRoot)
		})

		return signing, nil
	}

	return nil, fmt.Errorf("%w: %x", ErrMissingKey, pubKey)
}

// Zero overwrites every held key and empties the manager.
func (m *Manager) Zero() {
	for _, priv := range m.keys {
		priv.Zero()
	}

	m.keys = nil
}
