// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sighash computes the digest each input's signature commits to.
// The algorithm is chosen by the input's signing method, never by chain:
// chains with their own digest implement ChainSighasher on their
// transaction type.
package sighash

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrInputIndex is returned for an input index outside the
	// transaction.
	ErrInputIndex = fmt.Errorf("%w: input index out of range",
		utxoerr.ErrInternal)

	// ErrMissingLeafHash is returned for a script-path input without a
	// leaf hash.
	ErrMissingLeafHash = fmt.Errorf("%w: script path input without leaf "+
		"hash", utxoerr.ErrInvalidParams)

	// ErrUnknownMethod is returned for a signing method this package does
	// not implement.
	ErrUnknownMethod = fmt.Errorf("%w: unknown signing method",
		utxoerr.ErrInvalidParams)
)

// ChainSighasher is implemented by transactions whose chain replaces the
// legacy and segwit digests with its own algorithm.
type ChainSighasher interface {
	// ChainSighash returns the digest for the input at idx. The utxos
	// are aligned with the transaction inputs.
	ChainSighash(idx int, utxos []*txmodel.UtxoToSign) (chainhash.Hash,
		error)
}

// UtxoSighash is the digest of one input together with what the signer
// needs to produce a signature over it.
type UtxoSighash struct {
	// Index is the input index.
	Index int

	// Hash is the digest to sign.
	Hash chainhash.Hash

	// Method is the input's signing method.
	Method txmodel.SigningMethod

	// SighashType is appended to the serialized signature.
	SighashType txmodel.SighashType

	// SpenderPubKey is the key expected to sign.
	SpenderPubKey []byte

	// TaprootTweak is set for key-path spends.
	TaprootTweak fn.Option[txmodel.TaprootTweak]
}

// Compute returns the digest of every input in input order.
func Compute(tx txmodel.Tx, utxos []*txmodel.UtxoToSign) ([]*UtxoSighash,
	error) {

	if len(tx.Inputs()) != len(utxos) {
		return nil, fmt.Errorf("%w: %d inputs, %d utxos",
			txmodel.ErrInputCountMismatch, len(tx.Inputs()), len(utxos))
	}

	// The taproot digest shares the per-transaction hashes between
	// inputs, computed on first use.
	var cache *taprootHashes

	sighashes := make([]*UtxoSighash, len(utxos))
	for i, utxo := range utxos {
		var (
			hash chainhash.Hash
			err  error
		)

		switch {
		case isChainSpecific(tx):
			hash, err = tx.(ChainSighasher).ChainSighash(i, utxos)

		case utxo.Method.IsTaproot():
			if cache == nil {
				cache = newTaprootHashes(tx, utxos)
			}
			hash, err = taprootDigest(tx, i, utxo, cache)

		case utxo.Method == txmodel.Segwit || utxo.SighashType.ForkID():
			hash, err = WitnessV0(tx, i, utxo)

		case utxo.Method == txmodel.Legacy:
			hash, err = Legacy(tx, i, utxo)

		default:
			err = fmt.Errorf("%w: %v", ErrUnknownMethod, utxo.Method)
		}
		if err != nil {
			return nil, fmt.Errorf("sighash of input %d: %w", i, err)
		}

		log.Tracef("Input %d: %v sighash %x (type %#x)", i, utxo.Method,
			hash[:], uint32(utxo.SighashType))

		sighashes[i] = &UtxoSighash{
			Index:         i,
			Hash:          hash,
			Method:        utxo.Method,
			SighashType:   utxo.SighashType,
			SpenderPubKey: utxo.SpenderPubKey,
			TaprootTweak:  utxo.TaprootTweak,
		}
	}

	return sighashes, nil
}

// ComputeUnsigned returns the digests of an unsigned transaction.
func ComputeUnsigned(u *txmodel.UnsignedTx) ([]*UtxoSighash, error) {
	return Compute(u.Tx(), u.Utxos())
}

func isChainSpecific(tx txmodel.Tx) bool {
	_, ok := tx.(ChainSighasher)
	return ok
}

func checkIndex(tx txmodel.Tx, idx int) error {
	if idx < 0 || idx >= len(tx.Inputs()) {
		return fmt.Errorf("%w: %d of %d", ErrInputIndex, idx,
			len(tx.Inputs()))
	}

	return nil
}
