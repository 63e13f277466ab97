// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package decred

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/utxoengine/sighash"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/decred/dcrd/txscript/v4"
)

var (
	// ErrNotLegacy is returned for inputs that are not signed with the
	// legacy method. Decred has no segwit or taproot.
	ErrNotLegacy = fmt.Errorf("%w: decred supports legacy inputs only",
		utxoerr.ErrNotSupported)

	// ErrSingleOutOfRange is returned for SIGHASH_SINGLE on an input
	// without a matching output.
	ErrSingleOutOfRange = fmt.Errorf("%w: SIGHASH_SINGLE without a "+
		"matching output", utxoerr.ErrInvalidParams)

	// ErrSighashType is returned for a hash type that does not fit the
	// single byte Decred signatures carry.
	ErrSighashType = fmt.Errorf("%w: decred sighash type out of range",
		utxoerr.ErrInvalidParams)
)

// ChainSighash implements sighash.ChainSighasher. The digest is the
// BLAKE-256 of the hash type, the prefix hash and the witness signing
// hash, as computed by txscript.CalcSignatureHash.
func (t *Tx) ChainSighash(idx int,
	utxos []*txmodel.UtxoToSign) (chainhash.Hash, error) {

	if idx < 0 || idx >= len(t.txIn) || len(utxos) != len(t.txIn) {
		return chainhash.Hash{}, sighash.ErrInputIndex
	}

	utxo := utxos[idx]
	if utxo.Method != txmodel.Legacy {
		return chainhash.Hash{}, ErrNotLegacy
	}

	hashType := utxo.SighashType
	if hashType > 0xff {
		return chainhash.Hash{}, fmt.Errorf("%w: %#x", ErrSighashType,
			uint32(hashType))
	}

	if hashType.Base() == txmodel.SigHashSingle && idx >= len(t.txOut) {
		return chainhash.Hash{}, fmt.Errorf("%w: input %d",
			ErrSingleOutOfRange, idx)
	}

	digest, err := txscript.CalcSignatureHash(
		utxo.ScriptCode, txscript.SigHashType(hashType), t.MsgTx(), idx,
		nil,
	)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("%w: decred sighash: %v",
			utxoerr.ErrInvalidParams, err)
	}

	var hash chainhash.Hash
	copy(hash[:], digest)

	return hash, nil
}

// A compile time check to ensure Tx has its own sighash.
var _ sighash.ChainSighasher = (*Tx)(nil)
