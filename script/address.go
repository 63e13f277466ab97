// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/utxoerr"
)

// ErrInvalidAddress is returned when an address does not decode for the
// requested network.
var ErrInvalidAddress = fmt.Errorf("%w: invalid address",
	utxoerr.ErrInvalidParams)

// FromAddress decodes a base58 or bech32/bech32m address for the given
// network and returns the script it pays to.
func FromAddress(addr string, params *chaincfg.Params) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, addr, err)
	}

	if !decoded.IsForNet(params) {
		return nil, fmt.Errorf("%w: %s is not for %s", ErrInvalidAddress,
			addr, params.Name)
	}

	pkScript, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, addr, err)
	}

	return pkScript, nil
}
