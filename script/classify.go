// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Class is the standard template a script matches.
type Class uint8

const (
	// Unknown is any script that matches no template below.
	Unknown Class = iota

	// PubKeyTy is `<pubkey> OP_CHECKSIG`.
	PubKeyTy

	// PubKeyHashTy is `OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG`.
	PubKeyHashTy

	// ScriptHashTy is `OP_HASH160 <20> OP_EQUAL`.
	ScriptHashTy

	// WitnessV0PubKeyHashTy is `OP_0 <20>`.
	WitnessV0PubKeyHashTy

	// WitnessV0ScriptHashTy is `OP_0 <32>`.
	WitnessV0ScriptHashTy

	// WitnessV1TaprootTy is `OP_1 <32>`.
	WitnessV1TaprootTy

	// NullDataTy is any script starting with OP_RETURN.
	NullDataTy
)

// String returns the name of the class.
func (c Class) String() string {
	switch c {
	case PubKeyTy:
		return "p2pk"
	case PubKeyHashTy:
		return "p2pkh"
	case ScriptHashTy:
		return "p2sh"
	case WitnessV0PubKeyHashTy:
		return "p2wpkh"
	case WitnessV0ScriptHashTy:
		return "p2wsh"
	case WitnessV1TaprootTy:
		return "p2tr"
	case NullDataTy:
		return "op_return"
	default:
		return "unknown"
	}
}

// Standard is the result of matching a script against the standard
// templates. Data holds the template payload: the public key for PubKeyTy,
// the hash or witness program for the hash based templates, the x-only
// output key for WitnessV1TaprootTy and nil otherwise.
type Standard struct {
	Class Class
	Data  []byte
}

// Parse matches the script against the standard templates. It never fails,
// scripts that match nothing are reported as Unknown.
func Parse(s []byte) Standard {
	switch {
	case isP2PKH(s):
		return Standard{Class: PubKeyHashTy, Data: s[3:23]}

	case isP2SH(s):
		return Standard{Class: ScriptHashTy, Data: s[2:22]}

	case isWitnessProgram(s, txscript.OP_0, HashSize):
		return Standard{Class: WitnessV0PubKeyHashTy, Data: s[2:]}

	case isWitnessProgram(s, txscript.OP_0, WitnessScriptHashSize):
		return Standard{Class: WitnessV0ScriptHashTy, Data: s[2:]}

	case isWitnessProgram(s, txscript.OP_1, XOnlyKeySize):
		return Standard{Class: WitnessV1TaprootTy, Data: s[2:]}

	case len(s) > 0 && s[0] == txscript.OP_RETURN:
		return Standard{Class: NullDataTy}
	}

	if pub, ok := p2pkKey(s); ok {
		return Standard{Class: PubKeyTy, Data: pub}
	}

	return Standard{Class: Unknown}
}

// IsOpReturn returns true if the script is a provably unspendable data
// carrier.
func IsOpReturn(s []byte) bool {
	return len(s) > 0 && s[0] == txscript.OP_RETURN
}

func isP2PKH(s []byte) bool {
	return len(s) == 25 &&
		s[0] == txscript.OP_DUP &&
		s[1] == txscript.OP_HASH160 &&
		s[2] == txscript.OP_DATA_20 &&
		s[23] == txscript.OP_EQUALVERIFY &&
		s[24] == txscript.OP_CHECKSIG
}

func isP2SH(s []byte) bool {
	return len(s) == 23 &&
		s[0] == txscript.OP_HASH160 &&
		s[1] == txscript.OP_DATA_20 &&
		s[22] == txscript.OP_EQUAL
}

func isWitnessProgram(s []byte, version byte, size int) bool {
	return len(s) == size+2 && s[0] == version && int(s[1]) == size
}

// p2pkKey returns the key of a `<pubkey> OP_CHECKSIG` script when the key
// is a valid compressed or uncompressed secp256k1 point.
func p2pkKey(s []byte) ([]byte, bool) {
	switch len(s) {
	case secp256k1.PubKeyBytesLenCompressed + 2,
		secp256k1.PubKeyBytesLenUncompressed + 2:

	default:
		return nil, false
	}

	if int(s[0]) != len(s)-2 || s[len(s)-1] != txscript.OP_CHECKSIG {
		return nil, false
	}

	pub := s[1 : len(s)-1]
	if _, err := btcec.ParsePubKey(pub); err != nil {
		return nil, false
	}

	return pub, true
}
