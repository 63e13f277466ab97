// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chains

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
)

// checksumSize is the length of a base58 check suffix.
const checksumSize = 4

// addressCodec turns an address of a chain into the script it pays to.
type addressCodec interface {
	script(addr string) ([]byte, error)
}

// btcutilCodec decodes the address formats btcutil understands, configured
// by the chain's network parameters.
type btcutilCodec struct {
	net *chaincfg.Params
}

func (c btcutilCodec) script(addr string) ([]byte, error) {
	return script.FromAddress(addr, c.net)
}

// segwitCodec accepts bech32 and bech32m addresses only, for chains whose
// base58 checksum is not double SHA256.
type segwitCodec struct {
	net *chaincfg.Params
}

func (c segwitCodec) script(addr string) ([]byte, error) {
	hrp, _, _, err := bech32.DecodeGeneric(addr)
	if err != nil || hrp != c.net.Bech32HRPSegwit {
		return nil, fmt.Errorf("%w: %s: %s accepts segwit addresses "+
			"only", script.ErrInvalidAddress, addr, c.net.Name)
	}

	return script.FromAddress(addr, c.net)
}

// prefixCodec decodes base58 check addresses with two byte version prefixes
// and a chain specific checksum digest. A bech32m hrp, if set, is accepted
// for transparent pubkey hash addresses.
type prefixCodec struct {
	pubKeyHashID [2]byte
	scriptHashID [2]byte
	checksum     txmodel.Hasher
	texHRP       string
}

func (c prefixCodec) script(addr string) ([]byte, error) {
	if c.texHRP != "" {
		if pkScript, ok, err := c.texScript(addr); ok {
			return pkScript, err
		}
	}

	raw := base58.Decode(addr)
	if len(raw) != 2+script.HashSize+checksumSize {
		return nil, fmt.Errorf("%w: %s: bad length", script.ErrInvalidAddress,
			addr)
	}

	body, sum := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	digest := c.doubleHash(body)
	if !bytes.Equal(digest[:checksumSize], sum) {
		return nil, fmt.Errorf("%w: %s: bad checksum",
			script.ErrInvalidAddress, addr)
	}

	var (
		prefix = [2]byte{body[0], body[1]}
		hash   [script.HashSize]byte
	)
	copy(hash[:], body[2:])

	switch prefix {
	case c.pubKeyHashID:
		return script.P2PKH(hash), nil

	case c.scriptHashID:
		return script.P2SH(hash), nil

	default:
		return nil, fmt.Errorf("%w: %s: unknown prefix %x",
			script.ErrInvalidAddress, addr, prefix[:])
	}
}

// texScript decodes a transparent-source-only address: the bech32m
// encoding of a pubkey hash. The boolean reports whether addr has the
// expected hrp at all.
func (c prefixCodec) texScript(addr string) ([]byte, bool, error) {
	hrp, data, version, err := bech32.DecodeGeneric(addr)
	if err != nil || hrp != c.texHRP {
		return nil, false, nil
	}

	if version != bech32.VersionM {
		return nil, true, fmt.Errorf("%w: %s: not bech32m",
			script.ErrInvalidAddress, addr)
	}

	hash, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(hash) != script.HashSize {
		return nil, true, fmt.Errorf("%w: %s: bad payload",
			script.ErrInvalidAddress, addr)
	}

	return script.P2PKH(script.PubKeyHash(hash)), true, nil
}

// doubleHash returns the checksum digest of b.
func (c prefixCodec) doubleHash(b []byte) chainhash.Hash {
	first := c.checksum.Hash(b)
	if c.checksum == txmodel.Sha256d {
		return first
	}

	return c.checksum.Hash(first[:])
}

// encode returns the base58 check address of a hash under the prefix id.
func (c prefixCodec) encode(id [2]byte, hash [script.HashSize]byte) string {
	body := make([]byte, 0, 2+script.HashSize+checksumSize)
	body = append(body, id[:]...)
	body = append(body, hash[:]...)

	digest := c.doubleHash(body)

	return base58.Encode(append(body, digest[:checksumSize]...))
}
