// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chains holds the parameters that make the shared transaction
// engine produce transactions for a particular Bitcoin family chain.
package chains

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/chains/decred"
	"github.com/btcsuite/utxoengine/chains/zcash"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

const (
	// DefaultTxVersion is the version of Bitcoin family transactions.
	DefaultTxVersion = 2

	// ZcashNU6BranchID is the consensus branch id of the NU6 upgrade.
	ZcashNU6BranchID uint32 = 0xc8e71055
)

var (
	// ErrUnknownChain is returned by ByName for an unregistered chain.
	ErrUnknownChain = fmt.Errorf("%w: unknown chain", utxoerr.ErrInvalidParams)

	// ErrUnsupportedTxVersion is returned when a chain cannot build a
	// transaction of the requested version.
	ErrUnsupportedTxVersion = fmt.Errorf("%w: unsupported transaction "+
		"version", utxoerr.ErrNotSupported)
)

// TxArgs are the header fields of a new transaction. Fields a chain does
// not have are ignored, zero values select the chain default.
type TxArgs struct {
	Version      int32
	LockTime     uint32
	ExpiryHeight uint32
	BranchID     uint32
}

// Params describes a chain.
type Params struct {
	// Name identifies the chain.
	Name string

	// Net holds the address prefixes of chains whose addresses btcutil
	// decodes. It is nil for Zcash, Komodo and Decred.
	Net *chaincfg.Params

	// TxHasher computes txids and finalizes the legacy and BIP143
	// sighash.
	TxHasher txmodel.Hasher

	// ForkID makes every input sign the BIP143 digest with the fork id
	// flag set.
	ForkID bool

	// Segwit allows P2WPKH and P2WSH scripts.
	Segwit bool

	// Taproot allows P2TR scripts.
	Taproot bool

	pubKeyHash func(pubKey []byte) script.PubKeyHash
	newTx      func(args TxArgs) (txmodel.Tx, error)
	addresses  addressCodec
}

// PubKeyHash returns the chain's hash of a serialized public key as used by
// P2PKH and P2WPKH scripts.
func (p *Params) PubKeyHash(pubKey []byte) script.PubKeyHash {
	return p.pubKeyHash(pubKey)
}

// NewTx creates an empty transaction of the chain.
func (p *Params) NewTx(args TxArgs) (txmodel.Tx, error) {
	return p.newTx(args)
}

// AddressScript decodes an address of the chain and returns the script it
// pays to.
func (p *Params) AddressScript(addr string) ([]byte, error) {
	pkScript, err := p.addresses.script(addr)
	if err != nil {
		return nil, err
	}

	// Witness programs are only valid where the chain activated them.
	class := script.Parse(pkScript).Class
	switch class {
	case script.WitnessV0PubKeyHashTy, script.WitnessV0ScriptHashTy:
		if !p.Segwit {
			return nil, fmt.Errorf("%w: %s has no segwit",
				script.ErrInvalidAddress, p.Name)
		}

	case script.WitnessV1TaprootTy:
		if !p.Taproot {
			return nil, fmt.Errorf("%w: %s has no taproot",
				script.ErrInvalidAddress, p.Name)
		}
	}

	return pkScript, nil
}

// newStdTx returns the factory of Bitcoin format transactions.
func newStdTx(hasher txmodel.Hasher) func(TxArgs) (txmodel.Tx, error) {
	return func(args TxArgs) (txmodel.Tx, error) {
		version := args.Version
		if version == 0 {
			version = DefaultTxVersion
		}

		return txmodel.NewStdTx(version, args.LockTime, hasher), nil
	}
}

func newSaplingTx(args TxArgs) (txmodel.Tx, error) {
	if args.Version != 0 && args.Version != zcash.SaplingVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTxVersion,
			args.Version)
	}

	branchID := args.BranchID
	if branchID == 0 {
		branchID = zcash.SaplingBranchID
	}

	return zcash.NewTx(args.LockTime, args.ExpiryHeight, branchID), nil
}

func newDecredTx(args TxArgs) (txmodel.Tx, error) {
	if args.Version != 0 && args.Version != int32(decred.TxVersion) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTxVersion,
			args.Version)
	}

	return decred.NewTx(args.LockTime, args.ExpiryHeight), nil
}

// decredPubKeyHash is RIPEMD-160 over BLAKE-256.
func decredPubKeyHash(pubKey []byte) script.PubKeyHash {
	digest := txmodel.Blake256.Hash(pubKey)

	h := ripemd160.New()
	h.Write(digest[:])

	var hash script.PubKeyHash
	copy(hash[:], h.Sum(nil))

	return hash
}

// altNet derives the network parameters of a Bitcoin fork from mainnet.
func altNet(name string, magic wire.BitcoinNet, pubKeyHashID,
	scriptHashID byte, hrp string) *chaincfg.Params {

	net := chaincfg.MainNetParams
	net.Name = name
	net.Net = magic
	net.PubKeyHashAddrID = pubKeyHashID
	net.ScriptHashAddrID = scriptHashID
	net.Bech32HRPSegwit = hrp

	return &net
}

var (
	litecoinNet = altNet("litecoin", 0xdbb6c0fb, 0x30, 0x32, "ltc")

	groestlcoinNet = altNet("groestlcoin", 0xd4b4bef9, 0x24, 0x05, "grs")

	dogecoinNet = altNet("dogecoin", 0xc0c0c0c0, 0x1e, 0x16, "")

	bitcoinCashNet = altNet("bitcoincash", 0xe8f3e1e3, 0x00, 0x05, "")
)

func init() {
	// Segwit addresses are only recognized for registered prefixes.
	for _, net := range []*chaincfg.Params{litecoinNet, groestlcoinNet} {
		if err := chaincfg.Register(net); err != nil {
			panic(fmt.Sprintf("failed to register %s: %v", net.Name,
				err))
		}
	}
}

var (
	// Bitcoin is the Bitcoin main network.
	Bitcoin = &Params{
		Name:       "bitcoin",
		Net:        &chaincfg.MainNetParams,
		TxHasher:   txmodel.Sha256d,
		Segwit:     true,
		Taproot:    true,
		pubKeyHash: script.Hash160,
		newTx:      newStdTx(txmodel.Sha256d),
		addresses:  btcutilCodec{net: &chaincfg.MainNetParams},
	}

	// BitcoinTestnet is the Bitcoin test network.
	BitcoinTestnet = &Params{
		Name:       "bitcoin-testnet",
		Net:        &chaincfg.TestNet3Params,
		TxHasher:   txmodel.Sha256d,
		Segwit:     true,
		Taproot:    true,
		pubKeyHash: script.Hash160,
		newTx:      newStdTx(txmodel.Sha256d),
		addresses:  btcutilCodec{net: &chaincfg.TestNet3Params},
	}

	// Litecoin is the Litecoin main network.
	Litecoin = &Params{
		Name:       "litecoin",
		Net:        litecoinNet,
		TxHasher:   txmodel.Sha256d,
		Segwit:     true,
		pubKeyHash: script.Hash160,
		newTx:      newStdTx(txmodel.Sha256d),
		addresses:  btcutilCodec{net: litecoinNet},
	}

	// Dogecoin is the Dogecoin main network.
	Dogecoin = &Params{
		Name:       "dogecoin",
		Net:        dogecoinNet,
		TxHasher:   txmodel.Sha256d,
		pubKeyHash: script.Hash160,
		newTx:      newStdTx(txmodel.Sha256d),
		addresses:  btcutilCodec{net: dogecoinNet},
	}

	// BitcoinCash is the Bitcoin Cash main network. Only legacy
	// addresses are decoded.
	BitcoinCash = &Params{
		Name:       "bitcoincash",
		Net:        bitcoinCashNet,
		TxHasher:   txmodel.Sha256d,
		ForkID:     true,
		pubKeyHash: script.Hash160,
		newTx:      newStdTx(txmodel.Sha256d),
		addresses:  btcutilCodec{net: bitcoinCashNet},
	}

	// Groestlcoin is the Groestlcoin main network. Its txids and
	// sighashes use a single SHA256.
	Groestlcoin = &Params{
		Name:       "groestlcoin",
		Net:        groestlcoinNet,
		TxHasher:   txmodel.Sha256,
		Segwit:     true,
		pubKeyHash: script.Hash160,
		newTx:      newStdTx(txmodel.Sha256),
		addresses:  segwitCodec{net: groestlcoinNet},
	}

	// Zcash is the Zcash main network, transparent addresses only.
	Zcash = &Params{
		Name:       "zcash",
		TxHasher:   txmodel.Sha256d,
		pubKeyHash: script.Hash160,
		newTx:      newSaplingTx,
		addresses: prefixCodec{
			pubKeyHashID: [2]byte{0x1c, 0xb8},
			scriptHashID: [2]byte{0x1c, 0xbd},
			checksum:     txmodel.Sha256d,
			texHRP:       "tex",
		},
	}

	// Komodo shares the Sapling transaction format with Zcash.
	Komodo = &Params{
		Name:       "komodo",
		TxHasher:   txmodel.Sha256d,
		pubKeyHash: script.Hash160,
		newTx:      newSaplingTx,
		addresses: btcutilCodec{
			net: altNet("komodo", 0x8de4eef9, 0x3c, 0x55, ""),
		},
	}

	// Decred is the Decred main network.
	Decred = &Params{
		Name:       "decred",
		TxHasher:   txmodel.Blake256,
		pubKeyHash: decredPubKeyHash,
		newTx:      newDecredTx,
		addresses: prefixCodec{
			pubKeyHashID: [2]byte{0x07, 0x3f},
			scriptHashID: [2]byte{0x07, 0x1a},
			checksum:     txmodel.Blake256,
		},
	}
)

var registry = map[string]*Params{
	Bitcoin.Name:        Bitcoin,
	BitcoinTestnet.Name: BitcoinTestnet,
	Litecoin.Name:       Litecoin,
	Dogecoin.Name:       Dogecoin,
	BitcoinCash.Name:    BitcoinCash,
	Groestlcoin.Name:    Groestlcoin,
	Zcash.Name:          Zcash,
	Komodo.Name:         Komodo,
	Decred.Name:         Decred,
}

// ByName returns the parameters of the named chain.
func ByName(name string) (*Params, error) {
	params, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChain, name)
	}

	return params, nil
}

// Names returns the names of all chains in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
