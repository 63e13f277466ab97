// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/babylon"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/utxoerr"
)

// Output is a payment with a fixed amount.
type Output struct {
	Value btcutil.Amount

	// To is the recipient. This field is required.
	To Recipient
}

// Recipient builds the script an output pays to. It must be one of the
// Recipient implementations of this package.
type Recipient interface {
	// isRecipient is a marker method that seals the interface.
	isRecipient()

	// pkScript returns the output script.
	pkScript(r *resolver) ([]byte, error)
}

// resolveRecipient returns the checked output script of a recipient.
func (r *resolver) resolveRecipient(to Recipient) ([]byte, error) {
	if to == nil {
		return nil, ErrNoRecipient
	}

	pkScript, err := to.pkScript(r)
	if err != nil {
		return nil, err
	}

	if err := r.checkScript(pkScript); err != nil {
		return nil, err
	}

	return pkScript, nil
}

// resolveOutput returns the output paying Value to the recipient.
func (r *resolver) resolveOutput(out *Output) (*wire.TxOut, error) {
	if out.Value < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeAmount, out.Value)
	}

	pkScript, err := r.resolveRecipient(out.To)
	if err != nil {
		return nil, err
	}

	return wire.NewTxOut(int64(out.Value), pkScript), nil
}

// keyHash returns the chain hash of pubKey, or hash when pubKey is empty.
func (r *resolver) keyHash(pubKey []byte,
	hash script.PubKeyHash) (script.PubKeyHash, error) {

	if len(pubKey) == 0 {
		return hash, nil
	}

	if err := parseECDSAKey(pubKey); err != nil {
		return script.PubKeyHash{}, err
	}

	return r.chain.PubKeyHash(pubKey), nil
}

// ToP2PK pays to `<pubkey> OP_CHECKSIG`.
type ToP2PK struct {
	PubKey []byte
}

func (ToP2PK) isRecipient() {}

func (t ToP2PK) pkScript(*resolver) ([]byte, error) {
	return script.P2PK(t.PubKey)
}

// ToP2PKH pays to the hash of PubKey, or to Hash when PubKey is empty.
type ToP2PKH struct {
	PubKey []byte
	Hash   script.PubKeyHash
}

func (ToP2PKH) isRecipient() {}

func (t ToP2PKH) pkScript(r *resolver) ([]byte, error) {
	hash, err := r.keyHash(t.PubKey, t.Hash)
	if err != nil {
		return nil, err
	}

	return script.P2PKH(hash), nil
}

// ToP2WPKH pays to the witness key hash of PubKey, or to Hash when PubKey is
// empty.
type ToP2WPKH struct {
	PubKey []byte
	Hash   script.PubKeyHash
}

func (ToP2WPKH) isRecipient() {}

func (t ToP2WPKH) pkScript(r *resolver) ([]byte, error) {
	if len(t.PubKey) != 0 && len(t.PubKey) != btcec.PubKeyBytesLenCompressed {
		return nil, fmt.Errorf("%w: segwit key of %d bytes",
			script.ErrInvalidPubKey, len(t.PubKey))
	}

	hash, err := r.keyHash(t.PubKey, t.Hash)
	if err != nil {
		return nil, err
	}

	return script.P2WPKH(hash), nil
}

// ToP2SH pays to a redeem script hash.
type ToP2SH struct {
	Hash script.ScriptHash
}

func (ToP2SH) isRecipient() {}

func (t ToP2SH) pkScript(*resolver) ([]byte, error) {
	return script.P2SH(t.Hash), nil
}

// ToP2WSH pays to a witness script hash.
type ToP2WSH struct {
	Hash script.WitnessScriptHash
}

func (ToP2WSH) isRecipient() {}

func (t ToP2WSH) pkScript(*resolver) ([]byte, error) {
	return script.P2WSH(t.Hash), nil
}

// ToP2TRKeyPath pays to the BIP86 output key of PubKey.
type ToP2TRKeyPath struct {
	PubKey []byte
}

func (ToP2TRKeyPath) isRecipient() {}

func (t ToP2TRKeyPath) pkScript(*resolver) ([]byte, error) {
	return script.P2TRKeyPath(t.PubKey, nil)
}

// ToP2TRScriptPath pays to InternalKey tweaked with the root of a script
// tree.
type ToP2TRScriptPath struct {
	InternalKey []byte
	MerkleRoot  []byte
}

func (ToP2TRScriptPath) isRecipient() {}

func (t ToP2TRScriptPath) pkScript(*resolver) ([]byte, error) {
	if len(t.MerkleRoot) != chainhash.HashSize {
		return nil, fmt.Errorf("%w: merkle root of %d bytes",
			utxoerr.ErrInvalidParams, len(t.MerkleRoot))
	}

	return script.P2TRKeyPath(t.InternalKey, t.MerkleRoot)
}

// ToP2TRDangerousAssumeTweaked pays to OutputKey as is. The caller must
// have tweaked it, an untweaked key makes the output unspendable by BIP86
// wallets.
type ToP2TRDangerousAssumeTweaked struct {
	OutputKey script.XOnlyKey
}

func (ToP2TRDangerousAssumeTweaked) isRecipient() {}

func (t ToP2TRDangerousAssumeTweaked) pkScript(*resolver) ([]byte, error) {
	return script.P2TR(t.OutputKey), nil
}

// ToOpReturn is a data carrier output.
type ToOpReturn struct {
	Data []byte
}

func (ToOpReturn) isRecipient() {}

func (t ToOpReturn) pkScript(*resolver) ([]byte, error) {
	return script.OpReturn(t.Data)
}

// ToAddress pays to an address of the chain.
type ToAddress struct {
	Address string
}

func (ToAddress) isRecipient() {}

func (t ToAddress) pkScript(r *resolver) ([]byte, error) {
	return r.chain.AddressScript(t.Address)
}

// ToScript pays to a caller built script.
type ToScript struct {
	PkScript []byte
}

func (ToScript) isRecipient() {}

func (t ToScript) pkScript(*resolver) ([]byte, error) {
	if len(t.PkScript) == 0 {
		return nil, fmt.Errorf("%w: empty script",
			utxoerr.ErrInvalidParams)
	}

	return t.PkScript, nil
}

// ToBRC20Inscribe is the commit output of a BRC-20 transfer inscription.
// PubKey is the internal key and the key that signs the reveal.
type ToBRC20Inscribe struct {
	PubKey []byte
	Ticker string
	Amount string
}

func (ToBRC20Inscribe) isRecipient() {}

func (t ToBRC20Inscribe) pkScript(*resolver) ([]byte, error) {
	inscription, err := script.NewBRC20Transfer(
		t.PubKey, t.Ticker, t.Amount,
	)
	if err != nil {
		return nil, err
	}

	return inscription.PkScript, nil
}

// ToBabylonStaking is a Babylon staking output.
type ToBabylonStaking struct {
	Info *babylon.StakingInfo
}

func (ToBabylonStaking) isRecipient() {}

func (t ToBabylonStaking) pkScript(*resolver) ([]byte, error) {
	if t.Info == nil {
		return nil, babylon.ErrInvalidStakingInfo
	}

	spendInfo, err := babylon.NewStakingSpendInfo(t.Info)
	if err != nil {
		return nil, err
	}

	return spendInfo.PkScript(), nil
}

// ToBabylonUnbonding is a Babylon unbonding output. The staking time of
// Info is the unbonding time.
type ToBabylonUnbonding struct {
	Info *babylon.StakingInfo
}

func (ToBabylonUnbonding) isRecipient() {}

func (t ToBabylonUnbonding) pkScript(*resolver) ([]byte, error) {
	if t.Info == nil {
		return nil, babylon.ErrInvalidStakingInfo
	}

	spendInfo, err := babylon.NewUnbondingSpendInfo(t.Info)
	if err != nil {
		return nil, err
	}

	return spendInfo.PkScript(), nil
}

// ToBabylonOpReturn announces a delegation with the network Tag.
type ToBabylonOpReturn struct {
	Tag  []byte
	Info *babylon.StakingInfo
}

func (ToBabylonOpReturn) isRecipient() {}

func (t ToBabylonOpReturn) pkScript(*resolver) ([]byte, error) {
	if t.Info == nil {
		return nil, babylon.ErrInvalidStakingInfo
	}

	return babylon.OpReturnScript(t.Tag, t.Info)
}

// A compile time check to ensure the recipients implement Recipient.
var (
	_ Recipient = ToP2PK{}
	_ Recipient = ToP2PKH{}
	_ Recipient = ToP2WPKH{}
	_ Recipient = ToP2SH{}
	_ Recipient = ToP2WSH{}
	_ Recipient = ToP2TRKeyPath{}
	_ Recipient = ToP2TRScriptPath{}
	_ Recipient = ToP2TRDangerousAssumeTweaked{}
	_ Recipient = ToOpReturn{}
	_ Recipient = ToAddress{}
	_ Recipient = ToScript{}
	_ Recipient = ToBRC20Inscribe{}
	_ Recipient = ToBabylonStaking{}
	_ Recipient = ToBabylonUnbonding{}
	_ Recipient = ToBabylonOpReturn{}
)
