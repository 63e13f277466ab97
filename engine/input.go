// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/babylon"
	"github.com/btcsuite/utxoengine/chains"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Input is a UTXO offered to the transaction.
type Input struct {
	// OutPoint is the spent output.
	OutPoint wire.OutPoint

	// Value is the amount of the spent output.
	Value btcutil.Amount

	// Sequence is the input sequence. When None the input is final,
	// wire.MaxTxInSequenceNum.
	Sequence fn.Option[uint32]

	// SighashType is the raw sighash type. Zero selects SIGHASH_ALL, or
	// SIGHASH_DEFAULT for taproot inputs.
	SighashType uint32

	// Claim describes how the output is spent. This field is required.
	Claim Claim
}

// Claim describes the script an input spends and how it is unlocked. It
// must be one of the Claim implementations of this package.
type Claim interface {
	// isClaim is a marker method that seals the interface.
	isClaim()

	// resolve returns the signing data of the claim, without the amount
	// and sighash type.
	resolve(r *resolver) (*txmodel.UtxoToSign, error)
}

// resolver turns claims and recipients into scripts for one chain. The
// public keys are those the signer holds, used for claims that only commit
// to a key hash or a tweaked key.
type resolver struct {
	chain   *chains.Params
	pubKeys [][]byte
}

// pubKeyByHash returns the known key with the given chain pubkey hash.
func (r *resolver) pubKeyByHash(hash script.PubKeyHash) ([]byte, error) {
	for _, pub := range r.pubKeys {
		if r.chain.PubKeyHash(pub) == hash {
			return pub, nil
		}
	}

	return nil, fmt.Errorf("%w: key hash %x", ErrUnknownPubKey, hash[:])
}

// internalKeyByOutput returns the known key whose BIP86 output key is the
// given key.
func (r *resolver) internalKeyByOutput(outputKey []byte) ([]byte, error) {
	for _, pub := range r.pubKeys {
		internal, err := script.ParseTaprootKey(pub)
		if err != nil {
			continue
		}

		key := script.TaprootOutputKey(internal, nil)
		if bytes.Equal(key[:], outputKey) {
			return pub, nil
		}
	}

	return nil, fmt.Errorf("%w: taproot output key %x", ErrUnknownPubKey,
		outputKey)
}

// checkScript rejects witness programs the chain has not activated.
func (r *resolver) checkScript(pkScript []byte) error {
	class := script.Parse(pkScript).Class
	switch class {
	case script.WitnessV0PubKeyHashTy, script.WitnessV0ScriptHashTy:
		if !r.chain.Segwit {
			return fmt.Errorf("%w: %v on %s", ErrWitnessNotActive,
				class, r.chain.Name)
		}

	case script.WitnessV1TaprootTy:
		if !r.chain.Taproot {
			return fmt.Errorf("%w: %v on %s", ErrWitnessNotActive,
				class, r.chain.Name)
		}
	}

	return nil
}

// resolveInput returns the unsigned input and its signing data.
func (r *resolver) resolveInput(in *Input) (txmodel.Input, error) {
	if in.Claim == nil {
		return txmodel.Input{}, ErrNoClaim
	}

	if in.Value < 0 {
		return txmodel.Input{}, fmt.Errorf("%w: %v", ErrNegativeAmount,
			in.Value)
	}

	utxo, err := in.Claim.resolve(r)
	if err != nil {
		return txmodel.Input{}, err
	}

	if err := r.checkScript(utxo.PrevOutScript); err != nil {
		return txmodel.Input{}, err
	}

	hashType, err := txmodel.NormalizeSighashType(
		in.SighashType, utxo.Method,
	)
	if err != nil {
		return txmodel.Input{}, err
	}
	if r.chain.ForkID && !utxo.Method.IsTaproot() {
		hashType |= txmodel.SigHashForkID
	}

	utxo.Amount = int64(in.Value)
	utxo.SighashType = hashType
	utxo.TxHasher = r.chain.TxHasher

	txIn := wire.NewTxIn(&in.OutPoint, nil, nil)
	txIn.Sequence = in.Sequence.UnwrapOr(wire.MaxTxInSequenceNum)

	return txmodel.Input{TxIn: txIn, Utxo: utxo}, nil
}

// parseECDSAKey checks a serialized secp256k1 public key.
func parseECDSAKey(pubKey []byte) error {
	if _, err := btcec.ParsePubKey(pubKey); err != nil {
		return fmt.Errorf("%w: %w", script.ErrInvalidPubKey, err)
	}

	return nil
}

// ClaimP2PK spends `<pubkey> OP_CHECKSIG`.
type ClaimP2PK struct {
	PubKey []byte
}

func (ClaimP2PK) isClaim() {}

func (c ClaimP2PK) resolve(*resolver) (*txmodel.UtxoToSign, error) {
	pkScript, err := script.P2PK(c.PubKey)
	if err != nil {
		return nil, err
	}

	return &txmodel.UtxoToSign{
		PrevOutScript: pkScript,
		ScriptCode:    pkScript,
		Method:        txmodel.Legacy,
		SpenderPubKey: c.PubKey,
		Claimer:       script.P2PKClaim{},
	}, nil
}

// ClaimP2PKH spends a P2PKH output. When PubKey is empty the key is looked
// up among the signer's keys by Hash.
type ClaimP2PKH struct {
	PubKey []byte
	Hash   script.PubKeyHash
}

func (ClaimP2PKH) isClaim() {}

func (c ClaimP2PKH) resolve(r *resolver) (*txmodel.UtxoToSign, error) {
	pub := c.PubKey
	if len(pub) == 0 {
		var err error
		if pub, err = r.pubKeyByHash(c.Hash); err != nil {
			return nil, err
		}
	}

	if err := parseECDSAKey(pub); err != nil {
		return nil, err
	}

	pkScript := script.P2PKH(r.chain.PubKeyHash(pub))

	return &txmodel.UtxoToSign{
		PrevOutScript: pkScript,
		ScriptCode:    pkScript,
		Method:        txmodel.Legacy,
		SpenderPubKey: pub,
		Claimer:       script.P2PKHClaim{PubKey: pub},
	}, nil
}

// ClaimP2WPKH spends a P2WPKH output. When PubKey is empty the key is
// looked up among the signer's keys by Hash.
type ClaimP2WPKH struct {
	PubKey []byte
	Hash   script.PubKeyHash
}

func (ClaimP2WPKH) isClaim() {}

func (c ClaimP2WPKH) resolve(r *resolver) (*txmodel.UtxoToSign, error) {
	pub := c.PubKey
	if len(pub) == 0 {
		var err error
		if pub, err = r.pubKeyByHash(c.Hash); err != nil {
			return nil, err
		}
	}

	if len(pub) != btcec.PubKeyBytesLenCompressed {
		return nil, fmt.Errorf("%w: segwit key of %d bytes",
			script.ErrInvalidPubKey, len(pub))
	}
	if err := parseECDSAKey(pub); err != nil {
		return nil, err
	}

	hash := r.chain.PubKeyHash(pub)

	// BIP143 signs the P2PKH form of the key hash.
	return &txmodel.UtxoToSign{
		PrevOutScript: script.P2WPKH(hash),
		ScriptCode:    script.P2PKH(hash),
		Method:        txmodel.Segwit,
		SpenderPubKey: pub,
		Claimer:       script.P2WPKHClaim{PubKey: pub},
	}, nil
}

// ClaimP2TRKeyPath spends a P2TR output through the key path. The output
// commits to PubKey and MerkleRoot, which is empty for BIP86 outputs.
type ClaimP2TRKeyPath struct {
	PubKey     []byte
	MerkleRoot []byte
}

func (ClaimP2TRKeyPath) isClaim() {}

func (c ClaimP2TRKeyPath) resolve(*resolver) (*txmodel.UtxoToSign, error) {
	if len(c.MerkleRoot) != 0 && len(c.MerkleRoot) != chainhash.HashSize {
		return nil, fmt.Errorf("%w: merkle root of %d bytes",
			utxoerr.ErrInvalidParams, len(c.MerkleRoot))
	}

	pkScript, err := script.P2TRKeyPath(c.PubKey, c.MerkleRoot)
	if err != nil {
		return nil, err
	}

	return &txmodel.UtxoToSign{
		PrevOutScript: pkScript,
		Method:        txmodel.TaprootKeyPath,
		SpenderPubKey: c.PubKey,
		TaprootTweak: fn.Some(txmodel.TaprootTweak{
			MerkleRoot: c.MerkleRoot,
		}),
		Claimer: script.TaprootKeyPathClaim{},
	}, nil
}

// ClaimP2TRScriptPath spends a single signature leaf of a P2TR output. The
// spent output is derived from the control block.
type ClaimP2TRScriptPath struct {
	PubKey       []byte
	LeafScript   []byte
	ControlBlock []byte
}

func (ClaimP2TRScriptPath) isClaim() {}

func (c ClaimP2TRScriptPath) resolve(*resolver) (*txmodel.UtxoToSign,
	error) {

	if _, err := script.ParseTaprootKey(c.PubKey); err != nil {
		return nil, err
	}

	block, err := txscript.ParseControlBlock(c.ControlBlock)
	if err != nil {
		return nil, fmt.Errorf("%w: control block: %w",
			utxoerr.ErrInvalidParams, err)
	}

	root := block.RootHash(c.LeafScript)
	outputKey := script.TaprootOutputKey(block.InternalKey, root)

	err = txscript.VerifyTaprootLeafCommitment(
		block, outputKey[:], c.LeafScript,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: control block: %w",
			utxoerr.ErrInvalidParams, err)
	}

	leaf := txscript.NewTapLeaf(block.LeafVersion, c.LeafScript)

	return &txmodel.UtxoToSign{
		PrevOutScript: script.P2TR(outputKey),
		Method:        txmodel.TaprootScriptPath,
		SpenderPubKey: c.PubKey,
		LeafHash:      fn.Some(leaf.TapHash()),
		Claimer: script.TaprootScriptPathClaim{
			LeafScript:   c.LeafScript,
			ControlBlock: c.ControlBlock,
		},
	}, nil
}

// ClaimBRC20Inscription reveals a BRC-20 transfer inscription by spending
// the commit output of ToBRC20Inscribe with the same fields.
type ClaimBRC20Inscription struct {
	PubKey []byte
	Ticker string
	Amount string
}

func (ClaimBRC20Inscription) isClaim() {}

func (c ClaimBRC20Inscription) resolve(*resolver) (*txmodel.UtxoToSign,
	error) {

	inscription, err := script.NewBRC20Transfer(
		c.PubKey, c.Ticker, c.Amount,
	)
	if err != nil {
		return nil, err
	}

	return &txmodel.UtxoToSign{
		PrevOutScript: inscription.PkScript,
		Method:        txmodel.TaprootScriptPath,
		SpenderPubKey: c.PubKey,
		LeafHash:      fn.Some(inscription.LeafHash),
		Claimer:       inscription.Claimer(),
	}, nil
}

// ClaimScript spends an output given by its script. P2PK, P2PKH, P2WPKH and
// BIP86 P2TR scripts are supported, the key of the hash and taproot
// templates must be one of the signer's keys.
type ClaimScript struct {
	PkScript []byte
}

func (ClaimScript) isClaim() {}

func (c ClaimScript) resolve(r *resolver) (*txmodel.UtxoToSign, error) {
	std := script.Parse(c.PkScript)

	var claim Claim
	switch std.Class {
	case script.PubKeyTy:
		claim = ClaimP2PK{PubKey: std.Data}

	case script.PubKeyHashTy:
		var hash script.PubKeyHash
		copy(hash[:], std.Data)
		claim = ClaimP2PKH{Hash: hash}

	case script.WitnessV0PubKeyHashTy:
		var hash script.PubKeyHash
		copy(hash[:], std.Data)
		claim = ClaimP2WPKH{Hash: hash}

	case script.WitnessV1TaprootTy:
		internal, err := r.internalKeyByOutput(std.Data)
		if err != nil {
			return nil, err
		}
		claim = ClaimP2TRKeyPath{PubKey: internal}

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedScript, std.Class)
	}

	return claim.resolve(r)
}

// ClaimAddress spends an output paying to an address of the chain. It is
// resolved like ClaimScript.
type ClaimAddress struct {
	Address string
}

func (ClaimAddress) isClaim() {}

func (c ClaimAddress) resolve(r *resolver) (*txmodel.UtxoToSign, error) {
	pkScript, err := r.chain.AddressScript(c.Address)
	if err != nil {
		return nil, err
	}

	return ClaimScript{PkScript: pkScript}.resolve(r)
}

// babylonUtxo returns the signing data of a staker spend.
func babylonUtxo(path *babylon.Path,
	info *babylon.StakingInfo) *txmodel.UtxoToSign {

	return &txmodel.UtxoToSign{
		PrevOutScript: path.PkScript,
		Method:        txmodel.TaprootScriptPath,
		SpenderPubKey: bytes.Clone(info.StakerKey[:]),
		LeafHash:      fn.Some(path.LeafHash),
		Claimer:       path.Claimer,
	}
}

// ClaimBabylonStakingTimelock withdraws a staking output once the staking
// time passed. The input sequence must be at least the staking time.
type ClaimBabylonStakingTimelock struct {
	Info *babylon.StakingInfo
}

func (ClaimBabylonStakingTimelock) isClaim() {}

func (c ClaimBabylonStakingTimelock) resolve(*resolver) (*txmodel.UtxoToSign,
	error) {

	if c.Info == nil {
		return nil, babylon.ErrInvalidStakingInfo
	}

	path, err := babylon.StakingTimelockPath(c.Info)
	if err != nil {
		return nil, err
	}

	return babylonUtxo(path, c.Info), nil
}

// ClaimBabylonStakingUnbonding spends a staking output into an unbonding
// output with the covenant signatures.
type ClaimBabylonStakingUnbonding struct {
	Info               *babylon.StakingInfo
	CovenantSignatures []babylon.CovenantSignature
}

func (ClaimBabylonStakingUnbonding) isClaim() {}

func (c ClaimBabylonStakingUnbonding) resolve(*resolver) (*txmodel.UtxoToSign,
	error) {

	if c.Info == nil {
		return nil, babylon.ErrInvalidStakingInfo
	}

	path, err := babylon.StakingUnbondingPath(c.Info, c.CovenantSignatures)
	if err != nil {
		return nil, err
	}

	return babylonUtxo(path, c.Info), nil
}

// ClaimBabylonUnbondingTimelock withdraws an unbonding output once the
// unbonding time passed. The staking time of Info is the unbonding time.
type ClaimBabylonUnbondingTimelock struct {
	Info *babylon.StakingInfo
}

func (ClaimBabylonUnbondingTimelock) isClaim() {}

func (c ClaimBabylonUnbondingTimelock) resolve(*resolver) (*txmodel.UtxoToSign,
	error) {

	if c.Info == nil {
		return nil, babylon.ErrInvalidStakingInfo
	}

	path, err := babylon.UnbondingTimelockPath(c.Info)
	if err != nil {
		return nil, err
	}

	return babylonUtxo(path, c.Info), nil
}

// ClaimBabylonSlashing is the slashing path of a staking or unbonding
// output. It is not supported.
type ClaimBabylonSlashing struct {
	Info      *babylon.StakingInfo
	Unbonding bool
}

func (ClaimBabylonSlashing) isClaim() {}

func (c ClaimBabylonSlashing) resolve(*resolver) (*txmodel.UtxoToSign,
	error) {

	var err error
	if c.Unbonding {
		_, err = babylon.UnbondingSlashingPath(c.Info)
	} else {
		_, err = babylon.StakingSlashingPath(c.Info)
	}

	return nil, err
}

// A compile time check to ensure the claims implement Claim.
var (
	_ Claim = ClaimP2PK{}
	_ Claim = ClaimP2PKH{}
	_ Claim = ClaimP2WPKH{}
	_ Claim = ClaimP2TRKeyPath{}
	_ Claim = ClaimP2TRScriptPath{}
	_ Claim = ClaimBRC20Inscription{}
	_ Claim = ClaimScript{}
	_ Claim = ClaimAddress{}
	_ Claim = ClaimBabylonStakingTimelock{}
	_ Claim = ClaimBabylonStakingUnbonding{}
	_ Claim = ClaimBabylonUnbondingTimelock{}
	_ Claim = ClaimBabylonSlashing{}
)
