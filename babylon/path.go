// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package babylon

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/utxoerr"
)

var (
	// ErrSlashingNotSupported is returned for the slashing paths, which
	// are not signed by this engine.
	ErrSlashingNotSupported = fmt.Errorf("%w: babylon slashing path",
		utxoerr.ErrNotSupported)

	// ErrUnknownCovenant is returned for a signature by a key outside the
	// covenant committee.
	ErrUnknownCovenant = fmt.Errorf("%w: key is not a covenant member",
		utxoerr.ErrInvalidParams)

	// ErrCovenantQuorum is returned when fewer covenant signatures than
	// the quorum are given.
	ErrCovenantQuorum = fmt.Errorf("%w: covenant quorum not met",
		utxoerr.ErrInvalidParams)

	// ErrCovenantSignature is returned for a malformed covenant
	// signature.
	ErrCovenantSignature = fmt.Errorf("%w: invalid covenant signature",
		utxoerr.ErrInvalidParams)
)

// CovenantSignature is a signature by one member of the committee.
type CovenantSignature struct {
	PubKey    []byte
	Signature []byte
}

// Path is a script path spend of a staking or unbonding output by the
// staker.
type Path struct {
	// PkScript is the script of the spent output.
	PkScript []byte

	// LeafScript is the revealed script.
	LeafScript []byte

	// LeafHash is committed to by the signature.
	LeafHash chainhash.Hash

	// ControlBlock proves the leaf is in the output.
	ControlBlock []byte

	// Claimer places the staker signature into the witness.
	Claimer script.Claimer
}

// newPath returns the spend of a leaf of the given tree.
func newPath(info *SpendInfo, leaf Leaf,
	covenantSigs [][]byte) (*Path, error) {

	leafScript, err := info.LeafScript(leaf)
	if err != nil {
		return nil, err
	}

	leafHash, err := info.LeafHash(leaf)
	if err != nil {
		return nil, err
	}

	controlBlock, err := info.ControlBlock(leaf)
	if err != nil {
		return nil, err
	}

	return &Path{
		PkScript:     info.PkScript(),
		LeafScript:   leafScript,
		LeafHash:     leafHash,
		ControlBlock: controlBlock,
		Claimer: ScriptPathClaim{
			Signatures:   covenantSigs,
			LeafScript:   leafScript,
			ControlBlock: controlBlock,
		},
	}, nil
}

// StakingTimelockPath spends a staking output once its staking time passed.
// The input sequence must be at least the staking time.
func StakingTimelockPath(info *StakingInfo) (*Path, error) {
	spendInfo, err := NewStakingSpendInfo(info)
	if err != nil {
		return nil, err
	}

	return newPath(spendInfo, TimelockLeaf, nil)
}

// StakingUnbondingPath spends a staking output early with signatures by the
// covenant quorum over the unbonding transaction.
func StakingUnbondingPath(info *StakingInfo,
	sigs []CovenantSignature) (*Path, error) {

	ordered, err := orderCovenantSigs(info, sigs)
	if err != nil {
		return nil, err
	}

	spendInfo, err := NewStakingSpendInfo(info)
	if err != nil {
		return nil, err
	}

	return newPath(spendInfo, UnbondingLeaf, ordered)
}

// UnbondingTimelockPath spends an unbonding output once the unbonding time
// passed. The staking time of info is the unbonding time.
func UnbondingTimelockPath(info *StakingInfo) (*Path, error) {
	spendInfo, err := NewUnbondingSpendInfo(info)
	if err != nil {
		return nil, err
	}

	return newPath(spendInfo, TimelockLeaf, nil)
}

// StakingSlashingPath is not supported.
func StakingSlashingPath(*StakingInfo) (*Path, error) {
	return nil, ErrSlashingNotSupported
}

// UnbondingSlashingPath is not supported.
func UnbondingSlashingPath(*StakingInfo) (*Path, error) {
	return nil, ErrSlashingNotSupported
}

// orderCovenantSigs checks the covenant signatures against the committee
// and returns them in witness order. The multisig script checks the sorted
// keys first to last, so the signature for the first key is the last one
// pushed. Members that did not sign get an empty element.
func orderCovenantSigs(info *StakingInfo,
	sigs []CovenantSignature) ([][]byte, error) {

	members := make(map[script.XOnlyKey]struct{}, len(info.CovenantKeys))
	for _, key := range info.CovenantKeys {
		members[key] = struct{}{}
	}

	bySigner := make(map[script.XOnlyKey][]byte, len(sigs))
	for i, sig := range sigs {
		key, err := script.ToXOnly(sig.PubKey)
		if err != nil {
			return nil, fmt.Errorf("covenant signature %d: %w", i,
				err)
		}

		if _, ok := members[key]; !ok {
			return nil, fmt.Errorf("%w: %x", ErrUnknownCovenant, key[:])
		}

		if len(sig.Signature) != schnorr.SignatureSize {
			return nil, fmt.Errorf("%w: %d bytes by %x",
				ErrCovenantSignature, len(sig.Signature), key[:])
		}

		if _, ok := bySigner[key]; ok {
			return nil, fmt.Errorf("%w: %x", ErrDuplicateKey, key[:])
		}

		bySigner[key] = sig.Signature
	}

	ordered := make([][]byte, len(info.CovenantKeys))
	for i, key := range info.CovenantKeys {
		sig, ok := bySigner[key]
		if !ok {
			sig = []byte{}
		}

		ordered[len(ordered)-1-i] = sig
	}

	if len(sigs) < int(info.CovenantQuorum) {
		return nil, fmt.Errorf("%w: %d of %d", ErrCovenantQuorum,
			len(sigs), info.CovenantQuorum)
	}

	return ordered, nil
}

// ScriptPathClaim spends a staking leaf with the witness
// `[signatures..., staker sig, leaf script, control block]`.
type ScriptPathClaim struct {
	// Signatures are pushed below the staker signature, in witness
	// order.
	Signatures [][]byte

	LeafScript   []byte
	ControlBlock []byte
}

// Claim implements script.Claimer.
func (c ScriptPathClaim) Claim(sig []byte) (*script.Claim, error) {
	witness := make(wire.TxWitness, 0, len(c.Signatures)+3)
	witness = append(witness, c.Signatures...)
	witness = append(witness, sig, c.LeafScript, c.ControlBlock)

	return &script.Claim{Witness: witness}, nil
}

// A compile time check to ensure ScriptPathClaim implements script.Claimer.
var _ script.Claimer = ScriptPathClaim{}
