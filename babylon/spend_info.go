// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package babylon

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/utxoerr"
)

// unspendableKeyHex is the x coordinate of the BIP341 NUMS point H, the
// internal key of every staking output.
const unspendableKeyHex = "50929b74c1a04954b78b4b6035e97a5e078a5a0f28ec" +
	"96d547bfee9ace803ac0"

var (
	unspendableOnce sync.Once
	unspendableKey  *btcec.PublicKey
)

// UnspendableKey returns the internal key with no known discrete log, which
// disables the key path of staking outputs.
func UnspendableKey() *btcec.PublicKey {
	unspendableOnce.Do(func() {
		raw, err := hex.DecodeString(unspendableKeyHex)
		if err != nil {
			panic(err)
		}

		unspendableKey, err = schnorr.ParsePubKey(raw)
		if err != nil {
			panic(err)
		}
	})

	return unspendableKey
}

// ErrTreeDepth is returned when a leaf does not end up at the depth its
// output commits to.
var ErrTreeDepth = fmt.Errorf("%w: unexpected tap leaf depth",
	utxoerr.ErrInternal)

// Leaf names a script of a staking or unbonding output.
type Leaf uint8

const (
	// TimelockLeaf is the staker-only path after the lock time.
	TimelockLeaf Leaf = iota

	// UnbondingLeaf is the early unbonding path.
	UnbondingLeaf

	// SlashingLeaf is the slashing path.
	SlashingLeaf
)

// String returns the leaf name.
func (l Leaf) String() string {
	switch l {
	case TimelockLeaf:
		return "timelock"
	case UnbondingLeaf:
		return "unbonding"
	case SlashingLeaf:
		return "slashing"
	default:
		return fmt.Sprintf("leaf(%d)", uint8(l))
	}
}

// leafSpec is a script placed in the tree at a fixed depth.
type leafSpec struct {
	leaf   Leaf
	script []byte
	depth  int
}

// SpendInfo is the script tree of a staking or unbonding output.
type SpendInfo struct {
	tree    *txscript.IndexedTapScriptTree
	root    chainhash.Hash
	indexes map[Leaf]int
}

// NewStakingSpendInfo returns the tree of a staking output: the timelock
// and unbonding leaves at depth 2 and the slashing leaf at depth 1.
func NewStakingSpendInfo(info *StakingInfo) (*SpendInfo, error) {
	timelock, err := info.TimelockScript()
	if err != nil {
		return nil, fmt.Errorf("timelock script: %w", err)
	}

	unbonding, err := info.UnbondingScript()
	if err != nil {
		return nil, fmt.Errorf("unbonding script: %w", err)
	}

	slashing, err := info.SlashingScript()
	if err != nil {
		return nil, fmt.Errorf("slashing script: %w", err)
	}

	return newSpendInfo(
		leafSpec{leaf: TimelockLeaf, script: timelock, depth: 2},
		leafSpec{leaf: UnbondingLeaf, script: unbonding, depth: 2},
		leafSpec{leaf: SlashingLeaf, script: slashing, depth: 1},
	)
}

// NewUnbondingSpendInfo returns the tree of an unbonding output, whose
// staking time is the unbonding time: the timelock and slashing leaves at
// depth 1.
func NewUnbondingSpendInfo(info *StakingInfo) (*SpendInfo, error) {
	timelock, err := info.TimelockScript()
	if err != nil {
		return nil, fmt.Errorf("timelock script: %w", err)
	}

	slashing, err := info.SlashingScript()
	if err != nil {
		return nil, fmt.Errorf("slashing script: %w", err)
	}

	return newSpendInfo(
		leafSpec{leaf: TimelockLeaf, script: timelock, depth: 1},
		leafSpec{leaf: SlashingLeaf, script: slashing, depth: 1},
	)
}

// newSpendInfo assembles the leaves in order and checks that each ends up
// at its depth.
func newSpendInfo(specs ...leafSpec) (*SpendInfo, error) {
	leaves := make([]txscript.TapLeaf, len(specs))
	for i, spec := range specs {
		leaves[i] = txscript.NewBaseTapLeaf(spec.script)
	}

	tree := txscript.AssembleTaprootScriptTree(leaves...)

	indexes := make(map[Leaf]int, len(specs))
	for i, spec := range specs {
		proof := tree.LeafMerkleProofs[i]
		depth := len(proof.InclusionProof) / chainhash.HashSize
		if depth != spec.depth {
			return nil, fmt.Errorf("%w: %v leaf at %d, want %d",
				ErrTreeDepth, spec.leaf, depth, spec.depth)
		}

		indexes[spec.leaf] = i
	}

	info := &SpendInfo{
		tree:    tree,
		root:    tree.RootNode.TapHash(),
		indexes: indexes,
	}

	log.Debugf("Assembled staking tree with %d leaves, merkle root %v",
		len(specs), info.root)

	return info, nil
}

// MerkleRoot returns the root of the script tree.
func (s *SpendInfo) MerkleRoot() chainhash.Hash {
	return s.root
}

// OutputKey returns the tweaked key of the output.
func (s *SpendInfo) OutputKey() script.XOnlyKey {
	return script.TaprootOutputKey(UnspendableKey(), s.root[:])
}

// PkScript returns the P2TR script of the output.
func (s *SpendInfo) PkScript() []byte {
	return script.P2TR(s.OutputKey())
}

// proof returns the merkle proof of a leaf.
func (s *SpendInfo) proof(leaf Leaf) (*txscript.TapscriptProof, error) {
	idx, ok := s.indexes[leaf]
	if !ok {
		return nil, fmt.Errorf("%w: no %v leaf in this output",
			utxoerr.ErrInvalidParams, leaf)
	}

	return &s.tree.LeafMerkleProofs[idx], nil
}

// LeafScript returns the script of a leaf.
func (s *SpendInfo) LeafScript(leaf Leaf) ([]byte, error) {
	proof, err := s.proof(leaf)
	if err != nil {
		return nil, err
	}

	return proof.TapLeaf.Script, nil
}

// LeafHash returns the BIP341 hash of a leaf.
func (s *SpendInfo) LeafHash(leaf Leaf) (chainhash.Hash, error) {
	proof, err := s.proof(leaf)
	if err != nil {
		return chainhash.Hash{}, err
	}

	return proof.TapLeaf.TapHash(), nil
}

// ControlBlock returns the serialized control block of a leaf.
func (s *SpendInfo) ControlBlock(leaf Leaf) ([]byte, error) {
	proof, err := s.proof(leaf)
	if err != nil {
		return nil, err
	}

	block := proof.ToControlBlock(UnspendableKey())
	raw, err := block.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: control block: %w",
			utxoerr.ErrInternal, err)
	}

	return raw, nil
}
