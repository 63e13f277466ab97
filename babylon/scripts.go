// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package babylon builds the outputs of Babylon BTC staking and the script
// path spends that unlock them.
package babylon

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/utxoerr"
)

var (
	// ErrInvalidStakingInfo is returned for staking parameters that
	// cannot form a staking output.
	ErrInvalidStakingInfo = fmt.Errorf("%w: invalid staking info",
		utxoerr.ErrInvalidParams)

	// ErrDuplicateKey is returned when a key appears twice in a
	// multisig set.
	ErrDuplicateKey = fmt.Errorf("%w: duplicate key in multisig",
		utxoerr.ErrInvalidParams)

	// ErrInvalidQuorum is returned for a quorum of zero or above the
	// number of keys.
	ErrInvalidQuorum = fmt.Errorf("%w: invalid multisig quorum",
		utxoerr.ErrInvalidParams)
)

// StakingInfo describes one BTC delegation.
type StakingInfo struct {
	// StakerKey signs every path.
	StakerKey script.XOnlyKey

	// FinalityProviderKey is the provider the stake is delegated to.
	FinalityProviderKey script.XOnlyKey

	// StakingTime is the relative lock of the timelock path in blocks.
	StakingTime uint16

	// CovenantKeys is the covenant committee, sorted.
	CovenantKeys []script.XOnlyKey

	// CovenantQuorum is the number of covenant signatures required.
	CovenantQuorum uint32
}

// NewStakingInfo validates the staking parameters. Keys are given as 32
// byte x-only or 33 byte compressed keys.
func NewStakingInfo(stakerKey, fpKey []byte, stakingTime uint16,
	covenantKeys [][]byte, quorum uint32) (*StakingInfo, error) {

	staker, err := script.ToXOnly(stakerKey)
	if err != nil {
		return nil, fmt.Errorf("staker key: %w", err)
	}

	fp, err := script.ToXOnly(fpKey)
	if err != nil {
		return nil, fmt.Errorf("finality provider key: %w", err)
	}

	if stakingTime == 0 {
		return nil, fmt.Errorf("%w: zero staking time",
			ErrInvalidStakingInfo)
	}

	covenants := make([]script.XOnlyKey, len(covenantKeys))
	for i, key := range covenantKeys {
		covenants[i], err = script.ToXOnly(key)
		if err != nil {
			return nil, fmt.Errorf("covenant key %d: %w", i, err)
		}
	}

	covenants, err = sortKeys(covenants)
	if err != nil {
		return nil, err
	}

	if quorum == 0 || int(quorum) > len(covenants) {
		return nil, fmt.Errorf("%w: %d of %d covenants",
			ErrInvalidQuorum, quorum, len(covenants))
	}

	return &StakingInfo{
		StakerKey:           staker,
		FinalityProviderKey: fp,
		StakingTime:         stakingTime,
		CovenantKeys:        covenants,
		CovenantQuorum:      quorum,
	}, nil
}

// WithStakingTime returns a copy with another lock time. The unbonding
// output reuses the delegation keys with the unbonding time.
func (s *StakingInfo) WithStakingTime(lockTime uint16) *StakingInfo {
	info := *s
	info.StakingTime = lockTime
	info.CovenantKeys = append([]script.XOnlyKey(nil), s.CovenantKeys...)

	return &info
}

// sortKeys returns the keys in ascending byte order. The multisig scripts
// commit to this order so that any permutation of the same committee gives
// the same output.
func sortKeys(keys []script.XOnlyKey) ([]script.XOnlyKey, error) {
	sorted := append([]script.XOnlyKey(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("%w: %x", ErrDuplicateKey,
				sorted[i][:])
		}
	}

	return sorted, nil
}

// addSingleKey adds `<key> OP_CHECKSIGVERIFY`, or OP_CHECKSIG when the
// result is left on the stack.
func addSingleKey(b *txscript.ScriptBuilder, key script.XOnlyKey,
	verify bool) {

	b.AddData(key[:])
	if verify {
		b.AddOp(txscript.OP_CHECKSIGVERIFY)
	} else {
		b.AddOp(txscript.OP_CHECKSIG)
	}
}

// addMultiSig adds a threshold check over sorted keys:
// `<k1> OP_CHECKSIG <k2> OP_CHECKSIGADD ... <m> OP_NUMEQUAL[VERIFY]`. A
// single key is a plain signature check.
func addMultiSig(b *txscript.ScriptBuilder, keys []script.XOnlyKey,
	threshold uint32, verify bool) error {

	if threshold == 0 || int(threshold) > len(keys) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidQuorum, threshold,
			len(keys))
	}

	if len(keys) == 1 {
		addSingleKey(b, keys[0], verify)
		return nil
	}

	for i, key := range keys {
		b.AddData(key[:])
		if i == 0 {
			b.AddOp(txscript.OP_CHECKSIG)
		} else {
			b.AddOp(txscript.OP_CHECKSIGADD)
		}
	}

	b.AddInt64(int64(threshold))
	if verify {
		b.AddOp(txscript.OP_NUMEQUALVERIFY)
	} else {
		b.AddOp(txscript.OP_NUMEQUAL)
	}

	return nil
}

// TimelockScript lets the staker alone spend once the staking time passed:
// `<staker> OP_CHECKSIGVERIFY <time> OP_CHECKSEQUENCEVERIFY`.
func (s *StakingInfo) TimelockScript() ([]byte, error) {
	b := txscript.NewScriptBuilder()
	addSingleKey(b, s.StakerKey, true)
	b.AddInt64(int64(s.StakingTime))
	b.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)

	return b.Script()
}

// UnbondingScript lets the staker unbond early with the covenant quorum.
func (s *StakingInfo) UnbondingScript() ([]byte, error) {
	b := txscript.NewScriptBuilder()
	addSingleKey(b, s.StakerKey, true)

	err := addMultiSig(b, s.CovenantKeys, s.CovenantQuorum, false)
	if err != nil {
		return nil, err
	}

	return b.Script()
}

// SlashingScript lets the staker, the finality provider and the covenant
// quorum together slash the stake.
func (s *StakingInfo) SlashingScript() ([]byte, error) {
	b := txscript.NewScriptBuilder()
	addSingleKey(b, s.StakerKey, true)

	fps := []script.XOnlyKey{s.FinalityProviderKey}
	if err := addMultiSig(b, fps, 1, true); err != nil {
		return nil, err
	}

	err := addMultiSig(b, s.CovenantKeys, s.CovenantQuorum, false)
	if err != nil {
		return nil, err
	}

	return b.Script()
}
