// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/babylon"
	"github.com/btcsuite/utxoengine/chains"
	"github.com/btcsuite/utxoengine/dust"
	"github.com/btcsuite/utxoengine/engine"
	"github.com/btcsuite/utxoengine/pkg/btcunit"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/selector"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	errUnknownType  = errors.New("unknown type")
	errUnknownOrder = errors.New("unknown order")
	errUnknownDust  = errors.New("unknown dust policy")
	errHashLength   = errors.New("unexpected hash length")
	errNoStaking    = errors.New("missing staking info")
)

// hexBytes is a byte slice encoded as a hex string.
type hexBytes []byte

// UnmarshalJSON decodes a hex string.
func (h *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = b

	return nil
}

// MarshalJSON encodes a hex string.
func (h hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

func fromHexes(in []hexBytes) [][]byte {
	out := make([][]byte, len(in))
	for i, b := range in {
		out[i] = b
	}

	return out
}

// stakingJSON is a Babylon delegation.
type stakingJSON struct {
	Staker           hexBytes   `json:"staker"`
	FinalityProvider hexBytes   `json:"finality_provider"`
	StakingTime      uint16     `json:"staking_time"`
	Covenants        []hexBytes `json:"covenants"`
	Quorum           uint32     `json:"quorum"`
}

func (s *stakingJSON) info() (*babylon.StakingInfo, error) {
	if s == nil {
		return nil, errNoStaking
	}

	return babylon.NewStakingInfo(
		s.Staker, s.FinalityProvider, s.StakingTime,
		fromHexes(s.Covenants), s.Quorum,
	)
}

// covenantSigJSON is a covenant committee signature.
type covenantSigJSON struct {
	PubKey    hexBytes `json:"pubkey"`
	Signature hexBytes `json:"signature"`
}

// claimJSON describes how an input is spent. Type selects the claim, the
// other fields are used as the type needs them.
type claimJSON struct {
	Type         string            `json:"type"`
	PubKey       hexBytes          `json:"pubkey,omitempty"`
	Hash         hexBytes          `json:"hash,omitempty"`
	MerkleRoot   hexBytes          `json:"merkle_root,omitempty"`
	LeafScript   hexBytes          `json:"leaf_script,omitempty"`
	ControlBlock hexBytes          `json:"control_block,omitempty"`
	Script       hexBytes          `json:"script,omitempty"`
	Address      string            `json:"address,omitempty"`
	Ticker       string            `json:"ticker,omitempty"`
	Amount       string            `json:"transfer_amount,omitempty"`
	Staking      *stakingJSON      `json:"staking,omitempty"`
	CovenantSigs []covenantSigJSON `json:"covenant_signatures,omitempty"`
	Unbonding    bool              `json:"unbonding,omitempty"`
}

func keyHash(b hexBytes) (script.PubKeyHash, error) {
	var hash script.PubKeyHash
	if len(b) == 0 {
		return hash, nil
	}
	if len(b) != len(hash) {
		return hash, fmt.Errorf("%w: %d", errHashLength, len(b))
	}
	copy(hash[:], b)

	return hash, nil
}

func (c *claimJSON) claim() (engine.Claim, error) {
	switch c.Type {
	case "p2pk":
		return engine.ClaimP2PK{PubKey: c.PubKey}, nil

	case "p2pkh", "p2wpkh":
		hash, err := keyHash(c.Hash)
		if err != nil {
			return nil, err
		}

		if c.Type == "p2pkh" {
			return engine.ClaimP2PKH{PubKey: c.PubKey, Hash: hash}, nil
		}

		return engine.ClaimP2WPKH{PubKey: c.PubKey, Hash: hash}, nil

	case "p2tr-key-path":
		return engine.ClaimP2TRKeyPath{
			PubKey:     c.PubKey,
			MerkleRoot: c.MerkleRoot,
		}, nil

	case "p2tr-script-path":
		return engine.ClaimP2TRScriptPath{
			PubKey:       c.PubKey,
			LeafScript:   c.LeafScript,
			ControlBlock: c.ControlBlock,
		}, nil

	case "script":
		return engine.ClaimScript{PkScript: c.Script}, nil

	case "address":
		return engine.ClaimAddress{Address: c.Address}, nil

	case "brc20-inscribe":
		return engine.ClaimBRC20Inscription{
			PubKey: c.PubKey,
			Ticker: c.Ticker,
			Amount: c.Amount,
		}, nil
	}

	info, err := c.Staking.info()
	if err != nil {
		return nil, err
	}

	switch c.Type {
	case "babylon-staking-timelock":
		return engine.ClaimBabylonStakingTimelock{Info: info}, nil

	case "babylon-staking-unbonding":
		sigs := make([]babylon.CovenantSignature, len(c.CovenantSigs))
		for i, sig := range c.CovenantSigs {
			sigs[i] = babylon.CovenantSignature{
				PubKey:    sig.PubKey,
				Signature: sig.Signature,
			}
		}

		return engine.ClaimBabylonStakingUnbonding{
			Info:               info,
			CovenantSignatures: sigs,
		}, nil

	case "babylon-unbonding-timelock":
		return engine.ClaimBabylonUnbondingTimelock{Info: info}, nil

	case "babylon-slashing":
		return engine.ClaimBabylonSlashing{
			Info:      info,
			Unbonding: c.Unbonding,
		}, nil
	}

	return nil, fmt.Errorf("%w: claim %q", errUnknownType, c.Type)
}

// recipientJSON describes an output script.
type recipientJSON struct {
	Type          string       `json:"type"`
	PubKey        hexBytes     `json:"pubkey,omitempty"`
	Hash          hexBytes     `json:"hash,omitempty"`
	MerkleRoot    hexBytes     `json:"merkle_root,omitempty"`
	Data          hexBytes     `json:"data,omitempty"`
	Script        hexBytes     `json:"script,omitempty"`
	Address       string       `json:"address,omitempty"`
	Ticker        string       `json:"ticker,omitempty"`
	Amount        string       `json:"transfer_amount,omitempty"`
	Staking       *stakingJSON `json:"staking,omitempty"`
	Tag           hexBytes     `json:"tag,omitempty"`
	UnbondingTime uint16       `json:"unbonding_time,omitempty"`
}

func (r *recipientJSON) recipient() (engine.Recipient, error) {
	switch r.Type {
	case "p2pk":
		return engine.ToP2PK{PubKey: r.PubKey}, nil

	case "p2pkh", "p2wpkh":
		hash, err := keyHash(r.Hash)
		if err != nil {
			return nil, err
		}

		if r.Type == "p2pkh" {
			return engine.ToP2PKH{PubKey: r.PubKey, Hash: hash}, nil
		}

		return engine.ToP2WPKH{PubKey: r.PubKey, Hash: hash}, nil

	case "p2sh":
		var hash script.ScriptHash
		if len(r.Hash) != len(hash) {
			return nil, fmt.Errorf("%w: %d", errHashLength,
				len(r.Hash))
		}
		copy(hash[:], r.Hash)

		return engine.ToP2SH{Hash: hash}, nil

	case "p2wsh":
		var hash script.WitnessScriptHash
		if len(r.Hash) != len(hash) {
			return nil, fmt.Errorf("%w: %d", errHashLength,
				len(r.Hash))
		}
		copy(hash[:], r.Hash)

		return engine.ToP2WSH{Hash: hash}, nil

	case "p2tr-key-path":
		return engine.ToP2TRKeyPath{PubKey: r.PubKey}, nil

	case "p2tr-script-path":
		return engine.ToP2TRScriptPath{
			InternalKey: r.PubKey,
			MerkleRoot:  r.MerkleRoot,
		}, nil

	case "p2tr-tweaked":
		key, err := script.ToXOnly(r.PubKey)
		if err != nil {
			return nil, err
		}

		return engine.ToP2TRDangerousAssumeTweaked{OutputKey: key}, nil

	case "op-return":
		return engine.ToOpReturn{Data: r.Data}, nil

	case "script":
		return engine.ToScript{PkScript: r.Script}, nil

	case "address":
		return engine.ToAddress{Address: r.Address}, nil

	case "brc20-inscribe":
		return engine.ToBRC20Inscribe{
			PubKey: r.PubKey,
			Ticker: r.Ticker,
			Amount: r.Amount,
		}, nil
	}

	info, err := r.Staking.info()
	if err != nil {
		return nil, err
	}

	switch r.Type {
	case "babylon-staking":
		return engine.ToBabylonStaking{Info: info}, nil

	case "babylon-unbonding":
		if r.UnbondingTime != 0 {
			info = info.WithStakingTime(r.UnbondingTime)
		}

		return engine.ToBabylonUnbonding{Info: info}, nil

	case "babylon-op-return":
		return engine.ToBabylonOpReturn{Tag: r.Tag, Info: info}, nil
	}

	return nil, fmt.Errorf("%w: recipient %q", errUnknownType, r.Type)
}

// optionalRecipient converts a recipient that may be absent.
func optionalRecipient(r *recipientJSON) (fn.Option[engine.Recipient],
	error) {

	if r == nil {
		return fn.None[engine.Recipient](), nil
	}

	to, err := r.recipient()
	if err != nil {
		return fn.None[engine.Recipient](), err
	}

	return fn.Some(to), nil
}

type inputJSON struct {
	TxID        string    `json:"txid"`
	Vout        uint32    `json:"vout"`
	Value       int64     `json:"value"`
	Sequence    *uint32   `json:"sequence,omitempty"`
	SighashType uint32    `json:"sighash_type,omitempty"`
	Claim       claimJSON `json:"claim"`
}

type outputJSON struct {
	Value int64         `json:"value"`
	To    recipientJSON `json:"to"`
}

type dustJSON struct {
	Policy   string `json:"policy"`
	Amount   int64  `json:"amount,omitempty"`
	FeePerKb int64  `json:"fee_per_kb,omitempty"`
}

func (d *dustJSON) policy() (dust.Policy, error) {
	if d == nil {
		return nil, nil
	}

	switch d.Policy {
	case "fixed":
		return dust.Fixed(btcutil.Amount(d.Amount)), nil

	case "disabled":
		return dust.Disabled{}, nil

	case "relay-fee":
		return dust.RelayFee{
			FeePerKb: btcunit.NewSatPerKVByte(
				btcutil.Amount(d.FeePerKb),
			),
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", errUnknownDust, d.Policy)
}

var orders = map[string]selector.Order{
	"":           selector.UseAll,
	"use-all":    selector.UseAll,
	"in-order":   selector.InOrder,
	"ascending":  selector.Ascending,
	"descending": selector.Descending,
}

// request is the JSON form of every operation's input.
type request struct {
	Chain        string         `json:"chain"`
	Version      int32          `json:"version,omitempty"`
	LockTime     uint32         `json:"lock_time,omitempty"`
	ExpiryHeight uint32         `json:"expiry_height,omitempty"`
	BranchID     uint32         `json:"branch_id,omitempty"`
	Inputs       []inputJSON    `json:"inputs"`
	Outputs      []outputJSON   `json:"outputs"`
	Change       *recipientJSON `json:"change,omitempty"`
	MaxOutput    *recipientJSON `json:"max_output,omitempty"`
	Order        string         `json:"order,omitempty"`
	FeePerVByte  int64          `json:"fee_per_vbyte,omitempty"`
	Zip317       bool           `json:"zip317,omitempty"`
	Dust         *dustJSON      `json:"dust,omitempty"`
	PrivateKeys  []hexBytes     `json:"private_keys,omitempty"`
	PublicKeys   []hexBytes     `json:"public_keys,omitempty"`

	// Signatures and SignaturePubKeys are the external signatures of the
	// compile operation.
	Signatures       []hexBytes `json:"signatures,omitempty"`
	SignaturePubKeys []hexBytes `json:"signature_pubkeys,omitempty"`

	// PSBT is the packet of the psbt operations.
	PSBT hexBytes `json:"psbt,omitempty"`
}

// signingInput converts the request into an engine request.
func (r *request) signingInput() (*engine.SigningInput, error) {
	chain, err := chains.ByName(r.Chain)
	if err != nil {
		return nil, err
	}

	order, ok := orders[r.Order]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownOrder, r.Order)
	}

	in := &engine.SigningInput{
		Chain: chain,
		TxArgs: chains.TxArgs{
			Version:      r.Version,
			LockTime:     r.LockTime,
			ExpiryHeight: r.ExpiryHeight,
			BranchID:     r.BranchID,
		},
		Order:       order,
		FeePerVByte: btcutil.Amount(r.FeePerVByte),
		Zip317:      r.Zip317,
		PrivateKeys: fromHexes(r.PrivateKeys),
		PublicKeys:  fromHexes(r.PublicKeys),
	}

	if in.Dust, err = r.Dust.policy(); err != nil {
		return nil, err
	}
	if in.Change, err = optionalRecipient(r.Change); err != nil {
		return nil, fmt.Errorf("change: %w", err)
	}
	if in.MaxOutput, err = optionalRecipient(r.MaxOutput); err != nil {
		return nil, fmt.Errorf("max output: %w", err)
	}

	for i, input := range r.Inputs {
		hash, err := chainhash.NewHashFromStr(input.TxID)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}

		claim, err := input.Claim.claim()
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}

		sequence := fn.None[uint32]()
		if input.Sequence != nil {
			sequence = fn.Some(*input.Sequence)
		}

		in.Inputs = append(in.Inputs, engine.Input{
			OutPoint:    *wire.NewOutPoint(hash, input.Vout),
			Value:       btcutil.Amount(input.Value),
			Sequence:    sequence,
			SighashType: input.SighashType,
			Claim:       claim,
		})
	}

	for i, output := range r.Outputs {
		to, err := output.To.recipient()
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}

		in.Outputs = append(in.Outputs, engine.Output{
			Value: btcutil.Amount(output.Value),
			To:    to,
		})
	}

	return in, nil
}

// psbtInput converts the request into a PSBT request.
func (r *request) psbtInput() (*engine.PSBTSigningInput, error) {
	chain, err := chains.ByName(r.Chain)
	if err != nil {
		return nil, err
	}

	return &engine.PSBTSigningInput{
		Chain:       chain,
		PSBT:        r.PSBT,
		PrivateKeys: fromHexes(r.PrivateKeys),
		PublicKeys:  fromHexes(r.PublicKeys),
	}, nil
}
