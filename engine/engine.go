// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package engine plans, signs and compiles transactions of the Bitcoin
// family chains. A SigningInput describes the coins, the outputs and the
// fee; the engine selects the inputs, computes the sighashes and either
// signs them with the given private keys or returns them to an external
// signer whose signatures are compiled in a second step.
package engine

import (
	"crypto/rand"
	"fmt"
	"io"
	"slices"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/keys"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/selector"
	"github.com/btcsuite/utxoengine/sighash"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Config configures an Engine.
type Config struct {
	// AuxRand is the source of the BIP340 auxiliary randomness of
	// Schnorr signatures. Nil selects crypto/rand. A fixed source makes
	// signatures reproducible and must only be used in tests.
	AuxRand io.Reader
}

// Engine turns spend requests into transactions. It holds no state
// between calls and is safe for concurrent use if its AuxRand is.
type Engine struct {
	cfg Config
}

// New creates an engine.
func New(cfg Config) *Engine {
	if cfg.AuxRand != nil {
		log.Warnf("Schnorr auxiliary randomness is read from a caller " +
			"supplied source")
	}

	return &Engine{cfg: cfg}
}

// Plan selects the inputs and sizes the change or max output of a spend
// without signing it.
func (e *Engine) Plan(in *SigningInput) *TransactionPlan {
	sel, err := e.planWithKeys(in)
	if err != nil {
		log.Debugf("Unable to plan transaction: %v", err)
		return &TransactionPlan{Error: newError(err)}
	}

	return newPlan(sel)
}

// Sign plans the spend and signs every input with the private keys.
func (e *Engine) Sign(in *SigningInput) *SigningOutput {
	out, err := e.sign(in)
	if err != nil {
		log.Debugf("Unable to sign transaction: %v", err)
		return &SigningOutput{Error: newError(err)}
	}

	return out
}

// PreImageHashes plans the spend and returns the sighash of every input for
// an external signer. Claims that commit to a key hash are resolved with
// the request's public keys.
func (e *Engine) PreImageHashes(in *SigningInput) *PreSigningOutput {
	sighashes, err := e.preImageHashes(in)
	if err != nil {
		log.Debugf("Unable to compute sighashes: %v", err)
		return &PreSigningOutput{Error: newError(err)}
	}

	return &PreSigningOutput{Sighashes: sighashes}
}

// Compile plans the spend like PreImageHashes and places the external
// signatures into it. There is one signature per input in sighash order,
// and either no public keys or one per input. Every signature is verified
// before it is used.
func (e *Engine) Compile(in *SigningInput, sigs,
	pubKeys [][]byte) *SigningOutput {

	out, err := e.compile(in, sigs, pubKeys)
	if err != nil {
		log.Debugf("Unable to compile transaction: %v", err)
		return &SigningOutput{Error: newError(err)}
	}

	return out
}

// planWithKeys plans with the public keys of the private keys and the
// request.
func (e *Engine) planWithKeys(in *SigningInput) (*selector.Selection,
	error) {

	manager, err := keys.NewManager(in.PrivateKeys...)
	if err != nil {
		return nil, err
	}
	pubKeys := append(manager.PubKeys(), in.PublicKeys...)
	manager.Zero()

	return plan(in, pubKeys)
}

func (e *Engine) sign(in *SigningInput) (*SigningOutput, error) {
	manager, err := keys.NewManager(in.PrivateKeys...)
	if err != nil {
		return nil, err
	}
	defer manager.Zero()

	sel, err := plan(in, append(manager.PubKeys(), in.PublicKeys...))
	if err != nil {
		return nil, err
	}

	tx, err := e.signUnsigned(sel.Unsigned, manager)
	if err != nil {
		return nil, err
	}

	log.Debugf("Signed %s transaction %v: %d inputs, %d outputs, fee %v",
		in.Chain.Name, tx.TxID(), len(tx.Inputs()), len(tx.Outputs()),
		sel.Fee)

	return newSigningOutput(tx, sel.Fee)
}

func (e *Engine) preImageHashes(in *SigningInput) ([]*sighash.UtxoSighash,
	error) {

	sel, err := plan(in, in.PublicKeys)
	if err != nil {
		return nil, err
	}

	return sighash.ComputeUnsigned(sel.Unsigned)
}

func (e *Engine) compile(in *SigningInput, sigs,
	pubKeys [][]byte) (*SigningOutput, error) {

	sel, err := plan(in, append(slices.Clone(in.PublicKeys), pubKeys...))
	if err != nil {
		return nil, err
	}

	tx, err := compileUnsigned(sel.Unsigned, sigs, pubKeys)
	if err != nil {
		return nil, err
	}

	return newSigningOutput(tx, sel.Fee)
}

// plan resolves the request and selects the inputs. The public keys
// resolve claims that only commit to a key hash or a tweaked key.
func plan(in *SigningInput, pubKeys [][]byte) (*selector.Selection, error) {
	if in.Chain == nil {
		return nil, ErrNoChain
	}
	if len(in.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	if in.Change.IsSome() && in.MaxOutput.IsSome() {
		return nil, ErrChangeWithMax
	}

	template, err := in.Chain.NewTx(in.TxArgs)
	if err != nil {
		return nil, err
	}

	r := &resolver{chain: in.Chain, pubKeys: pubKeys}

	inputs := make([]txmodel.Input, len(in.Inputs))
	for i := range in.Inputs {
		inputs[i], err = r.resolveInput(&in.Inputs[i])
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	// Decred commits to the spent amounts in the transaction itself.
	if setter, ok := template.(txmodel.InputValueSetter); ok {
		for _, input := range inputs {
			setter.SetInputValue(
				input.TxIn.PreviousOutPoint, input.Utxo.Amount,
			)
		}
	}

	outputs := make([]*wire.TxOut, len(in.Outputs))
	for i := range in.Outputs {
		outputs[i], err = r.resolveOutput(&in.Outputs[i])
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
	}

	estimator, err := in.estimator(template)
	if err != nil {
		return nil, err
	}

	req := &selector.Request{
		Template: template,
		Inputs:   inputs,
		Outputs:  outputs,
		Fee:      estimator,
		Dust:     in.dustPolicy(),
		Order:    in.Order,
	}

	if in.MaxOutput.IsSome() {
		maxScript, err := r.resolveRecipient(in.MaxOutput.UnwrapOr(nil))
		if err != nil {
			return nil, fmt.Errorf("max output: %w", err)
		}

		return selector.SelectMax(req, maxScript)
	}

	if in.Change.IsSome() {
		changeScript, err := r.resolveRecipient(in.Change.UnwrapOr(nil))
		if err != nil {
			return nil, fmt.Errorf("change output: %w", err)
		}

		req.Change = fn.Some(changeScript)
	}

	return selector.SelectExact(req)
}

// signUnsigned signs every input with the held keys and compiles the
// transaction.
func (e *Engine) signUnsigned(u *txmodel.UnsignedTx,
	manager *keys.Manager) (txmodel.Tx, error) {

	sighashes, err := sighash.ComputeUnsigned(u)
	if err != nil {
		return nil, err
	}

	utxos := u.Utxos()
	claims := make([]*script.Claim, len(sighashes))
	for i, sh := range sighashes {
		sig, err := e.signSighash(sh, manager)
		if err != nil {
			return nil, &SignatureError{InputIndex: i, Err: err}
		}

		claims[i], err = utxos[i].Claimer.Claim(sig)
		if err != nil {
			return nil, &SignatureError{InputIndex: i, Err: err}
		}
	}

	return u.Compile(claims)
}

// signSighash signs one sighash and returns the signature with its sighash
// type byte where the template has one.
func (e *Engine) signSighash(sh *sighash.UtxoSighash,
	manager *keys.Manager) ([]byte, error) {

	if !sh.Method.IsTaproot() {
		priv, err := manager.ECDSA(sh.SpenderPubKey)
		if err != nil {
			return nil, err
		}

		sig := ecdsa.Sign(priv, sh.Hash[:])

		return sighash.EncodeECDSA(sig, sh.SighashType), nil
	}

	priv, err := manager.Schnorr(sh.SpenderPubKey, sh.TaprootTweak)
	if err != nil {
		return nil, err
	}

	// A tweaked key is derived for this signature only.
	if sh.TaprootTweak.IsSome() {
		defer priv.Zero()
	}

	var aux [32]byte
	if err := e.auxRand(aux[:]); err != nil {
		return nil, err
	}

	sig, err := schnorr.Sign(priv, sh.Hash[:], schnorr.CustomNonce(aux))
	if err != nil {
		return nil, fmt.Errorf("%w: schnorr sign: %w",
			utxoerr.ErrInternal, err)
	}

	return sighash.EncodeSchnorr(sig, sh.SighashType), nil
}

// auxRand fills b with BIP340 auxiliary randomness.
func (e *Engine) auxRand(b []byte) error {
	src := e.cfg.AuxRand
	if src == nil {
		src = rand.Reader
	}

	if _, err := io.ReadFull(src, b); err != nil {
		return fmt.Errorf("%w: auxiliary randomness: %w",
			utxoerr.ErrInternal, err)
	}

	return nil
}

// compileUnsigned verifies the external signatures and compiles the
// transaction.
func compileUnsigned(u *txmodel.UnsignedTx, sigs,
	pubKeys [][]byte) (txmodel.Tx, error) {

	sighashes, err := sighash.ComputeUnsigned(u)
	if err != nil {
		return nil, err
	}

	if len(sigs) != len(sighashes) {
		return nil, fmt.Errorf("%w: %d signatures for %d inputs",
			ErrSignatureCount, len(sigs), len(sighashes))
	}
	if len(pubKeys) != 0 && len(pubKeys) != len(sighashes) {
		return nil, fmt.Errorf("%w: %d public keys for %d inputs",
			ErrSignatureCount, len(pubKeys), len(sighashes))
	}

	utxos := u.Utxos()
	claims := make([]*script.Claim, len(sighashes))
	for i, sh := range sighashes {
		var pubKey []byte
		if len(pubKeys) != 0 {
			pubKey = pubKeys[i]
		}

		sig, err := sh.Verify(pubKey, sigs[i])
		if err != nil {
			return nil, &SignatureError{InputIndex: i, Err: err}
		}

		claims[i], err = utxos[i].Claimer.Claim(sig)
		if err != nil {
			return nil, &SignatureError{InputIndex: i, Err: err}
		}
	}

	return u.Compile(claims)
}
