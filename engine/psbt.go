// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoengine/chains"
	"github.com/btcsuite/utxoengine/keys"
	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/sighash"
	"github.com/btcsuite/utxoengine/txmodel"
	"github.com/btcsuite/utxoengine/utxoerr"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrPSBTNotSupported is returned for a PSBT input whose script the
	// bridge cannot sign. Only P2PK and P2PKH inputs are supported.
	ErrPSBTNotSupported = fmt.Errorf("%w: psbt input script",
		utxoerr.ErrNotSupported)

	// ErrPSBTUtxo is returned for a PSBT input without a usable spent
	// output.
	ErrPSBTUtxo = fmt.Errorf("%w: psbt input utxo", utxoerr.ErrParse)

	// ErrPSBTChain is returned for a chain whose transactions PSBT
	// cannot carry.
	ErrPSBTChain = fmt.Errorf("%w: psbt on chain", utxoerr.ErrNotSupported)
)

// PSBTSigningInput is a request to sign the inputs of a PSBT.
type PSBTSigningInput struct {
	// Chain selects the sighash variant and the address encoding. This
	// field is required.
	Chain *chains.Params

	// PSBT is the serialized packet.
	PSBT []byte

	// PrivateKeys sign the inputs.
	PrivateKeys [][]byte

	// PublicKeys resolve P2PKH inputs whose key the packet does not
	// carry.
	PublicKeys [][]byte
}

// PSBTSigningOutput is a signed transaction together with the finalized
// packet.
type PSBTSigningOutput struct {
	SigningOutput

	// PSBT is the serialized packet with the final scriptSig and witness
	// of every input.
	PSBT []byte
}

// SignPSBT signs every input of the packet and finalizes it.
func (e *Engine) SignPSBT(in *PSBTSigningInput) *PSBTSigningOutput {
	out, err := e.signPSBT(in)
	if err != nil {
		log.Debugf("Unable to sign psbt: %v", err)
		return &PSBTSigningOutput{
			SigningOutput: SigningOutput{Error: newError(err)},
		}
	}

	return out
}

// PreImagePSBT returns the sighash of every input of the packet.
func (e *Engine) PreImagePSBT(in *PSBTSigningInput) *PreSigningOutput {
	sighashes, err := e.preImagePSBT(in)
	if err != nil {
		log.Debugf("Unable to compute psbt sighashes: %v", err)
		return &PreSigningOutput{Error: newError(err)}
	}

	return &PreSigningOutput{Sighashes: sighashes}
}

func (e *Engine) signPSBT(in *PSBTSigningInput) (*PSBTSigningOutput,
	error) {

	manager, err := keys.NewManager(in.PrivateKeys...)
	if err != nil {
		return nil, err
	}
	defer manager.Zero()

	packet, u, err := parsePSBT(
		in, append(manager.PubKeys(), in.PublicKeys...),
	)
	if err != nil {
		return nil, err
	}

	tx, err := e.signUnsigned(u, manager)
	if err != nil {
		return nil, err
	}

	if err := finalizePSBT(packet, tx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := packet.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("%w: serialize psbt: %w",
			utxoerr.ErrInternal, err)
	}

	txFee := btcutil.Amount(u.TotalInput() - u.TotalOutput())
	signed, err := newSigningOutput(tx, txFee)
	if err != nil {
		return nil, err
	}

	log.Debugf("Signed psbt transaction %v with %d inputs", signed.TxID,
		len(tx.Inputs()))

	return &PSBTSigningOutput{SigningOutput: *signed, PSBT: buf.Bytes()}, nil
}

func (e *Engine) preImagePSBT(in *PSBTSigningInput) ([]*sighash.UtxoSighash,
	error) {

	_, u, err := parsePSBT(in, in.PublicKeys)
	if err != nil {
		return nil, err
	}

	return sighash.ComputeUnsigned(u)
}

// parsePSBT decodes the packet and rebuilds its unsigned transaction with
// the signing data of every input.
func parsePSBT(in *PSBTSigningInput, pubKeys [][]byte) (*psbt.Packet,
	*txmodel.UnsignedTx, error) {

	if in.Chain == nil {
		return nil, nil, ErrNoChain
	}

	template, err := in.Chain.NewTx(chains.TxArgs{})
	if err != nil {
		return nil, nil, err
	}
	if _, ok := template.(*txmodel.StdTx); !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrPSBTChain,
			in.Chain.Name)
	}

	packet, err := psbt.NewFromRawBytes(bytes.NewReader(in.PSBT), false)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: psbt: %w", utxoerr.ErrParse,
			err)
	}

	utxos := make([]*txmodel.UtxoToSign, len(packet.Inputs))
	for i := range packet.Inputs {
		utxos[i], err = psbtInput(in.Chain, packet, i, pubKeys)
		if err != nil {
			return nil, nil, fmt.Errorf("psbt input %d: %w", i, err)
		}
	}

	tx := txmodel.WrapMsgTx(packet.UnsignedTx.Copy(), in.Chain.TxHasher)
	u, err := txmodel.NewUnsignedTx(tx, utxos)
	if err != nil {
		return nil, nil, err
	}

	if u.TotalInput() < u.TotalOutput() {
		return nil, nil, fmt.Errorf("%w: psbt outputs %d exceed "+
			"inputs %d", utxoerr.ErrInvalidParams, u.TotalOutput(),
			u.TotalInput())
	}

	return packet, u, nil
}

// psbtInput returns the signing data of the packet input at idx.
func psbtInput(chain *chains.Params, packet *psbt.Packet, idx int,
	pubKeys [][]byte) (*txmodel.UtxoToSign, error) {

	pIn := &packet.Inputs[idx]
	txIn := packet.UnsignedTx.TxIn[idx]

	spent, err := spentOutput(pIn, txIn.PreviousOutPoint)
	if err != nil {
		return nil, err
	}

	class := script.Parse(spent.PkScript).Class
	switch class {
	case script.PubKeyTy, script.PubKeyHashTy:

	default:
		return nil, fmt.Errorf("%w: %v", ErrPSBTNotSupported, class)
	}

	// Keys the packet names for this input take precedence.
	r := &resolver{
		chain:   chain,
		pubKeys: append(derivationKeys(pIn), pubKeys...),
	}

	input, err := r.resolveInput(&Input{
		OutPoint:    txIn.PreviousOutPoint,
		Value:       btcutil.Amount(spent.Value),
		Sequence:    fn.Some(txIn.Sequence),
		SighashType: uint32(pIn.SighashType),
		Claim:       ClaimScript{PkScript: spent.PkScript},
	})
	if err != nil {
		return nil, err
	}

	return input.Utxo, nil
}

// spentOutput returns the output the packet input spends. A full previous
// transaction must match the outpoint.
func spentOutput(pIn *psbt.PInput, op wire.OutPoint) (*wire.TxOut, error) {
	if pIn.WitnessUtxo != nil {
		return pIn.WitnessUtxo, nil
	}

	prevTx := pIn.NonWitnessUtxo
	if prevTx == nil {
		return nil, fmt.Errorf("%w: no utxo for %v", ErrPSBTUtxo, op)
	}

	if prevTx.TxHash() != op.Hash {
		return nil, fmt.Errorf("%w: previous tx %v does not match %v",
			ErrPSBTUtxo, prevTx.TxHash(), op)
	}
	if int(op.Index) >= len(prevTx.TxOut) {
		return nil, fmt.Errorf("%w: previous tx has no output %d",
			ErrPSBTUtxo, op.Index)
	}

	return prevTx.TxOut[op.Index], nil
}

// derivationKeys returns the public keys the packet input names.
func derivationKeys(pIn *psbt.PInput) [][]byte {
	var pubKeys [][]byte
	for _, d := range pIn.Bip32Derivation {
		pubKeys = append(pubKeys, d.PubKey)
	}
	for _, sig := range pIn.PartialSigs {
		pubKeys = append(pubKeys, sig.PubKey)
	}

	return pubKeys
}

// finalizePSBT moves the scriptSig and witness of every signed input into
// the final fields of the packet and clears the signing fields.
func finalizePSBT(packet *psbt.Packet, tx txmodel.Tx) error {
	for i, txIn := range tx.Inputs() {
		pIn := &packet.Inputs[i]

		pIn.FinalScriptSig = txIn.SignatureScript
		pIn.FinalScriptWitness = nil
		if len(txIn.Witness) > 0 {
			var witness bytes.Buffer
			err := psbt.WriteTxWitness(&witness, txIn.Witness)
			if err != nil {
				return fmt.Errorf("%w: serialize witness: %w",
					utxoerr.ErrInternal, err)
			}
			pIn.FinalScriptWitness = witness.Bytes()
		}

		pIn.PartialSigs = nil
		pIn.SighashType = 0
		pIn.RedeemScript = nil
		pIn.WitnessScript = nil
		pIn.Bip32Derivation = nil
	}

	if err := psbt.MaybeFinalizeAll(packet); err != nil {
		return fmt.Errorf("%w: finalize psbt: %w", utxoerr.ErrInternal,
			err)
	}

	return nil
}
