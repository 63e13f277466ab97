// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/btcsuite/utxoengine/engine"
	"github.com/btcsuite/utxoengine/txmodel"
)

type errorJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newErrorJSON(err *engine.Error) *errorJSON {
	if err == nil {
		return nil
	}

	return &errorJSON{Kind: err.Kind.String(), Message: err.Message}
}

type plannedInputJSON struct {
	TxID  string `json:"txid"`
	Vout  uint32 `json:"vout"`
	Value int64  `json:"value"`
}

type plannedOutputJSON struct {
	Value  int64    `json:"value"`
	Script hexBytes `json:"script"`
}

// planResponse is the JSON form of a transaction plan.
type planResponse struct {
	Inputs        []plannedInputJSON  `json:"inputs"`
	Outputs       []plannedOutputJSON `json:"outputs"`
	VSizeEstimate uint64              `json:"vsize_estimate"`
	Fee           int64               `json:"fee"`
	Change        int64               `json:"change"`
	Error         *errorJSON          `json:"error,omitempty"`
}

func newPlanResponse(plan *engine.TransactionPlan) *planResponse {
	if plan.Error != nil {
		return &planResponse{Error: newErrorJSON(plan.Error)}
	}

	resp := &planResponse{
		Inputs:        make([]plannedInputJSON, len(plan.Inputs)),
		Outputs:       make([]plannedOutputJSON, len(plan.Outputs)),
		VSizeEstimate: plan.VSizeEstimate.Uint64(),
		Fee:           int64(plan.FeeEstimate),
		Change:        int64(plan.Change),
	}
	for i, in := range plan.Inputs {
		resp.Inputs[i] = plannedInputJSON{
			TxID:  in.OutPoint.Hash.String(),
			Vout:  in.OutPoint.Index,
			Value: int64(in.Value),
		}
	}
	for i, out := range plan.Outputs {
		resp.Outputs[i] = plannedOutputJSON{
			Value:  out.Value,
			Script: out.PkScript,
		}
	}

	return resp
}

// signResponse is the JSON form of a signed transaction.
type signResponse struct {
	Encoded hexBytes   `json:"encoded,omitempty"`
	TxID    string     `json:"txid,omitempty"`
	VSize   uint64     `json:"vsize,omitempty"`
	Weight  uint64     `json:"weight,omitempty"`
	Fee     int64      `json:"fee,omitempty"`
	PSBT    hexBytes   `json:"psbt,omitempty"`
	Error   *errorJSON `json:"error,omitempty"`
}

func newSignResponse(out *engine.SigningOutput) *signResponse {
	if out.Error != nil {
		return &signResponse{Error: newErrorJSON(out.Error)}
	}

	return &signResponse{
		Encoded: out.Encoded,
		TxID:    out.TxID.String(),
		VSize:   out.VSize.Uint64(),
		Weight:  out.Weight.Uint64(),
		Fee:     int64(out.Fee),
	}
}

func newPSBTResponse(out *engine.PSBTSigningOutput) *signResponse {
	resp := newSignResponse(&out.SigningOutput)
	resp.PSBT = out.PSBT

	return resp
}

type sighashJSON struct {
	Index       int      `json:"index"`
	Hash        hexBytes `json:"hash"`
	Method      string   `json:"method"`
	SighashType uint32   `json:"sighash_type"`
	PubKey      hexBytes `json:"pubkey"`
	MerkleRoot  hexBytes `json:"merkle_root,omitempty"`
}

// preImageResponse is the JSON form of the digests to sign externally.
type preImageResponse struct {
	Sighashes []sighashJSON `json:"sighashes,omitempty"`
	Error     *errorJSON    `json:"error,omitempty"`
}

func newPreImageResponse(out *engine.PreSigningOutput) *preImageResponse {
	if out.Error != nil {
		return &preImageResponse{Error: newErrorJSON(out.Error)}
	}

	resp := &preImageResponse{
		Sighashes: make([]sighashJSON, len(out.Sighashes)),
	}
	for i, sh := range out.Sighashes {
		resp.Sighashes[i] = sighashJSON{
			Index:       sh.Index,
			Hash:        sh.Hash[:],
			Method:      sh.Method.String(),
			SighashType: uint32(sh.SighashType),
			PubKey:      sh.SpenderPubKey,
		}

		sh.TaprootTweak.WhenSome(func(tweak txmodel.TaprootTweak) {
			resp.Sighashes[i].MerkleRoot = tweak.MerkleRoot
		})
	}

	return resp
}
