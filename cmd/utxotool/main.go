// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// utxotool plans, signs and compiles UTXO transactions described by a JSON
// request. The request is read from a file or standard input and the JSON
// response is written to standard output.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/utxoengine/engine"
	"github.com/jessevdk/go-flags"
)

// errUnknownMode is returned for a mode the tool does not implement.
var errUnknownMode = errors.New("unknown mode")

func main() {
	// Load the configuration, and parse any command line options. This
	// function will also set up logging properly.
	cfg, err := loadConfig()
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			// Print error if not due to help request.
			err = fmt.Errorf("failed to load config: %w", err)
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Help was requested, exit normally.
		os.Exit(0)
	}

	err = run(cfg)
	if err != nil {
		log.Errorf("Unable to run %s: %v", cfg.Mode, err)
	}

	if logRotator != nil {
		logRotator.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

// run reads the request named by the config and writes the response to
// standard output.
func run(cfg *config) error {
	in := os.Stdin
	if cfg.Request != "-" {
		f, err := os.Open(cfg.Request)
		if err != nil {
			return err
		}
		defer f.Close()

		in = f
	}

	e := engine.New(engine.Config{})

	return handle(e, cfg.Mode, in, os.Stdout)
}

// handle decodes one request from r, runs the mode on it and encodes the
// response to w. Engine failures are reported in the response, only a
// malformed request is returned as an error.
func handle(e *engine.Engine, mode string, r io.Reader, w io.Writer) error {
	var req request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	log.Debugf("Running %s on chain %s with %d inputs and %d outputs",
		mode, req.Chain, len(req.Inputs), len(req.Outputs))

	resp, err := dispatch(e, mode, &req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(resp)
}

// dispatch runs the engine operation selected by mode.
func dispatch(e *engine.Engine, mode string, req *request) (any, error) {
	switch mode {
	case "psbt", "psbt-preimage":
		in, err := req.psbtInput()
		if err != nil {
			return nil, err
		}

		if mode == "psbt" {
			return newPSBTResponse(e.SignPSBT(in)), nil
		}

		return newPreImageResponse(e.PreImagePSBT(in)), nil
	}

	in, err := req.signingInput()
	if err != nil {
		return nil, err
	}

	switch mode {
	case "plan":
		return newPlanResponse(e.Plan(in)), nil

	case "sign":
		return newSignResponse(e.Sign(in)), nil

	case "preimage":
		return newPreImageResponse(e.PreImageHashes(in)), nil

	case "compile":
		out := e.Compile(
			in, fromHexes(req.Signatures),
			fromHexes(req.SignaturePubKeys),
		)

		return newSignResponse(out), nil
	}

	return nil, fmt.Errorf("%w: %q", errUnknownMode, mode)
}
