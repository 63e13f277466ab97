// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxoerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestKindOf checks that wrapped errors keep their kind through any number
// of context layers.
func TestKindOf(t *testing.T) {
	t.Parallel()

	errSpecific := fmt.Errorf("%w: taproot SIGHASH_SINGLE", ErrNotSupported)

	testCases := []struct {
		name string
		err  error
		kind Kind
	}{{
		name: "nil",
		err:  nil,
		kind: KindOK,
	}, {
		name: "bare kind",
		err:  ErrDust,
		kind: KindDust,
	}, {
		name: "specific sentinel with context",
		err:  fmt.Errorf("sign input 1: %w", errSpecific),
		kind: KindNotSupported,
	}, {
		name: "unknown error",
		err:  errors.New("boom"),
		kind: KindInternal,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.kind, KindOf(tc.err))
		})
	}

	require.Equal(t, "Error_insufficient_utxos", KindInsufficientFunds.String())
}
