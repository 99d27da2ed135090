// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestResolveProg(t *testing.T) {
	got := ResolveProg("definitely-not-a-command-gosh", "sh")

	assert.NotEmpty(t, got)
	assert.Equal(t, "sh", Basename(got))
}

func TestResolveProgNone(t *testing.T) {
	assert.Empty(t, ResolveProg("definitely-not-a-command-gosh"))
}

func TestGnuProgNotFound(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, err := GnuProg(t.Context(), "definitely-not-a-command-gosh")

	require.ErrorIs(t, err, ErrProgNotFound)
}

func TestGnuProgNonGnu(t *testing.T) {
	defer goleak.VerifyNone(t)

	// sh --version either fails or does not identify as GNU on most systems;
	// when it does (bash as sh), the resolved path is still correct.
	prog, err := GnuProg(t.Context(), "sh")

	if err != nil {
		require.ErrorIs(t, err, ErrNoGnuVariant)
		return
	}

	assert.NotEmpty(t, prog)
}
