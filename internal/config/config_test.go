// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Full(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "gosh.yaml", []byte(`
env:
  FOO: bar
working_directory: /tmp
on_error: ignore
tee:
  - path: out.log
  - path: all.log
    append: true
`), 0o644))

	cfg, err := Load(fs, "gosh.yaml")

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"FOO": "bar"}, cfg.Env)
	assert.Equal(t, "/tmp", cfg.WorkingDirectory)
	assert.Equal(t, OnErrorIgnore, cfg.OnError)
	require.Len(t, cfg.Tee, 2)
	assert.Equal(t, "out.log", cfg.Tee[0].Path)
	assert.False(t, cfg.Tee[0].Append)
	assert.True(t, cfg.Tee[1].Append)
}

func TestLoad_MissingDefaultIsEmpty(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")

	require.NoError(t, err)
	assert.Empty(t, cfg.Env)
	assert.Empty(t, cfg.OnError)
}

func TestLoad_MissingExplicitIsError(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.yaml")

	assert.ErrorIs(t, err, ErrReadConfig)
}

func TestLoad_UnknownFieldIsError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "gosh.yaml", []byte("shell: /bin/zsh\n"), 0o644))

	_, err := Load(fs, "gosh.yaml")

	assert.ErrorIs(t, err, ErrParseConfig)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "bad on_error",
			body: "on_error: explode\n",
		},
		{
			name: "empty tee path",
			body: "tee:\n  - path: \"\"\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "gosh.yaml", []byte(tc.body), 0o644))

			_, err := Load(fs, "gosh.yaml")

			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
