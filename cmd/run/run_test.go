// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/gosh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	prevW, prevEW := RunCmd.Writer, RunCmd.ErrWriter
	RunCmd.Writer = &out
	RunCmd.ErrWriter = &errOut

	t.Cleanup(func() {
		RunCmd.Writer = prevW
		RunCmd.ErrWriter = prevEW
	})

	root := &cli.Command{
		Name:      "gosh",
		Commands:  []*cli.Command{RunCmd},
		Writer:    &out,
		ErrWriter: &errOut,
		// Keep the default handler from calling os.Exit so the test can
		// assert on the returned error instead.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := root.Run(t.Context(), append([]string{"gosh", "run"}, args...))

	return out.String(), errOut.String(), err
}

func TestRunCmdCapture(t *testing.T) {
	out, errOut, err := runCommand(t, "--capture", "--", "echo", "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
	assert.Empty(t, errOut)
}

func TestRunCmdNoArguments(t *testing.T) {
	_, _, err := runCommand(t)

	require.Error(t, err)
}

func TestRunCmdShellMode(t *testing.T) {
	out, _, err := runCommand(t, "--capture", "-s", "--", "echo", "$((1+1))")

	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestRunCmdEnv(t *testing.T) {
	out, _, err := runCommand(t, "--capture", "-s", "-e", "GREETING=hi", "--", "echo", "$GREETING")

	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestRunCmdBadEnv(t *testing.T) {
	_, _, err := runCommand(t, "-e", "NOVALUE", "--", "true")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "KEY=VALUE")
}

func TestRunCmdExitPolicy(t *testing.T) {
	testCases := []struct {
		name     string
		policy   string
		wantCode int
	}{
		{
			name:     "raise propagates the exit code",
			policy:   "raise",
			wantCode: 3,
		},
		{
			name:     "die propagates the exit code",
			policy:   "die",
			wantCode: 3,
		},
		{
			name:     "ignore swallows the exit code",
			policy:   "ignore",
			wantCode: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCommand(t, "--on-error", tc.policy, "--", "sh", "-c", "exit 3")

			if tc.wantCode == 0 {
				require.NoError(t, err)
				return
			}

			var exitErr cli.ExitCoder

			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tc.wantCode, exitErr.ExitCode())
		})
	}
}

func TestRunCmdUnknownPolicy(t *testing.T) {
	_, _, err := runCommand(t, "--on-error", "bogus", "--", "sh", "-c", "exit 3")

	var exitErr cli.ExitCoder

	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Error(), "unknown on-error policy")
}

func TestRunCmdTee(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "out.log")

	_, _, err := runCommand(t, "-t", logFile, "--", "echo", "teed")

	require.NoError(t, err)

	got, err := gosh.ReadFile(logFile)

	require.NoError(t, err)
	assert.Equal(t, "teed\n", got)
}

func TestRunCmdTeeAppend(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "out.log")

	require.NoError(t, gosh.WriteFile(logFile, "first\n"))

	_, _, err := runCommand(t, "-t", logFile, "-a", "--", "echo", "second")

	require.NoError(t, err)

	got, err := gosh.ReadFile(logFile)

	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", got)
}

func TestRunCmdConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "defaults.yaml")

	require.NoError(t, gosh.WriteFile(cfgPath, "on_error: ignore\n"))

	_, _, err := runCommand(t, "-c", cfgPath, "--", "sh", "-c", "exit 3")

	require.NoError(t, err)
}

func Test_firstOf(t *testing.T) {
	assert.Equal(t, "a", firstOf("a", "b"))
	assert.Equal(t, "b", firstOf("", "b"))
	assert.Empty(t, firstOf("", ""))
}
