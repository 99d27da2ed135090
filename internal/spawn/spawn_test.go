// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package spawn

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/matt-FFFFFF/gosh/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	return ctxlog.New(ctx, ctxlog.DefaultLogger)
}

func TestRun_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	spec := &Spec{
		Path:   "/bin/echo",
		Args:   []string{"hello"},
		Stdout: Sink{Kind: SinkCapture},
	}

	out := Run(testCtx(t), spec)

	require.NoError(t, out.Err)
	assert.Equal(t, 0, out.ExitCode)
	assert.Contains(t, string(out.Stdout), "hello")
}

func TestRun_NonZeroExit(t *testing.T) {
	defer goleak.VerifyNone(t)

	spec := &Spec{
		Path: "/bin/sh",
		Args: []string{"-c", "exit 3"},
	}

	out := Run(testCtx(t), spec)

	require.NoError(t, out.Err, "non-zero exit is not an error")
	assert.Equal(t, 3, out.ExitCode)
}

func TestRun_NotFound(t *testing.T) {
	defer goleak.VerifyNone(t)

	spec := &Spec{
		Path: "/not/a/real/command",
	}

	out := Run(testCtx(t), spec)

	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, ErrCouldNotStartProcess)

	var pathErr *os.PathError

	assert.ErrorAs(t, out.Err, &pathErr)
	assert.Equal(t, -1, out.ExitCode)
}

func TestRun_EnvAndDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	if runtime.GOOS == "windows" {
		t.Skip("skipping env/dir test on windows")
	}

	tempDir := t.TempDir()
	spec := &Spec{
		Path:   "/bin/sh",
		Args:   []string{"-c", "echo $FOO; pwd"},
		Dir:    tempDir,
		Env:    append(os.Environ(), "FOO=BAR"),
		Stdout: Sink{Kind: SinkCapture},
	}

	out := Run(testCtx(t), spec)

	require.NoError(t, out.Err)
	got := string(out.Stdout)
	assert.Contains(t, got, "BAR")
	assert.Contains(t, got, tempDir)
}

func TestRun_Stdin(t *testing.T) {
	defer goleak.VerifyNone(t)

	spec := &Spec{
		Path:   "/bin/cat",
		Stdin:  strings.NewReader("blub"),
		Stdout: Sink{Kind: SinkCapture},
	}

	out := Run(testCtx(t), spec)

	require.NoError(t, out.Err)
	assert.Equal(t, "blub", string(out.Stdout))
}

func TestRun_WriterSink(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer

	spec := &Spec{
		Path:   "/bin/echo",
		Args:   []string{"-n", "teed"},
		Stdout: Sink{Kind: SinkWriter, Writer: &buf},
	}

	out := Run(testCtx(t), spec)

	require.NoError(t, out.Err)
	assert.Equal(t, "teed", buf.String())
	assert.Nil(t, out.Stdout, "writer sink must not capture")
}

func TestRun_MergeStderr(t *testing.T) {
	defer goleak.VerifyNone(t)

	spec := &Spec{
		Path:        "/bin/sh",
		Args:        []string{"-c", "echo out; echo err 1>&2"},
		Stdout:      Sink{Kind: SinkCapture},
		MergeStderr: true,
	}

	out := Run(testCtx(t), spec)

	require.NoError(t, out.Err)
	got := string(out.Stdout)
	assert.Contains(t, got, "out")
	assert.Contains(t, got, "err")
	assert.Empty(t, out.Stderr)
}

func TestRun_SeparateStreams(t *testing.T) {
	defer goleak.VerifyNone(t)

	spec := &Spec{
		Path:   "/bin/sh",
		Args:   []string{"-c", "printf foo; printf bar 1>&2"},
		Stdout: Sink{Kind: SinkCapture},
		Stderr: Sink{Kind: SinkCapture},
	}

	out := Run(testCtx(t), spec)

	require.NoError(t, out.Err)
	assert.Equal(t, "foo", string(out.Stdout))
	assert.Equal(t, "bar", string(out.Stderr))
}

func TestRun_ContextCancelKillsChild(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	spec := &Spec{
		Path: "/bin/sleep",
		Args: []string{"30"},
	}

	start := time.Now()
	out := Run(ctx, spec)

	assert.Less(t, time.Since(start), 10*time.Second, "child should be killed promptly")
	assert.ErrorIs(t, out.Err, ErrTimeoutExceeded)
	assert.Equal(t, -1, out.ExitCode)
}

func TestRun_DuplicateSignalKills(t *testing.T) {
	defer goleak.VerifyNone(t)

	sigCh := make(chan os.Signal, 2)
	sigCh <- syscall.SIGTERM
	sigCh <- syscall.SIGTERM

	spec := &Spec{
		Path:   "/bin/sh",
		Args:   []string{"-c", "trap '' TERM; while :; do :; done"},
		Stderr: Sink{Kind: SinkCapture},
	}
	spec.SetSignalCh(sigCh)

	out := Run(testCtx(t), spec)

	assert.ErrorIs(t, out.Err, ErrDuplicateSignalReceived)
	assert.Equal(t, -1, out.ExitCode)
}

func TestRun_SignalDoesNotCorruptStderrCapture(t *testing.T) {
	defer goleak.VerifyNone(t)

	sigCh := make(chan os.Signal, 1)
	sigCh <- syscall.SIGTERM

	// The child ignores the forwarded signal and keeps streaming on stderr,
	// so the capture buffer is being written while the watchdog handles the
	// signal. The capture must contain the child's bytes and nothing else.
	spec := &Spec{
		Path:   "/bin/sh",
		Args:   []string{"-c", "trap '' TERM; i=0; while [ $i -lt 200 ]; do echo spam 1>&2; i=$((i+1)); done"},
		Stderr: Sink{Kind: SinkCapture},
	}
	spec.SetSignalCh(sigCh)

	out := Run(testCtx(t), spec)

	assert.ErrorIs(t, out.Err, ErrSignalReceived)

	for _, line := range strings.Split(strings.TrimSpace(string(out.Stderr)), "\n") {
		assert.Equal(t, "spam", line)
	}
}

func TestCapBuffer_Overflow(t *testing.T) {
	buf := &capBuffer{max: 4}

	n, err := buf.Write([]byte("abcdef"))

	require.NoError(t, err)
	assert.Equal(t, 6, n, "writer must consume everything")
	assert.Equal(t, "abcd", string(buf.bytes()))
	assert.True(t, buf.overflowed)
}

func TestCapBuffer_ExactFit(t *testing.T) {
	buf := &capBuffer{max: 4}

	_, err := buf.Write([]byte("abcd"))

	require.NoError(t, err)
	assert.Equal(t, "abcd", string(buf.bytes()))
	assert.False(t, buf.overflowed)
}
