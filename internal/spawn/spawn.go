// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package spawn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"github.com/matt-FFFFFF/gosh/internal/ctxlog"
	"github.com/matt-FFFFFF/gosh/internal/signalbroker"
)

// MaxCaptureSize is the per-stream cap on captured output.
const MaxCaptureSize = 8 * 1024 * 1024 // 8MB

var (
	// ErrBufferOverflow is returned when captured output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", MaxCaptureSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrTimeoutExceeded is returned when the context is cancelled while the child is running.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrSignalReceived is returned when an operating system signal was forwarded to the child.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a duplicate signal forced process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// SinkKind selects the destination of a child output stream.
type SinkKind int

const (
	// SinkInherit passes the stream through to the parent's own stream.
	SinkInherit SinkKind = iota
	// SinkCapture collects the stream in memory, capped at MaxCaptureSize.
	SinkCapture
	// SinkWriter forwards the stream to a caller-supplied writer.
	SinkWriter
)

// Sink is the destination of one child output stream.
type Sink struct {
	Kind   SinkKind
	Writer io.Writer // destination when Kind is SinkWriter
}

// Spec describes a single child process invocation.
type Spec struct {
	Path        string    // full path to the executable
	Args        []string  // arguments, excluding the executable name itself
	Dir         string    // working directory; empty means the parent's
	Env         []string  // complete environment; nil inherits the parent's
	Stdin       io.Reader // stdin payload; nil inherits the parent's stdin
	Stdout      Sink
	Stderr      Sink
	MergeStderr bool // route the child's stderr into its stdout stream

	sigCh chan os.Signal // allows mocking in tests
}

// SetSignalCh overrides the signal channel used by the watchdog.
func (s *Spec) SetSignalCh(ch chan os.Signal) {
	s.sigCh = ch
}

// Outcome is the collected result of a finished child process.
type Outcome struct {
	ExitCode int
	Stdout   []byte // captured bytes, only when Stdout.Kind is SinkCapture
	Stderr   []byte
	Err      error
}

// Run starts the process described by spec, waits for it to finish and
// returns its outcome. A non-zero exit code is not an error by itself;
// Err reports start failures, signal/cancellation kills and capture
// overflows.
func Run(ctx context.Context, spec *Spec) *Outcome {
	logger := ctxlog.Logger(ctx).With("component", "spawn")
	logger.Debug("command info", "path", spec.Path, "dir", spec.Dir, "args", spec.Args)

	out := &Outcome{}

	if spec.sigCh == nil {
		spec.sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(spec.sigCh)
	}

	stdout, stdoutBuf := sinkWriter(spec.Stdout, os.Stdout)
	stderr, stderrBuf := sinkWriter(spec.Stderr, os.Stderr)

	if spec.MergeStderr {
		stderr = stdout
		stderrBuf = nil
	}

	// Keep the parent's view of the streams ordered when passing through.
	if spec.Stdout.Kind == SinkInherit {
		_ = os.Stdout.Sync()
	}

	if spec.Stderr.Kind == SinkInherit {
		_ = os.Stderr.Sync()
	}

	stdin := spec.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	cmd := &exec.Cmd{
		Path:   spec.Path,
		Args:   slices.Concat([]string{filepath.Base(spec.Path)}, spec.Args),
		Dir:    spec.Dir,
		Env:    spec.Env,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	logger.Debug("starting process")

	if err := cmd.Start(); err != nil {
		out.Err = errors.Join(ErrCouldNotStartProcess, err)
		out.ExitCode = -1

		return out
	}

	logger.Debug("process started", "pid", cmd.Process.Pid)

	// The watchdog forwards signals to the child and kills it on context
	// cancellation or on a duplicate signal.
	done := make(chan struct{})
	killErrs := make(chan error, 2)

	go watchdog(ctx, cmd.Process, spec.sigCh, done, killErrs)

	logger.Debug("waiting for process to finish")

	waitErr := cmd.Wait()
	close(done)

	out.ExitCode = exitCode(cmd, waitErr)
	out.Err = waitErr

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		// Non-zero exit is reported through ExitCode, not Err.
		out.Err = nil
	}

	// Collect any kill reason recorded by the watchdog.
	for drained := false; !drained; {
		select {
		case e := <-killErrs:
			out.Err = errors.Join(out.Err, e)
			out.ExitCode = -1
		default:
			drained = true
		}
	}

	logger.Debug("process finished", "exitCode", out.ExitCode, "error", out.Err)

	if stdoutBuf != nil {
		out.Stdout = stdoutBuf.bytes()

		if stdoutBuf.overflowed {
			out.Err = errors.Join(out.Err, ErrBufferOverflow)
			out.ExitCode = -1
		}
	}

	if stderrBuf != nil {
		out.Stderr = stderrBuf.bytes()

		if stderrBuf.overflowed {
			out.Err = errors.Join(out.Err, ErrBufferOverflow)
			out.ExitCode = -1
		}
	}

	return out
}

// watchdog must not write into the child's stream writers: the exec copier
// goroutine owns them and they are not synchronized. Anything worth saying
// goes to the logger; kill reasons are reported before the kill so they are
// visible by the time Wait returns.
func watchdog(
	ctx context.Context,
	ps *os.Process,
	sigCh chan os.Signal,
	done <-chan struct{},
	killErrs chan<- error,
) {
	logger := ctxlog.Logger(ctx).With("component", "spawn")
	seen := make(map[os.Signal]struct{})

	report := func(err error) {
		select {
		case killErrs <- err:
		default:
		}
	}

	for {
		select {
		case s := <-sigCh:
			if _, ok := seen[s]; ok {
				logger.Info("received duplicate signal, killing process", "signal", s.String())
				report(ErrDuplicateSignalReceived)
				killPs(ctx, ps)

				return
			}

			seen[s] = struct{}{}

			logger.Info("received signal, forwarding to process", "signal", s.String())
			report(ErrSignalReceived)

			if err := ps.Signal(s); err != nil {
				logger.Info("failed to send signal", "signal", s.String(), "error", err)
			}

		case <-ctx.Done():
			logger.Info("context done, killing process")
			report(ErrTimeoutExceeded)
			killPs(ctx, ps)

			return

		case <-done:
			return
		}
	}
}

// sinkWriter resolves a sink to the writer handed to the child, plus the
// capture buffer when one exists.
func sinkWriter(s Sink, parent *os.File) (io.Writer, *capBuffer) {
	switch s.Kind {
	case SinkCapture:
		buf := &capBuffer{max: MaxCaptureSize}
		return buf, buf
	case SinkWriter:
		return s.Writer, nil
	default:
		return parent, nil
	}
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

// capBuffer accumulates writes up to max bytes and records overflow rather
// than failing the writer, so the child never sees a broken pipe.
type capBuffer struct {
	buf        bytes.Buffer
	max        int
	overflowed bool
}

func (c *capBuffer) Write(p []byte) (int, error) {
	room := c.max - c.buf.Len()
	if room > len(p) {
		room = len(p)
	}

	if room > 0 {
		c.buf.Write(p[:room])
	}

	if room < len(p) {
		c.overflowed = true
	}

	return len(p), nil
}

func (c *capBuffer) bytes() []byte {
	return c.buf.Bytes()
}
