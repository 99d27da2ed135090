// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/matt-FFFFFF/gosh/internal/ctxlog"
	"github.com/matt-FFFFFF/gosh/internal/spawn"
)

const (
	goosWindows          = "windows"
	commandSwitchWindows = "/C" // command switch for Windows cmd.exe
	commandSwitchUnix    = "-c" // command switch for Unix-like shells
	binSh                = "/bin/sh"
)

var (
	// ErrEmptyCommand is returned when RunArgs is called with an empty argv.
	ErrEmptyCommand = errors.New("empty command")
	// ErrRawTransform is returned when a capture function is combined with raw mode.
	ErrRawTransform = errors.New("capture function requires text mode, not raw")
	// ErrRawTextInput is returned when a string input is combined with raw mode.
	ErrRawTextInput = errors.New("string input requires text mode, use WithInputBytes")

	// ErrCouldNotStartProcess is returned when the child process could not be started.
	ErrCouldNotStartProcess = spawn.ErrCouldNotStartProcess
	// ErrBufferOverflow is returned when captured output exceeds the per-stream cap.
	ErrBufferOverflow = spawn.ErrBufferOverflow
	// ErrKilled is returned when the child was killed due to context cancellation.
	ErrKilled = spawn.ErrTimeoutExceeded
)

// ErrorPolicy selects what Run does when the child exits with a non-zero code.
type ErrorPolicy int

const (
	// ErrorRaise returns an *ExitError. The default.
	ErrorRaise ErrorPolicy = iota
	// ErrorDie terminates the whole program with the child's exit code.
	ErrorDie
	// ErrorIgnore returns the Result with a nil error.
	ErrorIgnore
)

type captureMode int

const (
	captureOff captureMode = iota // stream passes through to the parent
	captureText
	captureWriter
)

type streamOpts struct {
	mode      captureMode
	fn        func(string)
	w         io.Writer
	decode    DecodePolicyKind
	decodeSet bool
}

type runOpts struct {
	onError     ErrorPolicy
	input       io.Reader
	textInput   bool
	raw         bool
	decode      DecodePolicyKind
	dir         string
	env         map[string]string
	freshEnv    map[string]string
	mergeStderr bool
	stdout      streamOpts
	stderr      streamOpts
}

// Option configures a single Run or RunArgs invocation.
type Option func(*runOpts)

// CaptureStdout collects the child's standard output and returns it,
// decoded, on the Result.
func CaptureStdout() Option {
	return func(o *runOpts) { o.stdout.mode = captureText }
}

// CaptureStderr collects the child's standard error and returns it,
// decoded, on the Result.
func CaptureStderr() Option {
	return func(o *runOpts) { o.stderr.mode = captureText }
}

// CaptureStdoutFunc collects and decodes the child's standard output and
// hands it to fn when the child has finished. Pair with SplitLines or
// SplitOn. Not valid in raw mode.
func CaptureStdoutFunc(fn func(string)) Option {
	return func(o *runOpts) {
		o.stdout.mode = captureText
		o.stdout.fn = fn
	}
}

// CaptureStderrFunc collects and decodes the child's standard error and
// hands it to fn when the child has finished. Not valid in raw mode.
func CaptureStderrFunc(fn func(string)) Option {
	return func(o *runOpts) {
		o.stderr.mode = captureText
		o.stderr.fn = fn
	}
}

// StdoutTo forwards the child's standard output to w as it is produced.
// A *Tee fits here to duplicate the stream across several destinations.
func StdoutTo(w io.Writer) Option {
	return func(o *runOpts) {
		o.stdout.mode = captureWriter
		o.stdout.w = w
	}
}

// StderrTo forwards the child's standard error to w as it is produced.
func StderrTo(w io.Writer) Option {
	return func(o *runOpts) {
		o.stderr.mode = captureWriter
		o.stderr.w = w
	}
}

// StderrToStdout merges the child's standard error into its standard output
// stream.
func StderrToStdout() Option {
	return func(o *runOpts) { o.mergeStderr = true }
}

// WithInput sends s to the child's standard input.
func WithInput(s string) Option {
	return func(o *runOpts) {
		o.input = strings.NewReader(s)
		o.textInput = true
	}
}

// WithInputBytes sends b to the child's standard input.
func WithInputBytes(b []byte) Option {
	return func(o *runOpts) { o.input = bytes.NewReader(b) }
}

// OnError sets the non-zero-exit policy.
func OnError(p ErrorPolicy) Option {
	return func(o *runOpts) { o.onError = p }
}

// Raw disables text decoding; captured output is returned as bytes on
// RawStdout/RawStderr.
func Raw() Option {
	return func(o *runOpts) { o.raw = true }
}

// DecodePolicy sets how invalid UTF-8 in captured output is handled, for
// both streams.
func DecodePolicy(p DecodePolicyKind) Option {
	return func(o *runOpts) { o.decode = p }
}

// DecodePolicyStdout overrides the decode policy for standard output only.
func DecodePolicyStdout(p DecodePolicyKind) Option {
	return func(o *runOpts) {
		o.stdout.decode = p
		o.stdout.decodeSet = true
	}
}

// DecodePolicyStderr overrides the decode policy for standard error only.
func DecodePolicyStderr(p DecodePolicyKind) Option {
	return func(o *runOpts) {
		o.stderr.decode = p
		o.stderr.decodeSet = true
	}
}

// InDir sets the child's working directory.
func InDir(dir string) Option {
	return func(o *runOpts) { o.dir = dir }
}

// WithEnv adds environment variables on top of the parent's environment.
func WithEnv(env map[string]string) Option {
	return func(o *runOpts) { o.env = env }
}

// FreshEnv replaces the child's environment entirely.
func FreshEnv(env map[string]string) Option {
	return func(o *runOpts) { o.freshEnv = env }
}

// Run executes command through the user's shell ($SHELL, falling back to
// /bin/sh; cmd.exe on Windows), so the string is subject to shell expansion.
// NUL and newline bytes in the command are normalized to spaces.
//
// On a non-zero exit code the ErrorPolicy decides whether an *ExitError is
// returned (ErrorRaise, the default), the program terminates (ErrorDie) or
// the Result is returned as-is (ErrorIgnore). The Result is non-nil whenever
// the child ran, including alongside an *ExitError.
func Run(ctx context.Context, command string, opts ...Option) (*Result, error) {
	command = strings.NewReplacer("\x00", " ", "\n", " ").Replace(command)

	sw := commandSwitchUnix
	if runtime.GOOS == goosWindows {
		sw = commandSwitchWindows
	}

	return run(ctx, defaultShell(ctx), []string{sw, command}, command, opts)
}

// RunArgs executes argv[0] with the remaining elements as raw arguments, with
// no shell expansion. argv[0] is looked up in PATH when it is a bare name.
// Error handling is as for Run.
func RunArgs(ctx context.Context, argv []string, opts ...Option) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	path := argv[0]
	if lp, err := exec.LookPath(path); err == nil {
		path = lp
	}

	return run(ctx, path, argv[1:], ListAsArgs(argv), opts)
}

func run(ctx context.Context, path string, args []string, display string, opts []Option) (*Result, error) {
	cfg := &runOpts{}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "running command",
		"cmd", display,
		"onError", cfg.onError,
		"raw", cfg.raw,
		"hasInput", cfg.input != nil,
	)

	spec := &spawn.Spec{
		Path:        path,
		Args:        args,
		Dir:         cfg.dir,
		Env:         cfg.environ(ctx),
		Stdin:       cfg.input,
		Stdout:      sink(cfg.stdout),
		Stderr:      sink(cfg.stderr),
		MergeStderr: cfg.mergeStderr,
	}

	out := spawn.Run(ctx, spec)

	res := &Result{
		Cmd:      display,
		ExitCode: out.ExitCode,
	}

	err := out.Err
	err = errors.Join(err, cfg.stdout.finish(out.Stdout, cfg, &res.Stdout, &res.RawStdout))
	err = errors.Join(err, cfg.stderr.finish(out.Stderr, cfg, &res.Stderr, &res.RawStderr))

	if err != nil {
		return res, err
	}

	if res.ExitCode != 0 {
		switch cfg.onError {
		case ErrorRaise:
			return res, &ExitError{
				Cmd:      display,
				ExitCode: res.ExitCode,
				Stdout:   res.Stdout,
				Stderr:   res.Stderr,
			}
		case ErrorDie:
			ctxlog.Error(ctx, "command failed, terminating", "cmd", display, "exitCode", res.ExitCode)
			os.Exit(res.ExitCode)
		case ErrorIgnore:
		}
	}

	return res, nil
}

func (o *runOpts) validate() error {
	if !o.raw {
		return nil
	}

	if o.stdout.fn != nil || o.stderr.fn != nil {
		return ErrRawTransform
	}

	if o.textInput {
		return ErrRawTextInput
	}

	return nil
}

// environ assembles the child's environment: nil inherits the parent's, a
// fresh env replaces it, and additions are layered on top of either.
func (o *runOpts) environ(ctx context.Context) []string {
	if o.env == nil && o.freshEnv == nil {
		return nil
	}

	var env []string
	if o.freshEnv != nil {
		env = make([]string, 0, len(o.freshEnv)+len(o.env))
		for k, v := range o.freshEnv {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
	} else {
		env = os.Environ()
	}

	for k, v := range o.env {
		ctxlog.Debug(ctx, "adding environment variable", "key", k)
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

func sink(s streamOpts) spawn.Sink {
	switch s.mode {
	case captureText:
		return spawn.Sink{Kind: spawn.SinkCapture}
	case captureWriter:
		return spawn.Sink{Kind: spawn.SinkWriter, Writer: s.w}
	default:
		return spawn.Sink{}
	}
}

// finish moves captured bytes onto the result, decoding in text mode and
// invoking the capture function if one is set.
func (s *streamOpts) finish(captured []byte, cfg *runOpts, text *string, raw *[]byte) error {
	if s.mode != captureText {
		return nil
	}

	if cfg.raw {
		*raw = captured
		return nil
	}

	policy := cfg.decode
	if s.decodeSet {
		policy = s.decode
	}

	decoded, err := decode(captured, policy)
	if err != nil {
		return err
	}

	*text = decoded

	if s.fn != nil {
		s.fn(decoded)
	}

	return nil
}

// defaultShell resolves the shell used by Run: cmd.exe on Windows, otherwise
// $SHELL falling back to /bin/sh.
func defaultShell(ctx context.Context) string {
	if runtime.GOOS == goosWindows {
		systemRoot := os.Getenv("SystemRoot")
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\System32\cmd.exe`, systemRoot)
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		ctxlog.Debug(ctx, "using SHELL environment variable", "shell", shell)
		return shell
	}

	return binSh
}
