// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNonZeroExit is wrapped by every ExitError so that callers can test
	// with errors.Is without caring about the concrete command.
	ErrNonZeroExit = errors.New("command failed with non-zero exit code")
	// ErrInvalidUTF8 is returned when captured output is not valid UTF-8 and
	// the decode policy is DecodeStrict.
	ErrInvalidUTF8 = errors.New("output is not valid utf-8")
)

// Result represents the outcome of running a program with Run or RunArgs.
// Stdout and Stderr are populated only when the corresponding stream was
// captured in text mode; RawStdout and RawStderr only in raw mode.
type Result struct {
	// Cmd is the command as handed to the host, for diagnostics.
	Cmd string
	// ExitCode is the child's exit code.
	ExitCode int
	// Stdout is the captured, decoded standard output.
	Stdout string
	// Stderr is the captured, decoded standard error.
	Stderr string
	// RawStdout is the captured standard output in raw mode.
	RawStdout []byte
	// RawStderr is the captured standard error in raw mode.
	RawStderr []byte
}

// String implements fmt.Stringer for debug output.
func (r *Result) String() string {
	return fmt.Sprintf("Result(exitcode=%d, stdout=%q, stderr=%q)", r.ExitCode, r.Stdout, r.Stderr)
}

// ExitError is returned by Run and RunArgs when the child process exits with
// a non-zero code and the ErrorRaise policy is active.
type ExitError struct {
	// Cmd is the command that failed.
	Cmd string
	// ExitCode is the child's exit code.
	ExitCode int
	// Stdout is the captured standard output, if the stream was captured.
	Stdout string
	// Stderr is the captured standard error, if the stream was captured.
	Stderr string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q failed with exit code %d", e.Cmd, e.ExitCode)
	if e.Stderr != "" {
		msg += "\nstderr:\n" + e.Stderr
	}

	return msg
}

// Unwrap makes errors.Is(err, ErrNonZeroExit) work.
func (e *ExitError) Unwrap() error {
	return ErrNonZeroExit
}

// DecodePolicyKind selects how invalid UTF-8 in captured output is handled.
type DecodePolicyKind int

const (
	// DecodeReplace substitutes each invalid byte with U+FFFD. The default.
	DecodeReplace DecodePolicyKind = iota
	// DecodeIgnore drops invalid bytes.
	DecodeIgnore
	// DecodeStrict fails with ErrInvalidUTF8.
	DecodeStrict
)

// decode converts captured output bytes to a string per the policy.
func decode(b []byte, policy DecodePolicyKind) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}

	if policy == DecodeStrict {
		return "", ErrInvalidUTF8
	}

	sb := strings.Builder{}
	sb.Grow(len(b))

	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			if policy == DecodeReplace {
				sb.WriteRune(utf8.RuneError)
			}
		} else {
			sb.WriteRune(r)
		}

		b = b[size:]
	}

	return sb.String(), nil
}

// SplitLines splits s on line endings, for use on captured output.
// Leading and trailing whitespace is trimmed first; a blank string yields nil.
func SplitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return strings.Split(s, "\n")
}

// SplitOn returns a function that splits a string on the given separator,
// dropping a single trailing empty element. For use on captured output.
//
//	SplitOn("X")("aXbXcX") // ["a", "b", "c"]
func SplitOn(sep string) func(string) []string {
	return func(s string) []string {
		parts := strings.Split(s, sep)
		if len(parts) > 0 && parts[len(parts)-1] == "" {
			return parts[:len(parts)-1]
		}

		return parts
	}
}
