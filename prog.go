// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrProgNotFound is returned when no candidate program can be resolved.
	ErrProgNotFound = errors.New("program not found")
	// ErrNoGnuVariant is returned when no GNU variant of a program exists.
	ErrNoGnuVariant = errors.New("no GNU variant found for program")
)

// ResolveProg returns the full path of the first program in the list that
// exists and is runnable, or the empty string when none does.
func ResolveProg(names ...string) string {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// GnuProg resolves the GNU version of program name, preferring the
// g-prefixed variant common on BSD and macOS systems. The resolved program
// must identify itself as GNU in its --version output.
func GnuProg(ctx context.Context, name string) (string, error) {
	prog := ResolveProg("g"+name, name)
	if prog == "" {
		return "", fmt.Errorf("%w: %s", ErrProgNotFound, name)
	}

	res, err := RunArgs(ctx, []string{prog, "--version"},
		CaptureStdout(), OnError(ErrorIgnore))
	if err != nil {
		return "", err
	}

	if !strings.Contains(res.Stdout, "GNU") {
		return "", fmt.Errorf("%w: %s", ErrNoGnuVariant, name)
	}

	return prog, nil
}
