// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"errors"
	"os"
)

// Cd changes the working directory of the process.
func Cd(dir string) error {
	return os.Chdir(dir) //nolint:wrapcheck
}

// Pwd returns the current working directory.
func Pwd() (string, error) {
	return os.Getwd() //nolint:wrapcheck
}

// WithWorkingDir changes the working directory to dir, runs fn and restores
// the previous working directory, regardless of how fn exits. Restoration
// failures are reported alongside fn's error.
func WithWorkingDir(dir string, fn func() error) error {
	prev, err := Pwd()
	if err != nil {
		return err
	}

	if err := Cd(dir); err != nil {
		return err
	}

	fnErr := fn()

	return errors.Join(fnErr, Cd(prev))
}
