// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"math/rand"
	"os"
	"path/filepath"
)

const (
	tempSuffixLength = 8     // length of the random part of temp names
	tempDirMode      = 0o700 // mode for created temporary directories
	tempFileMode     = 0o600 // mode for created temporary files
)

// TempDirPath returns the base directory for temporary resources.
var TempDirPath = os.TempDir

// RandomName generates a random string with the given prefix and length.
var RandomName = func(prefix string, n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}

	return prefix + string(b)
}

type tempOpts struct {
	prefix      string
	suffix      string
	dir         string
	keep        bool
	keepOnError bool
}

// TempOption configures temporary file and directory creation.
type TempOption func(*tempOpts)

// TempPrefix sets the name prefix of the temporary resource.
func TempPrefix(prefix string) TempOption {
	return func(o *tempOpts) { o.prefix = prefix }
}

// TempSuffix sets the name suffix of the temporary resource.
func TempSuffix(suffix string) TempOption {
	return func(o *tempOpts) { o.suffix = suffix }
}

// TempIn creates the temporary resource under dir instead of the OS temp
// directory.
func TempIn(dir string) TempOption {
	return func(o *tempOpts) { o.dir = dir }
}

// TempKeep disables removal of the resource at the end of a WithTempDir
// block.
func TempKeep() TempOption {
	return func(o *tempOpts) { o.keep = true }
}

// TempKeepOnError keeps the resource at the end of a WithTempDir block when
// the block returned an error, for post-mortem inspection.
func TempKeepOnError() TempOption {
	return func(o *tempOpts) { o.keepOnError = true }
}

func newTempOpts(opts []TempOption) *tempOpts {
	o := &tempOpts{prefix: "gosh"}
	for _, opt := range opts {
		opt(o)
	}

	if o.dir == "" {
		o.dir = TempDirPath()
	}

	return o
}

// MkTempDir creates a temporary directory and returns its path along with a
// cleanup function that removes it. The cleanup function is safe to call
// more than once.
func MkTempDir(opts ...TempOption) (string, func(), error) {
	o := newTempOpts(opts)

	path := filepath.Join(o.dir, RandomName(o.prefix, tempSuffixLength)+o.suffix)
	if err := FS.Mkdir(path, tempDirMode); err != nil {
		return "", nil, err //nolint:wrapcheck
	}

	return path, func() { _ = RmTree(path) }, nil
}

// MkTempFile creates an empty temporary file and returns its path along with
// a cleanup function that removes it. The cleanup function is safe to call
// more than once.
func MkTempFile(opts ...TempOption) (string, func(), error) {
	o := newTempOpts(opts)

	path := filepath.Join(o.dir, RandomName(o.prefix, tempSuffixLength)+o.suffix)

	f, err := FS.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, tempFileMode)
	if err != nil {
		return "", nil, err //nolint:wrapcheck
	}

	if err := f.Close(); err != nil {
		return "", nil, err //nolint:wrapcheck
	}

	return path, func() { _ = RmF(path) }, nil
}

// WithTempDir creates a temporary directory, passes it to fn and removes it
// when fn returns. TempKeep disables the removal entirely; TempKeepOnError
// disables it only when fn failed.
func WithTempDir(fn func(dir string) error, opts ...TempOption) error {
	o := newTempOpts(opts)

	dir, cleanup, err := MkTempDir(opts...)
	if err != nil {
		return err
	}

	fnErr := fn(dir)

	if o.keep || (o.keepOnError && fnErr != nil) {
		return fnErr
	}

	cleanup()

	return fnErr
}
