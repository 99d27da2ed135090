// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"os"
	"path/filepath"
	"strings"
)

// Thin wrappers over path/filepath, named after their Unix counterparts.

// Basename returns the last element of path.
func Basename(path string) string {
	return filepath.Base(path)
}

// Dirname returns all but the last element of path.
func Dirname(path string) string {
	return filepath.Dir(path)
}

// AbsPath returns an absolute representation of path.
func AbsPath(path string) (string, error) {
	return filepath.Abs(path) //nolint:wrapcheck
}

// RealPath returns path with all symlinks resolved.
func RealPath(path string) (string, error) {
	return filepath.EvalSymlinks(path) //nolint:wrapcheck
}

// Ext returns the file extension of path, including the dot. Leading dots of
// the basename do not start an extension, so a dotfile like ".bashrc" has
// none.
func Ext(path string) string {
	base := filepath.Base(path)
	if !strings.Contains(strings.TrimLeft(base, "."), ".") {
		return ""
	}

	return filepath.Ext(path)
}

// RemoveExt returns path with its extension removed.
func RemoveExt(path string) string {
	return path[:len(path)-len(Ext(path))]
}

// SplitExt splits path into the part before the extension and the extension.
func SplitExt(path string) (string, string) {
	ext := Ext(path)
	return path[:len(path)-len(ext)], ext
}

// ExpandEnv replaces $var or ${var} in s with the values of the current
// environment variables.
func ExpandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Join joins any number of path elements into a single path.
func Join(elem ...string) string {
	return filepath.Join(elem...)
}
