// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// FS is the filesystem abstraction used by the file operations.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

var (
	// ErrNotAFile is returned when an operation expects a regular file.
	ErrNotAFile = errors.New("not a file")
	// ErrNotADirectory is returned when a directory copy targets an existing non-directory.
	ErrNotADirectory = errors.New("not a directory")
)

const (
	dirMode  = 0o777 // default mode for created directories, moderated by umask
	fileMode = 0o644 // default mode for created files
)

// Exists reports whether path exists.
func Exists(path string) bool {
	ok, _ := afero.Exists(FS, path)
	return ok
}

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) bool {
	info, err := FS.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	ok, _ := afero.IsDir(FS, path)
	return ok
}

// IsLink reports whether path is a symbolic link.
func IsLink(path string) bool {
	lstater, ok := FS.(afero.Lstater)
	if !ok {
		return false
	}

	info, lstatCalled, err := lstater.LstatIfPossible(path)

	return err == nil && lstatCalled && info.Mode()&os.ModeSymlink != 0
}

// FileSize returns the size of the file at path in bytes.
func FileSize(path string) (int64, error) {
	info, err := FS.Stat(path)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	return info.Size(), nil
}

// Mv renames src to dst. If dst is an existing directory, src is moved into
// it, keeping its basename.
func Mv(src, dst string) error {
	if IsDir(dst) {
		dst = filepath.Join(dst, filepath.Base(src))
	}

	return FS.Rename(src, dst) //nolint:wrapcheck
}

// Rm removes the file at path.
func Rm(path string) error {
	return FS.Remove(path) //nolint:wrapcheck
}

// RmF removes the file at path; a missing path is not an error.
func RmF(path string) error {
	if !Exists(path) {
		return nil
	}

	return FS.Remove(path) //nolint:wrapcheck
}

// RemoveFile removes the given file. It returns an error when path is not a
// regular file.
func RemoveFile(path string) error {
	if !IsFile(path) {
		return fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	return FS.Remove(path) //nolint:wrapcheck
}

// RmDir removes the empty directory at path.
func RmDir(path string) error {
	return FS.Remove(path) //nolint:wrapcheck
}

// RmTree removes path and any children it contains.
func RmTree(path string) error {
	return FS.RemoveAll(path) //nolint:wrapcheck
}

// Mkdir creates the directory path. The parent must exist.
func Mkdir(path string) error {
	return FS.Mkdir(path, dirMode) //nolint:wrapcheck
}

// MkdirMode creates the directory path with the given mode.
func MkdirMode(path string, mode os.FileMode) error {
	return FS.Mkdir(path, mode) //nolint:wrapcheck
}

// MkdirAll creates the directory path along with any missing parents.
func MkdirAll(path string) error {
	return FS.MkdirAll(path, dirMode) //nolint:wrapcheck
}

// Touch creates an empty file at path, or updates the timestamps of an
// existing one.
func Touch(path string) error {
	if Exists(path) {
		now := time.Now()
		return FS.Chtimes(path, now, now) //nolint:wrapcheck
	}

	f, err := FS.OpenFile(path, os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return f.Close() //nolint:wrapcheck
}

// Cp copies src to dst.
//
//   - file to file: overwrites dst;
//   - file to existing directory: places the copy in dst, keeping the
//     basename of src;
//   - directory to existing directory: copies the src directory itself, not
//     its contents, into dst;
//   - directory to a missing path: creates dst as a copy of src.
//
// Copying a directory onto an existing non-directory is an error.
func Cp(src, dst string) error {
	if IsFile(src) {
		if IsDir(dst) {
			dst = filepath.Join(dst, filepath.Base(src))
		}

		return copyFile(src, dst)
	}

	switch {
	case IsDir(dst):
		return copyTree(src, filepath.Join(dst, filepath.Base(src)))
	case Exists(dst):
		return fmt.Errorf("cannot copy directory %s to %s: %w", src, dst, ErrNotADirectory)
	default:
		return copyTree(src, dst)
	}
}

func copyFile(src, dst string) error {
	info, err := FS.Stat(src)
	if err != nil {
		return err //nolint:wrapcheck
	}

	in, err := FS.Open(src)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer in.Close() //nolint:errcheck

	out, err := FS.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err //nolint:wrapcheck
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err //nolint:wrapcheck
	}

	return out.Close() //nolint:wrapcheck
}

func copyTree(src, dst string) error {
	return afero.Walk(FS, src, func(path string, info os.FileInfo, err error) error { //nolint:wrapcheck
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return FS.MkdirAll(target, info.Mode().Perm())
		}

		return copyFile(path, target)
	})
}

// Ls returns the pathnames contained in dir, matching any of the given glob
// patterns. If no globs are given, all entries are returned. The pathnames
// in the result contain the directory part dir. An empty dir means the
// current directory.
func Ls(dir string, globs ...string) ([]string, error) {
	if dir == "" {
		dir = "."
	}

	matchers := make([]glob.Glob, 0, len(globs))

	for _, g := range globs {
		m, err := glob.Compile(g)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", g, err)
		}

		matchers = append(matchers, m)
	}

	entries, err := afero.ReadDir(FS, dir)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	var res []string

	for _, entry := range entries {
		if len(matchers) == 0 {
			res = append(res, filepath.Join(dir, entry.Name()))
			continue
		}

		for _, m := range matchers {
			if m.Match(entry.Name()) {
				res = append(res, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}

	return res, nil
}

// ReadFile returns the textual content of the file at path.
func ReadFile(path string) (string, error) {
	b, err := afero.ReadFile(FS, path)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	return string(b), nil
}

// ReadBytes returns the binary content of the file at path.
func ReadBytes(path string) ([]byte, error) {
	return afero.ReadFile(FS, path) //nolint:wrapcheck
}

// WriteFile writes the text content to the file at path.
func WriteFile(path, content string) error {
	return afero.WriteFile(FS, path, []byte(content), fileMode) //nolint:wrapcheck
}

// WriteBytes writes the binary content to the file at path.
func WriteBytes(path string, content []byte) error {
	return afero.WriteFile(FS, path, content, fileMode) //nolint:wrapcheck
}
