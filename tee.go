// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// DefaultTeeBufferSize is the number of bytes buffered between writes to a
// Tee and the flush to its destinations.
const DefaultTeeBufferSize = 128

// ErrTeeClosed is returned when writing to a closed Tee.
var ErrTeeClosed = errors.New("tee is closed")

type teeDestKind int

const (
	teeDestFile teeDestKind = iota
	teeDestAppend
	teeDestStdout
	teeDestStderr
	teeDestWriter
)

// TeeDest is one destination of a Tee.
type TeeDest struct {
	kind teeDestKind
	path string
	w    io.Writer
}

// TeeFile writes to the file at path, truncating it first.
func TeeFile(path string) TeeDest {
	return TeeDest{kind: teeDestFile, path: path}
}

// TeeAppend appends to the file at path.
func TeeAppend(path string) TeeDest {
	return TeeDest{kind: teeDestAppend, path: path}
}

// TeeStdout sends output to the parent process's own stdout.
var TeeStdout = TeeDest{kind: teeDestStdout}

// TeeStderr sends output to the parent process's own stderr.
var TeeStderr = TeeDest{kind: teeDestStderr}

// TeeWriter writes to an arbitrary writer. The writer is not closed by the
// Tee.
func TeeWriter(w io.Writer) TeeDest {
	return TeeDest{kind: teeDestWriter, w: w}
}

// TeeOption configures a Tee.
type TeeOption func(*Tee)

// TeeBufferSize controls the size of the buffer between writes to the Tee
// and the flushes to its destinations.
func TeeBufferSize(n int) TeeOption {
	return func(t *Tee) {
		if n > 0 {
			t.bufSize = n
		}
	}
}

// Tee is a writer that mirrors every write across multiple destinations,
// like the Unix tee command. It fits the StdoutTo and StderrTo options of
// Run. Writes are buffered up to the configured size before being flushed
// to the destinations; Close flushes the remainder and closes every file
// the Tee opened.
//
// A Tee is safe for use by a single producer; writes are serialized
// internally.
type Tee struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	bufSize int
	writers []io.Writer
	closers []io.Closer
	closed  bool
}

var _ io.WriteCloser = (*Tee)(nil)

// NewTee creates a Tee over the given destinations. Files are opened
// immediately; when one cannot be opened, every already-opened file is
// closed before the error is returned.
func NewTee(dests []TeeDest, opts ...TeeOption) (*Tee, error) {
	t := &Tee{bufSize: DefaultTeeBufferSize}

	for _, opt := range opts {
		opt(t)
	}

	for _, d := range dests {
		switch d.kind {
		case teeDestFile, teeDestAppend:
			flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
			if d.kind == teeDestAppend {
				flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			}

			f, err := FS.OpenFile(d.path, flags, fileMode)
			if err != nil {
				_ = t.closeFiles()
				return nil, err //nolint:wrapcheck
			}

			t.writers = append(t.writers, f)
			t.closers = append(t.closers, f)
		case teeDestStdout:
			t.writers = append(t.writers, os.Stdout)
		case teeDestStderr:
			t.writers = append(t.writers, os.Stderr)
		case teeDestWriter:
			t.writers = append(t.writers, d.w)
		}
	}

	return t, nil
}

// Write implements io.Writer. The data is buffered and forwarded to every
// destination once the buffer size is reached.
func (t *Tee) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrTeeClosed
	}

	t.buf.Write(p)

	if t.buf.Len() >= t.bufSize {
		if err := t.flushLocked(); err != nil {
			return len(p), err
		}
	}

	return len(p), nil
}

// Flush forwards any buffered data to the destinations.
func (t *Tee) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTeeClosed
	}

	return t.flushLocked()
}

// Close flushes the remaining buffered data and closes every file opened by
// the Tee. The parent's own streams and caller-supplied writers are left
// open. All failures are reported together.
func (t *Tee) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	var result *multierror.Error

	if err := t.flushLocked(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := t.closeFiles(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func (t *Tee) flushLocked() error {
	if t.buf.Len() == 0 {
		return nil
	}

	data := t.buf.Bytes()

	var result *multierror.Error

	for _, w := range t.writers {
		if _, err := w.Write(data); err != nil {
			result = multierror.Append(result, err)
		}
	}

	t.buf.Reset()

	return result.ErrorOrNil()
}

func (t *Tee) closeFiles() error {
	var result *multierror.Error

	for _, c := range t.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	t.closers = nil

	return result.ErrorOrNil()
}
