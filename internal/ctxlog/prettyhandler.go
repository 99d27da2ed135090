// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/gosh/internal/color"
)

var (
	// ErrMarshalAttribute is returned when an attribute cannot be marshaled.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrIoWrite is returned when the output writer fails.
	ErrIoWrite = errors.New("error when writing to output")
)

// TimeFormat is the format used for timestamps in log messages.
const TimeFormat = "[15:04:05.000]"

// PrettyHandler is a slog handler that formats records for the console:
// a dim timestamp, a level colored by severity, the message, and the
// remaining attributes as colorized JSON.
type PrettyHandler struct {
	h       slog.Handler
	replace func([]string, slog.Attr) slog.Attr
	b       *bytes.Buffer
	m       *sync.Mutex
	writer  io.Writer
	colored bool
}

// Option configures a PrettyHandler.
type Option func(h *PrettyHandler)

// WithDestinationWriter sets the destination writer.
func WithDestinationWriter(writer io.Writer) Option {
	return func(h *PrettyHandler) {
		h.writer = writer
	}
}

// WithColor forces colored output.
func WithColor() Option {
	return func(h *PrettyHandler) {
		h.colored = true
	}
}

// WithAutoColor enables colored output when the terminal supports it.
func WithAutoColor() Option {
	return func(h *PrettyHandler) {
		h.colored = color.Enabled()
	}
}

// NewPrettyHandler creates a new PrettyHandler with the given options.
func NewPrettyHandler(handlerOptions *slog.HandlerOptions, options ...Option) *PrettyHandler {
	if handlerOptions == nil {
		handlerOptions = &slog.HandlerOptions{}
	}

	buf := &bytes.Buffer{}
	handler := &PrettyHandler{
		b: buf,
		h: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       handlerOptions.Level,
			AddSource:   handlerOptions.AddSource,
			ReplaceAttr: suppressDefaults(handlerOptions.ReplaceAttr),
		}),
		replace: handlerOptions.ReplaceAttr,
		m:       &sync.Mutex{},
	}

	for _, opt := range options {
		opt(handler)
	}

	return handler
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

// WithAttrs implements slog.Handler.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyHandler{
		h: h.h.WithAttrs(attrs), b: h.b, replace: h.replace, m: h.m,
		writer: h.writer, colored: h.colored,
	}
}

// WithGroup implements slog.Handler.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{
		h: h.h.WithGroup(name), b: h.b, replace: h.replace, m: h.m,
		writer: h.writer, colored: h.colored,
	}
}

// Handle implements slog.Handler.
func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	level := h.resolveAttr(slog.LevelKey, slog.AnyValue(r.Level))
	if level != "" {
		level += ":"
		level = h.colorize(level, levelColor(r.Level))
	}

	timestamp := h.resolveAttr(slog.TimeKey, slog.StringValue(r.Time.Format(TimeFormat)))
	timestamp = h.colorize(timestamp, color.FgWhite)

	msg := h.resolveAttr(slog.MessageKey, slog.StringValue(r.Message))
	msg = h.colorize(msg, color.FgHiWhite)

	attrs, err := h.computeAttrs(ctx, r)
	if err != nil {
		return err
	}

	var attrsAsBytes []byte

	if len(attrs) > 0 {
		formatter := colorjson.NewFormatter()
		formatter.Indent = 2
		formatter.DisabledColor = !h.colored

		attrsAsBytes, err = formatter.Marshal(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}
	}

	out := strings.Builder{}

	for _, part := range []string{timestamp, level, msg} {
		if part == "" {
			continue
		}

		out.WriteString(part)
		out.WriteString(" ")
	}

	if len(attrsAsBytes) > 0 {
		out.WriteString(string(attrsAsBytes))
	}

	out.WriteString("\n")

	if _, err := io.WriteString(h.writer, out.String()); err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

// resolveAttr runs the user's ReplaceAttr function over a built-in record
// field and returns the resulting display string, or "" if suppressed.
func (h *PrettyHandler) resolveAttr(key string, value slog.Value) string {
	attr := slog.Attr{Key: key, Value: value}
	if h.replace != nil {
		attr = h.replace([]string{}, attr)
	}

	if attr.Equal(slog.Attr{}) {
		return ""
	}

	return attr.Value.String()
}

func (h *PrettyHandler) colorize(s string, c color.Code) string {
	if !h.colored || s == "" {
		return s
	}

	return color.Colorize(s, c)
}

// computeAttrs round-trips the record through the inner JSON handler to
// obtain the non-builtin attributes as a map.
func (h *PrettyHandler) computeAttrs(ctx context.Context, r slog.Record) (map[string]any, error) {
	h.m.Lock()
	defer func() {
		h.b.Reset()
		h.m.Unlock()
	}()

	if err := h.h.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("error when calling inner handler's Handle: %w", err)
	}

	var attrs map[string]any
	if err := json.Unmarshal(h.b.Bytes(), &attrs); err != nil {
		return nil, fmt.Errorf("error when unmarshaling inner handler's Handle result: %w", err)
	}

	return attrs, nil
}

func levelColor(l slog.Level) color.Code {
	switch {
	case l <= slog.LevelDebug:
		return color.FgWhite
	case l <= slog.LevelInfo:
		return color.FgCyan
	case l < slog.LevelError:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func suppressDefaults(next func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey ||
			a.Key == slog.LevelKey ||
			a.Key == slog.MessageKey {
			return slog.Attr{}
		}

		if next == nil {
			return a
		}

		return next(groups, a)
	}
}
