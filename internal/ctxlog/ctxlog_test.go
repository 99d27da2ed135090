// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
)

func TestNewAndLogger(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	tests := []struct {
		name   string
		logger *slog.Logger
		want   *slog.Logger
	}{
		{
			name:   "custom logger round-trips",
			logger: custom,
			want:   custom,
		},
		{
			name:   "nil logger falls back to default",
			logger: nil,
			want:   DefaultLogger,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := New(context.Background(), tc.logger)
			assert.Same(t, tc.want, Logger(ctx))
		})
	}
}

func TestLoggerWithoutContextValue(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))
}

func TestLevelFuncs(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := New(context.Background(), logger)

	Debug(ctx, "debug msg", "k", "v")
	Info(ctx, "info msg")
	Warn(ctx, "warn msg")
	Error(ctx, "error msg")

	out := buf.String()
	assert.Contains(t, out, "debug msg")
	assert.Contains(t, out, "info msg")
	assert.Contains(t, out, "warn msg")
	assert.Contains(t, out, "error msg")
	assert.Contains(t, out, "k=v")
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelWarn},
		{"", slog.LevelWarn},
	}

	for _, tc := range tests {
		t.Run("value "+tc.value, func(t *testing.T) {
			stub := gostub.New().SetEnv(LevelEnvVar, tc.value)
			defer stub.Reset()

			assert.Equal(t, tc.want, levelFromEnv())
		})
	}
}
