// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/gosh/internal/ctxlog"
)

// Watch monitors the signal channel and handles signals.
// The first signal of a given type is a no-op, allowing the child process to
// shut down on its own. The second signal of the same type cancels the
// context and closes the channel.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Info(ctx, "watchdog", "detail", "received second signal of type, terminating", "signal", sig.String())
			close(sigCh)
			cancel()

			return
		}

		ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type, no-op", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}
