// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package spawn runs a single child process synchronously and collects its
// outcome. Each of the child's output streams is routed to a sink: the
// parent's own stream, a capped in-memory capture buffer, or an arbitrary
// io.Writer. A watchdog goroutine forwards termination signals to the child
// once, force-kills it on a duplicate signal, and kills it when the context
// is cancelled.
package spawn
