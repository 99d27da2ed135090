// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gosh re-exposes host operating-system shell operations as plain Go
// functions named after their Unix counterparts. It bundles subprocess
// execution ([Run], [RunArgs]), file manipulation ([Cp], [Mv], [Rm], [Ls]),
// path helpers, a tee output sink and scoped temporary-directory and
// working-directory helpers, so that shell-script style programs need less
// boilerplate.
//
// A quick demo:
//
//	ctx := context.Background()
//
//	_ = gosh.Rm("a/b/foo.txt")
//	_ = gosh.Mv("X.pdf", gosh.Join(gosh.Home(), "contents.pdf"))
//
//	files, _ := gosh.Ls("Documents", "*.txt", "*.c")
//	res, _ := gosh.RunArgs(ctx, append([]string{"grep", "magic"}, files...),
//		gosh.CaptureStdout(), gosh.OnError(gosh.ErrorIgnore))
//	matches := gosh.SplitLines(res.Stdout)
//
// All real filesystem and process semantics are left to the host operating
// system; every function is a thin forwarding call with light parameter
// normalization and error wrapping.
package gosh

import (
	"fmt"
	"os"
)

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)

// Home returns the value of the HOME environment variable.
func Home() string {
	return os.Getenv("HOME")
}

// Fatal displays an error message on stderr.
func Fatal(msg string) {
	fmt.Fprintln(os.Stderr, "ERROR: "+msg)
}

// Abort displays an error message on stderr and exits the program with code 1.
func Abort(msg string) {
	Fatal(msg)
	os.Exit(1)
}

// Exit terminates the program with the given exit code.
func Exit(code int) {
	os.Exit(code)
}
