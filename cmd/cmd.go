// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"fmt"
	"os"

	"github.com/matt-FFFFFF/gosh"
	"github.com/matt-FFFFFF/gosh/cmd/run"
	"github.com/matt-FFFFFF/gosh/cmd/which"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		which.WhichCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "gosh",
	Description: `Gosh re-exposes host operating-system shell operations as plain functions
named after their Unix command-line counterparts. The CLI runs a single
command with the library's capture, tee and error-policy plumbing.`,
	Usage:     "gosh run --tee build.log -- make all",
	Version:   fmt.Sprintf("%s (%s)", gosh.Version, gosh.Commit),
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
