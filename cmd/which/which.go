// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package which implements the gosh which command.
package which

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/gosh"
	"github.com/urfave/cli/v3"
)

// WhichCmd resolves program names in PATH, like which(1).
var WhichCmd = &cli.Command{
	Name:        "which",
	Description: "Print the full path of each program, or fail if one cannot be resolved.",
	ArgsUsage:   "PROG [PROG...]",
	Action:      actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	progs := cmd.Args().Slice()
	if len(progs) == 0 {
		return cli.Exit("Please provide at least one program name", 1)
	}

	missing := false

	for _, prog := range progs {
		path := gosh.ResolveProg(prog)
		if path == "" {
			fmt.Fprintf(cmd.ErrWriter, "%s not found\n", prog) //nolint:errcheck

			missing = true

			continue
		}

		fmt.Fprintln(cmd.Writer, path) //nolint:errcheck
	}

	if missing {
		return cli.Exit("", 1)
	}

	return nil
}
