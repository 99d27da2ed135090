// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the gosh run command.
package run

import (
	"context"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/gosh"
	"github.com/matt-FFFFFF/gosh/internal/config"
	"github.com/matt-FFFFFF/gosh/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	configFlag  = "config"
	captureFlag = "capture"
	teeFlag     = "tee"
	appendFlag  = "append"
	dirFlag     = "dir"
	envFlag     = "env"
	onErrorFlag = "on-error"
	shellFlag   = "shell"
)

// RunCmd runs a single command with the library's capture, tee and
// error-policy plumbing.
var RunCmd = &cli.Command{
	Name:        "run",
	Description: "Run a command, optionally teeing its output to files.",
	ArgsUsage:   "-- CMD [ARGS...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "Path to a YAML defaults file (default: ./" + config.DefaultFileName + " if present)",
		},
		&cli.BoolFlag{
			Name:  captureFlag,
			Usage: "Capture the command's output instead of passing it through, and print it when the command finishes",
		},
		&cli.StringSliceFlag{
			Name:    teeFlag,
			Aliases: []string{"t"},
			Usage:   "Duplicate the command's output to FILE; may be repeated",
		},
		&cli.BoolFlag{
			Name:    appendFlag,
			Aliases: []string{"a"},
			Usage:   "Open tee files in append mode instead of truncating",
		},
		&cli.StringFlag{
			Name:    dirFlag,
			Aliases: []string{"C"},
			Usage:   "Working directory for the command",
		},
		&cli.StringSliceFlag{
			Name:    envFlag,
			Aliases: []string{"e"},
			Usage:   "Additional environment variable as KEY=VALUE; may be repeated",
		},
		&cli.StringFlag{
			Name:  onErrorFlag,
			Usage: "Non-zero exit policy: raise, die or ignore",
		},
		&cli.BoolFlag{
			Name:    shellFlag,
			Aliases: []string{"s"},
			Usage:   "Join the arguments and run them through the shell",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	argv := cmd.Args().Slice()
	if len(argv) == 0 {
		return cli.Exit("Please provide a command to run", 1)
	}

	cfg, err := config.Load(gosh.FS, cmd.String(configFlag))
	if err != nil {
		return cli.Exit("Failed to load config: "+err.Error(), 1)
	}

	opts, tee, err := buildOptions(cmd, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var res *gosh.Result

	if cmd.Bool(shellFlag) {
		res, err = gosh.Run(ctx, strings.Join(argv, " "), opts...)
	} else {
		res, err = gosh.RunArgs(ctx, argv, opts...)
	}

	if tee != nil {
		if cerr := tee.Close(); cerr != nil {
			ctxlog.Error(ctx, "failed to close tee", "error", cerr)
		}
	}

	if err != nil {
		return cli.Exit("Failed to run command: "+err.Error(), 1)
	}

	if cmd.Bool(captureFlag) {
		fmt.Fprint(cmd.Writer, res.Stdout)    //nolint:errcheck
		fmt.Fprint(cmd.ErrWriter, res.Stderr) //nolint:errcheck
	}

	return exitPerPolicy(cmd, cfg, res)
}

// buildOptions translates flags and config defaults into library options.
// The returned tee, if any, must be closed after the command finishes.
func buildOptions(cmd *cli.Command, cfg *config.Config) ([]gosh.Option, *gosh.Tee, error) {
	var opts []gosh.Option

	if dir := firstOf(cmd.String(dirFlag), cfg.WorkingDirectory); dir != "" {
		opts = append(opts, gosh.InDir(dir))
	}

	env := make(map[string]string)

	for k, v := range cfg.Env {
		env[k] = v
	}

	for _, kv := range cmd.StringSlice(envFlag) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid env entry %q, want KEY=VALUE", kv)
		}

		env[k] = v
	}

	if len(env) > 0 {
		opts = append(opts, gosh.WithEnv(env))
	}

	dests := teeDests(cmd, cfg)

	switch {
	case len(dests) > 0:
		// The terminal stays in the loop, like tee(1).
		dests = append(dests, gosh.TeeStdout)

		tee, err := gosh.NewTee(dests)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open tee destination: %w", err)
		}

		opts = append(opts, gosh.StdoutTo(tee), gosh.StderrTo(tee))

		return append(opts, gosh.OnError(gosh.ErrorIgnore)), tee, nil
	case cmd.Bool(captureFlag):
		opts = append(opts, gosh.CaptureStdout(), gosh.CaptureStderr())
	}

	return append(opts, gosh.OnError(gosh.ErrorIgnore)), nil, nil
}

func teeDests(cmd *cli.Command, cfg *config.Config) []gosh.TeeDest {
	var dests []gosh.TeeDest

	for _, d := range cfg.Tee {
		if d.Append {
			dests = append(dests, gosh.TeeAppend(d.Path))
			continue
		}

		dests = append(dests, gosh.TeeFile(d.Path))
	}

	for _, path := range cmd.StringSlice(teeFlag) {
		if cmd.Bool(appendFlag) {
			dests = append(dests, gosh.TeeAppend(path))
			continue
		}

		dests = append(dests, gosh.TeeFile(path))
	}

	return dests
}

// exitPerPolicy maps the child's exit code to the CLI's own, honoring the
// on-error policy: raise and die propagate the code, ignore swallows it.
func exitPerPolicy(cmd *cli.Command, cfg *config.Config, res *gosh.Result) error {
	if res.ExitCode == 0 {
		return nil
	}

	policy := firstOf(cmd.String(onErrorFlag), cfg.OnError, config.OnErrorRaise)

	switch policy {
	case config.OnErrorIgnore:
		return nil
	case config.OnErrorDie, config.OnErrorRaise:
		return cli.Exit(fmt.Sprintf("command failed with exit code %d", res.ExitCode), res.ExitCode)
	default:
		return cli.Exit("unknown on-error policy: "+policy, 1)
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
