// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gosh

import (
	"maps"
	"regexp"
	"strings"

	"github.com/anmitsu/go-shlex"
)

var unsafeChars = regexp.MustCompile(`[^\w@%+=:,./-]`)

// Quote returns a shell-escaped version of s, safe to interpolate into a
// command string passed to Run.
func Quote(s string) string {
	if s == "" {
		return "''"
	}

	if !unsafeChars.MatchString(s) {
		return s
	}

	// Use single quotes, and put single quotes into double quotes.
	// The string $'b is then quoted as '$'"'"'b'.
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ListAsArgs converts a list of command arguments to a single shell-safe
// argument string.
func ListAsArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}

	return strings.Join(quoted, " ")
}

// SplitArgs splits a shell-quoted argument string into its arguments, the
// inverse of ListAsArgs. Comments are not interpreted.
func SplitArgs(s string) ([]string, error) {
	return shlex.Split(s, true) //nolint:wrapcheck
}

// MergeEnv merges environment maps; later maps win. Useful for combining
// environment dictionaries before FreshEnv or WithEnv.
func MergeEnv(envs ...map[string]string) map[string]string {
	res := make(map[string]string)
	for _, e := range envs {
		maps.Copy(res, e)
	}

	return res
}
