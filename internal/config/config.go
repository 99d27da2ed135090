// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the optional YAML defaults file for the gosh CLI.
// The file supplies defaults for flags that would otherwise be repeated on
// every invocation: extra environment variables, a working directory, the
// on-error policy and tee destinations.
package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// DefaultFileName is the file looked up in the current directory when no
// explicit config path is given.
const DefaultFileName = ".gosh.yaml"

var (
	// ErrReadConfig is returned when the config file cannot be read.
	ErrReadConfig = errors.New("failed to read config file")
	// ErrParseConfig is returned when the config file cannot be parsed.
	ErrParseConfig = errors.New("failed to parse config file")
	// ErrInvalidConfig is returned when the config file contains invalid values.
	ErrInvalidConfig = errors.New("invalid config")
)

// OnError policy names accepted in the config file and on the CLI.
const (
	OnErrorRaise  = "raise"
	OnErrorDie    = "die"
	OnErrorIgnore = "ignore"
)

// TeeDestination is one output file for the CLI's tee option.
type TeeDestination struct {
	// Path is the destination file path.
	Path string `yaml:"path"`
	// Append opens the destination in append mode instead of truncating.
	Append bool `yaml:"append,omitempty"`
}

// Config holds defaults for the gosh CLI.
type Config struct {
	// Env is a map of additional environment variables for the child process.
	Env map[string]string `yaml:"env,omitempty"`
	// WorkingDirectory is the directory in which commands run.
	WorkingDirectory string `yaml:"working_directory,omitempty"`
	// OnError is the non-zero-exit policy: raise, die or ignore.
	OnError string `yaml:"on_error,omitempty"`
	// Tee lists output files that receive a copy of the child's output.
	Tee []TeeDestination `yaml:"tee,omitempty"`
}

// Load reads and validates a config file. A missing file at the default
// location is not an error and yields an empty config.
func Load(fs afero.Fs, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !explicit {
			return &Config{}, nil
		}

		return nil, errors.Join(ErrReadConfig, err)
	}

	cfg := new(Config)
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var result *multierror.Error

	switch c.OnError {
	case "", OnErrorRaise, OnErrorDie, OnErrorIgnore:
	default:
		result = multierror.Append(result,
			fmt.Errorf("%w: on_error must be %q, %q or %q, got %q",
				ErrInvalidConfig, OnErrorRaise, OnErrorDie, OnErrorIgnore, c.OnError))
	}

	for i, dest := range c.Tee {
		if dest.Path == "" {
			result = multierror.Append(result,
				fmt.Errorf("%w: tee[%d] has an empty path", ErrInvalidConfig, i))
		}
	}

	return result.ErrorOrNil()
}
