// SPDX-License-Identifier: AGPL-3.0-or-later

/*
implstatus - implementation status tracker that probes a project tree for expected artifacts
and reports per-feature and per-group completion.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package registry contains the `implstatus registry` subcommands.
package registry

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/implstatus/cmd/implstatus/internal/clierr"
	"github.com/bartekus/implstatus/cmd/implstatus/internal/settings"
	reg "github.com/bartekus/implstatus/internal/registry"
)

// NewRegistryCommand returns the `implstatus registry` command.
func NewRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the feature registry",
		Long:  "Validate or print the feature registry. Without a path argument the configured registry is used, falling back to the built-in one.",
	}

	cmd.AddCommand(NewRegistryValidateCommand())
	cmd.AddCommand(NewRegistryShowCommand())

	return cmd
}

// load resolves the registry named by args, the config, or the built-in default.
func load(cmd *cobra.Command, args []string) (*reg.Registry, error) {
	if len(args) == 1 {
		return settings.LoadRegistry(args[0])
	}
	s, err := settings.Load(cmd)
	if err != nil {
		return nil, err
	}
	return s.Registry()
}

// maxArgs rejects more than n positional arguments with a usage exit code.
func maxArgs(n int) cobra.PositionalArgs {
	check := cobra.MaximumNArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return clierr.Wrap(clierr.ExitUsage, "invalid arguments", err)
		}
		return nil
	}
}
