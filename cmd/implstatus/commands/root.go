// SPDX-License-Identifier: AGPL-3.0-or-later

/*
implstatus - implementation status tracker that probes a project tree for expected artifacts
and reports per-feature and per-group completion.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/implstatus/cmd/implstatus/commands/registry"
	"github.com/bartekus/implstatus/cmd/implstatus/internal/clierr"
	"github.com/bartekus/implstatus/cmd/implstatus/internal/settings"
	"github.com/bartekus/implstatus/internal/config"
)

// NewRootCmd constructs the implstatus root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("IMPLSTATUS_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "implstatus",
		Short: "Report how far each planned feature is implemented",
		Long: `implstatus checks a project tree for the files, migrations and dependencies
each registered feature is expected to produce, and reports completion per
feature, per group and overall. It never modifies the inspected project.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.ExitUsage, "invalid flags", err)
	})

	cmd.PersistentFlags().String(settings.FlagConfig, "", fmt.Sprintf("config file (default %s when present)", config.DefaultFile))
	cmd.PersistentFlags().String(settings.FlagLogLevel, defaults.Log.Level, "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(settings.FlagLogFormat, defaults.Log.Format, "log encoding (console or json)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of implstatus",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "implstatus version %s\n", version)
		},
	})

	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(registry.NewRegistryCommand())

	return cmd
}

// noArgs rejects positional arguments with a usage exit code.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return clierr.Wrap(clierr.ExitUsage, "invalid arguments", err)
	}
	return nil
}
