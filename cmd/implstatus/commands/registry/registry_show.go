// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/implstatus/cmd/implstatus/internal/clierr"
)

// NewRegistryShowCommand returns the `implstatus registry show` command.
func NewRegistryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Print the normalized registry as YAML",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := load(cmd, args)
			if err != nil {
				return err
			}

			data, err := r.Marshal()
			if err != nil {
				return clierr.Wrap(clierr.ExitFailure, "registry show", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
