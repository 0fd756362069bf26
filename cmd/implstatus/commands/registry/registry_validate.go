// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/implstatus/internal/artifact"
)

// NewRegistryValidateCommand returns the `implstatus registry validate` command.
func NewRegistryValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a registry file and summarize its contents",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := load(cmd, args)
			if err != nil {
				return err
			}

			counts := r.ArtifactCounts()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "✓ Registry valid: %d group(s), %d feature(s)\n", len(r.Groups), r.FeatureCount())
			for _, k := range artifact.Kinds() {
				_, _ = fmt.Fprintf(out, "  %-10s %d\n", k, counts[k])
			}
			return nil
		},
	}
}
