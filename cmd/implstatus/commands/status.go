// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/implstatus/cmd/implstatus/internal/clierr"
)

// NewStatusCommand returns the `implstatus status` command.
func NewStatusCommand() *cobra.Command {
	var failUnder float64

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report implementation progress of every registered feature",
		Long: `Probe the project root for each feature's artifacts and print per-feature,
per-group and overall completion.

Feature percentage is the share of its artifacts found. Group percentage is
the plain mean of its features. Overall percentage counts fully complete
features only.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newReporter(cmd)
			if err != nil {
				return err
			}

			report, err := r.run(cmd.Context())
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("fail-under") && report.Overall.Percent < failUnder {
				return clierr.Newf(clierr.ExitBelowThreshold,
					"overall progress %.1f%% is below %.1f%%", report.Overall.Percent, failUnder)
			}
			return nil
		},
	}

	addReportFlags(cmd)
	cmd.Flags().Float64Var(&failUnder, "fail-under", 0, "exit with code 5 when overall progress is below this percentage")

	return cmd
}
