// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/implstatus/internal/watch"
)

// NewWatchCommand returns the `implstatus watch` command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the status report whenever the project tree changes",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newReporter(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := r.run(ctx); err != nil {
				return err
			}

			cfg := r.settings.Config
			opts := cfg.ProberOptions()
			resolve := func() []string { return watch.Targets(r.registry, cfg.Root, opts) }

			r.settings.Log.Info("watching for changes", zap.String("root", cfg.Root))
			w := watch.New(resolve, debounce, r.settings.Log, watch.WithIgnore(watch.IgnoreOutput(cfg.Output)))
			return w.Run(ctx, func(ctx context.Context) error {
				_, err := r.run(ctx)
				return err
			})
		},
	}

	addReportFlags(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-rendering")

	return cmd
}
