// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/implstatus/cmd/implstatus/internal/clierr"
	"github.com/bartekus/implstatus/cmd/implstatus/internal/settings"
	"github.com/bartekus/implstatus/internal/config"
	"github.com/bartekus/implstatus/internal/projection"
	"github.com/bartekus/implstatus/internal/registry"
	"github.com/bartekus/implstatus/internal/render"
	"github.com/bartekus/implstatus/internal/status"
)

// addReportFlags registers the flags shared by status and watch. Defaults
// are shown for reference only; a flag overrides config only when set.
func addReportFlags(cmd *cobra.Command) {
	d := config.Defaults()
	f := cmd.Flags()

	f.StringP(settings.FlagRoot, "r", d.Root, "project root to inspect")
	f.String(settings.FlagRegistry, d.Registry, "registry YAML file (default: built-in registry)")
	f.String(settings.FlagMigrationsDir, d.MigrationsDir, "migrations directory relative to root")
	f.StringSlice(settings.FlagMigrationExt, nil, "only consider migration entries with these extensions (e.g. .php)")
	f.String(settings.FlagLockfile, d.Lockfile, "dependency lockfile relative to root")
	f.IntP(settings.FlagWorkers, "j", d.Workers, "features probed concurrently")
	f.StringP(settings.FlagFormat, "f", d.Format, "output format ("+formatNames()+")")
	f.StringP(settings.FlagOutput, "o", "", "write the report to this file instead of stdout")
	f.Bool("details", false, "list every artifact with its presence")
	f.Bool("color", false, "color tiers in text output")
}

func formatNames() string {
	names := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func renderOptions(cmd *cobra.Command) render.Options {
	details, _ := cmd.Flags().GetBool("details")
	color, _ := cmd.Flags().GetBool("color")
	return render.Options{Details: details, Color: color}
}

// reporter computes and emits reports for one command invocation.
type reporter struct {
	settings *settings.Settings
	registry *registry.Registry
	format   render.Format
	opts     render.Options
	stdout   io.Writer
}

func newReporter(cmd *cobra.Command) (*reporter, error) {
	s, err := settings.Load(cmd)
	if err != nil {
		return nil, err
	}

	reg, err := s.Registry()
	if err != nil {
		return nil, err
	}

	format, err := render.ParseFormat(s.Config.Format)
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitUsage, "invalid format", err)
	}

	return &reporter{
		settings: s,
		registry: reg,
		format:   format,
		opts:     renderOptions(cmd),
		stdout:   cmd.OutOrStdout(),
	}, nil
}

func (r *reporter) compute(ctx context.Context) (*status.Report, error) {
	agg := status.NewAggregator(
		r.settings.Prober(),
		status.WithLogger(r.settings.Log),
		status.WithWorkers(r.settings.Config.Workers),
	)

	report, err := agg.Compute(ctx, r.registry, r.settings.Config.Root)
	if err != nil {
		if errors.Is(err, status.ErrMissingRoot) {
			return nil, clierr.Wrap(clierr.ExitMissingRoot, "compute status", err)
		}
		return nil, clierr.Wrap(clierr.ExitFailure, "compute status", err)
	}
	return report, nil
}

// emit writes the report to stdout, or atomically to the configured output file.
func (r *reporter) emit(report *status.Report) error {
	out := r.settings.Config.Output
	if out == "" {
		if err := render.Render(r.stdout, report, r.format, r.opts); err != nil {
			return clierr.Wrap(clierr.ExitFailure, "render report", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, report, r.format, r.opts); err != nil {
		return clierr.Wrap(clierr.ExitFailure, "render report", err)
	}
	if err := projection.AtomicWrite(out, buf.Bytes()); err != nil {
		return clierr.Wrap(clierr.ExitFailure, "write report", err)
	}
	r.settings.Log.Info("report written", zap.String("path", out), zap.String("format", string(r.format)))
	return nil
}

func (r *reporter) run(ctx context.Context) (*status.Report, error) {
	report, err := r.compute(ctx)
	if err != nil {
		return nil, err
	}
	return report, r.emit(report)
}
