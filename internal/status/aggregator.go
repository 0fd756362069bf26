// SPDX-License-Identifier: AGPL-3.0-or-later

// Package status scores a feature registry against a project tree.
//
// Feature percentage is the share of declared artifacts that are present.
// A group's percentage is the unweighted mean of its features. The overall
// percentage counts only fully complete features, so it answers "how many
// features are done" while group averages answer "how much is left".
package status

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bartekus/implstatus/internal/artifact"
	"github.com/bartekus/implstatus/internal/registry"
)

// ErrMissingRoot is returned when the project root does not exist or is not a directory.
var ErrMissingRoot = errors.New("project root not found")

// Prober checks a single descriptor against a project root.
type Prober interface {
	Probe(d artifact.Descriptor, root string) bool
}

// Aggregator drives a Prober over a registry and builds a Report.
type Aggregator struct {
	prober  Prober
	log     *zap.Logger
	workers int
	now     func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *zap.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithWorkers probes up to n features concurrently. Values below 2 keep the
// run sequential. Report content does not depend on n.
func WithWorkers(n int) Option {
	return func(a *Aggregator) { a.workers = n }
}

// WithClock overrides the clock used for Report.GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an Aggregator backed by prober.
func NewAggregator(prober Prober, opts ...Option) *Aggregator {
	a := &Aggregator{
		prober:  prober,
		log:     zap.NewNop(),
		workers: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Named("aggregator")
	return a
}

// featureRef locates a feature inside the registry.
type featureRef struct {
	group   int
	feature int
}

// Compute scores every feature of reg against root. The root is checked
// before any probing; a missing root yields ErrMissingRoot and no report.
func (a *Aggregator) Compute(ctx context.Context, reg *registry.Registry, root string) (*Report, error) {
	if reg == nil {
		return nil, errors.New("compute report: nil registry")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingRoot, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrMissingRoot, root)
	}

	a.log.Debug("computing report",
		zap.String("root", root),
		zap.Int("groups", len(reg.Groups)),
		zap.Int("features", reg.FeatureCount()),
		zap.Int("workers", a.workers),
	)

	var refs []featureRef
	for gi, g := range reg.Groups {
		for fi := range g.Features {
			refs = append(refs, featureRef{group: gi, feature: fi})
		}
	}

	results := make([]FeatureResult, len(refs))
	if err := a.scoreAll(ctx, reg, root, refs, results); err != nil {
		return nil, err
	}

	report := &Report{
		Root:        root,
		GeneratedAt: a.now(),
		Groups:      make([]GroupResult, 0, len(reg.Groups)),
	}

	next := 0
	completed := 0
	for _, g := range reg.Groups {
		features := results[next : next+len(g.Features)]
		next += len(g.Features)

		var sum float64
		for _, f := range features {
			sum += exactPercent(f.Completed, f.Total)
			if f.Complete() {
				completed++
			}
		}
		var avg float64
		if len(features) > 0 {
			avg = sum / float64(len(features))
		}
		report.Groups = append(report.Groups, GroupResult{
			Name:     g.Name,
			Average:  Round1(avg),
			Tier:     TierOf(avg),
			Features: features,
		})
	}

	overall := exactPercent(completed, len(refs))
	report.Overall = Summary{
		TotalFeatures:     len(refs),
		CompletedFeatures: completed,
		Percent:           Round1(overall),
		Tier:              TierOf(overall),
	}

	a.log.Debug("report computed",
		zap.Int("features", len(refs)),
		zap.Int("completed", completed),
		zap.Float64("overall_percent", report.Overall.Percent),
	)
	return report, nil
}

// scoreAll fills results[i] for refs[i]. Results are positional, so the
// concurrent path produces the same report as the sequential one.
func (a *Aggregator) scoreAll(ctx context.Context, reg *registry.Registry, root string, refs []featureRef, results []FeatureResult) error {
	if a.workers < 2 {
		for i, ref := range refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.scoreFeature(reg.Groups[ref.group].Features[ref.feature], root)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.scoreFeature(reg.Groups[ref.group].Features[ref.feature], root)
			return nil
		})
	}
	return g.Wait()
}

func (a *Aggregator) scoreFeature(f registry.Feature, root string) FeatureResult {
	res := FeatureResult{
		Name:      f.Name,
		Total:     len(f.Artifacts),
		Artifacts: make([]ArtifactResult, 0, len(f.Artifacts)),
	}
	for _, d := range f.Artifacts {
		present := a.prober.Probe(d, root)
		if present {
			res.Completed++
		}
		res.Artifacts = append(res.Artifacts, ArtifactResult{Kind: d.Kind, Value: d.Value, Present: present})
	}

	pct := exactPercent(res.Completed, res.Total)
	res.Percent = Round1(pct)
	res.Tier = TierOf(pct)
	return res
}

// exactPercent returns 100*n/total, or 0 when total is zero.
func exactPercent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
