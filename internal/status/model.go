// SPDX-License-Identifier: AGPL-3.0-or-later

/*
implstatus - implementation status tracker that probes a project tree for expected artifacts
and reports per-feature and per-group completion.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package status

import (
	"math"
	"time"

	"github.com/bartekus/implstatus/internal/artifact"
)

// Tier is the three-valued completion classification derived from a percentage.
type Tier string

const (
	TierNotStarted Tier = "NOT_STARTED"
	TierInProgress Tier = "IN_PROGRESS"
	TierComplete   Tier = "COMPLETE"
)

// TierOf classifies a completion percentage.
func TierOf(pct float64) Tier {
	switch {
	case pct >= 100:
		return TierComplete
	case pct > 0:
		return TierInProgress
	default:
		return TierNotStarted
	}
}

// ArtifactResult is the probe outcome for one descriptor.
type ArtifactResult struct {
	Kind    artifact.Kind `json:"kind" yaml:"kind"`
	Value   string        `json:"value" yaml:"value"`
	Present bool          `json:"present" yaml:"present"`
}

// FeatureResult is the scored state of one feature.
type FeatureResult struct {
	Name      string           `json:"name" yaml:"name"`
	Percent   float64          `json:"percent" yaml:"percent"`
	Tier      Tier             `json:"tier" yaml:"tier"`
	Completed int              `json:"completed" yaml:"completed"`
	Total     int              `json:"total" yaml:"total"`
	Artifacts []ArtifactResult `json:"artifacts" yaml:"artifacts"`
}

// Complete reports whether every declared artifact is present. A feature
// without artifacts is never complete.
func (f FeatureResult) Complete() bool {
	return f.Total > 0 && f.Completed == f.Total
}

// GroupResult holds a group's features and their unweighted average.
type GroupResult struct {
	Name     string          `json:"name" yaml:"name"`
	Average  float64         `json:"average" yaml:"average"`
	Tier     Tier            `json:"tier" yaml:"tier"`
	Features []FeatureResult `json:"features" yaml:"features"`
}

// Summary counts whole features, not partial progress.
type Summary struct {
	TotalFeatures     int     `json:"total_features" yaml:"total_features"`
	CompletedFeatures int     `json:"completed_features" yaml:"completed_features"`
	Percent           float64 `json:"percent" yaml:"percent"`
	Tier              Tier    `json:"tier" yaml:"tier"`
}

// Report is the output tree of one run. GeneratedAt is the only field that
// differs between runs over an unchanged tree.
type Report struct {
	Root        string        `json:"root" yaml:"root"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Groups      []GroupResult `json:"groups" yaml:"groups"`
	Overall     Summary       `json:"overall" yaml:"overall"`
}

// Round1 rounds a percentage to one decimal place.
func Round1(pct float64) float64 {
	return math.Round(pct*10) / 10
}
