// SPDX-License-Identifier: AGPL-3.0-or-later

package status

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/implstatus/internal/artifact"
	"github.com/bartekus/implstatus/internal/registry"
)

func createFile(t *testing.T, dir, path string) {
	t.Helper()
	fullPath := filepath.Join(dir, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, nil, 0o644))
}

func singleFeature(artifacts ...artifact.Descriptor) *registry.Registry {
	return &registry.Registry{Groups: []registry.Group{{
		Name:     "Sprint 1",
		Features: []registry.Feature{{Name: "Feature", Artifacts: artifacts}},
	}}}
}

func compute(t *testing.T, reg *registry.Registry, root string, opts ...Option) *Report {
	t.Helper()
	agg := NewAggregator(artifact.NewProber(artifact.DefaultOptions(), nil), opts...)
	report, err := agg.Compute(context.Background(), reg, root)
	require.NoError(t, err)
	return report
}

// fakeProber answers from a fixed set of present values and counts calls.
type fakeProber struct {
	present map[string]bool
	calls   atomic.Int64
}

func (f *fakeProber) Probe(d artifact.Descriptor, _ string) bool {
	f.calls.Add(1)
	return f.present[d.Value]
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		pct  float64
		want Tier
	}{
		{0, TierNotStarted},
		{0.1, TierInProgress},
		{50, TierInProgress},
		{99.9, TierInProgress},
		{100, TierComplete},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierOf(tt.pct), "pct=%v", tt.pct)
	}
}

func TestCompute_ExistingFile(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "app/Models/Ticket.php")

	report := compute(t, singleFeature(artifact.File("app/Models/Ticket.php")), root)

	f := report.Groups[0].Features[0]
	assert.Equal(t, 100.0, f.Percent)
	assert.Equal(t, TierComplete, f.Tier)
	assert.Equal(t, 100.0, report.Groups[0].Average)
	assert.Equal(t, TierComplete, report.Groups[0].Tier)
	assert.Equal(t, 100.0, report.Overall.Percent)
	assert.Equal(t, 1, report.Overall.CompletedFeatures)
	assert.Equal(t, 1, report.Overall.TotalFeatures)
}

func TestCompute_MissingFile(t *testing.T) {
	report := compute(t, singleFeature(artifact.File("app/Models/Ticket.php")), t.TempDir())

	f := report.Groups[0].Features[0]
	assert.Equal(t, 0.0, f.Percent)
	assert.Equal(t, TierNotStarted, f.Tier)
	assert.Equal(t, 0.0, report.Overall.Percent)
	assert.Equal(t, 0, report.Overall.CompletedFeatures)
}

func TestCompute_PartialFeature(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "app/Models/Ticket.php")

	report := compute(t, singleFeature(
		artifact.File("app/Models/Ticket.php"),
		artifact.File("app/Models/Comment.php"),
	), root)

	f := report.Groups[0].Features[0]
	assert.Equal(t, 50.0, f.Percent)
	assert.Equal(t, TierInProgress, f.Tier)
	assert.Equal(t, 1, f.Completed)
	assert.Equal(t, 2, f.Total)
	assert.Equal(t, []ArtifactResult{
		{Kind: artifact.KindFile, Value: "app/Models/Ticket.php", Present: true},
		{Kind: artifact.KindFile, Value: "app/Models/Comment.php", Present: false},
	}, f.Artifacts)

	assert.Equal(t, 0, report.Overall.CompletedFeatures)
	assert.Equal(t, 0.0, report.Overall.Percent)
	assert.Equal(t, TierNotStarted, report.Overall.Tier)
}

func TestCompute_MixedKinds(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "database/migrations/2024_01_01_000000_create_x_table.ext")
	require.NoError(t, os.WriteFile(filepath.Join(root, "composer.lock"), []byte(`"darkaonline/l5-swagger"`), 0o644))

	report := compute(t, singleFeature(
		artifact.Migration("create_x_table"),
		artifact.Migration("create_y_table"),
		artifact.Dependency("darkaonline/l5-swagger"),
		artifact.File("config/l5-swagger.php"),
	), root)

	f := report.Groups[0].Features[0]
	assert.Equal(t, 2, f.Completed)
	assert.Equal(t, 50.0, f.Percent)
	assert.Equal(t, []bool{true, false, true, false}, presence(f))
}

func presence(f FeatureResult) []bool {
	out := make([]bool, 0, len(f.Artifacts))
	for _, a := range f.Artifacts {
		out = append(out, a.Present)
	}
	return out
}

func TestCompute_FeatureWithoutArtifacts(t *testing.T) {
	report := compute(t, singleFeature(), t.TempDir())

	f := report.Groups[0].Features[0]
	assert.Equal(t, 0.0, f.Percent)
	assert.Equal(t, TierNotStarted, f.Tier)
	assert.False(t, f.Complete())
	assert.NotNil(t, f.Artifacts)
	assert.Equal(t, 0, report.Overall.CompletedFeatures)
}

func TestCompute_GroupWithoutFeatures(t *testing.T) {
	reg := &registry.Registry{Groups: []registry.Group{{Name: "Empty"}}}
	report := compute(t, reg, t.TempDir())

	require.Len(t, report.Groups, 1)
	assert.Equal(t, 0.0, report.Groups[0].Average)
	assert.Equal(t, TierNotStarted, report.Groups[0].Tier)
	assert.Equal(t, 0, report.Overall.TotalFeatures)
	assert.Equal(t, 0.0, report.Overall.Percent)
}

func TestCompute_GroupAverageIsUnweighted(t *testing.T) {
	prober := &fakeProber{present: map[string]bool{"a": true}}
	reg := &registry.Registry{Groups: []registry.Group{{
		Name: "Sprint",
		Features: []registry.Feature{
			{Name: "one artifact", Artifacts: []artifact.Descriptor{artifact.File("a")}},
			{Name: "five artifacts", Artifacts: []artifact.Descriptor{
				artifact.File("b"), artifact.File("c"), artifact.File("d"), artifact.File("e"), artifact.File("f"),
			}},
		},
	}}}

	report, err := NewAggregator(prober).Compute(context.Background(), reg, t.TempDir())
	require.NoError(t, err)

	// (100 + 0) / 2, not 1/6 of all artifacts.
	assert.Equal(t, 50.0, report.Groups[0].Average)
	assert.Equal(t, TierInProgress, report.Groups[0].Tier)
	assert.Equal(t, int64(6), prober.calls.Load())
}

func TestCompute_OverallCountsOnlyCompleteFeatures(t *testing.T) {
	present := map[string]bool{}
	var nearlyDone []artifact.Descriptor
	for i := 0; i < 100; i++ {
		v := string(rune('A'+i%26)) + string(rune('a'+i/26))
		nearlyDone = append(nearlyDone, artifact.File(v))
		if i < 99 {
			present[v] = true
		}
	}
	present["done"] = true

	reg := &registry.Registry{Groups: []registry.Group{
		{Name: "G1", Features: []registry.Feature{
			{Name: "nearly", Artifacts: nearlyDone},
			{Name: "done", Artifacts: []artifact.Descriptor{artifact.File("done")}},
		}},
		{Name: "G2", Features: []registry.Feature{
			{Name: "empty"},
			{Name: "missing", Artifacts: []artifact.Descriptor{artifact.File("missing")}},
		}},
	}}

	report, err := NewAggregator(&fakeProber{present: present}).Compute(context.Background(), reg, t.TempDir())
	require.NoError(t, err)

	nearly := report.Groups[0].Features[0]
	assert.Equal(t, 99.0, nearly.Percent)
	assert.Equal(t, TierInProgress, nearly.Tier)

	assert.Equal(t, 4, report.Overall.TotalFeatures)
	assert.Equal(t, 1, report.Overall.CompletedFeatures)
	assert.Equal(t, 25.0, report.Overall.Percent)
	assert.Equal(t, 99.5, report.Groups[0].Average)
	assert.Equal(t, 0.0, report.Groups[1].Average)
}

func TestCompute_PreservesRegistryOrder(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	report := compute(t, reg, t.TempDir())

	require.Len(t, report.Groups, len(reg.Groups))
	for gi, g := range reg.Groups {
		assert.Equal(t, g.Name, report.Groups[gi].Name)
		require.Len(t, report.Groups[gi].Features, len(g.Features))
		for fi, f := range g.Features {
			assert.Equal(t, f.Name, report.Groups[gi].Features[fi].Name)
		}
	}
}

func TestCompute_MissingRoot(t *testing.T) {
	prober := &fakeProber{}
	reg := singleFeature(artifact.File("a"))
	root := filepath.Join(t.TempDir(), "does-not-exist")

	report, err := NewAggregator(prober).Compute(context.Background(), reg, root)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRoot)
	assert.Nil(t, report)
	assert.Zero(t, prober.calls.Load(), "no feature may be probed when the root is missing")
}

func TestCompute_RootIsAFile(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "file.txt")

	_, err := NewAggregator(&fakeProber{}).Compute(context.Background(), singleFeature(), filepath.Join(dir, "file.txt"))
	assert.ErrorIs(t, err, ErrMissingRoot)
}

func TestCompute_NilRegistry(t *testing.T) {
	_, err := NewAggregator(&fakeProber{}).Compute(context.Background(), nil, t.TempDir())
	assert.Error(t, err)
}

func TestCompute_Deterministic(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "app/Models/Ticket.php")
	createFile(t, root, "database/migrations/2025_create_tickets_table.php")

	reg, err := registry.Default()
	require.NoError(t, err)

	first := compute(t, reg, root)
	second := compute(t, reg, root)

	ignoreTime := cmpopts.IgnoreFields(Report{}, "GeneratedAt")
	if diff := cmp.Diff(first, second, ignoreTime); diff != "" {
		t.Errorf("reports differ (-first +second):\n%s", diff)
	}

	first.GeneratedAt, second.GeneratedAt = time.Time{}, time.Time{}
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCompute_WorkersMatchSequential(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "app/Models/Ticket.php")
	createFile(t, root, "app/Models/Team.php")
	createFile(t, root, "database/migrations/2025_create_teams_table.php")

	reg, err := registry.Default()
	require.NoError(t, err)

	sequential := compute(t, reg, root)
	parallel := compute(t, reg, root, WithWorkers(4))

	if diff := cmp.Diff(sequential, parallel, cmpopts.IgnoreFields(Report{}, "GeneratedAt")); diff != "" {
		t.Errorf("parallel report differs (-sequential +parallel):\n%s", diff)
	}
}

func TestCompute_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAggregator(&fakeProber{}).Compute(ctx, singleFeature(artifact.File("a")), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompute_UsesClock(t *testing.T) {
	at := time.Date(2025, 11, 13, 10, 30, 0, 0, time.UTC)
	report := compute(t, singleFeature(), t.TempDir(), WithClock(func() time.Time { return at }))
	assert.Equal(t, at, report.GeneratedAt)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 33.3, Round1(100.0/3))
	assert.Equal(t, 66.7, Round1(200.0/3))
	assert.Equal(t, 0.0, Round1(0))
}
