// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/implstatus/cmd/implstatus/internal/clierr"
	"github.com/bartekus/implstatus/internal/registry"
)

func TestRegistryValidate_BuiltIn(t *testing.T) {
	out, _, err := execute(t, "registry", "validate")
	require.NoError(t, err)

	assert.Equal(t, "✓ Registry valid: 3 group(s), 8 feature(s)\n"+
		"  file       25\n"+
		"  migration  7\n"+
		"  dependency 1\n", out)
}

func TestRegistryValidate_File(t *testing.T) {
	_, reg := fixture(t)

	out, _, err := execute(t, "registry", "validate", reg)
	require.NoError(t, err)
	assert.Contains(t, out, "2 group(s), 3 feature(s)")
}

func TestRegistryValidate_FromConfig(t *testing.T) {
	_, reg := fixture(t)
	t.Setenv("IMPLSTATUS_REGISTRY", reg)

	out, _, err := execute(t, "registry", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 group(s), 3 feature(s)")
}

func TestRegistryValidate_Invalid(t *testing.T) {
	dir := t.TempDir()

	emptyFeature := filepath.Join(dir, "empty.yaml")
	writeFile(t, emptyFeature, "groups:\n  - name: A\n    features:\n      - name: \"\"\n")

	escaping := filepath.Join(dir, "escape.yaml")
	writeFile(t, escaping, "groups:\n  - name: A\n    features:\n      - name: F\n        artifacts:\n          - file: ../outside.php\n")

	for _, path := range []string{emptyFeature, escaping} {
		_, _, err := execute(t, "registry", "validate", path)
		require.Error(t, err, path)
		assert.Equal(t, clierr.ExitInvalidRegistry, clierr.ExitCodeOf(err), path)
	}

	_, _, err := execute(t, "registry", "validate", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
}

func TestRegistryShow_RoundTrips(t *testing.T) {
	_, path := fixture(t)

	out, _, err := execute(t, "registry", "show", path)
	require.NoError(t, err)

	shown, err := registry.Parse([]byte(out))
	require.NoError(t, err)
	want, err := registry.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, shown)
}

func TestRegistryShow_BuiltIn(t *testing.T) {
	out, _, err := execute(t, "registry", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "name: Sprint 1")
	assert.Contains(t, out, "dependency: darkaonline/l5-swagger")
}

func TestRegistry_TooManyArgumentsIsUsageError(t *testing.T) {
	_, reg := fixture(t)

	for _, sub := range []string{"validate", "show"} {
		out, _, err := execute(t, "registry", sub, reg, reg)
		require.Error(t, err, sub)
		assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err), sub)
		assert.Empty(t, out, sub)
	}
}
