// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args from a clean working directory.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestCLIContract(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	for _, c := range []string{"completion", "help", "registry", "status", "version", "watch"} {
		assert.Contains(t, out, c, "expected top-level command %q in root help", c)
	}
	for _, f := range []string{"--config", "--log-level", "--log-format"} {
		assert.Contains(t, out, f)
	}
}

func TestStatusHelpListsFlags(t *testing.T) {
	out, _, err := execute(t, "status", "--help")
	require.NoError(t, err)

	for _, f := range []string{
		"--root", "--registry", "--migrations-dir", "--migration-ext", "--lockfile",
		"--workers", "--format", "--output", "--details", "--color", "--fail-under",
	} {
		assert.Contains(t, out, f)
	}
}

func TestVersion(t *testing.T) {
	t.Setenv("IMPLSTATUS_VERSION", "1.2.3")

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "implstatus version 1.2.3\n", out)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := execute(t, "bogus")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown command"))
}
