// SPDX-License-Identifier: AGPL-3.0-or-later

// Package golden compares rendered output against files under testdata/.
// Run tests with -update to rewrite the golden files.
package golden

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var Update = flag.Bool("update", false, "update golden files")

// TestdataDir returns the testdata directory next to the calling test file.
func TestdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(filename), "testdata")
}

// Assert compares got with testdata/<name>.golden, rewriting it first when -update is set.
func Assert(t *testing.T, testdataDir, name, got string) {
	t.Helper()
	if *Update {
		Write(t, testdataDir, name, got)
	}
	want, ok := Read(t, testdataDir, name)
	if !ok {
		t.Fatalf("missing golden file %s.golden (run with -update)", name)
	}
	assert.Equal(t, want, got)
}

// Read returns the golden content and whether the file exists.
func Read(t *testing.T, testdataDir, name string) (string, bool) {
	t.Helper()
	safeName(t, name)

	path := filepath.Join(testdataDir, name+".golden")
	data, err := os.ReadFile(path) //nolint:gosec // testdata path controlled by test
	if err != nil {
		if os.IsNotExist(err) {
			return "", false
		}
		t.Fatalf("read golden %s: %v", path, err)
	}
	return string(data), true
}

// Write stores content as testdata/<name>.golden.
func Write(t *testing.T, testdataDir, name, content string) {
	t.Helper()
	safeName(t, name)

	if err := os.MkdirAll(testdataDir, 0o750); err != nil {
		t.Fatalf("mkdir testdata: %v", err)
	}
	path := filepath.Join(testdataDir, name+".golden")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write golden %s: %v", path, err)
	}
}

func safeName(t *testing.T, name string) {
	t.Helper()
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		t.Fatalf("invalid golden name %q", name)
	}
}
