// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bartekus/implstatus/internal/artifact"
	"github.com/bartekus/implstatus/internal/registry"
)

// Targets lists the directories whose changes can alter a report for reg.
//
// It covers the root itself, the migrations directory, the lockfile's
// directory and the parent of every file artifact. A directory that does not
// exist yet is replaced by its nearest existing ancestor inside root, so its
// creation is still observed.
func Targets(reg *registry.Registry, root string, opts artifact.Options) []string {
	root = filepath.Clean(root)
	seen := map[string]struct{}{}
	add := func(rel string) {
		seen[nearestDir(root, rel)] = struct{}{}
	}

	add(".")
	add(opts.MigrationsDir)
	add(filepath.Dir(filepath.FromSlash(opts.Lockfile)))

	if reg != nil {
		for _, g := range reg.Groups {
			for _, f := range g.Features {
				for _, d := range f.Artifacts {
					if d.Kind == artifact.KindFile {
						add(filepath.Dir(filepath.FromSlash(d.Value)))
					}
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for dir := range seen {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

func nearestDir(root, rel string) string {
	cur := filepath.Clean(filepath.FromSlash(rel))
	for cur != "." && cur != ".." && cur != string(filepath.Separator) {
		p := filepath.Join(root, cur)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
		cur = filepath.Dir(cur)
	}
	return root
}
