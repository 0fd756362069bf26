// SPDX-License-Identifier: AGPL-3.0-or-later

/*
implstatus - implementation status tracker that probes a project tree for expected artifacts
and reports per-feature and per-group completion.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package registry loads and validates the feature registry: an ordered list
// of groups, each holding an ordered list of features and the artifacts that
// mark them as implemented.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/implstatus/internal/artifact"
)

// ErrInvalidRegistry is returned for structural problems such as missing or
// duplicate group and feature names.
var ErrInvalidRegistry = errors.New("invalid registry")

// Feature is a named unit of work defined by the artifacts it is expected to produce.
type Feature struct {
	Name      string                `yaml:"name"`
	Artifacts []artifact.Descriptor `yaml:"artifacts"`
}

// Group is an ordered collection of features, e.g. a sprint or milestone.
type Group struct {
	Name     string    `yaml:"name"`
	Features []Feature `yaml:"features"`
}

// Registry is the full ordered set of groups. It is built once and treated as
// read-only for the rest of the run.
type Registry struct {
	Groups []Group `yaml:"groups"`
}

// Load reads and validates a registry file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // registry path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes registry YAML and validates it. Unknown fields are rejected.
func Parse(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var reg Registry
	if err := dec.Decode(&reg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: registry is empty", ErrInvalidRegistry)
		}
		if errors.Is(err, artifact.ErrMalformedDescriptor) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to parse registry YAML: %v", ErrInvalidRegistry, err)
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks names and descriptors. It fails on the first problem found.
func (r *Registry) Validate() error {
	seenGroups := make(map[string]bool)

	for i, g := range r.Groups {
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("%w: group at index %d missing name", ErrInvalidRegistry, i)
		}
		if seenGroups[g.Name] {
			return fmt.Errorf("%w: duplicate group name: %s", ErrInvalidRegistry, g.Name)
		}
		seenGroups[g.Name] = true

		seenFeatures := make(map[string]bool)
		for j, f := range g.Features {
			if strings.TrimSpace(f.Name) == "" {
				return fmt.Errorf("%w: group %s: feature at index %d missing name", ErrInvalidRegistry, g.Name, j)
			}
			if seenFeatures[f.Name] {
				return fmt.Errorf("%w: group %s: duplicate feature name: %s", ErrInvalidRegistry, g.Name, f.Name)
			}
			seenFeatures[f.Name] = true

			for k, d := range f.Artifacts {
				if err := d.Validate(); err != nil {
					return fmt.Errorf("group %s: feature %s: artifact %d: %w", g.Name, f.Name, k, err)
				}
			}
		}
	}

	return nil
}

// FeatureCount returns the number of features across all groups.
func (r *Registry) FeatureCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Features)
	}
	return n
}

// ArtifactCounts returns the number of descriptors of each kind.
func (r *Registry) ArtifactCounts() map[artifact.Kind]int {
	counts := make(map[artifact.Kind]int)
	for _, g := range r.Groups {
		for _, f := range g.Features {
			for _, d := range f.Artifacts {
				counts[d.Kind]++
			}
		}
	}
	return counts
}

// Marshal encodes the registry in the same YAML layout it is loaded from.
func (r *Registry) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding registry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding registry: %w", err)
	}
	return buf.Bytes(), nil
}
