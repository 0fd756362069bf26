// SPDX-License-Identifier: AGPL-3.0-or-later

/*
implstatus - implementation status tracker that probes a project tree for expected artifacts
and reports per-feature and per-group completion.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package artifact defines artifact descriptors and the prober that checks
// whether a described artifact is present in a project tree.
package artifact

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformedDescriptor is returned for descriptors with an empty or unknown
// kind, or an empty identifier.
var ErrMalformedDescriptor = errors.New("malformed artifact descriptor")

// Kind tags the lookup strategy used for a descriptor.
type Kind string

const (
	// KindFile is a path relative to the project root.
	KindFile Kind = "file"
	// KindMigration is a fragment of a migration file name.
	KindMigration Kind = "migration"
	// KindDependency is a package name expected in the lockfile.
	KindDependency Kind = "dependency"
)

// Kinds returns the known kinds in canonical order.
func Kinds() []Kind {
	return []Kind{KindFile, KindMigration, KindDependency}
}

// ParseKind converts s into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFile, KindMigration, KindDependency:
		return k, nil
	case "":
		return "", fmt.Errorf("%w: empty kind", ErrMalformedDescriptor)
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedDescriptor, s)
	}
}

// Descriptor identifies one artifact to probe. Value holds the relative path,
// the migration name fragment or the package name depending on Kind.
type Descriptor struct {
	Kind  Kind
	Value string
}

// File returns a descriptor for a path relative to the project root.
func File(relativePath string) Descriptor {
	return Descriptor{Kind: KindFile, Value: relativePath}
}

// Migration returns a descriptor for a migration name fragment.
func Migration(nameFragment string) Descriptor {
	return Descriptor{Kind: KindMigration, Value: nameFragment}
}

// Dependency returns a descriptor for a package expected in the lockfile.
func Dependency(packageName string) Descriptor {
	return Descriptor{Kind: KindDependency, Value: packageName}
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s:%s", d.Kind, d.Value)
}

// Validate reports whether d is well formed.
func (d Descriptor) Validate() error {
	if _, err := ParseKind(string(d.Kind)); err != nil {
		return err
	}
	if strings.TrimSpace(d.Value) == "" {
		return fmt.Errorf("%w: %s descriptor has an empty identifier", ErrMalformedDescriptor, d.Kind)
	}
	if d.Kind == KindFile {
		if path.IsAbs(d.Value) || strings.HasPrefix(d.Value, "\\") || (len(d.Value) > 1 && d.Value[1] == ':') {
			return fmt.Errorf("%w: file path must be relative: %s", ErrMalformedDescriptor, d.Value)
		}
		if clean := path.Clean(d.Value); clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("%w: file path must not escape the project root: %s", ErrMalformedDescriptor, d.Value)
		}
	}
	return nil
}

// UnmarshalYAML decodes the single-key mapping form `{kind: value}`.
// Kind and value are checked later by Validate so that errors can name the
// feature they belong to.
func (d *Descriptor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("%w: line %d: expected a single `kind: value` entry", ErrMalformedDescriptor, node.Line)
	}
	key, val := node.Content[0], node.Content[1]
	if val.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: value of %q must be a string", ErrMalformedDescriptor, val.Line, key.Value)
	}
	d.Kind = Kind(key.Value)
	d.Value = val.Value
	return nil
}

// MarshalYAML encodes d in the same single-key form it is read from.
func (d Descriptor) MarshalYAML() (interface{}, error) {
	return map[string]string{string(d.Kind): d.Value}, nil
}
