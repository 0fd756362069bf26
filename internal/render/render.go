// SPDX-License-Identifier: AGPL-3.0-or-later

/*
implstatus - implementation status tracker that probes a project tree for expected artifacts
and reports per-feature and per-group completion.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package render turns a status.Report into text, Markdown, a table, JSON or YAML.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/implstatus/internal/status"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported format names.
var ErrUnknownFormat = errors.New("unknown report format")

// Format selects the rendering of a report.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatTable, FormatJSON, FormatYAML}
}

// ParseFormat converts a format name, accepting "md" and "yml" as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownFormat, s, formatList())
	}
}

func formatList() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// Options tunes the human-readable formats. Structured formats ignore it.
type Options struct {
	// Color styles tier labels in text output when the terminal supports it.
	Color bool

	// Details lists every artifact with its presence under each feature.
	Details bool
}

// Render writes r to w in format f.
func Render(w io.Writer, r *status.Report, f Format, opts Options) error {
	if r == nil {
		return errors.New("render: nil report")
	}

	var out string
	switch f {
	case FormatText:
		out = Text(r, opts)
	case FormatMarkdown:
		out = Markdown(r, opts)
	case FormatTable:
		out = Table(r)
	case FormatJSON:
		return writeJSON(w, r)
	case FormatYAML:
		return writeYAML(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	_, err := io.WriteString(w, out)
	return err
}

func writeJSON(w io.Writer, r *status.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report as JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, r *status.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report as YAML: %w", err)
	}
	return enc.Close()
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
