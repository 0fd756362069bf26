// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bartekus/implstatus/internal/status"
)

var tierStyles = map[status.Tier]lipgloss.Style{
	status.TierComplete:   lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
	status.TierInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
	status.TierNotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var groupStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)

// Text renders the plain terminal summary: one line per feature, an average
// line per group and a closing overall block.
func Text(r *status.Report, opts Options) string {
	var b strings.Builder

	label := func(t status.Tier, width int) string {
		padded := fmt.Sprintf("%-*s", width, t)
		if !opts.Color {
			return padded
		}
		return tierStyles[t].Render(padded)
	}

	for _, g := range r.Groups {
		name := g.Name
		if opts.Color {
			name = groupStyle.Render(name)
		}
		b.WriteString(name + "\n")

		for _, f := range g.Features {
			fmt.Fprintf(&b, "  %s  %s (%s)\n", label(f.Tier, 11), f.Name, pct(f.Percent))
			if opts.Details {
				for _, a := range f.Artifacts {
					mark := " "
					if a.Present {
						mark = "x"
					}
					fmt.Fprintf(&b, "      [%s] %s %s\n", mark, a.Kind, a.Value)
				}
			}
		}
		fmt.Fprintf(&b, "  Group average: %s %s\n\n", label(g.Tier, 0), pct(g.Average))
	}

	b.WriteString("Overall\n")
	fmt.Fprintf(&b, "  Total features:     %d\n", r.Overall.TotalFeatures)
	fmt.Fprintf(&b, "  Completed features: %d\n", r.Overall.CompletedFeatures)
	fmt.Fprintf(&b, "  Overall progress:   %s\n", pct(r.Overall.Percent))

	return b.String()
}
