// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"

	"github.com/bartekus/implstatus/internal/projection"
	"github.com/bartekus/implstatus/internal/status"
)

// MarkdownTimeLayout formats the "Last checked" line.
const MarkdownTimeLayout = "2006-01-02 15:04"

// Markdown renders the report as a status section suitable for pasting into
// an implementation checklist document.
func Markdown(r *status.Report, opts Options) string {
	var b strings.Builder

	b.WriteString(projection.RenderHeader(2, "Implementation Status"))
	fmt.Fprintf(&b, "**Last checked:** %s\n\n", r.GeneratedAt.Format(MarkdownTimeLayout))

	for _, g := range r.Groups {
		b.WriteString(projection.RenderHeader(3, g.Name))

		items := make([]string, 0, len(g.Features))
		for _, f := range g.Features {
			items = append(items, fmt.Sprintf("`%s` **%s**: %s complete", f.Tier, f.Name, pct(f.Percent)))
		}
		b.WriteString(projection.RenderList(items))
		if len(items) > 0 {
			b.WriteString("\n")
		}

		if opts.Details {
			for _, f := range g.Features {
				if len(f.Artifacts) == 0 {
					continue
				}
				b.WriteString(projection.RenderHeader(4, f.Name))
				rows := make([][]string, 0, len(f.Artifacts))
				for _, a := range f.Artifacts {
					present := "no"
					if a.Present {
						present = "yes"
					}
					rows = append(rows, []string{string(a.Kind), "`" + a.Value + "`", present})
				}
				b.WriteString(projection.RenderTable([]string{"Kind", "Artifact", "Present"}, rows))
				b.WriteString("\n")
			}
		}

		fmt.Fprintf(&b, "**Group status:** `%s` %s complete\n\n", g.Tier, pct(g.Average))
	}

	b.WriteString("---\n\n")
	b.WriteString(projection.RenderHeader(3, "Overall Summary"))
	b.WriteString(projection.RenderList([]string{
		fmt.Sprintf("**Total features:** %d", r.Overall.TotalFeatures),
		fmt.Sprintf("**Completed features:** %d", r.Overall.CompletedFeatures),
		fmt.Sprintf("**Overall progress:** %s", pct(r.Overall.Percent)),
	}))

	return b.String()
}
