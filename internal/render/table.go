// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bartekus/implstatus/internal/status"
)

// Table renders one row per feature with a group-average row after each
// group and the overall summary as footer.
func Table(r *status.Report) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Group", "Feature", "Tier", "Progress", "Artifacts"})

	for i, g := range r.Groups {
		for _, f := range g.Features {
			w.AppendRow(table.Row{g.Name, f.Name, f.Tier, pct(f.Percent), fmt.Sprintf("%d/%d", f.Completed, f.Total)})
		}
		w.AppendRow(table.Row{g.Name, "(group average)", g.Tier, pct(g.Average), ""})
		if i < len(r.Groups)-1 {
			w.AppendSeparator()
		}
	}

	w.AppendFooter(table.Row{
		"Overall",
		fmt.Sprintf("%d of %d features complete", r.Overall.CompletedFeatures, r.Overall.TotalFeatures),
		r.Overall.Tier,
		pct(r.Overall.Percent),
		"",
	})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	return w.Render() + "\n"
}
