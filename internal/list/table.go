package list

import (
	"fmt"

	"github.com/riverhollow/wtr/internal/ui/static"
)

// TableHeaders are the column headers for the list pipeline's rendered
// table, in spec §4.I row-field order.
var TableHeaders = []string{"BRANCH", "UPSTREAM", "DEFAULT", "UPSTREAM Δ", "DIRTY", "CI", "LAST COMMIT"}

// Render formats rows into the borderless table style used throughout
// the tool, grounded on internal/ui/static.RenderTable.
func Render(rows []Row) string {
	tableRows := make([][]string, len(rows))
	for i, row := range rows {
		tableRows[i] = TableRow(row)
	}
	return static.RenderTable(TableHeaders, tableRows)
}

// TableRow formats one Row as a table line matching TableHeaders.
func TableRow(row Row) []string {
	upstream := row.Upstream
	if upstream == "" {
		upstream = "—"
	}

	defaultDelta := fmt.Sprintf("+%d/-%d", row.AheadDefault, row.BehindDefault)
	upstreamDelta := "—"
	if row.HasUpstream {
		upstreamDelta = fmt.Sprintf("+%d/-%d", row.AheadUpstream, row.BehindUpstream)
	}

	dirty := ""
	if row.Dirty {
		dirty = "*"
	}

	ci := row.CIStatus
	if ci == "" {
		ci = "—"
	}

	if row.Err != nil {
		defaultDelta, upstreamDelta, dirty, ci = "?", "?", "?", "?"
	}

	return []string{row.Branch, upstream, defaultDelta, upstreamDelta, dirty, ci, row.LastCommitSummary}
}
