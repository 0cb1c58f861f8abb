package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/tasks"
	"github.com/dustin/go-humanize"
)

// BarWidth is the number of cells in a progress bar.
const BarWidth = 20

// ProgressBar renders done/total as a bar of width cells.
func ProgressBar(done, total, width int) string {
	if width <= 0 {
		width = BarWidth
	}
	filled := 0
	if total > 0 {
		filled = min(width, max(0, done*width/total))
	}
	return styles.ok.Render(strings.Repeat("█", filled)) + styles.help.Render(strings.Repeat("░", width-filled))
}

// RenderImportProgress renders one resolution step as a single line.
func RenderImportProgress(p tasks.ImportProgress) string {
	return fmt.Sprintf("%s %5.1f%% %s/%s ETA %s",
		ProgressBar(p.Done, p.Total, BarWidth),
		p.Percent,
		humanize.Comma(int64(p.Done)),
		humanize.Comma(int64(p.Total)),
		tasks.FormatETA(p.ETA, p.ETAKnown),
	)
}

// RenderRunCounts renders an import summary.
func RenderRunCounts(c models.RunCounts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", styles.title.Render("Import summary"))
	fmt.Fprintf(&b, "  Songs:     %s\n", humanize.Comma(int64(c.Total)))
	fmt.Fprintf(&b, "  Matched:   %s\n", Success(humanize.Comma(int64(c.Matched))))
	fmt.Fprintf(&b, "  Cached:    %s\n", humanize.Comma(int64(c.Cached)))

	unmatched := humanize.Comma(int64(c.Unmatched))
	if c.Unmatched > 0 {
		unmatched = Warning(unmatched)
	}
	fmt.Fprintf(&b, "  Unmatched: %s\n", unmatched)
	fmt.Fprintf(&b, "  Skipped:   %s\n", humanize.Comma(int64(c.Skipped)))
	fmt.Fprintf(&b, "  Playlists: %s\n", humanize.Comma(int64(c.PlaylistsCreated)))
	return b.String()
}
