package avito

import (
	"fmt"
	"strings"
	"time"
)

// mskOffset converts the upstream's UTC timestamps to Moscow time, which
// is what operators expect to read in reports.
const mskOffset = 3 * time.Hour

// FormatReport renders an autoload report as the multi-line text shown
// to operators.
func FormatReport(r *Report) string {
	var b strings.Builder

	descriptions := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		descriptions = append(descriptions, e.Description)
	}

	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Errors and warnings: %s\n", strings.Join(descriptions, "\n"))
	fmt.Fprintf(&b, "Upload started: %s\n", formatReportTime(r.StartedAt))
	fmt.Fprintf(&b, "Upload finished: %s\n", formatReportTime(r.FinishedAt))
	fmt.Fprintf(&b, "Total listings: %d\n", r.SectionStats.Count)

	for _, s := range r.SectionStats.Sections {
		fmt.Fprintf(&b, "%s: %d\n", s.Title, s.Count)
	}

	return b.String()
}

// formatReportTime shifts an upstream UTC timestamp to Moscow time and
// renders it without seconds. Unparseable input renders as a dash.
func formatReportTime(raw string) string {
	ts, err := time.Parse("2006-01-02T15:04:05Z", raw)
	if err != nil {
		return "-"
	}
	return ts.Add(mskOffset).Format("2006-01-02 15:04")
}
