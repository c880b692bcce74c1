package output

import (
	"fmt"
	"io"
	"os"

	"github.com/twiced-technology-gmbh/goalplan/internal/history"
)

const historyTimeFormat = "2006-01-02 15:04"

// HistoryTable renders activity log entries, oldest first.
func HistoryTable(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s  %-5s  %-16s  %s", "TIME", "GOAL", "ACTION", "DETAIL")))
	for _, e := range entries {
		detail := e.Detail
		if e.TaskID > 0 {
			detail = fmt.Sprintf("#%d %s", e.TaskID, detail)
		}
		fmt.Fprintf(w, "%s  %-5s  %-16s  %s\n",
			dimStyle.Render(e.Timestamp.Local().Format(historyTimeFormat)),
			"#"+fmt.Sprint(e.GoalID),
			e.Action,
			truncate(detail, 60)) //nolint:mnd // detail column width
	}
}

// HistoryCompact renders activity log entries one per line.
func HistoryCompact(w io.Writer, entries []history.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s #%d %s %s\n", e.Timestamp.Local().Format(historyTimeFormat), e.GoalID, e.Action, e.Detail)
	}
}
