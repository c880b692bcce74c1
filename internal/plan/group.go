package plan

import (
	"time"

	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
)

// DaySummary is one calendar day of a schedule.
type DaySummary struct {
	Day    date.Date        `json:"day"`
	Hours  float64          `json:"hours"`
	Events []schedule.Event `json:"events"`
}

// ByDay groups events by the day they start on. Events are expected in
// start order, as Schedule returns them; days come out in the same order.
func ByDay(events []schedule.Event) []DaySummary {
	var days []DaySummary
	for _, e := range events {
		d := e.Day()
		if len(days) == 0 || !days[len(days)-1].Day.Equal(d.Time) {
			days = append(days, DaySummary{Day: d})
		}
		cur := &days[len(days)-1]
		cur.Events = append(cur.Events, e)
		cur.Hours += e.Duration().Hours()
	}
	return days
}

// Span returns the total wall-clock duration from the first event's start
// to the last event's end.
func Span(events []schedule.Event) time.Duration {
	if len(events) == 0 {
		return 0
	}
	return events[len(events)-1].End.Sub(events[0].Start)
}
