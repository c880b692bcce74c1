package calendar

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// Private extended property keys tagging events goalplan owns.
const (
	PropGoalID = "goalplan_goal_id"
	PropTaskID = "goalplan_task_id"
	PropPart   = "goalplan_part"
)

// Google event colors per priority.
var priorityColors = map[task.Priority]string{
	task.PriorityHigh:   "11", // tomato
	task.PriorityMedium: "5",  // banana
	task.PriorityLow:    "2",  // sage
}

// Publisher writes a goal's schedule to one calendar.
type Publisher struct {
	srv        *gcal.Service
	calendarID string
}

// PublishResult counts the events a publish replaced.
type PublishResult struct {
	CalendarID string `json:"calendar_id"`
	Deleted    int    `json:"deleted"`
	Created    int    `json:"created"`
}

// NewPublisher returns a publisher for the calendar with the given ID.
func NewPublisher(srv *gcal.Service, calendarID string) *Publisher {
	return &Publisher{srv: srv, calendarID: calendarID}
}

// FindCalendarID resolves a calendar summary to its ID. "primary" is
// returned as is.
func FindCalendarID(ctx context.Context, srv *gcal.Service, name string) (string, error) {
	if name == "" || name == "primary" {
		return "primary", nil
	}
	var id string
	err := srv.CalendarList.List().Pages(ctx, func(list *gcal.CalendarList) error {
		for _, item := range list.Items {
			if item.Summary == name || item.Id == name {
				id = item.Id
				return errStop
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return "", fmt.Errorf("listing calendars: %w", err)
	}
	if id == "" {
		return "", clierr.Newf(clierr.CalendarNotFound, "calendar %q not found", name).
			WithDetails(map[string]any{"calendar": name})
	}
	return id, nil
}

var errStop = errors.New("stop paging")

// Publish replaces every event previously published for goalID with events.
// Events are matched by their private goal tag, so user-created events on
// the same calendar are left alone.
func (p *Publisher) Publish(ctx context.Context, goalID int, events []schedule.Event) (PublishResult, error) {
	res := PublishResult{CalendarID: p.calendarID}

	existing, err := p.Existing(ctx, goalID)
	if err != nil {
		return res, err
	}
	for _, e := range existing {
		if err := p.srv.Events.Delete(p.calendarID, e.Id).Context(ctx).Do(); err != nil {
			return res, fmt.Errorf("deleting event %s: %w", e.Id, err)
		}
		res.Deleted++
	}

	for _, e := range events {
		ev := ToEvent(goalID, e)
		if _, err := p.srv.Events.Insert(p.calendarID, ev).Context(ctx).Do(); err != nil {
			return res, fmt.Errorf("creating event %q: %w", e.Title, err)
		}
		res.Created++
	}

	zap.L().Info("published schedule",
		zap.Int("goal_id", goalID),
		zap.String("calendar", p.calendarID),
		zap.Int("deleted", res.Deleted),
		zap.Int("created", res.Created))
	return res, nil
}

// Existing lists the events previously published for goalID.
func (p *Publisher) Existing(ctx context.Context, goalID int) ([]*gcal.Event, error) {
	var out []*gcal.Event
	call := p.srv.Events.List(p.calendarID).
		PrivateExtendedProperty(PropGoalID + "=" + strconv.Itoa(goalID)).
		ShowDeleted(false).
		SingleEvents(true)
	err := call.Pages(ctx, func(page *gcal.Events) error {
		out = append(out, page.Items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing published events: %w", err)
	}
	return out, nil
}

// ToEvent converts a scheduled block into a Google Calendar event tagged
// with its goal, task, and part.
func ToEvent(goalID int, e schedule.Event) *gcal.Event {
	title := e.Title
	if e.Parts > 1 {
		title = fmt.Sprintf("%s (%d/%d)", e.Title, e.Part, e.Parts)
	}
	props := map[string]string{
		PropGoalID: strconv.Itoa(goalID),
		PropPart:   strconv.Itoa(e.Part),
	}
	if e.SourceTaskID != 0 {
		props[PropTaskID] = strconv.Itoa(e.SourceTaskID)
	}
	return &gcal.Event{
		Summary:     title,
		Description: e.Description,
		Start:       eventTime(e.Start),
		End:         eventTime(e.End),
		ColorId:     priorityColors[e.Priority],
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: props,
		},
	}
}

// eventTime carries the offset in the RFC 3339 value; no zone name is sent.
func eventTime(t time.Time) *gcal.EventDateTime {
	return &gcal.EventDateTime{DateTime: t.Format(time.RFC3339)}
}
