package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

// taskIDProperty is the private extended property stamped on every event this tool creates.
const taskIDProperty = "notion_task_id"

// ErrEventNotFound is returned when an event id no longer resolves to a live event.
var ErrEventNotFound = errors.New("event not found")

// CalendarClient reads and writes events on one Google Calendar. It deliberately has
// no delete operation: cancelled tasks are renamed, never removed.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	loc        *time.Location
	log        zerolog.Logger
}

// NewCalendarClient creates a new Google Calendar client. loc decides the civil date
// of timed events.
func NewCalendarClient(srv *calendar.Service, calendarID string, loc *time.Location) *CalendarClient {
	if loc == nil {
		loc = time.Local
	}
	return &CalendarClient{srv: srv, calendarID: calendarID, loc: loc, log: zerolog.Nop()}
}

// WithLogger sets the logger used for events that are skipped while listing.
func (c *CalendarClient) WithLogger(log zerolog.Logger) *CalendarClient {
	c.log = log.With().Str("calendar_id", c.calendarID).Logger()
	return c
}

// CalendarID returns the calendar this client operates on.
func (c *CalendarClient) CalendarID() string {
	return c.calendarID
}

// GetEvent fetches one event. Deleted events, which Google keeps returning with
// status "cancelled" for a while, are reported as ErrEventNotFound.
func (c *CalendarClient) GetEvent(ctx context.Context, eventID string) (*model.CalendarEvent, error) {
	ev, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		if isGone(err) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return nil, fmt.Errorf("get event %s (gcal): %w", eventID, err)
	}
	converted, err := c.convert(ev)
	if err != nil {
		return nil, err
	}
	if converted.Cancelled {
		return nil, fmt.Errorf("%w: %s was deleted", ErrEventNotFound, eventID)
	}
	return converted, nil
}

// FindEventByTaskID searches for a live event this tool created for the given task.
// It returns nil, nil when there is none.
func (c *CalendarClient) FindEventByTaskID(ctx context.Context, taskID string) (*model.CalendarEvent, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", taskIDProperty, taskID)).
		ShowDeleted(false).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search event for task %s (gcal): %w", taskID, err)
	}
	for _, item := range events.Items {
		converted, err := c.convert(item)
		if err != nil || converted.Cancelled {
			continue
		}
		return converted, nil
	}
	return nil, nil
}

// CreateEvent inserts an all-day event on date and tags it with the task id.
func (c *CalendarClient) CreateEvent(ctx context.Context, taskID, title string, date model.Date) (*model.CalendarEvent, error) {
	event := &calendar.Event{
		Summary: title,
		Start:   &calendar.EventDateTime{Date: date.String()},
		// All-day events end on the following day (exclusive).
		End: &calendar.EventDateTime{Date: date.AddDays(1).String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{taskIDProperty: taskID},
		},
	}
	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create event %q (gcal): %w", title, err)
	}
	return c.convert(created)
}

// UpdateEvent patches the title and, when date is non-nil, moves the event to that day.
func (c *CalendarClient) UpdateEvent(ctx context.Context, eventID, title string, date *model.Date) (*model.CalendarEvent, error) {
	patch := &calendar.Event{Summary: title}
	if date != nil {
		patch.Start = &calendar.EventDateTime{Date: date.String()}
		patch.End = &calendar.EventDateTime{Date: date.AddDays(1).String()}
	}
	updated, err := c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("patch event %s (gcal): %w", eventID, err)
	}
	return c.convert(updated)
}

// ListEvents fetches single events starting within [from, to] inclusive, across all pages.
// Events whose dates cannot be read are logged and left out.
func (c *CalendarClient) ListEvents(ctx context.Context, from, to model.Date) ([]model.CalendarEvent, error) {
	var out []model.CalendarEvent
	call := c.srv.Events.List(c.calendarID).
		TimeMin(from.In(c.loc).Format(time.RFC3339)).
		TimeMax(to.AddDays(1).In(c.loc).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			converted, err := c.convert(item)
			if err != nil {
				c.log.Warn().Err(err).Str("event_id", item.Id).Msg("skipping unreadable event")
				continue
			}
			if !converted.Cancelled {
				out = append(out, *converted)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar %s: %w", c.calendarID, err)
	}
	return out, nil
}

func (c *CalendarClient) convert(ev *calendar.Event) (*model.CalendarEvent, error) {
	out := &model.CalendarEvent{
		ID:         ev.Id,
		CalendarID: c.calendarID,
		Title:      ev.Summary,
		Cancelled:  ev.Status == "cancelled",
	}
	var err error
	if out.StartDate, err = eventDate(ev.Start, c.loc); err != nil {
		return nil, fmt.Errorf("event %s start: %w", ev.Id, err)
	}
	if out.EndDate, err = eventDate(ev.End, c.loc); err != nil {
		return nil, fmt.Errorf("event %s end: %w", ev.Id, err)
	}
	if ev.Updated != "" {
		if out.LastModified, err = time.Parse(time.RFC3339, ev.Updated); err != nil {
			return nil, fmt.Errorf("event %s updated: %w", ev.Id, err)
		}
	}
	return out, nil
}

// eventDate reads an all-day date or the civil date of a timed start in loc.
func eventDate(dt *calendar.EventDateTime, loc *time.Location) (*model.Date, error) {
	if dt == nil {
		return nil, nil
	}
	if dt.Date != "" {
		d, err := model.ParseDate(dt.Date)
		if err != nil {
			return nil, err
		}
		return &d, nil
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return nil, err
		}
		d := model.DateIn(t, loc)
		return &d, nil
	}
	return nil, nil
}

func isGone(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
	}
	return false
}
