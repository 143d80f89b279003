package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

var tokyo = time.FixedZone("JST", 9*60*60)

func newTestClient(t *testing.T, handler http.HandlerFunc) *CalendarClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	srv, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(ts.Client()),
		option.WithEndpoint(ts.URL+"/"),
	)
	require.NoError(t, err)
	return NewCalendarClient(srv, "primary", tokyo)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestGetEventAllDay(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/calendars/primary/events/ev1", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":      "ev1",
			"summary": "設計【Foo】",
			"status":  "confirmed",
			"updated": "2024-05-01T03:04:05.000Z",
			"start":   map[string]string{"date": "2024-05-01"},
			"end":     map[string]string{"date": "2024-05-02"},
		})
	})

	ev, err := client.GetEvent(context.Background(), "ev1")
	require.NoError(t, err)
	assert.Equal(t, "設計【Foo】", ev.Title)
	assert.Equal(t, model.MustDate("2024-05-01"), *ev.StartDate)
	assert.Equal(t, model.MustDate("2024-05-02"), *ev.EndDate)
	assert.True(t, ev.LastModified.Equal(time.Date(2024, 5, 1, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, "primary", ev.CalendarID)
}

func TestGetEventTimedUsesLocation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":    "ev1",
			"start": map[string]string{"dateTime": "2024-04-30T16:00:00Z"},
			"end":   map[string]string{"dateTime": "2024-04-30T17:00:00Z"},
		})
	})

	ev, err := client.GetEvent(context.Background(), "ev1")
	require.NoError(t, err)
	assert.Equal(t, model.MustDate("2024-05-01"), *ev.StartDate)
	assert.True(t, ev.LastModified.IsZero())
}

func TestGetEventMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"code": 404, "message": "Not Found"},
		})
	})

	_, err := client.GetEvent(context.Background(), "gone")
	assert.True(t, errors.Is(err, ErrEventNotFound))
}

func TestGetEventCancelledCountsAsMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":     "ev1",
			"status": "cancelled",
			"start":  map[string]string{"date": "2024-05-01"},
		})
	})

	_, err := client.GetEvent(context.Background(), "ev1")
	assert.True(t, errors.Is(err, ErrEventNotFound))
}

func TestGetEventServerErrorIsNotMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": 500, "message": "backend"},
		})
	})

	_, err := client.GetEvent(context.Background(), "ev1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEventNotFound))
}

func TestCreateEventIsAllDayAndTagged(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)

		var body calendar.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "設計【Foo】", body.Summary)
		assert.Equal(t, "2024-05-01", body.Start.Date)
		assert.Equal(t, "2024-05-02", body.End.Date)
		assert.Equal(t, "task-1", body.ExtendedProperties.Private["notion_task_id"])

		body.Id = "new-event"
		body.Updated = "2024-05-01T00:00:00Z"
		writeJSON(t, w, http.StatusOK, body)
	})

	ev, err := client.CreateEvent(context.Background(), "task-1", "設計【Foo】", model.MustDate("2024-05-01"))
	require.NoError(t, err)
	assert.Equal(t, "new-event", ev.ID)
}

func TestUpdateEventTitleOnlyLeavesDates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/calendars/primary/events/ev1", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "【中止】設計【Foo】", body["summary"])
		assert.NotContains(t, body, "start")
		assert.NotContains(t, body, "end")

		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":      "ev1",
			"summary": body["summary"],
			"start":   map[string]string{"date": "2024-05-01"},
		})
	})

	ev, err := client.UpdateEvent(context.Background(), "ev1", "【中止】設計【Foo】", nil)
	require.NoError(t, err)
	assert.Equal(t, "【中止】設計【Foo】", ev.Title)
}

func TestUpdateEventMovesDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body calendar.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-06-03", body.Start.Date)
		assert.Equal(t, "2024-06-04", body.End.Date)
		body.Id = "ev1"
		writeJSON(t, w, http.StatusOK, body)
	})

	d := model.MustDate("2024-06-03")
	_, err := client.UpdateEvent(context.Background(), "ev1", "設計【Foo】", &d)
	require.NoError(t, err)
}

func TestListEventsPaginatesAndDropsCancelled(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.True(t, strings.HasPrefix(q.Get("timeMin"), "2024-01-01T00:00:00+09:00"))
		assert.True(t, strings.HasPrefix(q.Get("timeMax"), "2024-04-01T00:00:00+09:00"))

		if q.Get("pageToken") == "" {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"items": []map[string]any{
					{"id": "a", "summary": "A", "start": map[string]string{"date": "2024-01-05"}},
					{"id": "x", "status": "cancelled", "start": map[string]string{"date": "2024-01-06"}},
				},
				"nextPageToken": "p2",
			})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": "b", "summary": "B", "start": map[string]string{"dateTime": "2024-03-31T10:00:00+09:00"}},
			},
		})
	})

	events, err := client.ListEvents(context.Background(), model.MustDate("2024-01-01"), model.MustDate("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].Title)
	assert.Equal(t, "B", events[1].Title)
	assert.Equal(t, 2, calls)
}

func TestListEventsSkipsUnreadableEvent(t *testing.T) {
	var logs bytes.Buffer
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": "bad", "summary": "Bad", "start": map[string]string{"date": "2024-01-05"}, "updated": "yesterday"},
				{"id": "good", "summary": "Good", "start": map[string]string{"date": "2024-01-06"}},
			},
		})
	})
	client.WithLogger(zerolog.New(&logs))

	events, err := client.ListEvents(context.Background(), model.MustDate("2024-01-01"), model.MustDate("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "good", events[0].ID)
	assert.Contains(t, logs.String(), `"event_id":"bad"`)
	assert.Contains(t, logs.String(), "skipping unreadable event")
}

func TestFindEventByTaskID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "notion_task_id=task-1", r.URL.Query().Get("privateExtendedProperty"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": "old", "status": "cancelled", "start": map[string]string{"date": "2024-05-01"}},
				{"id": "live", "summary": "設計【Foo】", "start": map[string]string{"date": "2024-05-01"}},
			},
		})
	})

	ev, err := client.FindEventByTaskID(context.Background(), "task-1")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "live", ev.ID)
}

func TestFindEventByTaskIDNone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"items": []any{}})
	})

	ev, err := client.FindEventByTaskID(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Nil(t, ev)
}
