package google

import (
	"context"
	"time"

	"github.com/harrisonrobin/tasksync/pkg/auth"
)

// NewClient creates a Google Calendar client authenticated with a service-account key.
// The calendar must be shared with the service account's email address.
func NewClient(ctx context.Context, keyFile, calendarID string, loc *time.Location) (*CalendarClient, error) {
	srv, err := auth.GetCalendarService(ctx, keyFile)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, loc), nil
}
