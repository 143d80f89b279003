package model

import "time"

// CalendarEvent is the normalized view of a Google Calendar event.
type CalendarEvent struct {
	ID           string
	CalendarID   string
	Title        string
	StartDate    *Date
	EndDate      *Date
	LastModified time.Time
	// Cancelled is set for events Google still returns after they were deleted.
	Cancelled bool
}
