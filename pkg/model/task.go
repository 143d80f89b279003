package model

import (
	"fmt"
	"time"
)

// CancelPrefix marks a calendar event whose task was put on hold or lost its work date.
// Events are renamed with it instead of being deleted.
const CancelPrefix = "【中止】"

// Task represents a task record read from the Notion task database.
type Task struct {
	ID         string
	Title      string
	WorkDate   *Date
	DueDate    *Date
	DueEnd     *Date
	Status     Status
	StatusName string
	Project    string
	Sprint     string
	Tags       []string
	// EventID is the Google Calendar event this task is linked to, empty when unlinked.
	EventID        string
	LastEditedTime time.Time
	URL            string
}

// Linked reports whether the task stores a calendar event id.
func (t Task) Linked() bool {
	return t.EventID != ""
}

// Cancelled reports whether the task's calendar event should carry CancelPrefix.
func (t Task) Cancelled() bool {
	return t.WorkDate == nil || t.Status == StatusOnHold
}

// DisplayTitle is the event title for an active task: "{title}【{project}】".
func (t Task) DisplayTitle() string {
	if t.Project == "" {
		return t.Title
	}
	return fmt.Sprintf("%s【%s】", t.Title, t.Project)
}

// ExpectedTitle is the title the linked event should carry given the task's current state.
func (t Task) ExpectedTitle() string {
	if t.Cancelled() {
		return CancelPrefix + t.DisplayTitle()
	}
	return t.DisplayTitle()
}

// PrimaryTag returns the first tag, or fallback when the task has none.
func (t Task) PrimaryTag(fallback string) string {
	if len(t.Tags) == 0 {
		return fallback
	}
	return t.Tags[0]
}
