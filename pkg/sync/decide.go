// Package sync reconciles Notion tasks with the Google Calendar events they link to.
package sync

import (
	"github.com/harrisonrobin/tasksync/pkg/model"
)

// Action is what a sync run does for one task.
type Action int

const (
	ActionSkip Action = iota
	ActionCreate
	ActionUpdateFromTask
	ActionUpdateFromEvent
	ActionMarkCancelled
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdateFromTask:
		return "update-from-task"
	case ActionUpdateFromEvent:
		return "update-from-event"
	case ActionMarkCancelled:
		return "mark-cancelled"
	default:
		return "skip"
	}
}

// Decision is the outcome of comparing a task with its linked event.
type Decision struct {
	Action Action
	// Title is the event title to write.
	Title string
	// Date is the all-day date to write, nil to leave the event's date alone.
	Date   *model.Date
	Reason string
}

// Decide compares a task with its linked event. event is nil when the task is
// unlinked or its event no longer exists.
func Decide(task model.Task, event *model.CalendarEvent) Decision {
	if event == nil {
		if task.Cancelled() {
			return Decision{Action: ActionSkip, Reason: "no work date or on hold"}
		}
		return Decision{
			Action: ActionCreate,
			Title:  task.DisplayTitle(),
			Date:   task.WorkDate,
			Reason: "task has no event",
		}
	}

	expected := task.ExpectedTitle()
	cancelled := task.Cancelled()
	switch {
	case cancelled && event.Title == expected:
		return Decision{Action: ActionSkip, Title: expected, Reason: "already marked cancelled"}
	case !cancelled && event.Title == expected && model.SameDate(event.StartDate, task.WorkDate):
		return Decision{Action: ActionSkip, Title: expected, Reason: "in sync"}
	}

	switch {
	case task.LastEditedTime.After(event.LastModified) && cancelled:
		// only the title changes; the event keeps its date
		return Decision{Action: ActionMarkCancelled, Title: expected, Reason: "task cancelled after event edit"}
	case task.LastEditedTime.After(event.LastModified):
		return Decision{
			Action: ActionUpdateFromTask,
			Title:  expected,
			Date:   task.WorkDate,
			Reason: "task edited after event",
		}
	case event.LastModified.After(task.LastEditedTime):
		return Decision{Action: ActionUpdateFromEvent, Title: expected, Reason: "event edited after task"}
	default:
		return Decision{Action: ActionSkip, Title: expected, Reason: "same modification time"}
	}
}
