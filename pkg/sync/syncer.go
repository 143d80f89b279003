package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harrisonrobin/tasksync/pkg/google"
	"github.com/harrisonrobin/tasksync/pkg/model"
)

// TaskStore writes the event link back onto a task.
type TaskStore interface {
	SetEventID(ctx context.Context, taskID, eventID string) error
}

// Calendar is the event side of the reconciliation. It deliberately has no delete.
type Calendar interface {
	GetEvent(ctx context.Context, eventID string) (*model.CalendarEvent, error)
	FindEventByTaskID(ctx context.Context, taskID string) (*model.CalendarEvent, error)
	CreateEvent(ctx context.Context, taskID, title string, date model.Date) (*model.CalendarEvent, error)
	UpdateEvent(ctx context.Context, eventID, title string, date *model.Date) (*model.CalendarEvent, error)
}

// Ledger remembers events created for a task until the id is stored on the task.
type Ledger interface {
	Pending(ctx context.Context, taskID string) (string, bool, error)
	RecordPending(ctx context.Context, taskID, eventID string) error
	Confirm(ctx context.Context, taskID string) error
}

// Summary counts what a run did.
type Summary struct {
	Tasks      int
	Created    int
	Adopted    int
	Updated    int
	Cancelled  int
	EventNewer int
	Skipped    int
	Failed     int
	// Unparsed counts pages that could not be read as tasks. They never fail a run.
	Unparsed int
}

func (s Summary) String() string {
	return fmt.Sprintf("tasks=%d created=%d adopted=%d updated=%d cancelled=%d event_newer=%d skipped=%d unparsed=%d failed=%d",
		s.Tasks, s.Created, s.Adopted, s.Updated, s.Cancelled, s.EventNewer, s.Skipped, s.Unparsed, s.Failed)
}

// Err reports whether any calendar or task store write failed.
func (s Summary) Err() error {
	if s.Failed > 0 {
		return fmt.Errorf("%d tasks failed to sync", s.Failed)
	}
	return nil
}

// Syncer applies decisions to the calendar and the task store.
type Syncer struct {
	tasks    TaskStore
	calendar Calendar
	ledger   Ledger
	log      zerolog.Logger
	// DryRun computes and logs decisions without writing.
	DryRun bool
}

// NewSyncer returns a Syncer. ledger may be nil.
func NewSyncer(tasks TaskStore, calendar Calendar, ledger Ledger, log zerolog.Logger) *Syncer {
	return &Syncer{tasks: tasks, calendar: calendar, ledger: ledger, log: log}
}

// Run reconciles every task. A failure on one task is logged and counted, and the
// remaining tasks are still processed.
func (s *Syncer) Run(ctx context.Context, tasks []model.Task) Summary {
	var sum Summary
	for _, task := range tasks {
		if ctx.Err() != nil {
			s.log.Warn().Err(ctx.Err()).Msg("sync interrupted")
			sum.Failed += len(tasks) - sum.Tasks
			break
		}
		sum.Tasks++

		res, err := s.syncTask(ctx, task)
		if err != nil {
			sum.Failed++
			s.log.Error().Err(err).Str("task_id", task.ID).Str("title", task.Title).Msg("sync failed")
			continue
		}
		switch res {
		case outcomeCreated:
			sum.Created++
		case outcomeAdopted:
			sum.Adopted++
		case outcomeUpdated:
			sum.Updated++
		case outcomeCancelled:
			sum.Cancelled++
		case outcomeEventNewer:
			sum.EventNewer++
		default:
			sum.Skipped++
		}
	}
	return sum
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeAdopted
	outcomeUpdated
	outcomeCancelled
	outcomeEventNewer
)

// syncTask reconciles a single task with its event.
func (s *Syncer) syncTask(ctx context.Context, task model.Task) (outcome, error) {
	var event *model.CalendarEvent
	if task.Linked() {
		ev, err := s.calendar.GetEvent(ctx, task.EventID)
		switch {
		case errors.Is(err, google.ErrEventNotFound):
			s.log.Info().Str("task_id", task.ID).Str("event_id", task.EventID).Msg("linked event is gone, recreating")
		case err != nil:
			return outcomeSkipped, fmt.Errorf("get event %s: %w", task.EventID, err)
		default:
			event = ev
		}
	}

	d := Decide(task, event)
	logger := s.log.With().
		Str("task_id", task.ID).
		Str("action", d.Action.String()).
		Str("reason", d.Reason).
		Logger()

	switch d.Action {
	case ActionCreate:
		return s.create(ctx, task, d, logger)
	case ActionUpdateFromTask, ActionMarkCancelled:
		logger.Info().Str("event_id", event.ID).Str("title", d.Title).Msg("updating event")
		if !s.DryRun {
			if _, err := s.calendar.UpdateEvent(ctx, event.ID, d.Title, d.Date); err != nil {
				return outcomeSkipped, fmt.Errorf("update event %s: %w", event.ID, err)
			}
		}
		if d.Action == ActionMarkCancelled {
			return outcomeCancelled, nil
		}
		return outcomeUpdated, nil
	case ActionUpdateFromEvent:
		logger.Info().Str("event_id", event.ID).Msg("event is newer, leaving task as is")
		return outcomeEventNewer, nil
	default:
		logger.Debug().Msg("nothing to do")
		return outcomeSkipped, nil
	}
}

func (s *Syncer) create(ctx context.Context, task model.Task, d Decision, logger zerolog.Logger) (outcome, error) {
	existing, err := s.findOrphan(ctx, task)
	if err != nil {
		return outcomeSkipped, err
	}
	if existing != nil {
		logger.Info().Str("event_id", existing.ID).Msg("adopting event created by an earlier run")
		if s.DryRun {
			return outcomeAdopted, nil
		}
		if existing.Title != d.Title || !model.SameDate(existing.StartDate, d.Date) {
			if _, err := s.calendar.UpdateEvent(ctx, existing.ID, d.Title, d.Date); err != nil {
				return outcomeSkipped, fmt.Errorf("update adopted event %s: %w", existing.ID, err)
			}
		}
		if err := s.link(ctx, task.ID, existing.ID); err != nil {
			return outcomeSkipped, err
		}
		return outcomeAdopted, nil
	}

	logger.Info().Str("title", d.Title).Stringer("date", d.Date).Msg("creating event")
	if s.DryRun {
		return outcomeCreated, nil
	}
	created, err := s.calendar.CreateEvent(ctx, task.ID, d.Title, *d.Date)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("create event: %w", err)
	}
	if s.ledger != nil {
		if err := s.ledger.RecordPending(ctx, task.ID, created.ID); err != nil {
			logger.Warn().Err(err).Msg("unable to record pending link")
		}
	}
	if err := s.link(ctx, task.ID, created.ID); err != nil {
		return outcomeSkipped, err
	}
	return outcomeCreated, nil
}

// findOrphan looks for a live event already created for the task, first through the
// ledger and then by the task id stored on the event.
func (s *Syncer) findOrphan(ctx context.Context, task model.Task) (*model.CalendarEvent, error) {
	if s.ledger != nil {
		eventID, ok, err := s.ledger.Pending(ctx, task.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("task_id", task.ID).Msg("unable to read ledger")
		} else if ok && eventID != task.EventID {
			ev, err := s.calendar.GetEvent(ctx, eventID)
			switch {
			case err == nil:
				return ev, nil
			case !errors.Is(err, google.ErrEventNotFound):
				return nil, fmt.Errorf("get pending event %s: %w", eventID, err)
			}
		}
	}

	ev, err := s.calendar.FindEventByTaskID(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("search event for task %s: %w", task.ID, err)
	}
	if ev != nil && ev.ID == task.EventID {
		return nil, nil
	}
	return ev, nil
}

func (s *Syncer) link(ctx context.Context, taskID, eventID string) error {
	if err := s.tasks.SetEventID(ctx, taskID, eventID); err != nil {
		return fmt.Errorf("store event id %s: %w", eventID, err)
	}
	if s.ledger != nil {
		if err := s.ledger.Confirm(ctx, taskID); err != nil {
			s.log.Warn().Err(err).Str("task_id", taskID).Msg("unable to clear pending link")
		}
	}
	return nil
}
