// Package notify picks the tasks that need attention today and renders them as a
// LINE digest.
package notify

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

const (
	// UntaggedHeading groups tasks without tags.
	UntaggedHeading = "その他"
	// UnassignedProject is shown for tasks without a project.
	UnassignedProject = "未分類"
)

// Options controls which tasks are due.
type Options struct {
	Today model.Date
	// LookaheadDays extends the due end window past today.
	LookaheadDays int
	// CurrentSprint is the only sprint notified. Nothing is due when it is empty.
	CurrentSprint string
}

// Eligible reports whether task should be in today's digest.
func Eligible(task model.Task, opts Options) bool {
	if task.Sprint == "" || opts.CurrentSprint == "" {
		return false
	}
	if task.Sprint != opts.CurrentSprint {
		return false
	}
	if task.Status == model.StatusDone || task.Status == model.StatusOnHold {
		return false
	}

	horizon := opts.Today.AddDays(opts.LookaheadDays)
	switch {
	case task.DueEnd != nil && !task.DueEnd.After(horizon):
		return true
	case task.DueDate != nil && !task.DueDate.After(opts.Today):
		return true
	case task.WorkDate != nil && *task.WorkDate == opts.Today:
		return true
	}
	return false
}

// Filter returns the eligible tasks ordered by tag, project and title.
func Filter(tasks []model.Task, opts Options) []model.Task {
	var due []model.Task
	for _, t := range tasks {
		if Eligible(t, opts) {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if ta, tb := a.PrimaryTag(UntaggedHeading), b.PrimaryTag(UntaggedHeading); ta != tb {
			return ta < tb
		}
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		return a.Title < b.Title
	})
	return due
}

// Render builds one message per tag from tasks already ordered by Filter. The first
// message starts with today's date.
func Render(tasks []model.Task, today model.Date) []string {
	var (
		messages []string
		b        strings.Builder
		tag      string
		project  string
	)
	for i, t := range tasks {
		if tg := t.PrimaryTag(UntaggedHeading); i == 0 || tg != tag {
			if i > 0 {
				messages = append(messages, b.String())
				b.Reset()
			} else {
				b.WriteString(today.String() + "\n")
			}
			tag = tg
			project = ""
			fmt.Fprintf(&b, "■■%s■■\n", tag)
		}
		if p := projectName(t); p != project {
			project = p
			fmt.Fprintf(&b, "【%s】\n", project)
		}
		fmt.Fprintf(&b, " - [%s] %s (%s)\n", statusLabel(t), t.Title, dateInfo(t))
	}
	if b.Len() > 0 {
		messages = append(messages, b.String())
	}
	return messages
}

func projectName(t model.Task) string {
	if t.Project == "" {
		return UnassignedProject
	}
	return t.Project
}

func statusLabel(t model.Task) string {
	if t.StatusName != "" {
		return t.StatusName
	}
	return t.Status.String()
}

func dateInfo(t model.Task) string {
	switch {
	case t.DueEnd != nil:
		return "期限: " + t.DueEnd.String()
	case t.DueDate != nil:
		return "期限: " + t.DueDate.String()
	case t.WorkDate != nil:
		return "作業日: " + t.WorkDate.String()
	default:
		return "日付未定"
	}
}

// Pusher delivers rendered messages.
type Pusher interface {
	Push(ctx context.Context, to string, texts []string) error
}

// Notifier filters tasks and pushes the digest.
type Notifier struct {
	pusher    Pusher
	recipient string
	log       zerolog.Logger
	// DryRun writes the digest to Out instead of pushing it.
	DryRun bool
	Out    io.Writer
}

func NewNotifier(pusher Pusher, recipient string, log zerolog.Logger) *Notifier {
	return &Notifier{pusher: pusher, recipient: recipient, log: log}
}

// Notify pushes the digest for the eligible tasks and returns how many were included.
// Nothing is sent when no task is eligible.
func (n *Notifier) Notify(ctx context.Context, tasks []model.Task, opts Options) (int, error) {
	if opts.CurrentSprint == "" {
		n.log.Warn().Int("tasks", len(tasks)).Msg("no current sprint, nothing to notify")
		return 0, nil
	}
	due := Filter(tasks, opts)
	if len(due) == 0 {
		n.log.Info().Int("tasks", len(tasks)).Msg("no tasks to notify")
		return 0, nil
	}

	messages := Render(due, opts.Today)
	if n.DryRun {
		if n.Out != nil {
			fmt.Fprintln(n.Out, strings.Join(messages, "\n"))
		}
		n.log.Info().Int("due", len(due)).Int("messages", len(messages)).Msg("dry run, not sending")
		return len(due), nil
	}

	if err := n.pusher.Push(ctx, n.recipient, messages); err != nil {
		return 0, fmt.Errorf("unable to push digest: %w", err)
	}
	n.log.Info().Int("due", len(due)).Int("messages", len(messages)).Msg("digest sent")
	return len(due), nil
}
