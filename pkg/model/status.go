package model

// Status is the closed set of task states the sync and notify flows care about.
type Status int

const (
	StatusOther Status = iota
	StatusNotStarted
	StatusInProgress
	StatusDone
	StatusOnHold
)

// Default Notion status labels.
const (
	NOT_STARTED = "未着手"
	IN_PROGRESS = "進行中"
	DONE        = "完了"
	ON_HOLD     = "保留中"
)

// StatusLabels maps Notion status names to a Status.
type StatusLabels struct {
	NotStarted string
	InProgress string
	Done       string
	OnHold     string
}

// DefaultStatusLabels returns the labels used by the task database template.
func DefaultStatusLabels() StatusLabels {
	return StatusLabels{
		NotStarted: NOT_STARTED,
		InProgress: IN_PROGRESS,
		Done:       DONE,
		OnHold:     ON_HOLD,
	}
}

// Parse resolves a Notion status name. Unknown names map to StatusOther.
func (l StatusLabels) Parse(name string) Status {
	switch name {
	case "":
		return StatusOther
	case l.NotStarted:
		return StatusNotStarted
	case l.InProgress:
		return StatusInProgress
	case l.Done:
		return StatusDone
	case l.OnHold:
		return StatusOnHold
	}
	return StatusOther
}

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusInProgress:
		return "in-progress"
	case StatusDone:
		return "done"
	case StatusOnHold:
		return "on-hold"
	default:
		return "other"
	}
}
