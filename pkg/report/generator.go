package report

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

// TaskSource lists completed tasks.
type TaskSource interface {
	DoneTasks(ctx context.Context, from, to model.Date) ([]model.Task, error)
}

// Calendar lists the events of one calendar.
type Calendar interface {
	CalendarID() string
	ListEvents(ctx context.Context, from, to model.Date) ([]model.CalendarEvent, error)
}

// PageWriter stores review pages.
type PageWriter interface {
	FindPage(ctx context.Context, title string) (string, bool, error)
	CreatePage(ctx context.Context, title string, blocks []model.Block) (string, error)
}

// TextGenerator writes the narrative.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result describes one generator run.
type Result struct {
	Title  string
	PageID string
	Tasks  int
	Events int
	// Skipped is set when the page already existed or there was nothing to review.
	Skipped bool
	Reason  string
}

// Generator writes one review page per quarter.
type Generator struct {
	tasks     TaskSource
	calendars []Calendar
	pages     PageWriter
	ai        TextGenerator
	log       zerolog.Logger
	// Force creates the page even when one with the same title exists.
	Force bool
	// DryRun collects data and generates the narrative without creating a page.
	DryRun bool
}

func NewGenerator(tasks TaskSource, calendars []Calendar, pages PageWriter, ai TextGenerator, log zerolog.Logger) *Generator {
	return &Generator{tasks: tasks, calendars: calendars, pages: pages, ai: ai, log: log}
}

// Generate builds and stores the review for q.
func (g *Generator) Generate(ctx context.Context, q Quarter) (Result, error) {
	res := Result{Title: q.Title()}
	logger := g.log.With().Str("quarter", q.String()).Logger()

	if !g.Force {
		pageID, exists, err := g.pages.FindPage(ctx, res.Title)
		if err != nil {
			return res, err
		}
		if exists {
			logger.Info().Str("page_id", pageID).Msg("review page already exists")
			res.PageID = pageID
			res.Skipped = true
			res.Reason = "page exists"
			return res, nil
		}
	}

	data, err := g.collect(ctx, q, logger)
	if err != nil {
		return res, err
	}
	res.Tasks = len(data.Tasks)
	res.Events = data.EventCount()
	if data.Empty() {
		logger.Info().Msg("no tasks or events in quarter")
		res.Skipped = true
		res.Reason = "no data"
		return res, nil
	}

	input := FormatInput(data, Aggregate(data))
	review, err := g.ai.Generate(ctx, Prompt(q.Period(), input))
	if err != nil {
		return res, fmt.Errorf("unable to generate review: %w", err)
	}

	blocks := Blocks(data, review)
	if g.DryRun {
		logger.Info().Int("blocks", len(blocks)).Msg("dry run, not creating page")
		return res, nil
	}

	res.PageID, err = g.pages.CreatePage(ctx, res.Title, blocks)
	if err != nil {
		return res, err
	}
	logger.Info().Str("page_id", res.PageID).Int("tasks", res.Tasks).Int("events", res.Events).Msg("review page created")
	return res, nil
}

// collect reads done tasks and the events of every calendar. A calendar that cannot be
// read is left out of the report.
func (g *Generator) collect(ctx context.Context, q Quarter, logger zerolog.Logger) (Data, error) {
	data := Data{Quarter: q}
	from, to := q.Start(), q.End()

	tasks, err := g.tasks.DoneTasks(ctx, from, to)
	if err != nil {
		return data, err
	}
	data.Tasks = tasks
	logger.Info().Int("tasks", len(tasks)).Msg("read done tasks")

	for _, cal := range g.calendars {
		events, err := cal.ListEvents(ctx, from, to)
		if err != nil {
			logger.Warn().Err(err).Str("calendar_id", cal.CalendarID()).Msg("skipping calendar")
			continue
		}
		logger.Info().Str("calendar_id", cal.CalendarID()).Int("events", len(events)).Msg("read events")
		data.Calendars = append(data.Calendars, CalendarEvents{CalendarID: cal.CalendarID(), Events: events})
	}
	return data, nil
}
