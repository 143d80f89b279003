package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

// TaskDB reads and updates the task database.
type TaskDB struct {
	client   *notionapi.Client
	dbID     string
	schema   Schema
	labels   model.StatusLabels
	projects *RelatedDB
	sprints  *RelatedDB
	log      zerolog.Logger
}

// TaskDBOptions configures a TaskDB. Projects and Sprints may be nil, in which case
// the corresponding task fields are left empty.
type TaskDBOptions struct {
	DatabaseID string
	Schema     Schema
	Labels     model.StatusLabels
	Projects   *RelatedDB
	Sprints    *RelatedDB
	Logger     zerolog.Logger
}

func NewTaskDB(client *notionapi.Client, opts TaskDBOptions) *TaskDB {
	return &TaskDB{
		client:   client,
		dbID:     opts.DatabaseID,
		schema:   opts.Schema,
		labels:   opts.Labels,
		projects: opts.Projects,
		sprints:  opts.Sprints,
		log:      opts.Logger,
	}
}

// ListTasks returns every task in the database. Pages that cannot be turned into a
// task are returned in skipped and do not stop the read.
func (db *TaskDB) ListTasks(ctx context.Context) (tasks []model.Task, skipped []error, err error) {
	err = queryAll(ctx, db.client, db.dbID, nil, func(page notionapi.Page) {
		task, perr := db.parseTask(page)
		if perr != nil {
			db.log.Warn().Err(perr).Str("page_id", string(page.ID)).Msg("skipping task")
			skipped = append(skipped, perr)
			return
		}
		tasks = append(tasks, task)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to list tasks: %w", err)
	}
	return tasks, skipped, nil
}

// DoneTasks returns the tasks whose status is the done label and whose work date
// falls within [from, to]. The bounds are sent as UTC midnights so the filter matches
// date-only properties on the same calendar days.
func (db *TaskDB) DoneTasks(ctx context.Context, from, to model.Date) ([]model.Task, error) {
	start := notionapi.Date(from.In(time.UTC))
	end := notionapi.Date(to.In(time.UTC))
	filter := &notionapi.AndCompoundFilter{
		&notionapi.PropertyFilter{
			Property: db.schema.Status,
			Status:   &notionapi.StatusFilterCondition{Equals: db.labels.Done},
		},
		&notionapi.PropertyFilter{
			Property: db.schema.WorkDate,
			Date:     &notionapi.DateFilterCondition{OnOrAfter: &start},
		},
		&notionapi.PropertyFilter{
			Property: db.schema.WorkDate,
			Date:     &notionapi.DateFilterCondition{OnOrBefore: &end},
		},
	}

	var tasks []model.Task
	err := queryAll(ctx, db.client, db.dbID, filter, func(page notionapi.Page) {
		task, perr := db.parseTask(page)
		if perr != nil {
			db.log.Warn().Err(perr).Str("page_id", string(page.ID)).Msg("skipping done task")
			return
		}
		tasks = append(tasks, task)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to query done tasks: %w", err)
	}
	return tasks, nil
}

// SetEventID stores the calendar event id on the task page.
func (db *TaskDB) SetEventID(ctx context.Context, taskID, eventID string) error {
	req := &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			db.schema.EventID: notionapi.RichTextProperty{
				RichText: []notionapi.RichText{textRun(eventID)},
			},
		},
	}
	if _, err := db.client.Page.Update(ctx, notionapi.PageID(taskID), req); err != nil {
		return fmt.Errorf("unable to store event id on task %s: %w", taskID, err)
	}
	return nil
}

// CurrentSprint returns the title of the sprint whose status id or name equals marker.
func (db *TaskDB) CurrentSprint(marker string) (string, bool) {
	p, ok := db.sprints.FindByStatus(marker)
	return p.Title, ok
}

func (db *TaskDB) parseTask(page notionapi.Page) (model.Task, error) {
	task := model.Task{
		ID:             string(page.ID),
		URL:            page.URL,
		LastEditedTime: page.LastEditedTime,
	}
	props := page.Properties

	if p, ok := props[db.schema.Title].(*notionapi.TitleProperty); ok {
		task.Title = strings.TrimSpace(plainText(p.Title))
	}
	if task.Title == "" {
		return task, fmt.Errorf("task %s has no %s", task.ID, db.schema.Title)
	}

	var err error
	if task.Project, err = resolveRelation(props[db.schema.Project], db.projects); err != nil {
		return task, fmt.Errorf("task %s: %s: %w", task.ID, db.schema.Project, err)
	}
	if task.Sprint, err = resolveRelation(props[db.schema.Sprint], db.sprints); err != nil {
		return task, fmt.Errorf("task %s: %s: %w", task.ID, db.schema.Sprint, err)
	}

	if p, ok := props[db.schema.Due].(*notionapi.DateProperty); ok && p.Date != nil {
		task.DueDate = toDate(p.Date.Start)
		task.DueEnd = toDate(p.Date.End)
	}
	if p, ok := props[db.schema.WorkDate].(*notionapi.DateProperty); ok && p.Date != nil {
		task.WorkDate = toDate(p.Date.Start)
	}
	if p, ok := props[db.schema.Status].(*notionapi.StatusProperty); ok {
		task.StatusName = p.Status.Name
		task.Status = db.labels.Parse(p.Status.Name)
	}
	if p, ok := props[db.schema.Tags].(*notionapi.MultiSelectProperty); ok {
		for _, opt := range p.MultiSelect {
			task.Tags = append(task.Tags, opt.Name)
		}
	}
	if p, ok := props[db.schema.EventID].(*notionapi.RichTextProperty); ok {
		task.EventID = strings.TrimSpace(plainText(p.RichText))
	}
	return task, nil
}

// resolveRelation maps the first related page to its title.
func resolveRelation(prop notionapi.Property, db *RelatedDB) (string, error) {
	p, ok := prop.(*notionapi.RelationProperty)
	if !ok || len(p.Relation) == 0 || db == nil {
		return "", nil
	}
	id := string(p.Relation[0].ID)
	title, found := db.Title(id)
	if !found {
		return "", fmt.Errorf("unknown related page %s", id)
	}
	return title, nil
}

func toDate(d *notionapi.Date) *model.Date {
	if d == nil {
		return nil
	}
	date := model.DateOf(time.Time(*d))
	return &date
}

func textRun(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}
