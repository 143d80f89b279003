// Command sync reconciles Notion tasks with Google Calendar events.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/harrisonrobin/tasksync/pkg/cli"
	"github.com/harrisonrobin/tasksync/pkg/config"
	"github.com/harrisonrobin/tasksync/pkg/google"
	"github.com/harrisonrobin/tasksync/pkg/notion"
	"github.com/harrisonrobin/tasksync/pkg/sync"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Log the decisions without writing to Notion or Google Calendar")
	flag.Parse()

	os.Exit(cli.Run("sync", config.Config.RequireSync, func(ctx context.Context, env cli.Env) (string, error) {
		cfg := env.Config
		schema := notion.DefaultSchema(cfg.WorkDateProperty)
		nc := notion.NewClient(cfg.NotionToken, cfg.NotionRateLimit, nil)

		projects, err := notion.LoadRelatedDB(ctx, nc, cfg.NotionProjectDB, schema.Status)
		if err != nil {
			return "", err
		}
		sprints, err := notion.LoadRelatedDB(ctx, nc, cfg.NotionSprintDB, schema.Status)
		if err != nil {
			return "", err
		}
		env.Log.Info().Int("projects", projects.Len()).Int("sprints", sprints.Len()).Msg("loaded related databases")
		taskDB := notion.NewTaskDB(nc, notion.TaskDBOptions{
			DatabaseID: cfg.NotionTaskDB,
			Schema:     schema,
			Labels:     cfg.StatusLabels,
			Projects:   projects,
			Sprints:    sprints,
			Logger:     env.Log,
		})

		tasks, skipped, err := taskDB.ListTasks(ctx)
		if err != nil {
			return "", err
		}
		env.Log.Info().Int("tasks", len(tasks)).Int("unparsed", len(skipped)).Msg("read tasks")

		cal, err := google.NewClient(ctx, cfg.ServiceAccountFile, cfg.CalendarID, cfg.Location)
		if err != nil {
			return "", err
		}

		var ledger sync.Ledger
		if env.Ledger != nil {
			ledger = env.Ledger
		}
		syncer := sync.NewSyncer(taskDB, cal, ledger, env.Log)
		syncer.DryRun = *dryRun

		sum := syncer.Run(ctx, tasks)
		sum.Unparsed = len(skipped)
		if sum.Unparsed > 0 {
			env.Log.Warn().Int("unparsed", sum.Unparsed).Msg("some task pages could not be read")
		}
		return sum.String(), sum.Err()
	}))
}
