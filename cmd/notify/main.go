// Command notify pushes a LINE digest of the tasks due today.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harrisonrobin/tasksync/pkg/cli"
	"github.com/harrisonrobin/tasksync/pkg/config"
	"github.com/harrisonrobin/tasksync/pkg/line"
	"github.com/harrisonrobin/tasksync/pkg/model"
	"github.com/harrisonrobin/tasksync/pkg/notify"
	"github.com/harrisonrobin/tasksync/pkg/notion"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print the digest instead of sending it")
	flag.Parse()

	os.Exit(cli.Run("notify", config.Config.RequireNotify, func(ctx context.Context, env cli.Env) (string, error) {
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

		opts := notify.Options{
			Today:         model.DateIn(time.Now(), cfg.Location),
			LookaheadDays: cfg.LookaheadDays,
		}
		if current, ok := taskDB.CurrentSprint(cfg.CurrentSprintStatus); ok {
			opts.CurrentSprint = current
		} else {
			env.Log.Warn().Str("marker", cfg.CurrentSprintStatus).Msg("no sprint has the current status")
		}

		pusher, err := line.NewClient(cfg.LineToken)
		if err != nil {
			return "", err
		}
		notifier := notify.NewNotifier(pusher, cfg.LineRecipient, env.Log)
		notifier.DryRun = *dryRun
		notifier.Out = os.Stdout

		sent, err := notifier.Notify(ctx, tasks, opts)
		summary := fmt.Sprintf("tasks=%d skipped=%d notified=%d", len(tasks), len(skipped), sent)
		return summary, err
	}))
}
