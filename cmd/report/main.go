// Command report writes the quarterly review page to Notion.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harrisonrobin/tasksync/pkg/auth"
	"github.com/harrisonrobin/tasksync/pkg/cli"
	"github.com/harrisonrobin/tasksync/pkg/config"
	"github.com/harrisonrobin/tasksync/pkg/gemini"
	"github.com/harrisonrobin/tasksync/pkg/google"
	"github.com/harrisonrobin/tasksync/pkg/model"
	"github.com/harrisonrobin/tasksync/pkg/notion"
	"github.com/harrisonrobin/tasksync/pkg/report"
)

func main() {
	quarterFlag := flag.String("quarter", "", "Quarter to review, e.g. 2024Q1 (default: the previous quarter)")
	force := flag.Bool("force", false, "Create the page even if a review with the same title exists")
	dryRun := flag.Bool("dry-run", false, "Generate the review without creating the page")
	flag.Parse()

	os.Exit(cli.Run("report", config.Config.RequireReport, func(ctx context.Context, env cli.Env) (string, error) {
		cfg := env.Config

		q := report.QuarterOf(model.DateIn(time.Now(), cfg.Location)).Previous()
		if *quarterFlag != "" {
			var err error
			if q, err = report.ParseQuarter(*quarterFlag); err != nil {
				return "", err
			}
		}

		nc := notion.NewClient(cfg.NotionToken, cfg.NotionRateLimit, nil)
		schema := notion.DefaultSchema(cfg.WorkDateProperty)

		var projects *notion.RelatedDB
		if cfg.NotionProjectDB != "" {
			var err error
			if projects, err = notion.LoadRelatedDB(ctx, nc, cfg.NotionProjectDB, schema.Status); err != nil {
				return "", err
			}
		}
		taskDB := notion.NewTaskDB(nc, notion.TaskDBOptions{
			DatabaseID: cfg.NotionTaskDB,
			Schema:     schema,
			Labels:     cfg.StatusLabels,
			Projects:   projects,
			Logger:     env.Log,
		})

		srv, err := auth.GetCalendarService(ctx, cfg.ServiceAccountFile)
		if err != nil {
			return "", err
		}
		var calendars []report.Calendar
		for _, id := range cfg.ReportCalendarIDs {
			calendars = append(calendars, google.NewCalendarClient(srv, id, cfg.Location).WithLogger(env.Log))
		}

		ai, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return "", err
		}

		gen := report.NewGenerator(taskDB, calendars, notion.NewReviewDB(nc, cfg.NotionReviewDB), ai, env.Log)
		gen.Force = *force
		gen.DryRun = *dryRun

		res, err := gen.Generate(ctx, q)
		summary := fmt.Sprintf("quarter=%s tasks=%d events=%d page=%s", q, res.Tasks, res.Events, res.PageID)
		if res.Skipped {
			summary += " skipped=" + res.Reason
		}
		return summary, err
	}))
}
