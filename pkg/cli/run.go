// Package cli holds the start-up and shutdown steps shared by the sync, notify and
// report binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harrisonrobin/tasksync/pkg/config"
	"github.com/harrisonrobin/tasksync/pkg/index"
	"github.com/harrisonrobin/tasksync/pkg/logging"
)

// Env is what a binary's body receives.
type Env struct {
	Config config.Config
	Log    zerolog.Logger
	// Ledger is nil when the ledger file could not be opened.
	Ledger *index.Ledger
}

// Body does the binary's work and returns a one line summary for the run history.
type Body func(ctx context.Context, env Env) (summary string, err error)

// Run loads configuration, validates it with require, and runs body under a context
// cancelled on SIGINT, SIGTERM or the configured timeout. It returns the exit code.
func Run(app string, require func(config.Config) error, body Body) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app, err)
		return 1
	}
	return run(os.Stderr, app, cfg, require, body)
}

func run(w io.Writer, app string, cfg config.Config, require func(config.Config) error, body Body) int {
	runID := uuid.NewString()
	logger := logging.NewRun(w, app, runID, cfg.LogLevel, cfg.LogFormat)

	if require != nil {
		if err := require(cfg); err != nil {
			logger.Error().Err(err).Msg("invalid configuration")
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	env := Env{Config: cfg, Log: logger}
	if cfg.LedgerPath != "" {
		ledger, err := index.Open(cfg.LedgerPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.LedgerPath).Msg("running without ledger")
		} else {
			defer ledger.Close()
			env.Ledger = ledger
			logPrevious(ctx, logger, ledger, app)
		}
	}

	started := time.Now()
	summary, err := body(ctx, env)

	if env.Ledger != nil {
		record := index.Run{
			Kind:       app,
			RunID:      runID,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Summary:    summary,
		}
		if err != nil {
			record.Error = err.Error()
		}
		// the run context may already be cancelled
		if rerr := env.Ledger.RecordRun(context.Background(), record); rerr != nil {
			logger.Warn().Err(rerr).Msg("unable to record run")
		}
	}

	if err != nil {
		logger.Error().Err(err).Str("summary", summary).Dur("elapsed", time.Since(started)).Msg("run failed")
		return 1
	}
	logger.Info().Str("summary", summary).Dur("elapsed", time.Since(started)).Msg("run finished")
	return 0
}

func logPrevious(ctx context.Context, logger zerolog.Logger, ledger *index.Ledger, app string) {
	runs, err := ledger.LastRuns(ctx, app, 1)
	if err != nil {
		logger.Warn().Err(err).Msg("unable to read run history")
		return
	}
	if len(runs) == 0 {
		logger.Info().Msg("first recorded run")
		return
	}
	prev := runs[0]
	ev := logger.Info().
		Str("previous_run_id", prev.RunID).
		Time("previous_started_at", prev.StartedAt).
		Str("previous_summary", prev.Summary)
	if prev.Error != "" {
		ev = ev.Str("previous_error", prev.Error)
	}
	ev.Msg("previous run")
}
