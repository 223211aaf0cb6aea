package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryan-cox/choreledger/internal/clock"
	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/modify"
	"github.com/bryan-cox/choreledger/internal/notify"
	"github.com/bryan-cox/choreledger/internal/recurrence"
	"github.com/bryan-cox/choreledger/internal/remind"
	"github.com/bryan-cox/choreledger/internal/report"
	"github.com/bryan-cox/choreledger/internal/schedule"
	"github.com/bryan-cox/choreledger/internal/store"
)

// loadTasks opens the configured store and returns it with its tasks.
// Callers must close the returned store.
func loadTasks(ctx context.Context) (store.Store, []model.Task, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	tasks, err := st.GetTasks(ctx)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return st, tasks, nil
}

// runDueCommand is the logic for the 'due' subcommand.
func runDueCommand(cmd *cobra.Command, args []string) {
	today, err := now()
	if err != nil {
		slog.Error("Invalid --today value", "error", err)
		os.Exit(1)
	}
	st, tasks, err := loadTasks(cmd.Context())
	if err != nil {
		slog.Error("Failed to read tasks", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	cats := report.CategorizeTasks(tasks, today, includeToday)

	var out bytes.Buffer
	report.PrintDueTasks(&out, cats, showAll)
	emit(cmd, &out)
}

// runPlanCommand is the logic for the 'plan' subcommand.
func runPlanCommand(cmd *cobra.Command, args []string) {
	today, err := now()
	if err != nil {
		slog.Error("Invalid --today value", "error", err)
		os.Exit(1)
	}
	overrides, err := parseOverrides(freqFlags, dateFlags)
	if err != nil {
		slog.Error("Invalid override", "error", err)
		os.Exit(1)
	}
	st, tasks, err := loadTasks(cmd.Context())
	if err != nil {
		slog.Error("Failed to read tasks", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	plan := schedule.Project(tasks, overrides, today)

	var out bytes.Buffer
	report.PrintPlan(&out, plan, today)
	emit(cmd, &out)
}

// runStatsCommand is the logic for the 'stats' subcommand.
func runStatsCommand(cmd *cobra.Command, args []string) {
	overrides, err := parseOverrides(freqFlags, nil)
	if err != nil {
		slog.Error("Invalid override", "error", err)
		os.Exit(1)
	}
	st, tasks, err := loadTasks(cmd.Context())
	if err != nil {
		slog.Error("Failed to read tasks", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var out bytes.Buffer
	report.PrintSummary(&out, schedule.Summarize(tasks, overrides.Frequency))
	emit(cmd, &out)
}

// runDispatchCommand staggers every task and saves the new completion dates.
func runDispatchCommand(cmd *cobra.Command, args []string) {
	today, err := now()
	if err != nil {
		slog.Error("Invalid --today value", "error", err)
		os.Exit(1)
	}
	st, tasks, err := loadTasks(cmd.Context())
	if err != nil {
		slog.Error("Failed to read tasks", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	results := schedule.DispatchBatch(tasks, today)

	var out bytes.Buffer
	report.PrintDispatchResults(&out, results)
	emit(cmd, &out)

	if dryRun {
		return
	}

	// Only successful dispatches are persisted.
	dates := model.DateOverrides{}
	for _, r := range results {
		if r.OK() {
			dates[r.Task.ID] = r.Task.CompletedOn
		}
	}
	if len(dates) == 0 {
		return
	}
	if err := modify.Save(cmd.Context(), st, tasks, model.Overrides{Dates: dates}, slog.Default()); err != nil {
		slog.Error("Failed to save dispatched tasks", "error", err)
		os.Exit(1)
	}
}

// runDoneCommand marks the given tasks completed today.
func runDoneCommand(cmd *cobra.Command, args []string) {
	today, err := now()
	if err != nil {
		slog.Error("Invalid --today value", "error", err)
		os.Exit(1)
	}
	st, tasks, err := loadTasks(cmd.Context())
	if err != nil {
		slog.Error("Failed to read tasks", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var names []string
	for _, id := range args {
		t, ok := byID[id]
		if !ok {
			slog.Error("Failed to complete task", "error", &modify.NotFoundError{ID: id})
			os.Exit(1)
		}
		updated, err := st.UpdateTask(cmd.Context(), schedule.Complete(t, today))
		if err != nil {
			slog.Error("Failed to complete task", "id", id, "error", err)
			os.Exit(1)
		}
		names = append(names, updated.Name)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "Completed: %s\n", strings.Join(names, ", "))
	emit(cmd, &out)
}

// runAddCommand adds a new task to the store.
func runAddCommand(cmd *cobra.Command, args []string) {
	if p := recurrence.Parse(addOnce); p.Kind == recurrence.Unrecognized {
		slog.Warn("Recurrence not recognized, the task will always be due", "once", addOnce)
	}

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	st, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	task, err := st.AddTask(cmd.Context(), model.Task{
		ID:      addID,
		Name:    addName,
		Minutes: addMinutes,
		Once:    addOnce,
		Reason:  addReason,
	})
	if err != nil {
		slog.Error("Failed to add task", "error", err)
		os.Exit(1)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "Added %s (%s, %s)\n", task.Name, task.ID, report.Cadence(task.Once))
	emit(cmd, &out)
}

// runModifyCommand saves frequency and date overrides through the batch saver.
func runModifyCommand(cmd *cobra.Command, args []string) {
	overrides, err := parseOverrides(freqFlags, dateFlags)
	if err != nil {
		slog.Error("Invalid override", "error", err)
		os.Exit(1)
	}
	if overrides.IsEmpty() {
		slog.Error("Nothing to modify, pass --freq or --date")
		os.Exit(1)
	}
	st, tasks, err := loadTasks(cmd.Context())
	if err != nil {
		slog.Error("Failed to read tasks", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := modify.Save(cmd.Context(), st, tasks, overrides, slog.Default()); err != nil {
		var batchErr *modify.BatchError
		if errors.As(err, &batchErr) {
			for _, f := range batchErr.Failures {
				slog.Error("Modification failed", "id", f.ID, "error", f.Err)
			}
		}
		slog.Error("Failed to save modifications", "error", err)
		os.Exit(1)
	}

	var out bytes.Buffer
	fmt.Fprintln(&out, "Modifications saved.")
	emit(cmd, &out)
}

// runRemindCommand sends progress to the webhook once or on a cron schedule.
func runRemindCommand(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Webhook.URL == "" {
		slog.Error("No webhook configured, set webhook.url in the config file")
		os.Exit(1)
	}
	spec := cfg.Remind.Schedule
	if remindSchedule != "" {
		spec = remindSchedule
	}
	if err := remind.ValidateSchedule(spec); err != nil {
		slog.Error("Invalid schedule", "error", err)
		os.Exit(1)
	}
	clk, err := currentClock()
	if err != nil {
		slog.Error("Invalid --today value", "error", err)
		os.Exit(1)
	}

	st, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	sink := notify.NewWebhook(cfg.Webhook.URL, cfg.WebhookToken(), cfg.Webhook.RatePerMinute, slog.Default())
	r, cache := newReminder(st, sink, cfg.CacheTTL(), clk)

	if remindOnce {
		if err := r.RunOnce(cmd.Context()); err != nil {
			slog.Error("Failed to send reminder", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Edits to a YAML task file are picked up before the cache expires.
	if fs, ok := st.(*store.FileStore); ok {
		go func() {
			if err := remind.WatchFile(ctx, fs.Path(), cache.Invalidate, slog.Default()); err != nil {
				slog.Warn("Not watching task file", "error", err)
			}
		}()
	}

	if err := r.Run(ctx, spec); err != nil {
		slog.Error("Reminder stopped", "error", err)
		os.Exit(1)
	}
}

// newReminder wires a reminder reading through a TTL cache. clk dates the
// progress reports; the cache ages on wall time even when --today pins clk.
func newReminder(gw store.Gateway, sink notify.Sink, ttl time.Duration, clk clock.Clock) (*remind.Reminder, *store.Cache) {
	cache := store.NewCache(gw, ttl, clock.System{})
	return &remind.Reminder{
		Tasks: cache,
		Sink:  sink,
		Clock: clk,
		Log:   slog.Default(),
	}, cache
}
