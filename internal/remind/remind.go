// Package remind periodically sends the current chore progress to a
// notification sink.
package remind

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/bryan-cox/choreledger/internal/clock"
	"github.com/bryan-cox/choreledger/internal/notify"
	"github.com/bryan-cox/choreledger/internal/store"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a cron expression such as "0 8 * * *" or "@daily".
func ValidateSchedule(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Reminder sends progress built from the gateway's tasks to a sink.
type Reminder struct {
	Tasks store.Gateway
	Sink  notify.Sink
	Clock clock.Clock
	Log   *slog.Logger
}

func (r *Reminder) logger() *slog.Logger {
	if r.Log == nil {
		return slog.Default()
	}
	return r.Log
}

// RunOnce sends a single progress update.
func (r *Reminder) RunOnce(ctx context.Context) error {
	tasks, err := r.Tasks.GetTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	p := notify.BuildProgress(tasks, r.Clock.Now())
	if err := r.Sink.Send(ctx, p); err != nil {
		return fmt.Errorf("failed to send progress: %w", err)
	}
	return nil
}

// Run sends progress on every tick of the cron schedule until ctx is done.
func (r *Reminder) Run(ctx context.Context, spec string) error {
	log := r.logger()
	c := cron.New(cron.WithParser(parser))
	if _, err := c.AddFunc(spec, func() {
		if err := r.RunOnce(ctx); err != nil {
			log.Warn("reminder failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info("reminder started", "schedule", spec)
	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("reminder stopped")
	return nil
}

// WatchFile calls onChange after path is written, created or replaced.
// Bursts of events are coalesced. It returns when ctx is done.
func WatchFile(ctx context.Context, path string, onChange func(), log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors and the YAML store replace the file by rename.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	file := filepath.Base(path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(100*time.Millisecond, onChange)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				log.Debug("task file changed", "path", path, "op", ev.Op.String())
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("task file watch error", "path", path, "error", err)
		}
	}
}
