// Package notify delivers progress updates to a webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bryan-cox/choreledger/internal/model"
	"github.com/bryan-cox/choreledger/internal/schedule"
)

// ErrRateLimited is returned when a send is dropped by the rate limiter.
var ErrRateLimited = errors.New("webhook rate limit exceeded")

// Progress is the payload posted to the webhook.
type Progress struct {
	Date           string   `json:"date"`
	Due            int      `json:"due"`
	DueMinutes     float64  `json:"dueMinutes"`
	CompletedToday int      `json:"completedToday"`
	Tasks          []string `json:"tasks"`
}

// Sink receives progress updates.
type Sink interface {
	Send(ctx context.Context, p Progress) error
}

// BuildProgress summarizes the state of a task set at now.
func BuildProgress(tasks []model.Task, now time.Time) Progress {
	p := Progress{Date: schedule.FormatDate(now), Tasks: []string{}}
	for _, t := range tasks {
		if days, ok := schedule.DaysSince(t, now); ok && days == 0 {
			p.CompletedToday++
		}
		if schedule.IsActive(t, now, false) {
			p.Due++
			p.DueMinutes += t.Minutes
			p.Tasks = append(p.Tasks, t.Name)
		}
	}
	return p
}

// Webhook posts Progress as JSON to a URL.
type Webhook struct {
	URL   string
	Token string // sent as a bearer token when set

	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewWebhook creates a webhook sink allowing perMinute sends per minute.
func NewWebhook(url, token string, perMinute int, log *slog.Logger) *Webhook {
	if perMinute <= 0 {
		perMinute = 6
	}
	if log == nil {
		log = slog.Default()
	}
	return &Webhook{
		URL:     url,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		log:     log,
	}
}

func (w *Webhook) Send(ctx context.Context, p Progress) error {
	if !w.limiter.Allow() {
		w.log.Warn("dropping progress update", "url", w.URL, "error", ErrRateLimited)
		return ErrRateLimited
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", w.Token))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	w.log.Info("progress sent", "due", p.Due, "date", p.Date)
	return nil
}
