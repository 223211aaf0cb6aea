// Package clock supplies "now" to the scheduling engine.
package clock

import (
	"fmt"
	"time"

	"github.com/bryan-cox/choreledger/internal/model"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// ParseFixed builds a Fixed clock from a YYYY-MM-DD date in the local zone.
// An empty string yields the System clock.
func ParseFixed(date string) (Clock, error) {
	if date == "" {
		return System{}, nil
	}
	t, err := time.ParseInLocation(model.DateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return Fixed(t), nil
}
