// Package recurrence parses and encodes recurrence descriptors such as
// "day", "2-weeks" or "3-days".
package recurrence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Once is the descriptor of a task that never recurs.
const Once = "yes"

// Days per unit keyword.
const (
	daysPerWeek  = 7
	daysPerMonth = 30
	daysPerYear  = 365
)

// Kind tells how a descriptor was understood.
type Kind int

const (
	// Unrecognized descriptors do not match the grammar.
	Unrecognized Kind = iota
	// OneTime is the "yes" literal.
	OneTime
	// Interval descriptors carry a cadence in days.
	Interval
)

func (k Kind) String() string {
	switch k {
	case OneTime:
		return "one-time"
	case Interval:
		return "interval"
	default:
		return "unrecognized"
	}
}

// Parsed is a parsed recurrence descriptor.
type Parsed struct {
	Kind Kind
	Days int // only meaningful when Kind == Interval
}

// descriptorRegex matches an optional 1-3 digit quantity, an optional hyphen
// and a unit keyword, optionally pluralized.
var descriptorRegex = regexp.MustCompile(`^(\d{1,3})?-?(day|week|month|year)s?$`)

// Parse parses a descriptor. It never fails: anything outside the grammar
// comes back as Unrecognized.
func Parse(descriptor string) Parsed {
	s := strings.TrimSpace(descriptor)
	if s == Once {
		return Parsed{Kind: OneTime}
	}

	m := descriptorRegex.FindStringSubmatch(s)
	if m == nil {
		return Parsed{Kind: Unrecognized}
	}

	quantity := 1
	if m[1] != "" {
		// At most three digits, cannot overflow.
		quantity, _ = strconv.Atoi(m[1])
	}

	switch m[2] {
	case "week":
		quantity *= daysPerWeek
	case "month":
		quantity *= daysPerMonth
	case "year":
		quantity *= daysPerYear
	}
	return Parsed{Kind: Interval, Days: quantity}
}

// Days returns the canonical interval of a descriptor in days.
// One-time and unrecognized descriptors yield 0.
func Days(descriptor string) int {
	p := Parse(descriptor)
	if p.Kind != Interval {
		return 0
	}
	return p.Days
}

// MaxDays is the largest interval Encode can write: the descriptor grammar
// admits at most three digits.
const MaxDays = 999

// Encodable reports whether Days(Encode(days)) == days.
func Encodable(days int) bool {
	return days >= 1 && days <= MaxDays
}

// Encode returns the descriptor for an interval given in days.
// It is the inverse of Days for every Encodable n; callers must check.
func Encode(days int) string {
	switch days {
	case 1:
		return "day"
	case 7:
		return "week"
	case 14:
		return "2-weeks"
	case 21:
		return "3-weeks"
	case 28:
		return "4-weeks"
	default:
		return fmt.Sprintf("%d-days", days)
	}
}
