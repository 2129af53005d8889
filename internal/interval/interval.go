// Package interval holds the time-entry interval model: duration arithmetic,
// the user/day overlap check, and stable grouped aggregation.
package interval

import (
	"time"

	"github.com/toggle-corp/chrono-server/internal/apperr"
	"github.com/toggle-corp/chrono-server/internal/timeutil"
)

// Interval is a single logged slot: a calendar date, a start time, and an
// optional end time. A nil End means the entry is still in progress.
type Interval struct {
	ID          uint
	UserID      uint
	TaskID      uint
	Date        time.Time
	Start       timeutil.TimeOfDay
	End         *timeutil.TimeOfDay
	Description string
}

// Duration returns End-Start. Open entries contribute zero to every
// aggregate; elapsed-so-far is deliberately not used.
func (iv Interval) Duration() time.Duration {
	if iv.End == nil {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// horizon is the effective end used for overlap checks: open entries block
// the rest of their day.
func (iv Interval) horizon() timeutil.TimeOfDay {
	if iv.End == nil {
		return timeutil.EndOfDay
	}
	return *iv.End
}

// Overlaps reports whether the half-open ranges [a.Start, a.End) and
// [b.Start, b.End) intersect. Touching boundaries do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.horizon() && b.Start < a.horizon()
}

// Validate checks candidate against the other entries of the same user and
// day. existing must already be filtered to candidate's user and date, with
// candidate itself excluded when it is an update (matched by ID).
//
// It returns apperr.InvalidRange when the end time is not strictly after the
// start, or apperr.OverlapConflict carrying the first colliding entry's ID.
// Pure function; looking twice at the same inputs gives the same answer.
func Validate(candidate Interval, existing []Interval) error {
	if candidate.End != nil && *candidate.End <= candidate.Start {
		return apperr.InvalidRange()
	}
	for _, e := range existing {
		if e.ID != 0 && e.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate, e) {
			return apperr.OverlapConflict(e.ID)
		}
	}
	return nil
}

// Group is one bucket produced by SumBy.
type Group[K comparable, T any] struct {
	Key   K
	Total time.Duration
	Items []T
}

// SumBy buckets items by key and sums their durations. Buckets keep the
// order in which each key first occurs; an item lands in exactly one bucket.
func SumBy[T any, K comparable](items []T, key func(T) K, dur func(T) time.Duration) []Group[K, T] {
	index := make(map[K]int, len(items))
	groups := make([]Group[K, T], 0)
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Total += dur(item)
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
