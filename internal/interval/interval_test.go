package interval_test

import (
	"errors"
	"testing"
	"time"

	"github.com/toggle-corp/chrono-server/internal/apperr"
	"github.com/toggle-corp/chrono-server/internal/interval"
	"github.com/toggle-corp/chrono-server/internal/timeutil"
)

func tod(h, m, s int) timeutil.TimeOfDay {
	return timeutil.NewTimeOfDay(h, m, s)
}

func todPtr(h, m, s int) *timeutil.TimeOfDay {
	t := tod(h, m, s)
	return &t
}

func entry(id uint, start timeutil.TimeOfDay, end *timeutil.TimeOfDay) interval.Interval {
	return interval.Interval{
		ID:     id,
		UserID: 1,
		TaskID: 1,
		Date:   timeutil.Date(2020, 10, 10),
		Start:  start,
		End:    end,
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		iv   interval.Interval
		want time.Duration
	}{
		{
			name: "ten hours ten seconds",
			iv:   entry(1, tod(10, 10, 10), todPtr(20, 10, 20)),
			want: 10*time.Hour + 10*time.Second,
		},
		{
			name: "one minute",
			iv:   entry(1, tod(9, 0, 0), todPtr(9, 1, 0)),
			want: time.Minute,
		},
		{
			name: "open entry contributes zero",
			iv:   entry(1, tod(9, 0, 0), nil),
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.iv.Duration()
			if got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Errorf("Duration() = %v, negative", got)
			}
		})
	}
}

func TestValidateInvalidRange(t *testing.T) {
	tests := []struct {
		name      string
		candidate interval.Interval
	}{
		{name: "end before start", candidate: entry(0, tod(12, 0, 0), todPtr(11, 0, 0))},
		{name: "zero length", candidate: entry(0, tod(12, 0, 0), todPtr(12, 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := interval.Validate(tt.candidate, nil)
			if !apperr.IsInvalidRange(err) {
				t.Errorf("Validate = %v, want InvalidRange", err)
			}
		})
	}
}

func TestValidateOverlap(t *testing.T) {
	tests := []struct {
		name      string
		candidate interval.Interval
		existing  []interval.Interval
		wantOK    bool
	}{
		{
			name:      "partial overlap rejected",
			candidate: entry(0, tod(11, 30, 25), todPtr(13, 0, 0)),
			existing:  []interval.Interval{entry(7, tod(10, 10, 19), todPtr(12, 10, 10))},
		},
		{
			name:      "candidate contains existing",
			candidate: entry(0, tod(9, 0, 0), todPtr(18, 0, 0)),
			existing:  []interval.Interval{entry(7, tod(10, 0, 0), todPtr(11, 0, 0))},
		},
		{
			name:      "existing contains candidate",
			candidate: entry(0, tod(10, 15, 0), todPtr(10, 45, 0)),
			existing:  []interval.Interval{entry(7, tod(10, 0, 0), todPtr(11, 0, 0))},
		},
		{
			name:      "adjacent slots accepted",
			candidate: entry(0, tod(10, 0, 0), todPtr(11, 0, 0)),
			existing:  []interval.Interval{entry(7, tod(9, 0, 0), todPtr(10, 0, 0))},
			wantOK:    true,
		},
		{
			name:      "disjoint slots accepted",
			candidate: entry(0, tod(14, 0, 0), todPtr(15, 0, 0)),
			existing:  []interval.Interval{entry(7, tod(9, 0, 0), todPtr(10, 0, 0))},
			wantOK:    true,
		},
		{
			name:      "open existing blocks rest of day",
			candidate: entry(0, tod(14, 0, 0), todPtr(15, 0, 0)),
			existing:  []interval.Interval{entry(7, tod(9, 0, 0), nil)},
		},
		{
			name:      "open existing does not block earlier slot",
			candidate: entry(0, tod(7, 0, 0), todPtr(8, 0, 0)),
			existing:  []interval.Interval{entry(7, tod(9, 0, 0), nil)},
			wantOK:    true,
		},
		{
			name:      "open candidate blocks later slot",
			candidate: entry(0, tod(9, 0, 0), nil),
			existing:  []interval.Interval{entry(7, tod(14, 0, 0), todPtr(15, 0, 0))},
		},
		{
			name:      "update ignores its own stored row",
			candidate: entry(7, tod(10, 0, 0), todPtr(12, 0, 0)),
			existing:  []interval.Interval{entry(7, tod(10, 10, 19), todPtr(12, 10, 10))},
			wantOK:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := interval.Validate(tt.candidate, tt.existing)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Validate = %v, want nil", err)
				}
				return
			}
			if !apperr.IsOverlapConflict(err) {
				t.Fatalf("Validate = %v, want OverlapConflict", err)
			}
		})
	}
}

func TestValidateConflictCarriesEntryID(t *testing.T) {
	existing := []interval.Interval{entry(42, tod(10, 10, 19), todPtr(12, 10, 10))}
	err := interval.Validate(entry(0, tod(11, 30, 25), todPtr(13, 0, 0)), existing)

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) || domainErr.Kind != apperr.KindOverlapConflict {
		t.Fatalf("Validate = %v, want OverlapConflict", err)
	}
	if domainErr.ConflictID != 42 {
		t.Errorf("ConflictID = %d, want 42", domainErr.ConflictID)
	}
}

func TestValidateIdempotent(t *testing.T) {
	existing := []interval.Interval{
		entry(1, tod(9, 0, 0), todPtr(10, 0, 0)),
		entry(2, tod(12, 0, 0), nil),
	}
	candidate := entry(0, tod(10, 30, 0), todPtr(11, 30, 0))

	first := interval.Validate(candidate, existing)
	second := interval.Validate(candidate, existing)
	if (first == nil) != (second == nil) {
		t.Fatalf("validation not idempotent: %v then %v", first, second)
	}
}

// Pairs accepted independently in either insertion order must not intersect.
func TestAcceptedPairsNeverIntersect(t *testing.T) {
	slots := []interval.Interval{
		entry(1, tod(9, 0, 0), todPtr(10, 0, 0)),
		entry(2, tod(10, 0, 0), todPtr(11, 0, 0)),
		entry(3, tod(10, 30, 0), todPtr(11, 30, 0)),
		entry(4, tod(13, 0, 0), nil),
		entry(5, tod(12, 59, 59), todPtr(13, 0, 1)),
	}
	for i, a := range slots {
		for j, b := range slots {
			if i == j {
				continue
			}
			abFirst := interval.Validate(b, []interval.Interval{a}) == nil
			baFirst := interval.Validate(a, []interval.Interval{b}) == nil
			if abFirst != baFirst {
				t.Errorf("slots %d/%d: acceptance depends on order", a.ID, b.ID)
			}
			if abFirst && interval.Overlaps(a, b) {
				t.Errorf("slots %d/%d accepted but intersect", a.ID, b.ID)
			}
		}
	}
}

func TestSumByStableOrder(t *testing.T) {
	day1 := timeutil.Date(2020, 10, 10)
	day2 := timeutil.Date(2020, 10, 11)
	items := []interval.Interval{
		{ID: 1, Date: day2, Start: tod(9, 0, 0), End: todPtr(10, 0, 0)},
		{ID: 2, Date: day1, Start: tod(9, 0, 0), End: todPtr(9, 30, 0)},
		{ID: 3, Date: day2, Start: tod(11, 0, 0), End: todPtr(11, 15, 0)},
	}

	groups := interval.SumBy(items,
		func(iv interval.Interval) time.Time { return iv.Date },
		interval.Interval.Duration)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// First-occurrence order: day2 appears before day1.
	if !groups[0].Key.Equal(day2) || !groups[1].Key.Equal(day1) {
		t.Errorf("group order = %v, %v; want day2, day1", groups[0].Key, groups[1].Key)
	}
	if want := time.Hour + 15*time.Minute; groups[0].Total != want {
		t.Errorf("day2 total = %v, want %v", groups[0].Total, want)
	}
	if want := 30 * time.Minute; groups[1].Total != want {
		t.Errorf("day1 total = %v, want %v", groups[1].Total, want)
	}
	if got := len(groups[0].Items) + len(groups[1].Items); got != len(items) {
		t.Errorf("items spread over groups = %d, want %d (no duplication)", got, len(items))
	}
}
