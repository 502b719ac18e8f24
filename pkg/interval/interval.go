package interval

import (
	"fmt"
	"regexp"
	"sort"
)

// Interval is a half-open [Start, End) time range in minutes since midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var clockPattern = regexp.MustCompile(`^([0-1]\d|2[0-3]):[0-5]\d$`)

// Parse converts an "HH:MM" 24-hour string into minutes since midnight.
func Parse(raw string) (int, error) {
	if !clockPattern.MatchString(raw) {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	hours := int(raw[0]-'0')*10 + int(raw[1]-'0')
	minutes := int(raw[3]-'0')*10 + int(raw[4]-'0')
	return hours*60 + minutes, nil
}

// Format renders minutes since midnight as "HH:MM".
func Format(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FromClock builds an interval from "HH:MM" boundaries, requiring start < end.
func FromClock(start, end string) (Interval, error) {
	s, err := Parse(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Interval{}, err
	}
	if s >= e {
		return Interval{}, fmt.Errorf("start %s must be before end %s", start, end)
	}
	return Interval{Start: s, End: e}, nil
}

// IsZero reports whether the interval has no width.
func (i Interval) IsZero() bool {
	return i.End <= i.Start
}

// StartClock returns the start boundary as "HH:MM".
func (i Interval) StartClock() string { return Format(i.Start) }

// EndClock returns the end boundary as "HH:MM".
func (i Interval) EndClock() string { return Format(i.End) }

// Overlaps reports whether two half-open intervals share any minute.
// Touching endpoints do not overlap; zero-width intervals never overlap anything.
func Overlaps(a, b Interval) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return a.Start < b.End && b.Start < a.End
}

// Contains reports whether inner fits entirely inside outer.
func Contains(outer, inner Interval) bool {
	return inner.Start >= outer.Start && inner.End <= outer.End
}

// Merge sorts intervals and coalesces overlapping or adjacent ones,
// dropping zero-width entries.
func Merge(list []Interval) []Interval {
	filtered := make([]Interval, 0, len(list))
	for _, iv := range list {
		if !iv.IsZero() {
			filtered = append(filtered, iv)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Start == filtered[j].Start {
			return filtered[i].End < filtered[j].End
		}
		return filtered[i].Start < filtered[j].Start
	})
	merged := []Interval{filtered[0]}
	for _, iv := range filtered[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract removes every interval in remove from base, returning the surviving
// sub-intervals sorted and non-overlapping. Pure set difference: the order of
// the removals does not affect the result.
func Subtract(base, remove []Interval) []Interval {
	current := Merge(base)
	for _, rm := range remove {
		if rm.IsZero() {
			continue
		}
		next := make([]Interval, 0, len(current)+1)
		for _, iv := range current {
			if !Overlaps(iv, rm) {
				next = append(next, iv)
				continue
			}
			if iv.Start < rm.Start {
				next = append(next, Interval{Start: iv.Start, End: rm.Start})
			}
			if rm.End < iv.End {
				next = append(next, Interval{Start: rm.End, End: iv.End})
			}
		}
		current = Merge(next)
	}
	return current
}
