package entity

import (
	"fmt"
	"time"
)

// TimeRange is a half-open interval [Start, End). A booking that ends exactly
// when another starts does not overlap it.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func NewTimeRange(start, end time.Time) TimeRange {
	return TimeRange{Start: start.UTC(), End: end.UTC()}
}

// Validate checks that the range is well-formed.
func (tr TimeRange) Validate() error {
	if tr.Start.IsZero() || tr.End.IsZero() {
		return fmt.Errorf("start time and end time are required")
	}
	if !tr.Start.Before(tr.End) {
		return fmt.Errorf("end time must be after start time")
	}
	return nil
}

// Overlaps reports whether two half-open ranges intersect.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// Contains reports whether t falls inside [Start, End).
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

// Hours returns the billable duration in whole hours, rounded up.
// A 90 minute booking is charged as 2 hours.
func (tr TimeRange) Hours() int {
	d := tr.End.Sub(tr.Start)
	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours
}

func (tr TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", tr.Start.Format(time.RFC3339), tr.End.Format(time.RFC3339))
}
