package period

import "time"

// Range is an inclusive span of calendar days. Start and End are midnight of the
// first and last day.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on any day from Start through End.
func (r Range) Contains(t time.Time) bool {
	loc := r.Start.Location()
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Overlaps reports whether r and o share at least one day.
func (r Range) Overlaps(o Range) bool {
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}

// Days is the number of calendar days in the range.
func (r Range) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return daysBetween(r.Start, r.End) + 1
}

// Key identifies the range by its first day.
func (r Range) Key() string {
	return r.Start.Format(time.DateOnly)
}

func (r Range) String() string {
	return r.Start.Format(time.DateOnly) + " to " + r.End.Format(time.DateOnly)
}

// daysBetween counts calendar days from a to b using UTC dates so DST offsets cancel out.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// LastInstant is the final nanosecond of End's day.
func (r Range) LastInstant() time.Time {
	return r.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
