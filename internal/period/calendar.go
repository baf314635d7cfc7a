// Package period computes budget week and month boundaries for configurable
// week-start and month-start preferences.
package period

import (
	"time"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/shopspring/decimal"
)

var daysPerWeek = decimal.NewFromInt(7)

// Calendar resolves week and month boundaries. Day arithmetic goes through
// time.Date so a DST transition never shifts a boundary off midnight.
type Calendar struct {
	Location      *time.Location
	FirstWeekday  time.Weekday
	MonthStartDay int
}

// New builds a Calendar from user settings. A nil location means time.Local.
func New(settings model.Settings, loc *time.Location) Calendar {
	return Calendar{
		Location:      loc,
		FirstWeekday:  settings.WeekStart.Weekday(),
		MonthStartDay: settings.MonthStartDay,
	}
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c Calendar) startDay() int {
	if c.MonthStartDay < 1 || c.MonthStartDay > 28 {
		return 1
	}
	return c.MonthStartDay
}

// StartOfDay returns midnight of t's calendar day in the calendar's location.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.location())
}

// AddDays moves t by n calendar days and returns midnight of that day.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, c.location())
}

// StartOfWeek is the most recent day on or before now that falls on FirstWeekday.
func (c Calendar) StartOfWeek(now time.Time) time.Time {
	day := c.StartOfDay(now)
	offset := (int(day.Weekday()) - int(c.FirstWeekday) + 7) % 7
	return c.AddDays(day, -offset)
}

// EndOfWeek is six calendar days after StartOfWeek.
func (c Calendar) EndOfWeek(now time.Time) time.Time {
	return c.AddDays(c.StartOfWeek(now), 6)
}

// StartOfMonth returns the first day of the budget month containing now.
// With a custom start day, days before it belong to the period that began in
// the previous calendar month.
func (c Calendar) StartOfMonth(now time.Time) time.Time {
	now = now.In(c.location())
	sd := c.startDay()
	if sd == 1 {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.location())
	}
	if now.Day() >= sd {
		return time.Date(now.Year(), now.Month(), sd, 0, 0, 0, 0, c.location())
	}
	return time.Date(now.Year(), now.Month()-1, sd, 0, 0, 0, 0, c.location())
}

// EndOfMonth is the day before the next budget month starts.
func (c Calendar) EndOfMonth(now time.Time) time.Time {
	start := c.StartOfMonth(now)
	next := time.Date(start.Year(), start.Month()+1, c.startDay(), 0, 0, 0, 0, c.location())
	return c.AddDays(next, -1)
}

// WeeksInMonth is the number of days in now's calendar month divided by seven.
// It deliberately ignores custom month starts and is not rounded.
func (c Calendar) WeeksInMonth(now time.Time) decimal.Decimal {
	now = now.In(c.location())
	days := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, c.location()).Day()
	return decimal.NewFromInt(int64(days)).Div(daysPerWeek)
}

// IsSameMonth reports whether a and b fall in the same budget month.
func (c Calendar) IsSameMonth(a, b time.Time) bool {
	if c.startDay() == 1 {
		a, b = a.In(c.location()), b.In(c.location())
		return a.Year() == b.Year() && a.Month() == b.Month()
	}
	return c.StartOfMonth(a).Equal(c.StartOfMonth(b))
}

// Week returns the budget week containing now.
func (c Calendar) Week(now time.Time) Range {
	return Range{Start: c.StartOfWeek(now), End: c.EndOfWeek(now)}
}

// Month returns the budget month containing now.
func (c Calendar) Month(now time.Time) Range {
	return Range{Start: c.StartOfMonth(now), End: c.EndOfMonth(now)}
}

// Window returns the current week or month for a goal period.
func (c Calendar) Window(p model.GoalPeriod, now time.Time) Range {
	if p == model.GoalWeekly {
		return c.Week(now)
	}
	return c.Month(now)
}

// NextWeek returns the week immediately after r.
func (c Calendar) NextWeek(r Range) Range {
	return c.Week(c.AddDays(r.Start, 7))
}

// PreviousWeek returns the week immediately before the one containing now.
func (c Calendar) PreviousWeek(now time.Time) Range {
	return c.Week(c.AddDays(c.StartOfWeek(now), -7))
}

// IsClosed reports whether every day of r is before now's calendar day.
func (c Calendar) IsClosed(r Range, now time.Time) bool {
	return c.StartOfDay(now).After(r.End)
}

// DaysLeft counts the days from now through the end of r, including today.
func (c Calendar) DaysLeft(r Range, now time.Time) int {
	today := c.StartOfDay(now)
	if today.After(r.End) {
		return 0
	}
	if today.Before(r.Start) {
		return r.Days()
	}
	return daysBetween(today, r.End) + 1
}
