package period

import (
	"testing"
	"time"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name  string
		first time.Weekday
		now   time.Time
		want  time.Time
	}{
		{name: "sunday start on wednesday", first: time.Sunday, now: date(2024, 5, 8), want: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)},
		{name: "sunday start on sunday", first: time.Sunday, now: date(2024, 5, 5), want: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)},
		{name: "monday start on sunday", first: time.Monday, now: date(2024, 5, 5), want: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)},
		{name: "monday start across year", first: time.Monday, now: date(2025, 1, 1), want: time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := Calendar{FirstWeekday: tt.first, MonthStartDay: 1, Location: time.UTC}
			got := cal.StartOfWeek(tt.now)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.True(t, cal.AddDays(got, 6).Equal(cal.EndOfWeek(tt.now)))
		})
	}
}

func TestWeekContainsEveryDay(t *testing.T) {
	for _, first := range []time.Weekday{time.Sunday, time.Monday} {
		cal := Calendar{FirstWeekday: first, MonthStartDay: 1, Location: time.UTC}
		d := date(2024, 1, 1)
		for i := 0; i < 400; i++ {
			week := cal.Week(d)
			require.True(t, week.Contains(d), "week %v should contain %v", week, d)
			require.False(t, week.Start.After(d))
			require.Equal(t, 7, week.Days())
			d = d.AddDate(0, 0, 1)
		}
	}
}

func TestStartOfMonth_CustomDay(t *testing.T) {
	cal := Calendar{FirstWeekday: time.Sunday, MonthStartDay: 19, Location: time.UTC}

	t.Run("before start day falls in previous month", func(t *testing.T) {
		got := cal.StartOfMonth(date(2024, 5, 5))
		assert.Equal(t, time.Date(2024, 4, 19, 0, 0, 0, 0, time.UTC), got)
		assert.Equal(t, time.Date(2024, 5, 18, 0, 0, 0, 0, time.UTC), cal.EndOfMonth(date(2024, 5, 5)))
	})

	t.Run("after start day stays in current month", func(t *testing.T) {
		got := cal.StartOfMonth(date(2024, 5, 25))
		assert.Equal(t, time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC), got)
		assert.Equal(t, time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC), cal.EndOfMonth(date(2024, 5, 25)))
	})

	t.Run("january wraps to december", func(t *testing.T) {
		got := cal.StartOfMonth(date(2025, 1, 3))
		assert.Equal(t, time.Date(2024, 12, 19, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("same month compares custom periods", func(t *testing.T) {
		assert.True(t, cal.IsSameMonth(date(2024, 5, 5), date(2024, 4, 20)))
		assert.False(t, cal.IsSameMonth(date(2024, 5, 5), date(2024, 5, 19)))
	})
}

func TestStartOfMonth_Calendar(t *testing.T) {
	cal := Calendar{FirstWeekday: time.Sunday, MonthStartDay: 1, Location: time.UTC}

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), cal.StartOfMonth(date(2024, 2, 15)))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), cal.EndOfMonth(date(2024, 2, 15)))
	assert.True(t, cal.IsSameMonth(date(2024, 2, 1), date(2024, 2, 29)))
	assert.False(t, cal.IsSameMonth(date(2024, 2, 1), date(2025, 2, 1)))
}

func TestWeeksInMonth(t *testing.T) {
	cal := Calendar{FirstWeekday: time.Sunday, MonthStartDay: 19, Location: time.UTC}

	assert.True(t, decimal.NewFromInt(31).Div(decimal.NewFromInt(7)).Equal(cal.WeeksInMonth(date(2024, 5, 5))))
	assert.True(t, decimal.NewFromInt(4).Equal(cal.WeeksInMonth(date(2023, 2, 10))))
}

func TestRangeContains_Inclusive(t *testing.T) {
	cal := Calendar{FirstWeekday: time.Sunday, MonthStartDay: 1, Location: time.UTC}
	month := cal.Month(date(2024, 5, 10))

	assert.True(t, month.Contains(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, month.Contains(time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, month.Contains(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, month.Contains(time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC)))
}

func TestRangeOverlaps(t *testing.T) {
	jan := Range{Start: date(2025, 1, 1), End: date(2025, 1, 31)}

	assert.True(t, jan.Overlaps(Range{Start: date(2024, 12, 15), End: date(2025, 1, 14)}))
	assert.True(t, jan.Overlaps(Range{Start: date(2025, 1, 31), End: date(2025, 2, 27)}), "a shared last day overlaps")
	assert.False(t, jan.Overlaps(Range{Start: date(2025, 2, 1), End: date(2025, 2, 28)}))
	assert.False(t, jan.Overlaps(Range{Start: date(2024, 12, 1), End: date(2024, 12, 31)}))
}

func TestCalendar_DST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone data unavailable")
	}
	cal := Calendar{FirstWeekday: time.Sunday, MonthStartDay: 1, Location: loc}

	// 2024-03-10 is the spring-forward day in New York.
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, loc)
	week := cal.Week(now)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, loc), week.Start)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, loc), week.End)
	assert.Equal(t, 0, week.End.Hour())
	assert.Equal(t, 7, week.Days())

	fallBack := cal.Week(time.Date(2024, 11, 5, 8, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 11, 3, 0, 0, 0, 0, loc), fallBack.Start)
	assert.Equal(t, time.Date(2024, 11, 9, 0, 0, 0, 0, loc), fallBack.End)
}

func TestDaysLeftAndClosed(t *testing.T) {
	cal := New(model.Settings{WeekStart: model.WeekStartMonday, MonthStartDay: 1}, time.UTC)
	week := cal.Week(date(2024, 5, 8))

	assert.Equal(t, 5, cal.DaysLeft(week, date(2024, 5, 8)))
	assert.Equal(t, 1, cal.DaysLeft(week, date(2024, 5, 12)))
	assert.Equal(t, 0, cal.DaysLeft(week, date(2024, 5, 13)))

	assert.False(t, cal.IsClosed(week, date(2024, 5, 12)))
	assert.True(t, cal.IsClosed(week, date(2024, 5, 13)))

	next := cal.NextWeek(week)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), next.Start)
	assert.Equal(t, week, cal.PreviousWeek(date(2024, 5, 15)))
}

func TestWindow(t *testing.T) {
	cal := Calendar{FirstWeekday: time.Sunday, MonthStartDay: 1, Location: time.UTC}
	now := date(2024, 5, 8)

	assert.Equal(t, cal.Week(now), cal.Window(model.GoalWeekly, now))
	assert.Equal(t, cal.Month(now), cal.Window(model.GoalMonthly, now))
}
