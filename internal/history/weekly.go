package history

import (
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
	"github.com/shopspring/decimal"
)

// WeeklyCloseInput carries what is needed to log closed weeks.
type WeeklyCloseInput struct {
	Now              time.Time
	NewID            func() string
	Calendar         period.Calendar
	Settings         model.Settings
	Rate             decimal.Decimal
	Bills            []model.RecurringBill
	Goals            []model.Goal
	Transactions     []model.Transaction
	Existing         []model.WeeklyLog
	AllowSubunitRate bool
}

// PendingWeeklyLogs closes every week that ended before now's week and has no log yet.
//
// Weeks are walked contiguously from the first full week after the newest stored
// log, or from the week of the earliest expense when nothing is stored. Each week's
// unused money rolls into the next week's available total.
func PendingWeeklyLogs(in WeeklyCloseInput) []model.WeeklyLog {
	cal := in.Calendar
	current := cal.Week(in.Now)

	week, rolled, ok := firstOpenWeek(in)
	if !ok {
		return nil
	}

	var logs []model.WeeklyLog
	for week.Start.Before(current.Start) {
		s := budget.Compute(budget.Input{
			Now:              week.Start,
			Calendar:         cal,
			Settings:         in.Settings,
			Rate:             in.Rate,
			Bills:            in.Bills,
			Goals:            in.Goals,
			Transactions:     in.Transactions,
			AllowSubunitRate: in.AllowSubunitRate,
		})

		total := s.WeeklyAllowance.Add(rolled)
		unused := decimal.Max(decimal.Zero, total.Sub(s.WeeklyDiscretionarySpent))

		log := model.WeeklyLog{
			WeekStart:           week.Start,
			WeekEnd:             week.End,
			TotalAvailable:      total,
			RolledOverAmount:    rolled,
			UnusedRolledForward: unused,
			GoalsWithLeftover:   goalsWithLeftover(s.Goals),
			CurrencyCode:        in.Settings.SpendingCurrency,
			CreatedAt:           in.Now,
		}
		if in.NewID != nil {
			log.ID = in.NewID()
		}
		slog.Debug("weekly log pending", "week", week.String(), "available", total.String(), "unused", unused.String())

		logs = append(logs, log)
		rolled = unused
		week = cal.NextWeek(week)
	}
	return logs
}

func firstOpenWeek(in WeeklyCloseInput) (period.Range, decimal.Decimal, bool) {
	cal := in.Calendar

	if len(in.Existing) > 0 {
		latest := in.Existing[0]
		for _, l := range in.Existing[1:] {
			if l.WeekEnd.After(latest.WeekEnd) {
				latest = l
			}
		}
		// A changed week start leaves the week after the last log partly logged
		// already; it is skipped rather than counted twice.
		next := cal.AddDays(latest.WeekEnd, 1)
		week := cal.Week(next)
		if week.Start.Before(next) {
			week = cal.NextWeek(week)
		}
		return week, latest.UnusedRolledForward, true
	}

	var earliest time.Time
	for _, t := range in.Transactions {
		if !t.IsExpense() {
			continue
		}
		if earliest.IsZero() || t.Date.Before(earliest) {
			earliest = t.Date
		}
	}
	if earliest.IsZero() {
		return period.Range{}, decimal.Zero, false
	}
	return cal.Week(earliest), decimal.Zero, true
}

func goalsWithLeftover(progress []budget.GoalProgress) int {
	n := 0
	for _, p := range progress {
		if p.Goal.Period == model.GoalWeekly && p.Spent.LessThan(p.Goal.Limit) {
			n++
		}
	}
	return n
}

// SortWeeklyLogs orders logs newest first.
func SortWeeklyLogs(logs []model.WeeklyLog) []model.WeeklyLog {
	sorted := append([]model.WeeklyLog(nil), logs...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].WeekStart.After(sorted[j].WeekStart)
	})
	return sorted
}
