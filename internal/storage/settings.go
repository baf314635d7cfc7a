package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/model"
)

// Settings keys. The settings table holds one row per key.
const (
	keySpendingCurrency = "spending_currency"
	keyBudgetCurrency   = "budget_currency"
	keyMonthlyEnvelope  = "monthly_envelope"
	keyWeekStart        = "week_start"
	keyMonthStartDay    = "month_start_day"

	keyRateFrom      = "rate.from"
	keyRateTo        = "rate.to"
	keyRateValue     = "rate.value"
	keyRateTradeDate = "rate.trade_date"
	keyRateFetchedAt = "rate.fetched_at"
)

// LoadSettings returns the stored settings, filling unset keys from the defaults.
func (s *SQLiteStorage) LoadSettings(ctx context.Context) (model.Settings, error) {
	if err := validateContext(ctx); err != nil {
		return model.Settings{}, err
	}

	values, err := s.readSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}

	settings := model.DefaultSettings()
	if v, ok := values[keySpendingCurrency]; ok {
		settings.SpendingCurrency = model.CurrencyCode(v)
	}
	if v, ok := values[keyBudgetCurrency]; ok {
		settings.BudgetCurrency = model.CurrencyCode(v)
	}
	if v, ok := values[keyMonthlyEnvelope]; ok {
		if settings.MonthlyEnvelope, err = decimal.NewFromString(v); err != nil {
			return model.Settings{}, fmt.Errorf("failed to parse stored %s %q: %w", keyMonthlyEnvelope, v, err)
		}
	}
	if v, ok := values[keyWeekStart]; ok {
		settings.WeekStart = model.WeekStart(v)
	}
	if v, ok := values[keyMonthStartDay]; ok {
		if settings.MonthStartDay, err = strconv.Atoi(v); err != nil {
			return model.Settings{}, fmt.Errorf("failed to parse stored %s %q: %w", keyMonthStartDay, v, err)
		}
	}

	if settings.CachedRate, err = rateFromValues(values); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

// SaveSettings writes every user-editable field, and the cached rate when present.
func (s *SQLiteStorage) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	values := map[string]string{
		keySpendingCurrency: string(settings.SpendingCurrency),
		keyBudgetCurrency:   string(settings.BudgetCurrency),
		keyMonthlyEnvelope:  settings.MonthlyEnvelope.String(),
		keyWeekStart:        string(settings.WeekStart),
		keyMonthStartDay:    strconv.Itoa(settings.MonthStartDay),
	}
	if settings.CachedRate != nil {
		for k, v := range rateValues(*settings.CachedRate) {
			values[k] = v
		}
	}

	if err := s.writeSettings(ctx, values); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	slog.Debug("saved settings", "spending_currency", settings.SpendingCurrency, "budget_currency", settings.BudgetCurrency)
	return nil
}

// LoadRate returns the last persisted exchange rate, or nil when none was ever saved.
func (s *SQLiteStorage) LoadRate(ctx context.Context) (*model.CachedRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	values, err := s.readSettings(ctx)
	if err != nil {
		return nil, err
	}
	return rateFromValues(values)
}

// SaveRate persists a successfully fetched exchange rate.
func (s *SQLiteStorage) SaveRate(ctx context.Context, rate model.CachedRate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !rate.Rate.IsPositive() {
		return fmt.Errorf("%w: rate %s", ErrConstraint, rate.Rate)
	}
	if !rate.From.Valid() || !rate.To.Valid() {
		return fmt.Errorf("%w: rate pair %s/%s", model.ErrInvalidCurrency, rate.From, rate.To)
	}

	if err := s.writeSettings(ctx, rateValues(rate)); err != nil {
		return fmt.Errorf("failed to save rate: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) readSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return values, nil
}

func (s *SQLiteStorage) writeSettings(ctx context.Context, values map[string]string) error {
	now := formatTime(time.Now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for k, v := range values {
			if _, err := stmt.ExecContext(ctx, k, v, now); err != nil {
				return fmt.Errorf("failed to write setting %s: %w", k, err)
			}
		}
		return nil
	})
}

func rateValues(rate model.CachedRate) map[string]string {
	return map[string]string{
		keyRateFrom:      string(rate.From),
		keyRateTo:        string(rate.To),
		keyRateValue:     rate.Rate.String(),
		keyRateTradeDate: rate.TradeDate,
		keyRateFetchedAt: formatTime(rate.FetchedAt),
	}
}

func rateFromValues(values map[string]string) (*model.CachedRate, error) {
	raw, ok := values[keyRateValue]
	if !ok {
		return nil, nil
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored rate %q: %w", raw, err)
	}
	cached := &model.CachedRate{
		Rate:      rate,
		From:      model.CurrencyCode(values[keyRateFrom]),
		To:        model.CurrencyCode(values[keyRateTo]),
		TradeDate: values[keyRateTradeDate],
	}
	if v := values[keyRateFetchedAt]; v != "" {
		if cached.FetchedAt, err = parseTime(v); err != nil {
			return nil, err
		}
	}
	return cached, nil
}
