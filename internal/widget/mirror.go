// Package widget keeps the shared settings mirror and computes the widget figures from it.
package widget

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/service"
)

// Mirror keys.
const (
	keyEnvelope         = "monthly_envelope"
	keySpendingCurrency = "spending_currency"
	keyBudgetCurrency   = "budget_currency"
	keyWeekStart        = "week_start"
	keyMonthStartDay    = "month_start_day"
	keyRateFrom         = "rate.from"
	keyRateTo           = "rate.to"
	keyRateValue        = "rate.value"
	keyRateTradeDate    = "rate.trade_date"
	keyRateFetchedAt    = "rate.fetched_at"
)

// ErrNoMirror means the mirror file has not been written yet.
var ErrNoMirror = errors.New("widget settings mirror not found")

var _ service.SettingsMirror = (*File)(nil)

// File is the settings mirror stored as YAML at a fixed path.
type File struct {
	path string
}

// NewFile returns a mirror backed by path. Nothing is read or written until asked.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the mirror location.
func (f *File) Path() string {
	return f.path
}

// WriteSettings replaces the mirror with the reduced view of settings.
func (f *File) WriteSettings(settings model.Settings) error {
	v := viper.New()
	v.Set(keyEnvelope, settings.MonthlyEnvelope.String())
	v.Set(keySpendingCurrency, string(settings.SpendingCurrency))
	v.Set(keyBudgetCurrency, string(settings.BudgetCurrency))
	v.Set(keyWeekStart, string(settings.WeekStart))
	v.Set(keyMonthStartDay, settings.MonthStartDay)
	if r := settings.CachedRate; r != nil {
		v.Set(keyRateFrom, string(r.From))
		v.Set(keyRateTo, string(r.To))
		v.Set(keyRateValue, r.Rate.String())
		v.Set(keyRateTradeDate, r.TradeDate)
		v.Set(keyRateFetchedAt, r.FetchedAt.UTC().Format(time.RFC3339Nano))
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create widget directory: %w", err)
	}

	// viper picks the encoder from the extension, so the temp file keeps .yaml.
	tmp := filepath.Join(dir, "."+filepath.Base(f.path)+"."+strconv.Itoa(os.Getpid())+".yaml")
	if err := v.WriteConfigAs(tmp); err != nil {
		return fmt.Errorf("failed to write widget mirror: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace widget mirror: %w", err)
	}

	slog.Debug("wrote widget mirror", "path", f.path)
	return nil
}

// ReadSettings loads the mirror. Missing keys take their defaults; a missing file is ErrNoMirror.
func (f *File) ReadSettings() (model.Settings, error) {
	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DefaultSettings(), ErrNoMirror
		}
		return model.DefaultSettings(), fmt.Errorf("failed to read widget mirror: %w", err)
	}

	settings := model.DefaultSettings()
	if s := v.GetString(keySpendingCurrency); s != "" {
		settings.SpendingCurrency = model.CurrencyCode(s)
	}
	settings.BudgetCurrency = model.CurrencyCode(v.GetString(keyBudgetCurrency))
	if s := v.GetString(keyWeekStart); s != "" {
		settings.WeekStart = model.WeekStart(s)
	}
	if d := v.GetInt(keyMonthStartDay); d > 0 {
		settings.MonthStartDay = d
	}
	if s := v.GetString(keyEnvelope); s != "" {
		envelope, err := decimal.NewFromString(s)
		if err != nil {
			return model.DefaultSettings(), fmt.Errorf("invalid %s in widget mirror: %w", keyEnvelope, err)
		}
		settings.MonthlyEnvelope = envelope
	}

	if s := v.GetString(keyRateValue); s != "" {
		rate, err := decimal.NewFromString(s)
		if err != nil {
			return model.DefaultSettings(), fmt.Errorf("invalid %s in widget mirror: %w", keyRateValue, err)
		}
		cached := &model.CachedRate{
			Rate:      rate,
			From:      model.CurrencyCode(v.GetString(keyRateFrom)),
			To:        model.CurrencyCode(v.GetString(keyRateTo)),
			TradeDate: v.GetString(keyRateTradeDate),
		}
		if ts := v.GetString(keyRateFetchedAt); ts != "" {
			if cached.FetchedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
				return model.DefaultSettings(), fmt.Errorf("invalid %s in widget mirror: %w", keyRateFetchedAt, err)
			}
		}
		settings.CachedRate = cached
	}

	return settings, nil
}
