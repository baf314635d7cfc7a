package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/common"
	"github.com/Veraticus/envelope/internal/currency"
	"github.com/Veraticus/envelope/internal/model"
)

// Settings loads the stored settings, defaults filled in.
func (l *Ledger) Settings(ctx context.Context) (model.Settings, error) {
	settings, err := l.store.LoadSettings(ctx)
	if err != nil {
		return model.DefaultSettings(), wrap("load settings", err)
	}
	return settings, nil
}

// SaveSettings validates and persists settings, then rewrites the widget mirror.
// A currency change re-hydrates the rate cache for the new pair.
func (l *Ledger) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	prev, err := l.Settings(ctx)
	if err != nil {
		return err
	}

	// The cached rate is written by the rate cache only.
	settings.CachedRate = nil
	if err := l.store.SaveSettings(ctx, settings); err != nil {
		return wrap("save settings", err)
	}
	slog.Info("settings saved",
		"spending_currency", settings.SpendingCurrency,
		"budget_currency", settings.BudgetCurrency,
		"envelope", settings.MonthlyEnvelope.String())

	if prev.BudgetCurrency != settings.BudgetCurrency || prev.SpendingCurrency != settings.SpendingCurrency {
		if err := l.rates.Hydrate(ctx, settings.BudgetCurrency, settings.SpendingCurrency); err != nil {
			return common.Persistence("hydrate exchange rate", err)
		}
	}

	return l.writeMirror(ctx)
}

func (l *Ledger) writeMirror(ctx context.Context) error {
	settings, err := l.Settings(ctx)
	if err != nil {
		return err
	}
	if err := l.mirror.WriteSettings(settings); err != nil {
		return common.Persistence("write widget mirror", err)
	}
	return nil
}

// RateStatus describes the active conversion rate.
type RateStatus struct {
	Err   error
	Rate  decimal.Decimal
	From  model.CurrencyCode
	To    model.CurrencyCode
	State currency.State
}

// RefreshRate fetches a live rate from the budget currency to the spending currency.
// Network failures degrade the state rather than returning an error.
func (l *Ledger) RefreshRate(ctx context.Context) (RateStatus, error) {
	settings, err := l.Settings(ctx)
	if err != nil {
		return RateStatus{}, err
	}

	state := l.rates.Refresh(ctx, settings.BudgetCurrency, settings.SpendingCurrency)
	if state.Kind == currency.StateFresh {
		if err := l.writeMirror(ctx); err != nil {
			return l.RateStatus(), err
		}
	}
	return l.RateStatus(), nil
}

// RateStatus reports the cache without touching the network.
func (l *Ledger) RateStatus() RateStatus {
	from, to := l.rates.Pair()
	return RateStatus{
		State: l.rates.State(),
		Rate:  l.rates.Rate(),
		From:  from,
		To:    to,
		Err:   l.rates.LastError(),
	}
}
