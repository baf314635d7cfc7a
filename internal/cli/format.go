package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/currency"
	"github.com/Veraticus/envelope/internal/model"
)

// FormatAmount renders d with two decimals and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatMoney renders an amount followed by its currency code.
func FormatMoney(d decimal.Decimal, code model.CurrencyCode) string {
	if code.IsZero() {
		return FormatAmount(d)
	}
	return FormatAmount(d) + " " + code.String()
}

// FormatBalance colors a remaining amount green, or red when it is negative.
func FormatBalance(d decimal.Decimal, code model.CurrencyCode) string {
	if d.IsNegative() {
		return ErrorStyle.Render(FormatMoney(d, code))
	}
	return SuccessStyle.Render(FormatMoney(d, code))
}

// FormatRateState renders the conversion freshness label.
func FormatRateState(state currency.State) string {
	switch state.Kind {
	case currency.StateFresh:
		return SuccessStyle.Render(state.String())
	case currency.StateStale, currency.StateLoading:
		return WarningStyle.Render(state.String())
	case currency.StateUnavailable:
		return ErrorStyle.Render(state.String())
	default:
		return SubtleStyle.Render(state.String())
	}
}

// FormatRatio renders a 0..1+ ratio as a fixed-width bar with a percentage.
func FormatRatio(ratio decimal.Decimal, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := int(ratio.Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart())
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := fmt.Sprintf("%3s%%", ratio.Mul(decimal.NewFromInt(100)).Round(0).String())

	style := SuccessStyle
	switch {
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(1)):
		style = ErrorStyle
	case ratio.GreaterThanOrEqual(budget.AtRiskThreshold):
		style = WarningStyle
	}
	return style.Render(bar) + " " + pct
}
