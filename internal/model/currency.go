package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyCode is an ISO 4217 style three letter code. The zero value means "none".
type CurrencyCode string

// DefaultSpendingCurrency is used when no spending currency has been configured.
const DefaultSpendingCurrency CurrencyCode = "USD"

// ParseCurrencyCode normalizes s and rejects anything that is not three ASCII letters.
// An empty string yields the empty code.
func ParseCurrencyCode(s string) (CurrencyCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if len(s) != 3 {
		return "", invalid("currency", ErrInvalidCurrency)
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", invalid("currency", ErrInvalidCurrency)
		}
	}
	return CurrencyCode(s), nil
}

// MustCurrency is ParseCurrencyCode for constants and tests.
func MustCurrency(s string) CurrencyCode {
	c, err := ParseCurrencyCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero reports whether no currency is set.
func (c CurrencyCode) IsZero() bool {
	return c == ""
}

func (c CurrencyCode) String() string {
	return string(c)
}

// Valid reports whether c is a well-formed, non-empty code.
func (c CurrencyCode) Valid() bool {
	parsed, err := ParseCurrencyCode(string(c))
	return err == nil && parsed == c && !c.IsZero()
}

// IsIdentity reports whether converting from one code to another is a no-op.
func IsIdentity(from, to CurrencyCode) bool {
	return from.IsZero() || to.IsZero() || from == to
}

// CachedRate is the last successfully fetched exchange rate. Rate is units of To per one From.
type CachedRate struct {
	Rate      decimal.Decimal
	FetchedAt time.Time
	From      CurrencyCode
	To        CurrencyCode
	TradeDate string
}

// Matches reports whether the cached rate was fetched for exactly this pair.
func (r *CachedRate) Matches(from, to CurrencyCode) bool {
	return r != nil && r.From == from && r.To == to
}
