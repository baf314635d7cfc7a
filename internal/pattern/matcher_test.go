package pattern

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/envelope/internal/model"
)

func TestMatcher_Match(t *testing.T) {
	expense := func(title, amount string) Line {
		return Line{Title: title, Amount: decimal.RequireFromString(amount), Kind: model.KindExpense}
	}

	tests := []struct {
		name      string
		rules     []Rule
		line      Line
		wantNames []string
	}{
		{
			name:      "exact title match",
			rules:     []Rule{{Name: "a", Match: "Amazon", Category: "Shopping"}},
			line:      expense("Amazon", "50"),
			wantNames: []string{"a"},
		},
		{
			name:      "case insensitive title match",
			rules:     []Rule{{Name: "a", Match: "amazon", Category: "Shopping"}},
			line:      expense("AMAZON ", "50"),
			wantNames: []string{"a"},
		},
		{
			name:  "exact match does not match substrings",
			rules: []Rule{{Name: "a", Match: "Amazon", Category: "Shopping"}},
			line:  expense("Amazon Prime", "50"),
		},
		{
			name:      "regex title match",
			rules:     []Rule{{Name: "coffee", Match: "coffee", Regex: true, Category: "Dining"}},
			line:      expense("Starbucks COFFEE #123", "5"),
			wantNames: []string{"coffee"},
		},
		{
			name:      "empty match accepts every title",
			rules:     []Rule{{Name: "all", Category: "Other"}},
			line:      expense("Anything", "1"),
			wantNames: []string{"all"},
		},
		{
			name:      "less than",
			rules:     []Rule{{Name: "small", Amount: AmountLess, Value: "10", Category: "Dining"}},
			line:      expense("Cafe", "9.99"),
			wantNames: []string{"small"},
		},
		{
			name:  "less than rejects equal amounts",
			rules: []Rule{{Name: "small", Amount: AmountLess, Value: "10", Category: "Dining"}},
			line:  expense("Cafe", "10"),
		},
		{
			name:      "at most",
			rules:     []Rule{{Name: "le", Amount: AmountAtMax, Value: "10", Category: "Dining"}},
			line:      expense("Cafe", "10.00"),
			wantNames: []string{"le"},
		},
		{
			name:      "equal compares decimal values",
			rules:     []Rule{{Name: "netflix", Amount: AmountEqual, Value: "15.49", Category: "Subscriptions"}},
			line:      expense("Netflix", "15.490"),
			wantNames: []string{"netflix"},
		},
		{
			name:      "at least",
			rules:     []Rule{{Name: "ge", Amount: AmountAtMin, Value: "100", Category: "Housing"}},
			line:      expense("Landlord", "100"),
			wantNames: []string{"ge"},
		},
		{
			name:  "greater than",
			rules: []Rule{{Name: "gt", Amount: AmountMore, Value: "100", Category: "Housing"}},
			line:  expense("Landlord", "100"),
		},
		{
			name:      "range inside",
			rules:     []Rule{{Name: "r", Amount: AmountRange, Min: "20", Max: "60", Category: "Gas"}},
			line:      expense("Shell", "45"),
			wantNames: []string{"r"},
		},
		{
			name:  "range outside",
			rules: []Rule{{Name: "r", Amount: AmountRange, Min: "20", Max: "60", Category: "Gas"}},
			line:  expense("Shell", "61"),
		},
		{
			name:      "open ended range",
			rules:     []Rule{{Name: "r", Amount: AmountRange, Min: "20", Category: "Gas"}},
			line:      expense("Shell", "500"),
			wantNames: []string{"r"},
		},
		{
			name:  "kind filter",
			rules: []Rule{{Name: "pay", Match: "ACME", Kind: "income", Category: "Salary"}},
			line:  expense("ACME", "2000"),
		},
		{
			name: "priority orders matches",
			rules: []Rule{
				{Name: "low", Match: "uber", Regex: true, Category: "Transport", Priority: 1},
				{Name: "high", Match: "uber eats", Regex: true, Category: "Dining", Priority: 10},
				{Name: "mid", Category: "Other", Priority: 5},
			},
			line:      expense("UBER EATS 1234", "30"),
			wantNames: []string{"high", "mid", "low"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.rules)
			require.NoError(t, err)

			var names []string
			for _, r := range m.Match(tt.line) {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestMatcher_Categorize(t *testing.T) {
	m, err := NewMatcher([]Rule{
		{Match: "rent", Regex: true, Category: "Housing"},
		{Match: "rent", Regex: true, Category: "Other"},
		{Match: "payroll", Regex: true, Kind: "income", Category: "Salary", Priority: 3},
	})
	require.NoError(t, err)

	got, ok := m.Categorize(Line{Title: "Monthly RENT", Amount: decimal.NewFromInt(1000), Kind: model.KindExpense})
	require.True(t, ok)
	assert.Equal(t, "Housing", got, "equal priority keeps configuration order")

	got, ok = m.Categorize(Line{Title: "ACME PAYROLL", Amount: decimal.NewFromInt(3000), Kind: model.KindIncome})
	require.True(t, ok)
	assert.Equal(t, "Salary", got)

	_, ok = m.Categorize(Line{Title: "Hardware store", Amount: decimal.NewFromInt(12), Kind: model.KindExpense})
	assert.False(t, ok)
}

func TestNewMatcher_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{name: "missing category", rule: Rule{Match: "x"}},
		{name: "bad regex", rule: Rule{Match: "(", Regex: true, Category: "Dining"}},
		{name: "bad kind", rule: Rule{Kind: "transfer", Category: "Dining"}},
		{name: "unknown condition", rule: Rule{Amount: "between", Category: "Dining"}},
		{name: "missing value", rule: Rule{Amount: AmountLess, Category: "Dining"}},
		{name: "empty range", rule: Rule{Amount: AmountRange, Category: "Dining"}},
		{name: "bad range bound", rule: Rule{Amount: AmountRange, Min: "ten", Category: "Dining"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatcher([]Rule{tt.rule})
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}
