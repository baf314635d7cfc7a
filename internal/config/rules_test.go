package config

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/envelope/internal/common"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/pattern"
)

func readYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestLoadImportRules(t *testing.T) {
	v := readYAML(t, `
import:
  rules:
    - name: coffee
      match: "coffee|espresso"
      regex: true
      category: Dining
      kind: expense
    - name: big grocery runs
      match: "whole foods"
      category: Groceries
      amount: gt
      value: "50"
      priority: 5
`)

	m, err := LoadImportRules(v)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	got, ok := m.Categorize(pattern.Line{Title: "Blue Bottle Coffee", Amount: decimal.NewFromInt(6), Kind: model.KindExpense})
	require.True(t, ok)
	assert.Equal(t, "Dining", got)

	_, ok = m.Categorize(pattern.Line{Title: "Whole Foods", Amount: decimal.NewFromInt(20), Kind: model.KindExpense})
	assert.False(t, ok)
}

func TestLoadImportRules_Empty(t *testing.T) {
	m, err := LoadImportRules(viper.New())
	require.NoError(t, err)
	assert.Zero(t, m.Len())
}

func TestLoadImportRules_Invalid(t *testing.T) {
	v := readYAML(t, `
import:
  rules:
    - match: "(unclosed"
      regex: true
      category: Dining
`)

	_, err := LoadImportRules(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.ErrorIs(t, err, pattern.ErrInvalidRule)
}
