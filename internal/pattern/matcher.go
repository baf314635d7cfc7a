// Package pattern assigns categories to imported bank lines using configured rules.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/model"
)

// Amount conditions a rule can place on a line.
const (
	AmountAny   = "any"
	AmountLess  = "lt"
	AmountAtMax = "le"
	AmountEqual = "eq"
	AmountAtMin = "ge"
	AmountMore  = "gt"
	AmountRange = "range"
)

// ErrInvalidRule is returned for a rule that cannot be compiled.
var ErrInvalidRule = errors.New("invalid import rule")

// Rule maps matching statement lines to a category. It is read from the
// import.rules configuration list, so amounts are decimal strings.
type Rule struct {
	Name     string `mapstructure:"name"`
	Match    string `mapstructure:"match"`
	Category string `mapstructure:"category"`
	Kind     string `mapstructure:"kind"`
	Amount   string `mapstructure:"amount"`
	Value    string `mapstructure:"value"`
	Min      string `mapstructure:"min"`
	Max      string `mapstructure:"max"`
	Priority int    `mapstructure:"priority"`
	Regex    bool   `mapstructure:"regex"`
}

// Line is the part of a statement line rules look at. Amount is positive.
type Line struct {
	Title  string
	Amount decimal.Decimal
	Kind   model.Kind
}

type compiled struct {
	rule  Rule
	re    *regexp.Regexp
	kind  model.Kind
	value decimal.Decimal
	min   *decimal.Decimal
	max   *decimal.Decimal
}

// Matcher evaluates lines against a fixed rule set.
type Matcher struct {
	rules []compiled
}

// NewMatcher compiles rules. Rules are tried by descending priority, then in
// configuration order.
func NewMatcher(rules []Rule) (*Matcher, error) {
	m := &Matcher{rules: make([]compiled, 0, len(rules))}
	for i, r := range rules {
		c, err := compile(r, i)
		if err != nil {
			return nil, err
		}
		m.rules = append(m.rules, c)
	}
	sort.SliceStable(m.rules, func(i, j int) bool {
		return m.rules[i].rule.Priority > m.rules[j].rule.Priority
	})
	return m, nil
}

func compile(r Rule, order int) (compiled, error) {
	label := r.Name
	if label == "" {
		label = fmt.Sprintf("#%d", order+1)
	}
	fail := func(format string, args ...any) (compiled, error) {
		return compiled{}, fmt.Errorf("%w %s: %s", ErrInvalidRule, label, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(r.Category) == "" {
		return fail("category is required")
	}
	c := compiled{rule: r}

	if r.Kind != "" {
		k, err := model.ParseKind(r.Kind)
		if err != nil {
			return fail("kind %q", r.Kind)
		}
		c.kind = k
	}

	if r.Regex && r.Match != "" {
		re, err := regexp.Compile("(?i)" + r.Match)
		if err != nil {
			return fail("match: %v", err)
		}
		c.re = re
	}

	if r.Amount == "" {
		c.rule.Amount = AmountAny
	}
	switch c.rule.Amount {
	case AmountAny:
	case AmountLess, AmountAtMax, AmountEqual, AmountAtMin, AmountMore:
		v, err := decimal.NewFromString(r.Value)
		if err != nil {
			return fail("value %q", r.Value)
		}
		c.value = v
	case AmountRange:
		if r.Min == "" && r.Max == "" {
			return fail("range needs min or max")
		}
		for _, b := range []struct {
			raw string
			dst **decimal.Decimal
		}{{r.Min, &c.min}, {r.Max, &c.max}} {
			if b.raw == "" {
				continue
			}
			v, err := decimal.NewFromString(b.raw)
			if err != nil {
				return fail("bound %q", b.raw)
			}
			*b.dst = &v
		}
	default:
		return fail("amount condition %q", r.Amount)
	}

	return c, nil
}

// Len is the number of rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// Match returns every rule the line satisfies, highest priority first.
func (m *Matcher) Match(line Line) []Rule {
	var matches []Rule
	for _, c := range m.rules {
		if c.matches(line) {
			matches = append(matches, c.rule)
		}
	}
	return matches
}

// Categorize returns the category of the first matching rule.
func (m *Matcher) Categorize(line Line) (string, bool) {
	for _, c := range m.rules {
		if c.matches(line) {
			return c.rule.Category, true
		}
	}
	return "", false
}

func (c compiled) matches(line Line) bool {
	if c.kind != "" && line.Kind != c.kind {
		return false
	}
	return c.matchesTitle(line.Title) && c.matchesAmount(line.Amount)
}

func (c compiled) matchesTitle(title string) bool {
	if c.rule.Match == "" {
		return true
	}
	if c.re != nil {
		return c.re.MatchString(title)
	}
	return strings.EqualFold(strings.TrimSpace(title), strings.TrimSpace(c.rule.Match))
}

func (c compiled) matchesAmount(amount decimal.Decimal) bool {
	switch c.rule.Amount {
	case AmountLess:
		return amount.LessThan(c.value)
	case AmountAtMax:
		return amount.LessThanOrEqual(c.value)
	case AmountEqual:
		return amount.Equal(c.value)
	case AmountAtMin:
		return amount.GreaterThanOrEqual(c.value)
	case AmountMore:
		return amount.GreaterThan(c.value)
	case AmountRange:
		if c.min != nil && amount.LessThan(*c.min) {
			return false
		}
		if c.max != nil && amount.GreaterThan(*c.max) {
			return false
		}
	}
	return true
}
