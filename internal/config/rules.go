package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/common"
	"github.com/Veraticus/envelope/internal/pattern"
)

// LoadImportRules compiles the import.rules list. An absent list yields an empty matcher.
func LoadImportRules(v *viper.Viper) (*pattern.Matcher, error) {
	var rules []pattern.Rule
	if err := v.UnmarshalKey("import.rules", &rules); err != nil {
		return nil, fmt.Errorf("%w: import.rules: %v", common.ErrInvalidConfig, err)
	}
	m, err := pattern.NewMatcher(rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return m, nil
}
