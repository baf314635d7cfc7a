package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/envelope/internal/common"
)

func TestConfig_Validate(t *testing.T) {
	oauth := func(c Config) Config {
		c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
		return c
	}

	tests := []struct {
		want   error
		name   string
		config Config
	}{
		{name: "oauth", config: oauth(DefaultConfig())},
		{name: "service account", config: Config{ServiceAccountPath: "/keys/sa.json"}},
		{
			name:   "partial oauth is missing credentials",
			config: Config{ClientID: "id", RefreshToken: "token"},
			want:   common.ErrMissingConfig,
		},
		{
			name:   "both sources",
			config: oauth(Config{ServiceAccountPath: "/keys/sa.json"}),
			want:   common.ErrInvalidConfig,
		},
		{
			name:   "negative attempts",
			config: oauth(Config{RetryAttempts: -1}),
			want:   common.ErrInvalidConfig,
		},
		{
			name:   "negative delay",
			config: oauth(Config{RetryDelay: -time.Second}),
			want:   common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Envelope Budget", cfg.SpreadsheetName)
	assert.Equal(t, "UTC", cfg.TimeZone)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.True(t, cfg.EnableFormatting)
	assert.False(t, cfg.HasOAuth())
}
