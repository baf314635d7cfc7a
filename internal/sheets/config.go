// Package sheets exports budget history to a Google spreadsheet.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/envelope/internal/common"
)

// DefaultSpreadsheetName is used when a new spreadsheet has to be created.
const DefaultSpreadsheetName = "Envelope Budget"

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  DefaultSpreadsheetName,
		EnableFormatting: true,
		TimeZone:         "UTC",
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// HasOAuth reports whether a complete set of OAuth2 credentials is configured.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate requires exactly one credential source: a complete OAuth2 set or a
// service account key. Missing credentials wrap common.ErrMissingConfig; the
// rest wrap common.ErrInvalidConfig.
func (c *Config) Validate() error {
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case !c.HasOAuth() && !hasServiceAccount:
		return fmt.Errorf("%w: no sheets credentials (client_id, client_secret and refresh_token, or service_account_path)", common.ErrMissingConfig)
	case c.HasOAuth() && hasServiceAccount:
		return fmt.Errorf("%w: both OAuth2 and service account credentials are set", common.ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: sheets.retry_attempts cannot be negative", common.ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: sheets retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
