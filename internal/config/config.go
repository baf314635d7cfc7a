package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/common"
)

// Config is the process-level configuration. Budget settings live in the database, not here.
type Config struct {
	Location         *time.Location
	DatabasePath     string
	WidgetPath       string
	RatesEndpoint    string
	ServerAddr       string
	CertDir          string
	LogLevel         string
	LogFormat        string
	RatesTimeout     time.Duration
	AllowSubunitRate bool
	ServerTLS        bool
	TLSHosts         []string
}

// SetDefaults registers the default for every key Load reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/envelope/envelope.db")
	v.SetDefault("widget.path", "")
	v.SetDefault("calendar.timezone", "Local")
	v.SetDefault("rates.endpoint", "https://api.frankfurter.app")
	v.SetDefault("rates.timeout", 10*time.Second)
	v.SetDefault("budget.allow_subunit_rate", false)
	v.SetDefault("server.addr", "127.0.0.1:8787")
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert_dir", "")
	v.SetDefault("server.tls_hosts", []string{})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("sheets.retry_attempts", 3)
}

// Load builds a Config from v, validating paths, the timezone and timeouts.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DatabasePath:     ExpandPath(v.GetString("database.path")),
		WidgetPath:       ExpandPath(v.GetString("widget.path")),
		RatesEndpoint:    strings.TrimRight(v.GetString("rates.endpoint"), "/"),
		RatesTimeout:     v.GetDuration("rates.timeout"),
		AllowSubunitRate: v.GetBool("budget.allow_subunit_rate"),
		ServerAddr:       v.GetString("server.addr"),
		ServerTLS:        v.GetBool("server.tls"),
		CertDir:          ExpandPath(v.GetString("server.cert_dir")),
		TLSHosts:         v.GetStringSlice("server.tls_hosts"),
		LogLevel:         v.GetString("logging.level"),
		LogFormat:        v.GetString("logging.format"),
	}

	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if cfg.WidgetPath == "" && cfg.DatabasePath != ":memory:" {
		cfg.WidgetPath = filepath.Join(filepath.Dir(cfg.DatabasePath), "widget.yaml")
	}
	if cfg.CertDir == "" {
		cfg.CertDir = filepath.Join(filepath.Dir(cfg.DatabasePath), "certs")
	}
	if cfg.RatesEndpoint == "" {
		return Config{}, fmt.Errorf("%w: rates.endpoint", common.ErrMissingConfig)
	}
	if cfg.RatesTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: rates.timeout must be positive", common.ErrInvalidConfig)
	}

	tz := v.GetString("calendar.timezone")
	if tz == "" || tz == "Local" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("%w: calendar.timezone %q: %v", common.ErrInvalidConfig, tz, err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}
