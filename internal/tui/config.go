package tui

import (
	"github.com/Veraticus/envelope/internal/tui/themes"
)

// Config holds dashboard configuration.
type Config struct {
	Theme     themes.Theme
	Width     int
	Height    int
	ShowHelp  bool
	AltScreen bool
	// RefreshOnStart fetches a live rate as soon as the dashboard opens.
	RefreshOnStart bool
}

// Option is a functional option for configuring the dashboard.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:          themes.Default,
		Width:          100,
		Height:         30,
		AltScreen:      true,
		RefreshOnStart: true,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial size used before the terminal reports its own.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen controls whether the dashboard takes over the full terminal.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithRefreshOnStart controls the initial live rate fetch.
func WithRefreshOnStart(enabled bool) Option {
	return func(c *Config) {
		c.RefreshOnStart = enabled
	}
}
