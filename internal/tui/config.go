package tui

import (
	"context"
	"time"

	"github.com/Veraticus/schoolpay/internal/export"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/service"
	"github.com/Veraticus/schoolpay/internal/tui/themes"
)

// FetchFunc loads the server-side result set shown by the browser.
type FetchFunc func(ctx context.Context, params model.ListParams) (*model.TransactionPage, error)

// ExportFunc writes the current view somewhere and returns a description of
// where it went.
type ExportFunc func(ctx context.Context, rows []model.Transaction) (string, error)

// ThemeStore persists the dark mode choice.
type ThemeStore interface {
	DarkMode(ctx context.Context) (bool, error)
	SetDarkMode(ctx context.Context, dark bool) error
}

// Config holds TUI configuration.
type Config struct {
	Fetch     FetchFunc
	Export    ExportFunc
	Themes    ThemeStore
	Snapshots service.SnapshotStore
	Render    export.Options
	Title     string
	Params    model.ListParams
	Timeout   time.Duration
	PageSize  int
	Width     int
	Height    int
	Dark      bool
	// darkSet means the caller chose the theme; the stored one is not loaded.
	darkSet bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Title:    "Transactions",
		Render:   export.DefaultOptions(),
		Timeout:  30 * time.Second,
		PageSize: 10,
		Width:    100,
		Height:   24,
		Params:   model.ListParams{Page: 1, Limit: 100},
	}
}

// WithFetcher sets the function that loads transactions.
func WithFetcher(fetch FetchFunc) Option {
	return func(c *Config) {
		c.Fetch = fetch
	}
}

// WithExporter sets the function used by the export key.
func WithExporter(fn ExportFunc) Option {
	return func(c *Config) {
		c.Export = fn
	}
}

// WithThemeStore loads and persists the theme choice.
func WithThemeStore(store ThemeStore) Option {
	return func(c *Config) {
		c.Themes = store
	}
}

// WithSnapshots caches every successful fetch under its query key.
func WithSnapshots(store service.SnapshotStore) Option {
	return func(c *Config) {
		c.Snapshots = store
	}
}

// WithParams sets the server query.
func WithParams(params model.ListParams) Option {
	return func(c *Config) {
		c.Params = params
	}
}

// WithTitle sets the heading.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithRenderOptions sets the date layouts and fallback currency.
func WithRenderOptions(opts export.Options) Option {
	return func(c *Config) {
		c.Render = opts
	}
}

// WithPageSize sets the initial local page size.
func WithPageSize(size int) Option {
	return func(c *Config) {
		c.PageSize = size
	}
}

// WithDarkMode selects the theme in place of the stored choice.
func WithDarkMode(dark bool) Option {
	return func(c *Config) {
		c.Dark = dark
		c.darkSet = true
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithTimeout bounds each fetch, export and preference write.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

func (c Config) theme() themes.Theme {
	return themes.ForMode(c.Dark)
}
