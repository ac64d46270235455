package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Veraticus/schoolpay/internal/common"
	"github.com/Veraticus/schoolpay/internal/format"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Defaults used when no configuration is present.
const (
	DefaultAPIURL       = "http://localhost:8000/api"
	DefaultAPITimeout   = 30 * time.Second
	DefaultDatabasePath = "$HOME/.local/share/schoolpay/schoolpay.db"
	DefaultPageSize     = 10
	EnvPrefix           = "SCHOOLPAY"
)

// Config is the resolved application configuration.
type Config struct {
	Fees     format.FeeSchedule
	API      APIConfig
	Database DatabaseConfig
	Session  SessionConfig
	Guest    GuestConfig
	Display  DisplayConfig
}

// APIConfig describes the payments API endpoint.
type APIConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// DatabaseConfig locates the local sqlite database.
type DatabaseConfig struct {
	Path string
}

// SessionConfig selects where the session is persisted. When File is set the
// session lives in a JSON file instead of the database.
type SessionConfig struct {
	File string
}

// GuestConfig holds the optional demo account used to re-authenticate.
type GuestConfig struct {
	Email    string
	Password string
	Enabled  bool
}

// DisplayConfig controls how values are rendered.
type DisplayConfig struct {
	Currency       string
	DateFormat     string
	DateTimeFormat string
	PageSize       int
}

// Layouts returns the configured date layouts.
func (d DisplayConfig) Layouts() format.Layouts {
	return format.Layouts{DateLayout: d.DateFormat, DateTimeLayout: d.DateTimeFormat}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", DefaultAPITimeout)
	v.SetDefault("api.user_agent", "schoolpay")
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("auth.guest.enabled", false)
	v.SetDefault("display.currency", format.DefaultCurrency)
	v.SetDefault("display.date_format", format.DefaultDateLayout)
	v.SetDefault("display.datetime_format", format.DefaultDateTimeLayout)
	v.SetDefault("display.page_size", DefaultPageSize)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(ExpandPath(path)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			URL:       strings.TrimRight(v.GetString("api.url"), "/"),
			Timeout:   v.GetDuration("api.timeout"),
			UserAgent: v.GetString("api.user_agent"),
		},
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Session: SessionConfig{
			File: ExpandPath(v.GetString("session.file")),
		},
		Guest: GuestConfig{
			Enabled:  v.GetBool("auth.guest.enabled"),
			Email:    v.GetString("auth.guest.email"),
			Password: v.GetString("auth.guest.password"),
		},
		Display: DisplayConfig{
			Currency:       strings.ToUpper(v.GetString("display.currency")),
			DateFormat:     v.GetString("display.date_format"),
			DateTimeFormat: v.GetString("display.datetime_format"),
			PageSize:       v.GetInt("display.page_size"),
		},
	}

	if cfg.API.URL == "" {
		return nil, fmt.Errorf("%w: api.url", common.ErrMissingConfig)
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = DefaultAPITimeout
	}
	if cfg.Display.PageSize <= 0 {
		cfg.Display.PageSize = DefaultPageSize
	}
	if cfg.Guest.Enabled && (cfg.Guest.Email == "" || cfg.Guest.Password == "") {
		return nil, fmt.Errorf("%w: auth.guest.enabled requires auth.guest.email and auth.guest.password", common.ErrInvalidConfig)
	}

	fees, err := loadFees(v)
	if err != nil {
		return nil, err
	}
	cfg.Fees = fees

	return cfg, nil
}

// loadFees reads fees.<gateway>.percent and fees.<gateway>.fixed. Configured
// gateways extend the built-in schedule.
func loadFees(v *viper.Viper) (format.FeeSchedule, error) {
	schedule := format.DefaultFeeSchedule()

	for gateway := range v.GetStringMap("fees") {
		prefix := "fees." + gateway
		percent, err := decimalKey(v, prefix+".percent")
		if err != nil {
			return nil, err
		}
		fixed, err := decimalKey(v, prefix+".fixed")
		if err != nil {
			return nil, err
		}
		if percent.IsNegative() || fixed.IsNegative() {
			return nil, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, prefix)
		}
		schedule[strings.ToLower(gateway)] = format.FeeRule{Percent: percent, Fixed: fixed}
	}

	return schedule, nil
}

func decimalKey(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, key, err)
	}
	return d, nil
}
