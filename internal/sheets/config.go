// Package sheets exports transaction tables to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"time"
)

// Configuration errors.
var (
	ErrNoAuth        = errors.New("no authentication method configured")
	ErrMultipleAuth  = errors.New("multiple authentication methods configured; use either OAuth2 or service account")
	ErrInvalidConfig = errors.New("invalid sheets configuration")
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	SheetTitle         string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  "School Transactions",
		SheetTitle:       "Transactions",
		TimeZone:         "UTC",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.hasOAuth()
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return ErrNoAuth
	}
	if hasOAuth && hasServiceAccount {
		return ErrMultipleAuth
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", ErrInvalidConfig)
	}

	return nil
}
