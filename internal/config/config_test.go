package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/schoolpay/internal/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, DefaultAPITimeout, cfg.API.Timeout)
	assert.Equal(t, "USD", cfg.Display.Currency)
	assert.Equal(t, DefaultPageSize, cfg.Display.PageSize)
	assert.False(t, cfg.Guest.Enabled)
	assert.Empty(t, cfg.Session.File)
	assert.Contains(t, cfg.Fees, "default")
}

func TestLoad_Overrides(t *testing.T) {
	v := newViper()
	v.Set("api.url", "https://payments.example.com/api/")
	v.Set("api.timeout", "5s")
	v.Set("display.currency", "inr")
	v.Set("auth.guest.enabled", true)
	v.Set("auth.guest.email", "demo@example.com")
	v.Set("auth.guest.password", "demo-pass")
	v.Set("fees.stripe.percent", "2.5")
	v.Set("fees.stripe.fixed", "0.25")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://payments.example.com/api", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "INR", cfg.Display.Currency)
	assert.True(t, cfg.Guest.Enabled)

	rule, ok := cfg.Fees.Rule("Stripe")
	require.True(t, ok)
	assert.True(t, rule.Percent.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, rule.Fixed.Equal(decimal.RequireFromString("0.25")))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		set     map[string]any
		wantErr error
		name    string
	}{
		{
			name:    "empty api url",
			set:     map[string]any{"api.url": ""},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "guest without credentials",
			set:     map[string]any{"auth.guest.enabled": true},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "bad fee",
			set:     map[string]any{"fees.stripe.percent": "lots"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "negative fee",
			set:     map[string]any{"fees.stripe.fixed": "-1"},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SCHOOLPAY_TEST_DIR", "/tmp/schoolpay")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "db.sqlite"), ExpandPath("~/db.sqlite"))
	assert.Equal(t, "/tmp/schoolpay/db", ExpandPath("$SCHOOLPAY_TEST_DIR/db"))
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	assert.Equal(t, "/xdg/schoolpay", DataDir())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SCHOOLPAY_DOTENV_TEST=from-file\n"), 0o600))
	t.Setenv("SCHOOLPAY_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("SCHOOLPAY_DOTENV_TEST"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("SCHOOLPAY_DOTENV_TEST"))
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "")

	t.Run("service account from viper", func(t *testing.T) {
		v := newViper()
		v.Set("sheets.service_account_path", "/keys/sa.json")
		v.Set("sheets.spreadsheet_name", "Fees 2024")

		cfg, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "Fees 2024", cfg.SpreadsheetName)
	})

	t.Run("oauth from environment", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")

		cfg, err := LoadSheetsConfig(newViper())
		require.NoError(t, err)
		assert.Equal(t, "id", cfg.ClientID)
		assert.Equal(t, "School Transactions", cfg.SpreadsheetName)
	})

	t.Run("no credentials", func(t *testing.T) {
		_, err := LoadSheetsConfig(newViper())
		assert.Error(t, err)
	})
}
