package config

import (
	"os"

	"github.com/Veraticus/schoolpay/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads the Google Sheets export settings. Viper keys
// (sheets.*, or SCHOOLPAY_SHEETS_* env vars) take precedence over the
// GOOGLE_SHEETS_* environment variables.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	cfg.ServiceAccountPath = ExpandPath(firstNonEmpty(v.GetString("sheets.service_account_path"), os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")))
	cfg.ClientID = firstNonEmpty(v.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	cfg.ClientSecret = firstNonEmpty(v.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	cfg.RefreshToken = firstNonEmpty(v.GetString("sheets.refresh_token"), os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"))
	cfg.TokenFile = ExpandPath(v.GetString("sheets.token_file"))
	cfg.SpreadsheetID = firstNonEmpty(v.GetString("sheets.spreadsheet_id"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))

	if name := firstNonEmpty(v.GetString("sheets.spreadsheet_name"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME")); name != "" {
		cfg.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.timezone"); tz != "" {
		cfg.TimeZone = tz
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
