package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// LoadToken loads a token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", tokenFile, err)
	}
	return token, nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// persistingSource saves every newly minted token back to the token file.
type persistingSource struct {
	base oauth2.TokenSource
	last *oauth2.Token
	path string
	mu   sync.Mutex
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if s.last == nil || s.last.AccessToken != token.AccessToken {
		if err := SaveToken(s.path, token); err != nil {
			slog.Warn("Failed to save refreshed token", "error", err, "file", s.path)
		}
		s.last = token
	}
	return token, nil
}

// tokenSource builds the credentials for the configured auth method: a
// service account key, a saved token file, or a bare refresh token.
func tokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		return jwtConfig.TokenSource(ctx), nil
	}

	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}

	if config.TokenFile != "" {
		token, err := LoadToken(config.TokenFile)
		if err == nil {
			return &persistingSource{
				base: oauthConfig.TokenSource(ctx, token),
				path: config.TokenFile,
				last: token,
			}, nil
		}
		if config.RefreshToken == "" {
			return nil, fmt.Errorf("unable to load token file: %w", err)
		}
		slog.Debug("No saved token, using configured refresh token", "file", config.TokenFile)
	}

	token := &oauth2.Token{
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
	}
	return oauthConfig.TokenSource(ctx, token), nil
}
