package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/schoolpay/internal/api"
	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/common"
	"github.com/Veraticus/schoolpay/internal/config"
	"github.com/Veraticus/schoolpay/internal/export"
	"github.com/Veraticus/schoolpay/internal/service"
	"github.com/Veraticus/schoolpay/internal/session"
	"github.com/Veraticus/schoolpay/internal/storage"
)

// loginRequired is shown when a protected command runs without a session
// and none could be re-acquired.
const loginRequired = `Not logged in. Run "schoolpay login" first.`

// app bundles what a command needs to talk to the API.
type app struct {
	cfg      *config.Config
	store    *storage.SQLiteStorage
	sessions *session.Manager
	client   *api.Client
	prompter *cli.Prompter
}

// initStorage opens the local database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadConfig resolves the configuration from the global viper instance.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// sessionStore picks the session backend: a JSON file when session.file is
// configured, the database otherwise.
func sessionStore(cfg *config.Config, store *storage.SQLiteStorage) service.SessionStore {
	if cfg.Session.File != "" {
		return session.NewFileStore(cfg.Session.File)
	}
	return store
}

// reauthenticator lists the credential sources tried when the session has
// to be re-acquired: the configured guest account when enabled, then the
// interactive login form.
func reauthenticator(cfg *config.Config, prompter *cli.Prompter) session.Reauthenticator {
	var chain session.Chain
	if cfg.Guest.Enabled {
		chain = append(chain, session.StaticCredentials{Email: cfg.Guest.Email, Password: cfg.Guest.Password})
	}
	return append(chain, prompter)
}

// initApp loads configuration, storage, the session and the API client.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	prompter := cli.NewPrompter()
	if viper.GetBool("no_input") {
		prompter = cli.NewNonInteractivePrompter()
	}
	manager := session.NewManager(
		sessionStore(cfg, store),
		session.WithReauthenticator(reauthenticator(cfg, prompter)),
		session.WithLogger(slog.Default()),
	)

	client, err := api.NewClient(api.Config{
		BaseURL:   cfg.API.URL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
	}, manager,
		api.WithLogger(slog.Default()),
		api.WithUnauthorizedHandler(manager.HandleUnauthorized),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	manager.SetAuthenticator(client)

	if err := manager.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    store,
		sessions: manager,
		client:   client,
		prompter: prompter,
	}, nil
}

// Close releases the database.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// ensureSession makes sure a usable session exists, re-authenticating when
// a credential source is available.
func (a *app) ensureSession(ctx context.Context) error {
	if _, err := a.sessions.Refresh(ctx); err != nil {
		if errors.Is(err, session.ErrReauthRequired) && !errors.Is(err, cli.ErrInputCancelled) {
			return common.NewUserError(loginRequired, err)
		}
		return err
	}
	return nil
}

// authed runs fn with a session. A 401 clears the session, so fn gets one
// more attempt after re-authenticating.
func (a *app) authed(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := a.ensureSession(ctx); err != nil {
		return err
	}

	err := fn(ctx)
	if !common.IsUnauthorized(err) {
		return err
	}

	slog.Info("Session rejected by the server, signing in again")
	if reauthErr := a.ensureSession(ctx); reauthErr != nil {
		return reauthErr
	}
	return fn(ctx)
}

// renderOptions returns the configured display layouts and currency.
func (a *app) renderOptions() export.Options {
	return export.Options{
		Layouts:  a.cfg.Display.Layouts(),
		Currency: a.cfg.Display.Currency,
	}
}
