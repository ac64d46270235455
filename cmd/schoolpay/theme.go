package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/tui"
	"github.com/Veraticus/schoolpay/internal/tui/themes"
)

func themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the browser theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{themes.NameDark, themes.NameLight, "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Warn("Failed to close database", "error", closeErr)
				}
			}()

			action := ""
			if len(args) == 1 {
				action = args[0]
			}
			dark, err := applyTheme(ctx, store, action)
			if err != nil {
				return err
			}

			name := themes.ForMode(dark).Name
			if action == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Theme: "+name))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Theme set to "+name))
			return nil
		},
	}
}

// applyTheme performs action ("", dark, light or toggle) and returns the
// resulting dark mode flag.
func applyTheme(ctx context.Context, store tui.ThemeStore, action string) (bool, error) {
	dark, err := store.DarkMode(ctx)
	if err != nil {
		return false, err
	}

	switch action {
	case "":
		return dark, nil
	case themes.NameDark:
		dark = true
	case themes.NameLight:
		dark = false
	case "toggle":
		dark = !dark
	default:
		return false, fmt.Errorf("%w: unknown theme %q", model.ErrInvalidInput, action)
	}

	if err := store.SetDarkMode(ctx, dark); err != nil {
		return false, err
	}
	return dark, nil
}
