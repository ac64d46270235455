package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/schoolpay/internal/cli"
	"github.com/Veraticus/schoolpay/internal/common"
	"github.com/Veraticus/schoolpay/internal/model"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the payments API",
		Long: `Sign in and keep the session locally.

Without flags an interactive form asks for the email and password. In
scripts pass --email and pipe the password with --password-stdin.`,
		Example: `  # Interactive
  schoolpay login

  # Non-interactive
  echo "$PASSWORD" | schoolpay login --email admin@school.test --password-stdin

  # Use the configured demo account
  schoolpay login --guest`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().String("email", "", "account email")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	cmd.Flags().Bool("guest", false, "sign in with the configured guest account")

	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	email, _ := cmd.Flags().GetString("email")
	passwordStdin, _ := cmd.Flags().GetBool("password-stdin")
	guest, _ := cmd.Flags().GetBool("guest")

	var creds model.Credentials
	switch {
	case guest:
		if !a.cfg.Guest.Enabled {
			return common.NewUserError("Guest login is disabled. Set auth.guest.enabled, auth.guest.email and auth.guest.password.", common.ErrMissingConfig)
		}
		creds = model.Credentials{Email: a.cfg.Guest.Email, Password: a.cfg.Guest.Password}

	case passwordStdin:
		if email == "" {
			return fmt.Errorf("%w: --password-stdin requires --email", model.ErrInvalidInput)
		}
		password, err := cli.ReadSecret(ctx, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		creds = model.Credentials{Email: email, Password: password}

	default:
		a.prompter.Email = email
		creds, err = a.prompter.PromptCredentials(ctx)
		if err != nil {
			return promptError(err)
		}
	}

	sess, err := a.sessions.Login(ctx, creds)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged in as "+sess.User.DisplayName()))
	return nil
}

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Long: `Create an account on the payments API. Fields not given as flags are
asked for interactively; the password must be entered twice.`,
		Args: cobra.NoArgs,
		RunE: runRegister,
	}

	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")

	return cmd
}

func runRegister(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var reg model.Registration
	reg.Name, _ = cmd.Flags().GetString("name")
	reg.Email, _ = cmd.Flags().GetString("email")
	if stdin, _ := cmd.Flags().GetBool("password-stdin"); stdin {
		password, err := cli.ReadSecret(ctx, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		reg.Password = password
		reg.ConfirmPassword = password
	}

	reg, err = a.prompter.PromptRegistration(ctx, reg)
	if err != nil {
		return promptError(err)
	}

	sess, err := a.sessions.Register(ctx, reg)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Account created. Logged in as "+sess.User.DisplayName()))
	return nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged out"))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := a.sessions.Current()
			if !a.sessions.IsAuthenticated() {
				msg := "Not logged in"
				if sess != nil {
					msg = "Session expired"
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(msg))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSession(sess, time.Now()))
			return nil
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Sign in again if the session is missing or expired",
		Long: `Checks the stored session and, when it is missing or expired, signs in
again with the guest account (when enabled) or the interactive form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ensureSession(ctx); err != nil {
				return promptError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Session is valid for "+a.sessions.Current().User.DisplayName()))
			return nil
		},
	}
}

// renderSession describes the signed in user.
func renderSession(sess *model.Session, now time.Time) string {
	var b strings.Builder
	user := sess.User
	if user == nil {
		user = &model.User{}
	}
	writeField(&b, "Name", user.Name)
	writeField(&b, "Email", user.Email)
	writeField(&b, "Role", user.Role)
	writeField(&b, "School", user.SchoolID)
	if sess.ExpiresAt.IsZero() {
		writeField(&b, "Expires", "never")
	} else {
		writeField(&b, "Expires", fmt.Sprintf("%s (in %s)", sess.ExpiresAt.Local().Format(time.DateTime), sess.ExpiresAt.Sub(now).Round(time.Minute)))
	}
	return cli.RenderBox(cli.SchoolIcon+" "+user.DisplayName(), strings.TrimRight(b.String(), "\n"))
}

func writeField(w io.Writer, label, value string) {
	if value == "" {
		value = model.NotAvailable
	}
	fmt.Fprintf(w, "%s %s\n", cli.SubtleStyle.Render(label+":"), value)
}

// promptError turns a missing terminal into a hint about the scripting flags.
func promptError(err error) error {
	if errors.Is(err, cli.ErrNotInteractive) {
		return common.NewUserError("No terminal for the login form. Use --email with --password-stdin, or --guest.", err)
	}
	return err
}
