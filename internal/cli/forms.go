package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/session"
)

// ErrNotInteractive is returned when a form is needed but no terminal is attached.
var ErrNotInteractive = errors.New("not an interactive terminal")

// Prompter asks for credentials with huh forms. It also serves as the
// interactive step of re-authentication.
type Prompter struct {
	interactive func() bool
	run         func(ctx context.Context, form *huh.Form) error
	// Email pre-fills the email field.
	Email string
	// Title is shown above the login form.
	Title string
}

var _ session.Reauthenticator = (*Prompter)(nil)

// NewPrompter creates a prompter bound to the process terminal.
func NewPrompter() *Prompter {
	return &Prompter{
		interactive: StdinInteractive,
		run: func(ctx context.Context, form *huh.Form) error {
			return form.RunWithContext(ctx)
		},
		Title: "Sign in to the school payments dashboard",
	}
}

// NewNonInteractivePrompter creates a prompter that never shows a form:
// prompts fail with ErrNotInteractive and confirmations take their default.
func NewNonInteractivePrompter() *Prompter {
	p := NewPrompter()
	p.interactive = func() bool { return false }
	return p
}

func (p *Prompter) runForm(ctx context.Context, form *huh.Form) error {
	if p.interactive != nil && !p.interactive() {
		return ErrNotInteractive
	}
	if err := p.run(ctx, form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrInputCancelled
		}
		return fmt.Errorf("form failed: %w", err)
	}
	return nil
}

// PromptCredentials shows the login form.
func (p *Prompter) PromptCredentials(ctx context.Context) (model.Credentials, error) {
	creds := model.Credentials{Email: p.Email}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&creds.Email).
				Validate(requiredField("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(requiredField("password")),
		).Title(p.Title),
	)

	if err := p.runForm(ctx, form); err != nil {
		return model.Credentials{}, err
	}

	creds.Email = strings.TrimSpace(creds.Email)
	if err := creds.Validate(); err != nil {
		return model.Credentials{}, err
	}
	return creds, nil
}

// Credentials implements session.Reauthenticator. Without a terminal it
// reports session.ErrNoCredentials so a chain can move on.
func (p *Prompter) Credentials(ctx context.Context) (model.Credentials, error) {
	creds, err := p.PromptCredentials(ctx)
	if errors.Is(err, ErrNotInteractive) {
		return model.Credentials{}, fmt.Errorf("%w: %w", session.ErrNoCredentials, err)
	}
	return creds, err
}

// PromptRegistration shows the sign-up form. The confirmation must match.
func (p *Prompter) PromptRegistration(ctx context.Context, reg model.Registration) (model.Registration, error) {
	fields := []huh.Field{}
	if reg.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Value(&reg.Name).
			Validate(requiredField("name")))
	}
	if reg.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&reg.Email).
			Validate(requiredField("email")))
	}
	if reg.Password == "" {
		fields = append(fields,
			huh.NewInput().
				Title("Password").
				Description("At least 6 characters").
				EchoMode(huh.EchoModePassword).
				Value(&reg.Password).
				Validate(func(s string) error {
					if len(s) < 6 {
						return errors.New("password must be at least 6 characters long")
					}
					return nil
				}),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&reg.ConfirmPassword).
				Validate(func(s string) error {
					if s != reg.Password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		)
	}

	if len(fields) > 0 {
		form := huh.NewForm(huh.NewGroup(fields...).Title("Create an account"))
		if err := p.runForm(ctx, form); err != nil {
			return model.Registration{}, err
		}
	}

	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := reg.Validate(); err != nil {
		return model.Registration{}, err
	}
	return reg, nil
}

// Confirm asks a yes/no question. Without a terminal it returns def.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	answer := def
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	))
	if err := p.runForm(ctx, form); err != nil {
		if errors.Is(err, ErrNotInteractive) {
			return def, nil
		}
		return false, err
	}
	return answer, nil
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
