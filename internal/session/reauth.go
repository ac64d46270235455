package session

import (
	"context"
	"errors"

	"github.com/Veraticus/schoolpay/internal/model"
)

// ErrNoCredentials is returned by a reauthenticator that has nothing to offer.
var ErrNoCredentials = errors.New("no credentials available")

// Reauthenticator supplies credentials when the session must be re-acquired.
type Reauthenticator interface {
	Credentials(ctx context.Context) (model.Credentials, error)
}

// ReauthFunc adapts a function to Reauthenticator.
type ReauthFunc func(ctx context.Context) (model.Credentials, error)

// Credentials implements Reauthenticator.
func (f ReauthFunc) Credentials(ctx context.Context) (model.Credentials, error) {
	return f(ctx)
}

// StaticCredentials always returns the same configured credentials, such as
// an explicitly enabled demo account.
type StaticCredentials model.Credentials

// Credentials implements Reauthenticator.
func (s StaticCredentials) Credentials(context.Context) (model.Credentials, error) {
	if s.Email == "" || s.Password == "" {
		return model.Credentials{}, ErrNoCredentials
	}
	return model.Credentials(s), nil
}

// Chain tries each reauthenticator in turn until one yields credentials.
type Chain []Reauthenticator

// Credentials implements Reauthenticator.
func (c Chain) Credentials(ctx context.Context) (model.Credentials, error) {
	err := ErrNoCredentials
	for _, r := range c {
		if r == nil {
			continue
		}
		var creds model.Credentials
		creds, err = r.Credentials(ctx)
		if err == nil {
			return creds, nil
		}
	}
	return model.Credentials{}, err
}
