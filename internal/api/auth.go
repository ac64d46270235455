package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/schoolpay/internal/model"
)

// Login exchanges credentials for a token and the user profile.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error) {
	return c.authenticate(ctx, "/users/login", creds, "An error occurred during login")
}

// Register creates an account and returns its token and profile.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.AuthResult, error) {
	return c.authenticate(ctx, "/users/register", reg, "An error occurred during registration")
}

func (c *Client) authenticate(ctx context.Context, path string, body any, fallback string) (*model.AuthResult, error) {
	var result model.AuthResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     path,
		body:     body,
		fallback: fallback,
		public:   true,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%s: response carried no token", fallback)
	}
	return &result, nil
}
