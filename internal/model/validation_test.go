package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr string
	}{
		{name: "valid", creds: Credentials{Email: "admin@school.edu", Password: "secret"}},
		{name: "missing email", creds: Credentials{Password: "secret"}, wantErr: "Email is required"},
		{name: "bad email", creds: Credentials{Email: "nope", Password: "secret"}, wantErr: "valid email"},
		{name: "missing password", creds: Credentials{Email: "admin@school.edu"}, wantErr: "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistrationValidate(t *testing.T) {
	base := Registration{Name: "Admin", Email: "admin@school.edu", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, base.Validate())

	mismatch := base
	mismatch.ConfirmPassword = "other"
	err := mismatch.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Passwords do not match")

	short := base
	short.Password, short.ConfirmPassword = "abc", "abc"
	err = short.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6 characters")
}

func TestPaymentRequest(t *testing.T) {
	req := PaymentRequest{
		SchoolID: "65b0e6293e9f76a9694d84b4",
		Student:  StudentInfo{Name: "Ravi", ID: "S-1"},
		Amount:   decimal.RequireFromString("1250.50"),
	}
	require.NoError(t, req.Validate())

	body, err := req.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"amount":1250.5`)

	req.Amount = decimal.Zero
	assert.ErrorIs(t, req.Validate(), ErrInvalidInput)
}
