package model

import (
	"time"
)

// User is the profile returned by the auth endpoints.
type User struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	SchoolID string `json:"school_id,omitempty"`
}

// DisplayName prefers the user's name and falls back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session is an authenticated bearer token together with the user it was
// issued to. ExpiresAt is zero when the token carries no expiry.
type Session struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	User      *User     `json:"user,omitempty"`
	Token     string    `json:"token"`
}

// Expired reports whether the token's expiry has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Usable reports whether the session holds a token that has not expired.
func (s *Session) Usable(now time.Time) bool {
	return s != nil && s.Token != "" && !s.Expired(now)
}

// AuthResult is the data block returned by login and register.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
