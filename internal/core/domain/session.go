package domain

import "time"

// Session is the authenticated platform identity the client operates under.
// A nil *Session means "signed out"; call sites must treat that as a normal
// state, not an error.
type Session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token has passed its expiry.
// A zero ExpiresAt means the platform did not report one; treat as live.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}
