package platform

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gatherly/sentinel/internal/infra/storage/memory"
)

func TestDecodeStoredSession(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, userID, token string, expiresAt time.Time)
	}{
		{
			name: "unix expiry",
			raw:  `{"access_token":"tok","refresh_token":"ref","expires_at":1767225600,"user":{"id":"u1"}}`,
			check: func(t *testing.T, userID, token string, expiresAt time.Time) {
				if userID != "u1" || token != "tok" {
					t.Errorf("decoded user=%q token=%q", userID, token)
				}
				if expiresAt.Unix() != 1767225600 {
					t.Errorf("expiry = %v, want unix 1767225600", expiresAt)
				}
			},
		},
		{
			name: "rfc3339 expiry",
			raw:  `{"access_token":"tok","expires_at":"2030-01-01T00:00:00Z","user":{"id":"u2"}}`,
			check: func(t *testing.T, userID, token string, expiresAt time.Time) {
				want := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
				if !expiresAt.Equal(want) {
					t.Errorf("expiry = %v, want %v", expiresAt, want)
				}
			},
		},
		{
			name: "absent expiry means no expiry",
			raw:  `{"access_token":"tok","user":{"id":"u3"}}`,
			check: func(t *testing.T, userID, token string, expiresAt time.Time) {
				if !expiresAt.IsZero() {
					t.Errorf("expiry = %v, want zero", expiresAt)
				}
			},
		},
		{
			name:    "malformed json",
			raw:     `{"access_token": "tok"`,
			wantErr: true,
		},
		{
			name:    "access token is a number",
			raw:     `{"access_token": 42, "user":{"id":"u4"}}`,
			wantErr: true,
		},
		{
			name:    "unparsable expiry",
			raw:     `{"access_token":"tok","expires_at":"next tuesday"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := DecodeStoredSession(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeStoredSession(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeStoredSession failed: %v", err)
			}
			if tt.check != nil {
				tt.check(t, session.UserID, session.AccessToken, session.ExpiresAt)
			}
		})
	}
}

func TestCurrentSessionReturnsLiveSession(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore(memory.NewStorage())
	future := time.Now().Add(time.Hour).Unix()
	raw := fmt.Sprintf(`{"access_token":"tok","expires_at":%d,"user":{"id":"u1"}}`, future)
	if err := kv.Set(ctx, "sb-gatherly-auth-token", raw); err != nil {
		t.Fatal(err)
	}

	accessor := NewStoredSessionAccessor(kv)
	session, err := accessor.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession failed: %v", err)
	}
	if session == nil || session.UserID != "u1" {
		t.Fatalf("CurrentSession = %+v, want session u1", session)
	}
}

func TestCurrentSessionSignedOut(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore(memory.NewStorage())

	accessor := NewStoredSessionAccessor(kv)
	session, err := accessor.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession failed: %v", err)
	}
	if session != nil {
		t.Fatalf("CurrentSession = %+v, want nil with no stored token", session)
	}
}

func TestCurrentSessionSkipsExpiredToken(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore(memory.NewStorage())
	past := time.Now().Add(-time.Hour).Unix()
	raw := fmt.Sprintf(`{"access_token":"tok","expires_at":%d,"user":{"id":"u1"}}`, past)
	if err := kv.Set(ctx, "gatherly-auth.token", raw); err != nil {
		t.Fatal(err)
	}

	accessor := NewStoredSessionAccessor(kv)
	session, err := accessor.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("CurrentSession failed: %v", err)
	}
	if session != nil {
		t.Fatalf("CurrentSession = %+v, want nil for expired token", session)
	}
}

func TestCurrentSessionSurfacesDecodeFailure(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore(memory.NewStorage())
	if err := kv.Set(ctx, "sb-gatherly-auth-token", "{not json"); err != nil {
		t.Fatal(err)
	}

	accessor := NewStoredSessionAccessor(kv)
	if _, err := accessor.CurrentSession(ctx); err == nil {
		t.Fatal("CurrentSession succeeded on poisoned token, want error")
	}
}
