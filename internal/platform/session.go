// Package platform holds the client-side glue for the remote data platform:
// the persisted-auth-token format and the accessor the session cache wraps.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gatherly/sentinel/internal/core/domain"
	"github.com/gatherly/sentinel/internal/infra/storage"
)

// AuthKeyPrefixes are the key-value namespaces where the platform SDK
// persists auth state. The integrity probes inspect the same prefixes.
var AuthKeyPrefixes = []string{"sb-", "gatherly-auth."}

type storedSession struct {
	AccessToken  json.RawMessage `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    json.RawMessage `json:"expires_at"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

// DecodeStoredSession parses the JSON blob the platform SDK persists for an
// auth token. Malformed JSON, a non-string access token, or an unparsable
// expiry all produce an error; the integrity probes treat any such error as
// corruption.
func DecodeStoredSession(raw string) (*domain.Session, error) {
	var stored storedSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("malformed auth token: %w", err)
	}

	var token string
	if err := json.Unmarshal(stored.AccessToken, &token); err != nil {
		return nil, fmt.Errorf("access token is not a string: %w", err)
	}

	expiresAt, err := parseExpiry(stored.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		UserID:       stored.User.ID,
		AccessToken:  token,
		RefreshToken: stored.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// parseExpiry accepts the two shapes the SDK has written over time: unix
// seconds as a JSON number, or an RFC 3339 string. Absent means no expiry.
func parseExpiry(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	s := strings.Trim(string(raw), `"`)
	if unix, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(unix), 0), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unparsable token expiry: %q", string(raw))
}

// StoredSessionAccessor reads the persisted session out of the key-value
// store. It is the concrete Accessor behind the session cache.
type StoredSessionAccessor struct {
	kv       storage.KeyValueStore
	prefixes []string
}

// NewStoredSessionAccessor creates an accessor over kv using the default
// auth prefixes.
func NewStoredSessionAccessor(kv storage.KeyValueStore) *StoredSessionAccessor {
	return &StoredSessionAccessor{kv: kv, prefixes: AuthKeyPrefixes}
}

// CurrentSession returns the first live persisted session, or (nil, nil)
// when no one is signed in. Decode failures surface as errors so callers can
// distinguish "signed out" from "poisoned state".
func (a *StoredSessionAccessor) CurrentSession(ctx context.Context) (*domain.Session, error) {
	for _, prefix := range a.prefixes {
		keys, err := a.kv.Keys(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list auth keys: %w", err)
		}
		for _, key := range keys {
			raw, ok, err := a.kv.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("read auth key %q: %w", key, err)
			}
			if !ok {
				continue
			}
			session, err := DecodeStoredSession(raw)
			if err != nil {
				return nil, fmt.Errorf("auth key %q: %w", key, err)
			}
			if !session.Expired(time.Now()) {
				return session, nil
			}
		}
	}
	return nil, nil
}
