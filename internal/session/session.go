// Package session holds per-browser authentication state keyed by an
// opaque identifier carried in a cookie. Tokens and profile are written
// once per authentication cycle and read by the data-fetch endpoints.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/oauth2"

	"fitpulse/internal/auth"
)

// ErrTokensRequired is returned when a profile write is attempted on a
// session that holds no tokens. A session must never carry a profile
// without the tokens that produced it.
var ErrTokensRequired = errors.New("session has no tokens")

// Session is the server-side state for one browser session.
// Tokens are never serialized to the browser.
type Session struct {
	ID      string
	Tokens  *oauth2.Token
	Profile *auth.UserProfile
}

// Authenticated reports whether the session completed a login cycle.
func (s *Session) Authenticated() bool {
	return s != nil && s.Tokens != nil && s.Profile != nil
}

// Store is the keyed session state shared across requests. A record
// does not exist until its first SetTokens write; Get returns nil for
// unknown identifiers. Implementations must make single-key operations
// atomic with respect to concurrent requests carrying the same cookie.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	SetTokens(ctx context.Context, id string, tokens *oauth2.Token) error
	SetProfile(ctx context.Context, id string, profile auth.UserProfile) error
}

// NewID generates a cryptographically secure opaque session identifier.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
