package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"fitpulse/internal/config"
)

// ErrExchange is returned when Google rejects the authorization code
// or the token endpoint cannot be reached.
var ErrExchange = errors.New("authorization code exchange failed")

// scopes is the fixed delegation set requested on every consent screen.
var scopes = []string{
	"https://www.googleapis.com/auth/fitness.activity.read",
	"https://www.googleapis.com/auth/fitness.blood_glucose.read",
	"https://www.googleapis.com/auth/fitness.blood_pressure.read",
	"https://www.googleapis.com/auth/fitness.heart_rate.read",
	"https://www.googleapis.com/auth/fitness.body.read",
	"https://www.googleapis.com/auth/fitness.sleep.read",
	"https://www.googleapis.com/auth/fitness.reproductive_health.read",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// Authenticator handles the Google OAuth 2.0 delegation flow.
type Authenticator struct {
	config *oauth2.Config
}

// NewAuthenticator creates an Authenticator from the loaded client credentials.
func NewAuthenticator(creds config.GoogleCredentials) *Authenticator {
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		},
	}
}

// AuthURL generates the Google OAuth consent URL. Offline access is
// requested so a refresh token accompanies the access token.
func (a *Authenticator) AuthURL() string {
	return a.config.AuthCodeURL("", oauth2.AccessTypeOffline)
}

// Exchange trades a one-time authorization code for a token pair.
// The code is consumed whether or not the exchange succeeds.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return token, nil
}

// HTTPClient returns an *http.Client that authorizes requests with the
// given token pair, refreshing transparently when the access token expires.
func (a *Authenticator) HTTPClient(ctx context.Context, token *oauth2.Token) *http.Client {
	return a.config.Client(ctx, token)
}
