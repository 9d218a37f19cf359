package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"fitpulse/internal/config"
)

func TestAuthURLRequestsOfflineAccessAndAllScopes(t *testing.T) {
	authn := NewAuthenticator(config.GoogleCredentials{
		ClientID:     "client-id",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:8000/auth/google/callback",
	})

	parsed, err := url.Parse(authn.AuthURL())
	if err != nil {
		t.Fatalf("failed to parse auth URL: %v", err)
	}

	query := parsed.Query()
	if query.Get("access_type") != "offline" {
		t.Fatalf("expected access_type=offline, got %q", query.Get("access_type"))
	}
	if query.Get("client_id") != "client-id" {
		t.Fatalf("expected client_id, got %q", query.Get("client_id"))
	}
	if query.Get("redirect_uri") != "http://localhost:8000/auth/google/callback" {
		t.Fatalf("unexpected redirect_uri %q", query.Get("redirect_uri"))
	}

	scope := query.Get("scope")
	for _, want := range []string{
		"fitness.activity.read",
		"fitness.blood_glucose.read",
		"fitness.blood_pressure.read",
		"fitness.heart_rate.read",
		"fitness.body.read",
		"fitness.sleep.read",
		"fitness.reproductive_health.read",
		"userinfo.profile",
	} {
		if !strings.Contains(scope, want) {
			t.Fatalf("expected scope to contain %q, got %q", want, scope)
		}
	}
}

func TestAuthURLIsDeterministicPerProcess(t *testing.T) {
	authn := NewAuthenticator(config.GoogleCredentials{
		ClientID:     "client-id",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:8000/auth/google/callback",
	})

	if authn.AuthURL() != authn.AuthURL() {
		t.Fatal("expected identical consent URLs for repeated calls")
	}
}

func TestExchangeReturnsTokenPair(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing token request: %v", err)
		}
		if got := r.FormValue("code"); got != "abc123" {
			t.Fatalf("expected code abc123, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"t1","token_type":"Bearer","refresh_token":"r1","expires_in":3600}`))
	}))
	defer ts.Close()

	authn := &Authenticator{config: &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: ts.URL, AuthStyle: oauth2.AuthStyleInParams},
	}}

	token, err := authn.Exchange(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Exchange returned error: %v", err)
	}
	if token.AccessToken != "t1" {
		t.Fatalf("expected access token t1, got %q", token.AccessToken)
	}
	if token.RefreshToken != "r1" {
		t.Fatalf("expected refresh token r1, got %q", token.RefreshToken)
	}
}

func TestExchangeWrapsProviderFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	authn := &Authenticator{config: &oauth2.Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{TokenURL: ts.URL, AuthStyle: oauth2.AuthStyleInParams},
	}}

	_, err := authn.Exchange(context.Background(), "expired")
	if !errors.Is(err, ErrExchange) {
		t.Fatalf("expected ErrExchange, got %v", err)
	}
}
