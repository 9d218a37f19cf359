package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
	people "google.golang.org/api/people/v1"

	"fitpulse/internal/config"
)

func testAuthenticator() *Authenticator {
	return NewAuthenticator(config.GoogleCredentials{
		ClientID:     "client-id",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:8000/auth/google/callback",
	})
}

func TestFetchMapsPersonToProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer t1" {
			t.Fatalf("expected bearer token on request, got %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"resourceName": "people/42",
			"names": [{"displayName": "Jane"}],
			"photos": [{"url": "http://x/p.jpg"}]
		}`))
	}))
	defer ts.Close()

	fetcher := NewProfileFetcher(testAuthenticator(), WithPeopleEndpoint(ts.URL))

	profile, err := fetcher.Fetch(context.Background(), &oauth2.Token{AccessToken: "t1"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	want := UserProfile{DisplayName: "Jane", ProfilePhotoURL: "http://x/p.jpg", UserID: "42"}
	if profile != want {
		t.Fatalf("expected %+v, got %+v", want, profile)
	}
}

func TestFetchWrapsProviderFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	}))
	defer ts.Close()

	fetcher := NewProfileFetcher(testAuthenticator(), WithPeopleEndpoint(ts.URL))

	_, err := fetcher.Fetch(context.Background(), &oauth2.Token{AccessToken: "t1"})
	if !errors.Is(err, ErrProfileFetch) {
		t.Fatalf("expected ErrProfileFetch, got %v", err)
	}
}

func TestProfileFromPersonDefaultsAbsentFields(t *testing.T) {
	profile := profileFromPerson(&people.Person{})

	if profile.DisplayName != "Unknown User" {
		t.Fatalf("expected default display name, got %q", profile.DisplayName)
	}
	if profile.ProfilePhotoURL != "" || profile.UserID != "" {
		t.Fatalf("expected empty photo and user ID, got %+v", profile)
	}
}

func TestProfileFromPersonPreservesUnrecognizedResourceName(t *testing.T) {
	profile := profileFromPerson(&people.Person{ResourceName: "contacts/99"})

	if profile.UserID != "contacts/99" {
		t.Fatalf("expected untouched resource name, got %q", profile.UserID)
	}
}
