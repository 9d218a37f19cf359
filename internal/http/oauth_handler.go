package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"fitpulse/internal/auth"
	"fitpulse/internal/session"
)

// errorRedirectPath is the generic error page users land on when a login
// step fails. Provider error detail stays in the server log.
const errorRedirectPath = "/error"

type authenticator interface {
	AuthURL() string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

type profileFetcher interface {
	Fetch(ctx context.Context, token *oauth2.Token) (auth.UserProfile, error)
}

// OAuthHandler drives the Google OAuth delegation flow.
type OAuthHandler struct {
	auth        authenticator
	profiles    profileFetcher
	sessions    session.Store
	frontendURL string
	logger      *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(authn authenticator, profiles profileFetcher, sessions session.Store, frontendURL string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		auth:        authn,
		profiles:    profiles,
		sessions:    sessions,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Initiate handles GET /auth/google.
// Returns the provider consent URL for the frontend to open.
func (h *OAuthHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"authUrl": h.auth.AuthURL()})
}

// Callback handles GET /auth/google/callback.
// Exchanges the authorization code, stores tokens, fetches the profile
// and stores it, then redirects to the frontend dashboard. Each write
// must complete before the next step runs: the profile fetch needs the
// tokens, and the redirect carries the fetched user ID.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	sessionID := SessionIDFromContext(r.Context())

	token, err := h.auth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "error", err)
		http.Redirect(w, r, errorRedirectPath, http.StatusFound)
		return
	}

	if err := h.sessions.SetTokens(r.Context(), sessionID, token); err != nil {
		h.logger.Error("oauth callback: storing tokens failed", "error", err)
		http.Redirect(w, r, errorRedirectPath, http.StatusFound)
		return
	}

	profile, err := h.profiles.Fetch(r.Context(), token)
	if err != nil {
		h.logger.Error("oauth callback: profile fetch failed", "error", err)
		http.Redirect(w, r, errorRedirectPath, http.StatusFound)
		return
	}

	if err := h.sessions.SetProfile(r.Context(), sessionID, profile); err != nil {
		h.logger.Error("oauth callback: storing profile failed", "error", err)
		http.Redirect(w, r, errorRedirectPath, http.StatusFound)
		return
	}

	h.logger.Info("oauth login successful", "user_id", profile.UserID)

	http.Redirect(w, r, h.frontendURL+"/dashboard?user="+url.QueryEscape(profile.UserID), http.StatusFound)
}
