package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"fitpulse/internal/auth"
	"fitpulse/internal/fitness"
	"fitpulse/internal/session"
)

const defaultPersistTimeout = 15 * time.Second

type metricsFetcher interface {
	DailyMetrics(ctx context.Context, token *oauth2.Token) ([]fitness.DailyMetric, error)
}

type profilePersister interface {
	PersistProfile(ctx context.Context, profile auth.UserProfile) error
	PersistMetrics(ctx context.Context, profile auth.UserProfile, metrics []fitness.DailyMetric) error
}

// DataHandler serves the session-bound endpoints: the current user's
// profile and the fitness data fetch.
type DataHandler struct {
	sessions       session.Store
	metrics        metricsFetcher
	persister      profilePersister
	persistTimeout time.Duration
	logger         *slog.Logger
}

// NewDataHandler creates a new DataHandler. persister may be nil, in
// which case fetched data is returned without being persisted.
func NewDataHandler(sessions session.Store, metrics metricsFetcher, persister profilePersister, logger *slog.Logger) *DataHandler {
	return &DataHandler{
		sessions:       sessions,
		metrics:        metrics,
		persister:      persister,
		persistTimeout: defaultPersistTimeout,
		logger:         logger,
	}
}

// fetchDataResponse is the browser contract for GET /fetch-data.
type fetchDataResponse struct {
	DisplayName     string                `json:"displayName"`
	ProfilePhotoURL string                `json:"profilePhotoUrl"`
	UserID          string                `json:"userID"`
	FormattedData   []fitness.DailyMetric `json:"formattedData"`
}

// CurrentUser handles GET /auth/user.
func (h *DataHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if sess == nil || sess.Profile == nil {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, sess.Profile)
}

// FetchData handles GET /fetch-data.
// Requires a fully authenticated session; no upstream call is made
// without both profile and tokens present.
func (h *DataHandler) FetchData(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if sess == nil || sess.Profile == nil {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}
	if sess.Tokens == nil {
		writeError(w, http.StatusUnauthorized, "user tokens not found, please reauthenticate")
		return
	}

	metrics, err := h.metrics.DailyMetrics(r.Context(), sess.Tokens)
	if err != nil {
		h.logger.Error("fitness data fetch failed", "error", err, "user_id", sess.Profile.UserID)
		writeError(w, http.StatusInternalServerError, "failed to fetch fitness data")
		return
	}
	if metrics == nil {
		metrics = []fitness.DailyMetric{}
	}

	// Persistence is best-effort and must never delay or fail the
	// response; it runs detached from the request context.
	if h.persister != nil {
		go h.persist(*sess.Profile, metrics)
	}

	writeJSON(w, http.StatusOK, fetchDataResponse{
		DisplayName:     sess.Profile.DisplayName,
		ProfilePhotoURL: sess.Profile.ProfilePhotoURL,
		UserID:          sess.Profile.UserID,
		FormattedData:   metrics,
	})
}

func (h *DataHandler) persist(profile auth.UserProfile, metrics []fitness.DailyMetric) {
	ctx, cancel := context.WithTimeout(context.Background(), h.persistTimeout)
	defer cancel()

	if err := h.persister.PersistProfile(ctx, profile); err != nil {
		h.logger.Error("profile persistence failed", "error", err, "user_id", profile.UserID)
	}
	if err := h.persister.PersistMetrics(ctx, profile, metrics); err != nil {
		h.logger.Error("metrics persistence failed", "error", err, "user_id", profile.UserID)
	}
}
