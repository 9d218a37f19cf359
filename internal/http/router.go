package http

import (
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fitpulse/internal/appwrite"
	"fitpulse/internal/auth"
	"fitpulse/internal/config"
	"fitpulse/internal/fitness"
	"fitpulse/internal/session"
)

// NewRouter wires application routes and middleware using chi.
// The Appwrite persister may be nil when the document store is not configured.
func NewRouter(
	cfg config.Config,
	authn *auth.Authenticator,
	profiles *auth.ProfileFetcher,
	sessions session.Store,
	metrics *fitness.Client,
	persister *appwrite.Persister,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSlogMiddleware(logger))
	r.Use(newSessionMiddleware(!cfg.IsDevelopment(), logger))

	oauthHandler := NewOAuthHandler(authn, profiles, sessions, cfg.FrontendURL, logger)

	// An interface holding a nil *appwrite.Persister is not itself nil;
	// assign only a live persister.
	var persistTarget profilePersister
	if persister != nil {
		persistTarget = persister
	}
	dataHandler := NewDataHandler(sessions, metrics, persistTarget, logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "Server is running!")
	})

	r.Get("/auth/google", oauthHandler.Initiate)
	r.Get("/auth/google/callback", oauthHandler.Callback)
	r.Get("/auth/user", dataHandler.CurrentUser)
	r.Get("/fetch-data", dataHandler.FetchData)

	r.Get("/error", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "Authentication failed. Please try again.")
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
