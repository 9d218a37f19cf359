package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates runtime configuration for the Fitpulse API.
type Config struct {
	Environment     string
	HTTPPort        int
	LogLevel        string
	FrontendURL     string
	AllowedOrigins  []string
	CredentialsFile string
	SessionStore    string
	DatabaseURL     string
	Appwrite        AppwriteConfig
}

// AppwriteConfig holds the document store connection settings.
type AppwriteConfig struct {
	Endpoint            string
	ProjectID           string
	APIKey              string
	DatabaseID          string
	CollectionID        string
	FitnessCollectionID string
}

// Enabled reports whether enough settings are present to talk to Appwrite.
func (a AppwriteConfig) Enabled() bool {
	return a.ProjectID != "" && a.APIKey != "" && a.DatabaseID != "" && a.CollectionID != ""
}

// Load reads configuration from environment variables with sensible defaults for local development.
func Load() (Config, error) {
	apiKey, err := getEnvOrFile("APPWRITE_API_KEY", "/run/secrets/fitpulse_appwrite_api_key")
	if err != nil {
		return Config{}, err
	}

	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/fitpulse_database_url")
	if err != nil {
		return Config{}, err
	}

	frontendURL := strings.TrimSuffix(getEnv("FRONTEND_URL", "http://localhost:5173"), "/")

	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		FrontendURL:     frontendURL,
		AllowedOrigins:  parseCSV(getEnv("ALLOWED_ORIGINS", frontendURL)),
		CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "creds.json"),
		SessionStore:    strings.ToLower(getEnv("SESSION_STORE", "memory")),
		DatabaseURL:     databaseURL,
		Appwrite: AppwriteConfig{
			Endpoint:            strings.TrimSuffix(getEnv("APPWRITE_ENDPOINT", "https://cloud.appwrite.io/v1"), "/"),
			ProjectID:           os.Getenv("APPWRITE_PROJECT_ID"),
			APIKey:              strings.TrimSpace(apiKey),
			DatabaseID:          os.Getenv("APPWRITE_DATABASE_ID"),
			CollectionID:        os.Getenv("APPWRITE_COLLECTION_ID"),
			FitnessCollectionID: os.Getenv("APPWRITE_FITNESS_COLLECTION_ID"),
		},
	}

	portValue := getEnv("PORT", "8000")
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	switch cfg.SessionStore {
	case "memory", "postgres":
	default:
		return Config{}, fmt.Errorf("invalid SESSION_STORE %q: must be memory or postgres", cfg.SessionStore)
	}

	if cfg.SessionStore == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("SESSION_STORE is postgres but DATABASE_URL is not set")
	}

	if !cfg.IsDevelopment() && !cfg.Appwrite.Enabled() {
		return Config{}, fmt.Errorf("APPWRITE_PROJECT_ID, APPWRITE_API_KEY, APPWRITE_DATABASE_ID and APPWRITE_COLLECTION_ID are required outside development")
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsDevelopment reports whether the process runs in the development environment.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// UseInMemorySessions returns true if the in-memory session store should be used.
func (c Config) UseInMemorySessions() bool {
	return c.SessionStore == "memory"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
