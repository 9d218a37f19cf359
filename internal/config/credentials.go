package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// GoogleCredentials holds the OAuth client settings loaded from the
// downloaded Google credential file. Loaded once at startup and never
// mutated afterwards.
type GoogleCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// credentialsFile mirrors the "web application" shape of a creds.json
// exported from the Google Cloud console.
type credentialsFile struct {
	Web struct {
		ClientID     string   `json:"client_id"`
		ClientSecret string   `json:"client_secret"`
		RedirectURIs []string `json:"redirect_uris"`
	} `json:"web"`
}

// LoadGoogleCredentials reads and validates the OAuth client credential file.
// The process must not start without a complete credential set.
func LoadGoogleCredentials(path string) (GoogleCredentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return GoogleCredentials{}, fmt.Errorf("config: reading google credentials %s: %w", path, err)
	}

	var file credentialsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return GoogleCredentials{}, fmt.Errorf("config: parsing google credentials %s: %w", path, err)
	}

	creds := GoogleCredentials{
		ClientID:     file.Web.ClientID,
		ClientSecret: file.Web.ClientSecret,
	}
	if len(file.Web.RedirectURIs) > 0 {
		creds.RedirectURI = file.Web.RedirectURIs[0]
	}

	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RedirectURI == "" {
		return GoogleCredentials{}, fmt.Errorf("config: google credentials %s are missing or invalid", path)
	}

	return creds, nil
}
