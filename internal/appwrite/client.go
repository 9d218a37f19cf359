// Package appwrite is a minimal REST client for the Appwrite document
// store, covering the two operations the profile persister needs.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fitpulse/internal/config"
)

// Client talks to one Appwrite project using a server-side API key.
type Client struct {
	httpClient *http.Client
	endpoint   string
	projectID  string
	apiKey     string
}

// NewClient constructs a Client. A nil httpClient falls back to a
// client with a conservative timeout.
func NewClient(cfg config.AppwriteConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   cfg.Endpoint,
		projectID:  cfg.ProjectID,
		apiKey:     cfg.APIKey,
	}
}

// documentList is the envelope Appwrite returns for collection listings.
type documentList struct {
	Total     int64             `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// ListDocuments fetches the raw documents of a collection.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string) ([]json.RawMessage, error) {
	url := fmt.Sprintf("%s/databases/%s/collections/%s/documents", c.endpoint, databaseID, collectionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("appwrite: create list request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("appwrite: list documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("appwrite: list documents returned status %d", resp.StatusCode)
	}

	var list documentList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("appwrite: decode document list: %w", err)
	}

	return list.Documents, nil
}

// CreateDocument inserts a document with the given identifier.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) error {
	url := fmt.Sprintf("%s/databases/%s/collections/%s/documents", c.endpoint, databaseID, collectionID)

	payload, err := json.Marshal(map[string]any{
		"documentId": documentID,
		"data":       data,
	})
	if err != nil {
		return fmt.Errorf("appwrite: marshal document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("appwrite: create document request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("appwrite: create document: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("appwrite: create document returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Key", c.apiKey)
}
