package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fitpulse/internal/auth"
	"fitpulse/internal/config"
	"fitpulse/internal/fitness"
)

// profileDocument is the stored shape of a persisted profile record.
type profileDocument struct {
	Username   string `json:"username"`
	ProfileURL string `json:"profileURL"`
	UserID     string `json:"userID"`
}

// metricsDocument is a snapshot of one fetch of normalized metrics.
type metricsDocument struct {
	UserID    string `json:"userID"`
	Username  string `json:"username"`
	Metrics   string `json:"metrics"`
	FetchedAt string `json:"fetchedAt"`
}

// Persister upserts profile records into the document store,
// deduplicated on the stored photo URL.
type Persister struct {
	client              *Client
	databaseID          string
	collectionID        string
	fitnessCollectionID string
	now                 func() time.Time
}

// NewPersister constructs a Persister for the configured collections.
func NewPersister(client *Client, cfg config.AppwriteConfig) *Persister {
	return &Persister{
		client:              client,
		databaseID:          cfg.DatabaseID,
		collectionID:        cfg.CollectionID,
		fitnessCollectionID: cfg.FitnessCollectionID,
		now:                 time.Now,
	}
}

// PersistProfile inserts the profile unless a record with the same photo
// URL already exists. The scan-then-insert check is racy for concurrent
// logins of the same user; the collection carries no unique index to
// lean on, so a rare duplicate is possible.
func (p *Persister) PersistProfile(ctx context.Context, profile auth.UserProfile) error {
	raw, err := p.client.ListDocuments(ctx, p.databaseID, p.collectionID)
	if err != nil {
		return err
	}

	for _, doc := range raw {
		var existing profileDocument
		if err := json.Unmarshal(doc, &existing); err != nil {
			continue
		}
		if existing.ProfileURL == profile.ProfilePhotoURL {
			return nil
		}
	}

	return p.client.CreateDocument(ctx, p.databaseID, p.collectionID, uuid.NewString(), profileDocument{
		Username:   profile.DisplayName,
		ProfileURL: profile.ProfilePhotoURL,
		UserID:     profile.UserID,
	})
}

// PersistMetrics stores a snapshot of the normalized metrics. It is a
// no-op when no fitness collection is configured.
func (p *Persister) PersistMetrics(ctx context.Context, profile auth.UserProfile, metrics []fitness.DailyMetric) error {
	if p.fitnessCollectionID == "" {
		return nil
	}

	encoded, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("appwrite: marshal metrics: %w", err)
	}

	return p.client.CreateDocument(ctx, p.databaseID, p.fitnessCollectionID, uuid.NewString(), metricsDocument{
		UserID:    profile.UserID,
		Username:  profile.DisplayName,
		Metrics:   string(encoded),
		FetchedAt: p.now().UTC().Format(time.RFC3339),
	})
}
