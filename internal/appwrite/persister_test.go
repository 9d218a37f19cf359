package appwrite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitpulse/internal/auth"
	"fitpulse/internal/config"
	"fitpulse/internal/fitness"
)

func newTestPersister(t *testing.T, handler http.HandlerFunc) (*Persister, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := config.AppwriteConfig{
		Endpoint:            ts.URL,
		ProjectID:           "proj",
		APIKey:              "key",
		DatabaseID:          "db",
		CollectionID:        "profiles",
		FitnessCollectionID: "snapshots",
	}
	return NewPersister(NewClient(cfg, ts.Client()), cfg), ts
}

func TestPersistProfileInsertsWhenAbsent(t *testing.T) {
	var created map[string]any
	persister, _ := newTestPersister(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Appwrite-Project") != "proj" || r.Header.Get("X-Appwrite-Key") != "key" {
			t.Fatalf("missing appwrite headers on %s %s", r.Method, r.URL.Path)
		}

		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"total":1,"documents":[{"username":"Other","profileURL":"http://x/other.jpg","userID":"7"}]}`))
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Fatalf("decoding create payload: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	profile := auth.UserProfile{DisplayName: "Jane", ProfilePhotoURL: "http://x/p.jpg", UserID: "42"}
	if err := persister.PersistProfile(context.Background(), profile); err != nil {
		t.Fatalf("PersistProfile returned error: %v", err)
	}

	if created == nil {
		t.Fatal("expected a document to be created")
	}
	data, ok := created["data"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected create payload %v", created)
	}
	if data["username"] != "Jane" || data["profileURL"] != "http://x/p.jpg" || data["userID"] != "42" {
		t.Fatalf("unexpected document data %v", data)
	}
	if id, _ := created["documentId"].(string); id == "" {
		t.Fatal("expected a generated document id")
	}
}

func TestPersistProfileSkipsExistingPhotoURL(t *testing.T) {
	persister, _ := newTestPersister(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"total":1,"documents":[{"username":"Jane","profileURL":"http://x/p.jpg","userID":"42"}]}`))
		case http.MethodPost:
			t.Fatal("expected no insert for an existing profile")
		}
	})

	profile := auth.UserProfile{DisplayName: "Jane", ProfilePhotoURL: "http://x/p.jpg", UserID: "42"}
	if err := persister.PersistProfile(context.Background(), profile); err != nil {
		t.Fatalf("PersistProfile returned error: %v", err)
	}
}

func TestPersistProfilePropagatesListFailure(t *testing.T) {
	persister, _ := newTestPersister(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	err := persister.PersistProfile(context.Background(), auth.UserProfile{ProfilePhotoURL: "http://x/p.jpg"})
	if err == nil {
		t.Fatal("expected error when listing fails")
	}
}

func TestPersistMetricsWritesSnapshot(t *testing.T) {
	var path string
	var created map[string]any
	persister, _ := newTestPersister(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
			t.Fatalf("decoding create payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	metrics := []fitness.DailyMetric{{Date: "Fri Mar 07 2025", StepCount: 5000}}
	profile := auth.UserProfile{DisplayName: "Jane", UserID: "42"}
	if err := persister.PersistMetrics(context.Background(), profile, metrics); err != nil {
		t.Fatalf("PersistMetrics returned error: %v", err)
	}

	if path != "/databases/db/collections/snapshots/documents" {
		t.Fatalf("unexpected path %q", path)
	}
	data := created["data"].(map[string]any)
	if data["userID"] != "42" {
		t.Fatalf("unexpected snapshot data %v", data)
	}
}

func TestPersistMetricsNoopWithoutCollection(t *testing.T) {
	cfg := config.AppwriteConfig{Endpoint: "http://unreachable.invalid", DatabaseID: "db", CollectionID: "profiles"}
	persister := NewPersister(NewClient(cfg, nil), cfg)

	if err := persister.PersistMetrics(context.Background(), auth.UserProfile{}, nil); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
