package donorlink

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vitalsync/donorlink/kv"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

// failingStore wraps an inner store and forces errors on selected operations.
type failingStore struct {
	inner      kv.Store
	failGet    bool
	failSet    bool
	failDelete bool
}

var errStoreDown = errors.New("store down")

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errStoreDown
	}
	return f.inner.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errStoreDown
	}
	return f.inner.Set(ctx, key, value)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errStoreDown
	}
	return f.inner.Delete(ctx, key)
}

func loginResponse(userID, email, role, displayName string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":       "test-token",
			"userId":      userID,
			"email":       email,
			"role":        role,
			"displayName": displayName,
		})
	}
}

func rejectionResponse(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	}
}

func newTestBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, store kv.Store, backendURL string) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Auth.BaseURL = backendURL

	client, err := New().
		WithConfig(cfg).
		WithKV(store).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	return client
}

func mustInitialize(t *testing.T, client *Client) {
	t.Helper()

	if err := client.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
}
