// Command donorlink-smoke exercises the full client lifecycle against a real
// or stubbed donation-platform backend: initialize, login, profile broadcast,
// restart-restore, logout.
//
// Configuration comes from DONORLINK_* environment variables (see
// donorlink.ConfigFromEnv). When DONORLINK_AUTH_BASE_URL is unset a local
// stub backend is started, so the command runs with no external services.
//
// Run:
//
//	go run ./cmd/donorlink-smoke -db /tmp/donorlink-smoke.db
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	donorlink "github.com/vitalsync/donorlink"
	kvsqlite "github.com/vitalsync/donorlink/kv/sqlite"
	promexport "github.com/vitalsync/donorlink/metrics/export/prometheus"
)

func main() {
	var (
		dbPath   = flag.String("db", "donorlink-smoke.db", "sqlite database path for the persistent store")
		email    = flag.String("email", "alice@example.com", "login email")
		password = flag.String("password", "correct-horse", "login password")
		verbose  = flag.Bool("verbose", false, "print the audit stream to stdout")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := donorlink.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	var cleanup func()
	if cfg.Auth.BaseURL == "" {
		backend := newStubBackend(*email, *password)
		cfg.Auth.BaseURL = backend.URL
		cleanup = backend.Close
		fmt.Printf("using stub backend at %s\n", backend.URL)
	} else {
		cleanup = func() {}
		fmt.Printf("using backend at %s\n", cfg.Auth.BaseURL)
	}
	defer cleanup()

	store, err := kvsqlite.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlite open: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	builder := donorlink.New().
		WithConfig(cfg).
		WithKV(store).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true)
	if *verbose {
		builder = builder.WithAuditSink(donorlink.NewJSONWriterSink(os.Stdout))
	}

	client, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	// Phase 1: restore whatever a previous run persisted.
	start := time.Now()
	if err := client.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "initialize: %v\n", err)
		os.Exit(1)
	}
	if sess, ok := client.CurrentSession(); ok {
		fmt.Printf("restored session for %s (%s) in %s\n", sess.DisplayName, sess.Role, time.Since(start).Round(time.Microsecond))
	} else {
		fmt.Println("no persisted session to restore")
	}

	// Phase 2: fresh login.
	sess, err := client.Login(ctx, *email, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("logged in as %s (id=%s role=%s)\n", sess.DisplayName, sess.ID, sess.Role)

	// Phase 3: profile broadcast round trip.
	notified := 0
	unsubscribe := client.Profile().Subscribe(func(string, bool) { notified++ })
	client.Profile().Set(ctx, "https://cdn.example.com/avatars/"+sess.ID+".png")
	unsubscribe()
	value, present := client.Profile().Get(ctx)
	fmt.Printf("profile image present=%v value=%s notifications=%d\n", present, value, notified)

	// Phase 4: logout and confirm the store is clean.
	if err := client.Logout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logout: %v\n", err)
		os.Exit(1)
	}
	if _, ok := client.CurrentSession(); ok {
		fmt.Fprintln(os.Stderr, "session survived logout")
		os.Exit(1)
	}
	fmt.Println("logged out, session cleared")

	fmt.Println("---- metrics ----")
	fmt.Print(promexport.NewExporter(client).Render())
}

func newStubBackend(email, password string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			http.NotFound(w, r)
			return
		}

		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if body.Email != email || body.Password != password {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":       "smoke-token",
			"userId":      "user-1",
			"email":       body.Email,
			"role":        "donor",
			"displayName": "Alice",
		})
	}))
}
