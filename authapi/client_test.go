package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, UserAgent: "test-agent"}, server.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}, nil); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := NewClient(Config{BaseURL: "http://x", LoginPath: "login"}, nil); err == nil {
		t.Fatal("expected error for path without leading slash")
	}
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatal("expected request id header")
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Fatalf("unexpected user agent %q", ua)
		}

		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("request body: %v", err)
		}
		if body.Email != "alice@example.com" || body.Password != "pw" {
			t.Fatalf("unexpected credentials %+v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":  "tok",
			"userId": "1",
			"email":  body.Email,
			"role":   "donor",
		})
	})

	result, err := client.Login(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.UserID != "1" || result.Token != "tok" || result.Role != "donor" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.DisplayName != "" {
		t.Fatalf("expected empty optional display name, got %q", result.DisplayName)
	}
}

func TestLoginRejectionCarriesBackendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	})

	_, err := client.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("expected backend message in error, got %q", err.Error())
	}
}

func TestLoginRejectionFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "error field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "account disabled"})
			},
			want: "account disabled",
		},
		{
			name: "plain text body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("upstream down"))
			},
			want: "upstream down",
		},
		{
			name: "empty body uses status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			want: "503",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)
			_, err := client.Login(context.Background(), "a@b.c", "pw")
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("expected ErrRejected, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestLoginUnreachableOnConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(Config{BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Login(context.Background(), "a@b.c", "pw")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestLoginUnreachableOnUndecodableBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.Login(context.Background(), "a@b.c", "pw")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if errors.Is(err, ErrRejected) {
		t.Fatal("undecodable success must not look like a rejection")
	}
}

func TestLoginHonorsContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Login(ctx, "a@b.c", "pw"); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable on cancelled context, got %v", err)
	}
}
