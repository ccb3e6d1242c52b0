package donorlink

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vitalsync/donorlink/authapi"
	"github.com/vitalsync/donorlink/kv"
	"github.com/vitalsync/donorlink/token"
)

// Builder defines a public type used by donorlink APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	kv     kv.Store

	httpClient *http.Client
	authClient *authapi.Client
	auditSink  AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithKV injects the persistent key-value capability. Required.
func (b *Builder) WithKV(store kv.Store) *Builder {
	b.kv = store
	return b
}

// WithHTTPClient overrides the HTTP client used to reach the auth backend.
// Timeout policy belongs to this client, not to the session core.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithAuthClient injects a prebuilt backend client, bypassing Auth.BaseURL.
func (b *Builder) WithAuthClient(client *authapi.Client) *Builder {
	b.authClient = client
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or storage checks fail.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)

	if b.kv == nil {
		return nil, ErrKVRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	authClient := b.authClient
	if authClient == nil {
		if cfg.Auth.BaseURL == "" {
			return nil, ErrAuthBackendRequired
		}
		httpClient := b.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Auth.Timeout}
		}
		var err error
		authClient, err = authapi.NewClient(authapi.Config{
			BaseURL:   cfg.Auth.BaseURL,
			LoginPath: cfg.Auth.LoginPath,
			UserAgent: cfg.Auth.UserAgent,
		}, httpClient)
		if err != nil {
			return nil, err
		}
	}

	var tokens *token.Manager
	if cfg.Token.InspectClaims {
		var err error
		tokens, err = token.NewManager(token.Config{
			Method: token.VerifyMethod(cfg.Token.VerifyMethod),
			Key:    cfg.Token.Key,
			Issuer: cfg.Token.Issuer,
			Leeway: cfg.Token.Leeway,
		})
		if err != nil {
			return nil, err
		}
	}

	client := &Client{
		config:  cfg,
		id:      uuid.NewString(),
		kv:      b.kv,
		auth:    authClient,
		tokens:  tokens,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}
	client.profile = newProfileStore(cfg, b.kv, client)

	b.built = true

	return client, nil
}
