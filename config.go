package donorlink

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by donorlink APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Auth    AuthConfig
	Token   TokenConfig
	Storage StorageConfig
	Guard   GuardConfig
	Profile ProfileConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
AUTH BACKEND CONFIG
====================================
*/

// AuthConfig defines a public type used by donorlink APIs.
//
// AuthConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthConfig struct {
	BaseURL   string
	LoginPath string
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls optional inspection of the opaque auth token returned
// by the backend. Inspection is advisory: a claims mismatch is audited, never
// surfaced as a login failure.
type TokenConfig struct {
	InspectClaims bool
	VerifyMethod  string // "" (peek only), "hs256", or "ed25519"
	Key           []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the keys used in the injected persistent store. The
// defaults match the wire schema shared with earlier clients and must not be
// changed for stores that already hold records.
type StorageConfig struct {
	SessionKey string
	TokenKey   string
	ProfileKey string
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig defines a public type used by donorlink APIs.
//
// GuardConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GuardConfig struct {
	LoginRoute     string
	ReturnParam    string
	Landing        map[Role]string
	DefaultLanding string
}

/*
====================================
PROFILE BROADCAST CONFIG
====================================
*/

// ProfileConfig defines a public type used by donorlink APIs.
//
// ProfileConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ProfileConfig struct {
	// MaxNotifyDepth bounds re-entrant Set calls made from inside a
	// subscriber callback. At the bound the value still updates and
	// persists; only the notification fan-out is suppressed.
	MaxNotifyDepth int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by donorlink APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by donorlink APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULTS
====================================
*/

// DefaultConfig returns the baseline configuration used by [New].
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return cloneConfig(defaultConfig())
}

func defaultConfig() Config {
	return Config{
		Auth: AuthConfig{
			LoginPath: "/api/auth/login",
			Timeout:   10 * time.Second,
			UserAgent: "donorlink-client",
		},
		Token: TokenConfig{
			InspectClaims: false,
			VerifyMethod:  "",
			Leeway:        30 * time.Second,
		},
		Storage: StorageConfig{
			SessionKey: "user",
			TokenKey:   "authToken",
			ProfileKey: "globalProfilePicture",
		},
		Guard: GuardConfig{
			LoginRoute:  "/login",
			ReturnParam: "redirect",
			Landing: map[Role]string{
				RoleAdmin:        "/admin-dashboard",
				RoleDonor:        "/dashboard",
				RolePatient:      "/patient-dashboard",
				RoleOrganization: "/dashboard",
			},
			DefaultLanding: "/home",
		},
		Profile: ProfileConfig{
			MaxNotifyDepth: 8,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Key = cloneBytes(cfg.Token.Key)
	if cfg.Guard.Landing != nil {
		out.Guard.Landing = make(map[Role]string, len(cfg.Guard.Landing))
		for role, route := range cfg.Guard.Landing {
			out.Guard.Landing[role] = route
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or storage checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Auth
	if c.Auth.Timeout < 0 {
		return errors.New("Auth Timeout must be >= 0")
	}
	if c.Auth.LoginPath == "" || !strings.HasPrefix(c.Auth.LoginPath, "/") {
		return errors.New("Auth LoginPath must start with /")
	}

	// Token
	switch c.Token.VerifyMethod {
	case "", "hs256", "ed25519":
	default:
		return errors.New("unsupported token verify method")
	}
	if c.Token.VerifyMethod != "" && len(c.Token.Key) == 0 {
		return errors.New("token verification requires Key")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway out of range")
	}

	// Storage
	if c.Storage.SessionKey == "" || c.Storage.TokenKey == "" || c.Storage.ProfileKey == "" {
		return errors.New("Storage keys must be non-empty")
	}
	if c.Storage.SessionKey == c.Storage.ProfileKey || c.Storage.SessionKey == c.Storage.TokenKey || c.Storage.TokenKey == c.Storage.ProfileKey {
		return errors.New("Storage keys must be distinct")
	}

	// Guard
	if c.Guard.LoginRoute == "" || !strings.HasPrefix(c.Guard.LoginRoute, "/") {
		return errors.New("Guard LoginRoute must start with /")
	}
	if c.Guard.ReturnParam == "" {
		return errors.New("Guard ReturnParam must be non-empty")
	}
	if c.Guard.DefaultLanding == "" || !strings.HasPrefix(c.Guard.DefaultLanding, "/") {
		return errors.New("Guard DefaultLanding must start with /")
	}
	for role, route := range c.Guard.Landing {
		if !role.Valid() {
			return errors.New("Guard Landing contains unknown role")
		}
		if route == "" || !strings.HasPrefix(route, "/") {
			return errors.New("Guard Landing routes must start with /")
		}
	}

	// Profile
	if c.Profile.MaxNotifyDepth <= 0 {
		return errors.New("Profile MaxNotifyDepth must be > 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
