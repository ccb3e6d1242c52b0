package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyMethod defines a public type used by donorlink APIs.
//
// VerifyMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerifyMethod string

const (
	// MethodNone disables signature verification; only Peek is available.
	MethodNone VerifyMethod = ""
	// MethodHS256 is an exported constant or variable used by the session core.
	MethodHS256 VerifyMethod = "hs256"
	// MethodEd25519 is an exported constant or variable used by the session core.
	MethodEd25519 VerifyMethod = "ed25519"
)

// ErrTokenInvalid is an exported constant or variable used by the session core.
var ErrTokenInvalid = errors.New("invalid token")

// ErrVerifyDisabled is returned by Verify when the manager was built without
// a verification method.
var ErrVerifyDisabled = errors.New("token verification disabled")

// Config defines a public type used by donorlink APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Method VerifyMethod
	Key    []byte
	Issuer string
	Leeway time.Duration
}

// Claims is the subset of backend token claims the client inspects.
type Claims struct {
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the uid claim, falling back to the registered subject.
func (c *Claims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}

// Manager defines a public type used by donorlink APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or storage checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.Method {
	case MethodNone:
	case MethodHS256:
		if len(cfg.Key) == 0 {
			return nil, errors.New("hs256 requires key")
		}
	case MethodEd25519:
		if len(cfg.Key) != ed25519.PublicKeySize {
			return nil, errors.New("ed25519 requires raw public key")
		}
	default:
		return nil, errors.New("unsupported verify method")
	}

	return &Manager{config: cfg}, nil
}

// Peek decodes token claims without verifying the signature. The result is
// untrusted and must only feed display and audit paths.
//
// Peek may return an error when input validation, dependency calls, or storage checks fail.
// Peek does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Peek(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

// Verify decodes and verifies token claims against the configured key.
//
// Verify may return an error when input validation, dependency calls, or storage checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if m.config.Method == MethodNone {
		return nil, ErrVerifyDisabled
	}

	options := []jwt.ParserOption{
		jwt.WithLeeway(m.config.Leeway),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	switch m.config.Method {
	case MethodHS256:
		options = append(options, jwt.WithValidMethods([]string{"HS256"}))
	case MethodEd25519:
		options = append(options, jwt.WithValidMethods([]string{"EdDSA"}))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (m *Manager) keyFunc(*jwt.Token) (interface{}, error) {
	switch m.config.Method {
	case MethodHS256:
		return m.config.Key, nil
	case MethodEd25519:
		return ed25519.PublicKey(m.config.Key), nil
	default:
		return nil, ErrVerifyDisabled
	}
}
