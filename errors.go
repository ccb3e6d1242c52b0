package donorlink

import "errors"

var (
	// ErrAuthentication is returned when the remote backend rejects the
	// presented credentials. The prior session, if any, is untouched.
	ErrAuthentication = errors.New("authentication rejected")
	// ErrTransport is returned when the remote backend is unreachable or
	// times out. Distinct from ErrAuthentication so callers can present
	// retry messaging instead of credential messaging.
	ErrTransport = errors.New("authentication backend unreachable")
	// ErrValidation is returned when a persisted record or a backend
	// response fails to decode into a valid value.
	ErrValidation = errors.New("invalid record")
	// ErrPersistence wraps key-value store failures. Operations that hit it
	// still succeed from the caller's perspective; it surfaces only through
	// audit events and metrics.
	ErrPersistence = errors.New("persistent store failure")
	// ErrRoleUnknown is returned when a role value is outside the canonical
	// vocabulary and is not a recognized legacy spelling.
	ErrRoleUnknown = errors.New("unknown role")
	// ErrClientNotReady is returned when an operation requires a built,
	// initialized client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrBuilderUsed is returned when Build is called twice on one builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrKVRequired is returned by Build when no key-value store was supplied.
	ErrKVRequired = errors.New("kv store required")
	// ErrAuthBackendRequired is returned by Build when neither an auth client
	// nor a backend base URL was supplied.
	ErrAuthBackendRequired = errors.New("auth backend required")
)
