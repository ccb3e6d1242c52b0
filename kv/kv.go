package kv

import (
	"context"
	"errors"
)

// ErrUnavailable is an exported constant or variable used by the session core.
// Implementations wrap backend failures with it so callers can classify them
// with errors.Is.
var ErrUnavailable = errors.New("kv store unavailable")

// Store is the persistent key-value capability: durable string storage keyed
// by string, surviving restarts, scoped per deployment. Absence is reported
// through the boolean, never through an error.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting any prior value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
