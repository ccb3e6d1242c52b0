// Package kv defines the persistent key-value capability injected into the
// donorlink client, plus an in-memory implementation for tests and ephemeral
// shells. Durable implementations live in the redis and sqlite subpackages.
package kv
