// Package sqlite provides a file-backed implementation of the kv.Store
// capability for single-host shells that need durability across restarts
// without an external service.
package sqlite
