// Package redis provides a Redis-backed implementation of the kv.Store
// capability, suitable for shells that share client state across hosts.
package redis
