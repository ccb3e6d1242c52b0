// Package middleware adapts the guard state machine to net/http shells:
// protected handlers render only for authorized sessions, everything else
// becomes an HTTP redirect.
package middleware
