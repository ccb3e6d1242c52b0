// Package token inspects the auth token issued by the remote backend. The
// token is opaque to the session core; inspection is advisory and feeds
// audit events, never access decisions.
package token
