// Package authapi is the HTTP client for the remote authentication backend.
// It classifies every failure as either a credential rejection or a
// transport fault so callers can present different messaging for the two.
package authapi
