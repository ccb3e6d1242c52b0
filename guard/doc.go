// Package guard gates access to protected views based on session presence
// and role. It is an explicit state machine evaluated outside any render
// path; the redirect side effect is edge-triggered, firing exactly once per
// transition into a non-authorized terminal state.
package guard
