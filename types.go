package donorlink

import (
	"fmt"
	"strings"
)

// Role is the enumerated category deciding which protected views a session
// may access.
//
// The canonical vocabulary is admin, donor, patient, organization. Two legacy
// vocabularies existed in earlier clients: an uppercase spelling of the
// canonical set, which normalizes on parse, and a reduced {admin, user,
// guest} set, which is retired — records carrying it fail to parse and are
// discarded like any other malformed record.
type Role string

const (
	// RoleAdmin is an exported constant or variable used by the session core.
	RoleAdmin Role = "admin"
	// RoleDonor is an exported constant or variable used by the session core.
	RoleDonor Role = "donor"
	// RolePatient is an exported constant or variable used by the session core.
	RolePatient Role = "patient"
	// RoleOrganization is an exported constant or variable used by the session core.
	RoleOrganization Role = "organization"
)

// ParseRole normalizes a raw role value into the canonical vocabulary.
//
// ParseRole may return an error when input validation, dependency calls, or storage checks fail.
// ParseRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleDonor:
		return RoleDonor, nil
	case RolePatient:
		return RolePatient, nil
	case RoleOrganization:
		return RoleOrganization, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrRoleUnknown, raw)
	}
}

// Valid reports whether r is a member of the canonical vocabulary.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDonor, RolePatient, RoleOrganization:
		return true
	}
	return false
}

// Session is the canonical authenticated-identity snapshot held by the
// client. A session is either fully present or absent; consumers never
// observe a partially populated one. Sessions are replaced wholesale on
// re-login and never mutated field by field.
type Session struct {
	ID          string
	DisplayName string
	Email       string
	Role        Role
}

// validate enforces the fully-present invariant on a decoded session.
func (s Session) validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: empty session id", ErrValidation)
	}
	if strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("%w: empty session email", ErrValidation)
	}
	if strings.TrimSpace(s.DisplayName) == "" {
		return fmt.Errorf("%w: empty session display name", ErrValidation)
	}
	if !s.Role.Valid() {
		return fmt.Errorf("%w: role %q", ErrValidation, string(s.Role))
	}
	return nil
}
