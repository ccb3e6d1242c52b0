package donorlink

import (
	"errors"
	"testing"
)

func TestParseRoleCanonical(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"admin", RoleAdmin},
		{"donor", RoleDonor},
		{"patient", RolePatient},
		{"organization", RoleOrganization},
		{"DONOR", RoleDonor},
		{"Patient", RolePatient},
		{"  organization  ", RoleOrganization},
	}

	for _, tc := range tests {
		got, err := ParseRole(tc.raw)
		if err != nil {
			t.Fatalf("ParseRole(%q) failed: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestParseRoleRejectsRetiredAndUnknown(t *testing.T) {
	for _, raw := range []string{"user", "guest", "superadmin", "", "  "} {
		if _, err := ParseRole(raw); !errors.Is(err, ErrRoleUnknown) {
			t.Fatalf("ParseRole(%q): expected ErrRoleUnknown, got %v", raw, err)
		}
	}
}

func TestSessionValidateRequiresAllFields(t *testing.T) {
	valid := Session{ID: "1", DisplayName: "A", Email: "a@b.c", Role: RoleDonor}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Session)
	}{
		{"empty id", func(s *Session) { s.ID = "" }},
		{"blank id", func(s *Session) { s.ID = "   " }},
		{"empty email", func(s *Session) { s.Email = "" }},
		{"empty display name", func(s *Session) { s.DisplayName = "" }},
		{"invalid role", func(s *Session) { s.Role = "guest" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sess := valid
			tc.mutate(&sess)
			if err := sess.validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}
