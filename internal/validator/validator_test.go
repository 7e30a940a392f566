package validator

import "testing"

func TestValidateName(t *testing.T) {
	if err := ValidateName("Jo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateName("J"); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, email := range []string{"", "alice", "alice@", "@example.com", "a b@example.com"} {
		if err := ValidateEmail(email); err != ErrInvalidEmail {
			t.Fatalf("expected ErrInvalidEmail for %q, got %v", email, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePassword("short"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestValidateRole(t *testing.T) {
	for _, role := range []string{"customer", "banker"} {
		if err := ValidateRole(role); err != nil {
			t.Fatalf("unexpected error for %s: %v", role, err)
		}
	}
	for _, role := range []string{"", "admin", "Customer"} {
		if err := ValidateRole(role); err != ErrInvalidRole {
			t.Fatalf("expected ErrInvalidRole for %q, got %v", role, err)
		}
	}
}
