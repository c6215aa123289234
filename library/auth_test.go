package library

import (
	"errors"
	"testing"
)

func TestAdminAuthentication(t *testing.T) {
	db := tempDB(t)

	if err := db.EnsureAdmin("admin", "secret"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	// A second call must not reset the password.
	if err := db.EnsureAdmin("admin", "other"); err != nil {
		t.Fatalf("ensure admin again: %v", err)
	}

	if err := db.AuthenticateAdmin("admin", "secret"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := db.AuthenticateAdmin("admin", "other"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", err)
	}
	if err := db.AuthenticateAdmin("nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: want ErrInvalidCredentials, got %v", err)
	}
}

func TestSetAdminPassword(t *testing.T) {
	db := tempDB(t)

	if err := db.EnsureAdmin("admin", "old"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := db.SetAdminPassword("admin", "new"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := db.AuthenticateAdmin("admin", "old"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still valid")
	}
	if err := db.AuthenticateAdmin("admin", "new"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	if err := db.SetAdminPassword("nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: want ErrInvalidCredentials, got %v", err)
	}
}
