package library

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Admin credential store. Circulation itself never looks at these; the CLI
// uses them to gate destructive commands, the way the original deployment
// gated its endpoints.

// EnsureAdmin creates the admin account with the given password if it does not
// exist yet. An existing account is left untouched.
func (d *Database) EnsureAdmin(username, password string) error {
	var exists bool
	if err := d.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM admins WHERE username=?)`, username).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := d.db.Exec(`INSERT INTO admins(username,password_hash) VALUES(?,?)`, username, string(hash)); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// AuthenticateAdmin verifies the credentials. Unknown usernames and wrong
// passwords both come back as ErrInvalidCredentials.
func (d *Database) AuthenticateAdmin(username, password string) error {
	var hash string
	err := d.db.QueryRow(`SELECT password_hash FROM admins WHERE username=?`, username).Scan(&hash)
	if err == sql.ErrNoRows {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// SetAdminPassword replaces the admin's password.
func (d *Database) SetAdminPassword(username, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := d.db.Exec(`UPDATE admins SET password_hash=? WHERE username=?`, string(hash), username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidCredentials
	}
	return nil
}
