package vault

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/crypto"
)

// CreateUser registers a new account. A fresh random 16-byte salt is
// generated for the user; it salts both the login hash and, later, the
// session key derivation. Returns ErrUsernameTaken when the username is
// already registered (case-sensitive).
func (v *Vault) CreateUser(username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password must not be empty", ErrInvalidInput)
	}

	exists, err := v.UserExists(username)
	if err != nil {
		return err
	}
	if exists {
		return ErrUsernameTaken
	}

	salt, err := crypto.GenerateSalt(crypto.SaltLength)
	if err != nil {
		return fmt.Errorf("vault: failed to generate salt: %w", err)
	}
	hash := crypto.HashPassword(password, salt)

	_, err = v.db.Exec(
		`INSERT INTO users (username, password_hash, salt) VALUES (?, ?, ?)`,
		username, hash, base64.StdEncoding.EncodeToString(salt),
	)
	if err != nil {
		return fmt.Errorf("vault: failed to create user: %w", err)
	}
	return nil
}

// Authenticate verifies a username and password and returns the user id.
// Verification uses the salted SHA-256 login hash, which is separate from
// the encryption key. There is no lockout; a failed attempt simply returns
// ErrInvalidCredentials.
func (v *Vault) Authenticate(username, password string) (int64, error) {
	var (
		id      int64
		hash    string
		saltB64 string
	)
	err := v.db.QueryRow(
		`SELECT id, password_hash, salt FROM users WHERE username = ?`,
		username,
	).Scan(&id, &hash, &saltB64)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("vault: failed to look up user: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return 0, fmt.Errorf("vault: stored salt is corrupted: %w", err)
	}

	if !crypto.VerifyPassword(password, salt, hash) {
		return 0, ErrInvalidCredentials
	}
	return id, nil
}

// UserExists reports whether a username is registered.
func (v *Vault) UserExists(username string) (bool, error) {
	var n int
	err := v.db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("vault: failed to check username: %w", err)
	}
	return n > 0, nil
}

// UserSalt returns the key-derivation salt for a user, or ErrNotFound.
func (v *Vault) UserSalt(username string) ([]byte, error) {
	var saltB64 string
	err := v.db.QueryRow(`SELECT salt FROM users WHERE username = ?`, username).Scan(&saltB64)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("vault: failed to read salt: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return nil, fmt.Errorf("vault: stored salt is corrupted: %w", err)
	}
	return salt, nil
}
