// Package vault implements the encrypted credential store.
//
// A Vault wraps a single SQLite database holding user accounts, credential
// records, file attachments, and custom categories. Secret fields and
// attachment payloads are encrypted at rest with a per-session key derived
// from the user's master password; see the crypto package for the cipher
// and key-derivation details.
//
// The database handle is restricted to a single connection. Callers are
// expected to serialize access; there is no concurrent-writer model.
package vault

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// Vault is an open handle to the credential database. Create one with Open
// and release it with Close. All store operations hang off this type.
type Vault struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// Open opens (creating if necessary) the vault database at path, ensures the
// schema exists, and applies any pending column migrations. Migration
// failures are logged and swallowed so that an older schema keeps working.
func Open(path string, logger *zap.Logger) (*Vault, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("vault: failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("vault: failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection also keeps
	// PRAGMA state consistent across statements.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("vault: failed to connect to database: %w", err)
	}

	v := &Vault{db: db, logger: logger}

	if err := v.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("vault: failed to create tables: %w", err)
	}

	if err := v.Migrate(); err != nil {
		// Non-fatal: the vault keeps operating on the pre-migration schema.
		logger.Warn("schema migration failed, continuing on existing schema",
			zap.Error(err))
	}

	return v, nil
}

// Close releases the underlying database handle.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.db.Close()
}

func (v *Vault) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS credentials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			username TEXT NOT NULL,
			secret TEXT NOT NULL,
			notes TEXT,
			is_favorite BOOLEAN DEFAULT 0,
			category TEXT,
			website_url TEXT,
			expiry_date TEXT,
			created_at TIMESTAMP,
			modified_at TIMESTAMP,
			last_secret_change TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS custom_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			category_name TEXT NOT NULL,
			color TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id),
			UNIQUE(user_id, category_name)
		)`,
		`CREATE TABLE IF NOT EXISTS attachments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			credential_id INTEGER NOT NULL,
			filename TEXT NOT NULL,
			blob BLOB NOT NULL,
			size INTEGER NOT NULL,
			is_encrypted BOOLEAN DEFAULT 1,
			uploaded_at TIMESTAMP,
			FOREIGN KEY (credential_id) REFERENCES credentials(id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := v.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
