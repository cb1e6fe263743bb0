package vault

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/crypto"
)

// Credential is a single stored login record. Secret holds the decrypted
// value after a read; when decryption was not possible (legacy plaintext
// row, wrong or absent key) the raw stored value is returned instead and
// SecretOpaque is set, so callers can render an explicit undecryptable
// state rather than garbage.
type Credential struct {
	ID               int64
	UserID           int64
	Title            string
	Username         string
	Secret           string
	SecretOpaque     bool
	Notes            string
	IsFavorite       bool
	Category         string
	WebsiteURL       string
	ExpiryDate       string // ISO date (2006-01-02), empty when not set
	CreatedAt        time.Time
	ModifiedAt       time.Time
	LastSecretChange time.Time
}

const credentialColumns = `id, user_id, title, username, secret, notes, is_favorite,
	category, website_url, expiry_date, created_at, modified_at, last_secret_change`

// CreateCredential encrypts the secret with the session key and inserts a
// new record. The case-insensitive pair (title, username) must be unique
// for the user; collisions return ErrDuplicateCredential. All three
// timestamps are stamped with the same instant.
func (v *Vault) CreateCredential(s *Session, c *Credential) (int64, error) {
	if c.Title == "" || c.Username == "" || c.Secret == "" {
		return 0, fmt.Errorf("%w: title, username and secret must not be empty", ErrInvalidInput)
	}

	dup, err := v.credentialExists(c.UserID, c.Title, c.Username, 0)
	if err != nil {
		return 0, err
	}
	if dup {
		return 0, ErrDuplicateCredential
	}

	stored, err := crypto.Encrypt(c.Secret, s.encryptionKey())
	if err != nil {
		return 0, fmt.Errorf("vault: failed to encrypt secret: %w", err)
	}

	category := c.Category
	if category == "" {
		category = "Other"
	}

	now := time.Now().UTC()
	res, err := v.db.Exec(
		`INSERT INTO credentials (user_id, title, username, secret, notes, is_favorite,
			category, website_url, expiry_date, created_at, modified_at, last_secret_change)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Title, c.Username, stored, c.Notes, c.IsFavorite,
		category, c.WebsiteURL, c.ExpiryDate, now, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("vault: failed to insert credential: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("vault: failed to read inserted id: %w", err)
	}
	return id, nil
}

// UpdateCredential rewrites a record in place. The duplicate constraint is
// re-checked excluding the record itself. last_secret_change is bumped only
// when the decrypted secret actually differs from the stored one; comparing
// ciphertexts would be meaningless since every encryption draws a fresh IV.
func (v *Vault) UpdateCredential(s *Session, c *Credential) error {
	if c.Title == "" || c.Username == "" || c.Secret == "" {
		return fmt.Errorf("%w: title, username and secret must not be empty", ErrInvalidInput)
	}

	var (
		userID    int64
		oldStored string
		oldChange sql.NullTime
	)
	err := v.db.QueryRow(
		`SELECT user_id, secret, last_secret_change FROM credentials WHERE id = ?`, c.ID,
	).Scan(&userID, &oldStored, &oldChange)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("vault: failed to read credential: %w", err)
	}

	dup, err := v.credentialExists(userID, c.Title, c.Username, c.ID)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateCredential
	}

	// If the old secret cannot be decrypted there is nothing reliable to
	// compare against, so treat the secret as changed.
	secretChanged := true
	if oldPlain, err := crypto.Decrypt(oldStored, s.encryptionKey()); err == nil {
		secretChanged = oldPlain != c.Secret
	}

	stored, err := crypto.Encrypt(c.Secret, s.encryptionKey())
	if err != nil {
		return fmt.Errorf("vault: failed to encrypt secret: %w", err)
	}

	now := time.Now().UTC()
	lastChange := now
	if !secretChanged && oldChange.Valid {
		lastChange = oldChange.Time
	}

	_, err = v.db.Exec(
		`UPDATE credentials SET title = ?, username = ?, secret = ?, notes = ?,
			is_favorite = ?, category = ?, website_url = ?, expiry_date = ?,
			modified_at = ?, last_secret_change = ?
		WHERE id = ?`,
		c.Title, c.Username, stored, c.Notes,
		c.IsFavorite, c.Category, c.WebsiteURL, c.ExpiryDate,
		now, lastChange, c.ID,
	)
	if err != nil {
		return fmt.Errorf("vault: failed to update credential: %w", err)
	}
	return nil
}

// DeleteCredential removes a record and its attachments in one transaction.
// The attachment delete is explicit rather than relying on the foreign-key
// cascade, so databases opened without foreign_keys enabled behave the same.
func (v *Vault) DeleteCredential(id int64) error {
	tx, err := v.db.Begin()
	if err != nil {
		return fmt.Errorf("vault: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM attachments WHERE credential_id = ?`, id); err != nil {
		return fmt.Errorf("vault: failed to delete attachments: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM credentials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("vault: failed to delete credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("vault: failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// GetCredential returns a single record with its secret decrypted through
// the session.
func (v *Vault) GetCredential(s *Session, id int64) (*Credential, error) {
	row := v.db.QueryRow(
		`SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id)
	c, err := scanCredential(row.Scan, s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("vault: failed to read credential: %w", err)
	}
	return c, nil
}

// ListCredentials returns all of a user's records, favorites first, then
// most recently modified.
func (v *Vault) ListCredentials(s *Session, userID int64) ([]*Credential, error) {
	rows, err := v.db.Query(
		`SELECT `+credentialColumns+` FROM credentials
		WHERE user_id = ?
		ORDER BY is_favorite DESC, modified_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*Credential
	for rows.Next() {
		c, err := scanCredential(rows.Scan, s)
		if err != nil {
			return nil, fmt.Errorf("vault: failed to scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// ToggleFavorite flips the favorite flag on a record.
func (v *Vault) ToggleFavorite(id int64) error {
	res, err := v.db.Exec(`UPDATE credentials SET is_favorite = NOT is_favorite WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("vault: failed to toggle favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("vault: failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (v *Vault) credentialExists(userID int64, title, username string, excludeID int64) (bool, error) {
	var n int
	err := v.db.QueryRow(
		`SELECT COUNT(*) FROM credentials
		WHERE user_id = ? AND LOWER(title) = LOWER(?) AND LOWER(username) = LOWER(?) AND id != ?`,
		userID, title, username, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("vault: failed to check for duplicates: %w", err)
	}
	return n > 0, nil
}

func scanCredential(scan func(dest ...any) error, s *Session) (*Credential, error) {
	var (
		c          Credential
		notes      sql.NullString
		category   sql.NullString
		websiteURL sql.NullString
		expiryDate sql.NullString
		createdAt  sql.NullTime
		modifiedAt sql.NullTime
		lastChange sql.NullTime
	)
	err := scan(&c.ID, &c.UserID, &c.Title, &c.Username, &c.Secret, &notes, &c.IsFavorite,
		&category, &websiteURL, &expiryDate, &createdAt, &modifiedAt, &lastChange)
	if err != nil {
		return nil, err
	}

	c.Notes = notes.String
	c.Category = category.String
	c.WebsiteURL = websiteURL.String
	c.ExpiryDate = expiryDate.String
	c.CreatedAt = createdAt.Time
	c.ModifiedAt = modifiedAt.Time
	c.LastSecretChange = lastChange.Time

	// Anti-data-loss fallback: an undecryptable secret is surfaced as-is
	// and tagged opaque instead of failing the read.
	if plain, err := crypto.Decrypt(c.Secret, s.encryptionKey()); err == nil {
		c.Secret = plain
	} else {
		c.SecretOpaque = true
	}
	return &c, nil
}
