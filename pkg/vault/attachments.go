package vault

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/crypto"
)

// MaxAttachmentSize caps attachment plaintext at 10 MiB.
const MaxAttachmentSize = 10 * 1024 * 1024

// Attachment describes a stored file without its payload. Size is the
// original plaintext size, not the size of the stored ciphertext.
type Attachment struct {
	ID           int64
	CredentialID int64
	Filename     string
	Size         int64
	Encrypted    bool
	UploadedAt   time.Time
}

// AddAttachment stores a file under a credential. With an active session
// key the payload is base64-encoded and then encrypted, so the stored blob
// is textual ciphertext; without one the raw bytes are stored and the row
// is marked unencrypted. Payloads over MaxAttachmentSize are rejected with
// ErrFileTooLarge.
func (v *Vault) AddAttachment(s *Session, credentialID int64, filename string, data []byte) (int64, error) {
	if filename == "" {
		return 0, fmt.Errorf("%w: filename must not be empty", ErrInvalidInput)
	}
	if len(data) > MaxAttachmentSize {
		return 0, ErrFileTooLarge
	}

	var n int
	if err := v.db.QueryRow(`SELECT COUNT(*) FROM credentials WHERE id = ?`, credentialID).Scan(&n); err != nil {
		return 0, fmt.Errorf("vault: failed to check credential: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}

	blob := data
	encrypted := false
	if key := s.encryptionKey(); key != nil {
		ciphertext, err := crypto.Encrypt(base64.StdEncoding.EncodeToString(data), key)
		if err != nil {
			return 0, fmt.Errorf("vault: failed to encrypt attachment: %w", err)
		}
		blob = []byte(ciphertext)
		encrypted = true
	}

	res, err := v.db.Exec(
		`INSERT INTO attachments (credential_id, filename, blob, size, is_encrypted, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		credentialID, filename, blob, len(data), encrypted, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("vault: failed to insert attachment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("vault: failed to read inserted id: %w", err)
	}
	return id, nil
}

// ListAttachments returns a credential's attachment metadata, newest first.
func (v *Vault) ListAttachments(credentialID int64) ([]*Attachment, error) {
	rows, err := v.db.Query(
		`SELECT id, credential_id, filename, size, is_encrypted, uploaded_at
		FROM attachments WHERE credential_id = ? ORDER BY uploaded_at DESC`, credentialID)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to list attachments: %w", err)
	}
	defer rows.Close()

	var atts []*Attachment
	for rows.Next() {
		var (
			a          Attachment
			uploadedAt sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.CredentialID, &a.Filename, &a.Size, &a.Encrypted, &uploadedAt); err != nil {
			return nil, fmt.Errorf("vault: failed to scan attachment: %w", err)
		}
		a.UploadedAt = uploadedAt.Time
		atts = append(atts, &a)
	}
	return atts, rows.Err()
}

// DownloadAttachment returns an attachment's filename and plaintext
// payload, reversing the encrypt-then-store path for encrypted rows.
func (v *Vault) DownloadAttachment(s *Session, id int64) (string, []byte, error) {
	var (
		filename  string
		blob      []byte
		encrypted bool
	)
	err := v.db.QueryRow(
		`SELECT filename, blob, is_encrypted FROM attachments WHERE id = ?`, id,
	).Scan(&filename, &blob, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("vault: failed to read attachment: %w", err)
	}

	if !encrypted {
		return filename, blob, nil
	}

	encoded, err := crypto.Decrypt(string(blob), s.encryptionKey())
	if err != nil {
		return "", nil, fmt.Errorf("vault: failed to decrypt attachment: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("vault: attachment payload is corrupted: %w", err)
	}
	return filename, data, nil
}

// DeleteAttachment removes a single attachment.
func (v *Vault) DeleteAttachment(id int64) error {
	res, err := v.db.Exec(`DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("vault: failed to delete attachment: %w", err)
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

// DeleteAttachments removes every attachment under a credential.
func (v *Vault) DeleteAttachments(credentialID int64) error {
	if _, err := v.db.Exec(`DELETE FROM attachments WHERE credential_id = ?`, credentialID); err != nil {
		return fmt.Errorf("vault: failed to delete attachments: %w", err)
	}
	return nil
}

// CountAttachments returns how many attachments a credential has.
func (v *Vault) CountAttachments(credentialID int64) (int, error) {
	var n int
	err := v.db.QueryRow(`SELECT COUNT(*) FROM attachments WHERE credential_id = ?`, credentialID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("vault: failed to count attachments: %w", err)
	}
	return n, nil
}

// TotalAttachmentSize returns the combined original size of a credential's
// attachments in bytes.
func (v *Vault) TotalAttachmentSize(credentialID int64) (int64, error) {
	var total sql.NullInt64
	err := v.db.QueryRow(`SELECT SUM(size) FROM attachments WHERE credential_id = ?`, credentialID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("vault: failed to sum attachment sizes: %w", err)
	}
	return total.Int64, nil
}
