package vault

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func addTestCredential(t *testing.T, v *Vault, s *Session) int64 {
	t.Helper()
	id, err := v.CreateCredential(s, testCredential(s.UserID, "Server", "root", "pw-root"))
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	return id
}

func TestAttachmentRoundTrip(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)
	credID := addTestCredential(t, v, s)

	payload := []byte{0x00, 0x01, 0xFF, 0xFE, 0x7F, 0x80}
	attID, err := v.AddAttachment(s, credID, "binary.dat", payload)
	if err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}

	filename, data, err := v.DownloadAttachment(s, attID)
	if err != nil {
		t.Fatalf("DownloadAttachment failed: %v", err)
	}
	if filename != "binary.dat" {
		t.Errorf("expected filename binary.dat, got %q", filename)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("payload mismatch: got %v", data)
	}
}

func TestAttachmentEncryptedAtRest(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)
	credID := addTestCredential(t, v, s)

	payload := []byte("confidential document")
	attID, err := v.AddAttachment(s, credID, "doc.txt", payload)
	if err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}

	var (
		blob      []byte
		size      int64
		encrypted bool
	)
	err = v.db.QueryRow(`SELECT blob, size, is_encrypted FROM attachments WHERE id = ?`, attID).
		Scan(&blob, &size, &encrypted)
	if err != nil {
		t.Fatalf("read raw row: %v", err)
	}
	if !encrypted {
		t.Error("expected attachment marked encrypted")
	}
	if bytes.Contains(blob, payload) {
		t.Error("payload stored in plaintext")
	}
	if size != int64(len(payload)) {
		t.Errorf("expected original size %d recorded, got %d", len(payload), size)
	}
}

func TestAttachmentSizeCap(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)
	credID := addTestCredential(t, v, s)

	// Exactly at the cap is allowed.
	if _, err := v.AddAttachment(s, credID, "max.bin", make([]byte, MaxAttachmentSize)); err != nil {
		t.Errorf("attachment at the cap should succeed: %v", err)
	}

	// One byte over is rejected.
	_, err := v.AddAttachment(s, credID, "over.bin", make([]byte, MaxAttachmentSize+1))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestAttachmentListNewestFirst(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)
	credID := addTestCredential(t, v, s)

	for _, name := range []string{"first.txt", "second.txt", "third.txt"} {
		if _, err := v.AddAttachment(s, credID, name, []byte(name)); err != nil {
			t.Fatalf("AddAttachment(%s) failed: %v", name, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	atts, err := v.ListAttachments(credID)
	if err != nil {
		t.Fatalf("ListAttachments failed: %v", err)
	}
	if len(atts) != 3 {
		t.Fatalf("expected 3 attachments, got %d", len(atts))
	}
	if atts[0].Filename != "third.txt" || atts[2].Filename != "first.txt" {
		t.Errorf("expected newest first, got %s .. %s", atts[0].Filename, atts[2].Filename)
	}
}

func TestAttachmentAccounting(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)
	credID := addTestCredential(t, v, s)

	if _, err := v.AddAttachment(s, credID, "a.bin", make([]byte, 100)); err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}
	attID, err := v.AddAttachment(s, credID, "b.bin", make([]byte, 250))
	if err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}

	if n, err := v.CountAttachments(credID); err != nil || n != 2 {
		t.Errorf("expected count 2, got %d (err %v)", n, err)
	}
	if total, err := v.TotalAttachmentSize(credID); err != nil || total != 350 {
		t.Errorf("expected total size 350, got %d (err %v)", total, err)
	}

	if err := v.DeleteAttachment(attID); err != nil {
		t.Fatalf("DeleteAttachment failed: %v", err)
	}
	if n, _ := v.CountAttachments(credID); n != 1 {
		t.Errorf("expected count 1 after delete, got %d", n)
	}
	if err := v.DeleteAttachment(attID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	if err := v.DeleteAttachments(credID); err != nil {
		t.Fatalf("DeleteAttachments failed: %v", err)
	}
	if n, _ := v.CountAttachments(credID); n != 0 {
		t.Errorf("expected count 0 after DeleteAttachments, got %d", n)
	}
	if total, _ := v.TotalAttachmentSize(credID); total != 0 {
		t.Errorf("expected total size 0 for empty set, got %d", total)
	}
}

func TestAttachmentErrors(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	if _, err := v.AddAttachment(s, 9999, "x.txt", []byte("x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown credential, got %v", err)
	}
	if _, _, err := v.DownloadAttachment(s, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown attachment, got %v", err)
	}

	credID := addTestCredential(t, v, s)
	if _, err := v.AddAttachment(s, credID, "", []byte("x")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty filename, got %v", err)
	}
}
