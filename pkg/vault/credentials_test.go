package vault

import (
	"errors"
	"testing"
	"time"
)

func testCredential(userID int64, title, username, secret string) *Credential {
	return &Credential{
		UserID:   userID,
		Title:    title,
		Username: username,
		Secret:   secret,
		Category: "Email",
	}
}

func TestCreateAndGetCredential(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	id, err := v.CreateCredential(s, testCredential(s.UserID, "GMail", "alice@gmail.com", "p@ss1234"))
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	got, err := v.GetCredential(s, id)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if got.Secret != "p@ss1234" {
		t.Errorf("expected decrypted secret, got %q", got.Secret)
	}
	if got.SecretOpaque {
		t.Error("secret should not be opaque with the right key")
	}
	if got.CreatedAt.IsZero() || got.ModifiedAt.IsZero() || got.LastSecretChange.IsZero() {
		t.Error("expected all timestamps stamped on create")
	}

	if _, err := v.GetCredential(s, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSecretEncryptedAtRest(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	id, err := v.CreateCredential(s, testCredential(s.UserID, "Bank", "alice", "topsecret"))
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	var stored string
	if err := v.db.QueryRow(`SELECT secret FROM credentials WHERE id = ?`, id).Scan(&stored); err != nil {
		t.Fatalf("read raw row: %v", err)
	}
	if stored == "topsecret" {
		t.Error("secret stored in plaintext")
	}
}

func TestCreateDuplicate(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	if _, err := v.CreateCredential(s, testCredential(s.UserID, "GitHub", "Alice", "pw1")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	// Case-insensitive collision on (title, username).
	_, err := v.CreateCredential(s, testCredential(s.UserID, "github", "alice", "pw2"))
	if !errors.Is(err, ErrDuplicateCredential) {
		t.Errorf("expected ErrDuplicateCredential, got %v", err)
	}

	// Same pair under a different user is fine.
	if err := v.CreateUser("eve", "pw-eve-123"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	s2, err := v.Login("eve", "pw-eve-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	defer s2.Close()
	if _, err := v.CreateCredential(s2, testCredential(s2.UserID, "GitHub", "Alice", "pw3")); err != nil {
		t.Errorf("expected create to succeed for a different user: %v", err)
	}

	// Empty fields are rejected.
	if _, err := v.CreateCredential(s, testCredential(s.UserID, "", "u", "p")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty title, got %v", err)
	}
	if _, err := v.CreateCredential(s, testCredential(s.UserID, "T", "u", "")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty secret, got %v", err)
	}
}

func TestUpdateDuplicate(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	idA, err := v.CreateCredential(s, testCredential(s.UserID, "Site A", "alice", "pw-a"))
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	if _, err := v.CreateCredential(s, testCredential(s.UserID, "Site B", "alice", "pw-b")); err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	// Renaming A onto B's pair collides.
	a, err := v.GetCredential(s, idA)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	a.Title = "site b"
	if err := v.UpdateCredential(s, a); !errors.Is(err, ErrDuplicateCredential) {
		t.Errorf("expected ErrDuplicateCredential, got %v", err)
	}

	// Updating A to its own current values succeeds.
	a.Title = "Site A"
	if err := v.UpdateCredential(s, a); err != nil {
		t.Errorf("self-update failed: %v", err)
	}

	if err := v.UpdateCredential(s, testCredential(s.UserID, "Ghost", "x", "y")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestLastSecretChangeTracking(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	id, err := v.CreateCredential(s, testCredential(s.UserID, "Mail", "alice", "original"))
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	created, err := v.GetCredential(s, id)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	// Updating metadata only must not bump last_secret_change, even though
	// re-encryption produces different ciphertext bytes.
	created.Notes = "now with notes"
	if err := v.UpdateCredential(s, created); err != nil {
		t.Fatalf("UpdateCredential failed: %v", err)
	}
	after, err := v.GetCredential(s, id)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if !after.LastSecretChange.Equal(created.LastSecretChange) {
		t.Errorf("last_secret_change moved on a metadata-only update: %v -> %v",
			created.LastSecretChange, after.LastSecretChange)
	}
	if !after.ModifiedAt.After(created.ModifiedAt) {
		t.Error("modified_at should advance on every update")
	}

	time.Sleep(10 * time.Millisecond)

	after.Secret = "rotated"
	if err := v.UpdateCredential(s, after); err != nil {
		t.Fatalf("UpdateCredential failed: %v", err)
	}
	final, err := v.GetCredential(s, id)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if !final.LastSecretChange.After(created.LastSecretChange) {
		t.Error("last_secret_change should advance when the secret changes")
	}
	if final.Secret != "rotated" {
		t.Errorf("expected rotated secret, got %q", final.Secret)
	}
}

func TestListOrdering(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	mustCreate := func(title string) int64 {
		t.Helper()
		id, err := v.CreateCredential(s, testCredential(s.UserID, title, "alice", "pw"))
		if err != nil {
			t.Fatalf("CreateCredential(%s) failed: %v", title, err)
		}
		time.Sleep(10 * time.Millisecond)
		return id
	}

	idA := mustCreate("A")
	mustCreate("B")
	mustCreate("C")

	if err := v.ToggleFavorite(idA); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}

	creds, err := v.ListCredentials(s, s.UserID)
	if err != nil {
		t.Fatalf("ListCredentials failed: %v", err)
	}
	var titles []string
	for _, c := range creds {
		titles = append(titles, c.Title)
	}
	want := []string{"A", "C", "B"}
	if len(titles) != len(want) {
		t.Fatalf("expected %d credentials, got %d", len(want), len(titles))
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s (order %v)", i, want[i], titles[i], titles)
		}
	}
}

func TestToggleFavorite(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	id, err := v.CreateCredential(s, testCredential(s.UserID, "Fav", "alice", "pw"))
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	for _, want := range []bool{true, false} {
		if err := v.ToggleFavorite(id); err != nil {
			t.Fatalf("ToggleFavorite failed: %v", err)
		}
		c, err := v.GetCredential(s, id)
		if err != nil {
			t.Fatalf("GetCredential failed: %v", err)
		}
		if c.IsFavorite != want {
			t.Errorf("expected favorite=%v, got %v", want, c.IsFavorite)
		}
	}

	if err := v.ToggleFavorite(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCascadesAttachments(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	id, err := v.CreateCredential(s, testCredential(s.UserID, "WithFiles", "alice", "pw"))
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	if _, err := v.AddAttachment(s, id, "key.pem", []byte("pem data")); err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}

	if err := v.DeleteCredential(id); err != nil {
		t.Fatalf("DeleteCredential failed: %v", err)
	}

	n, err := v.CountAttachments(id)
	if err != nil {
		t.Fatalf("CountAttachments failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected attachments to be cascaded, %d remain", n)
	}

	if err := v.DeleteCredential(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestOpaqueSecretFallback(t *testing.T) {
	v := newTestVault(t)
	s := newTestSession(t, v)

	// Simulate a legacy row stored before encryption existed. Its value is
	// not valid ciphertext, so reading it with a key must surface the raw
	// value tagged opaque instead of failing.
	_, err := v.db.Exec(
		`INSERT INTO credentials (user_id, title, username, secret, category)
		VALUES (?, 'Legacy', 'old', 'plain-old-password', 'Other')`, s.UserID)
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	creds, err := v.ListCredentials(s, s.UserID)
	if err != nil {
		t.Fatalf("ListCredentials failed: %v", err)
	}
	if len(creds) != 1 {
		t.Fatalf("expected 1 credential, got %d", len(creds))
	}
	if !creds[0].SecretOpaque {
		t.Error("expected legacy secret to be tagged opaque")
	}
	if creds[0].Secret != "plain-old-password" {
		t.Errorf("expected raw stored value back, got %q", creds[0].Secret)
	}
}
