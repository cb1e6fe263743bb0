package vault

import (
	"github.com/Abin-Shaji-Thomas/SecureVault/pkg/crypto"
)

// Session holds the per-login encryption state: the authenticated user id
// and the key derived from their master password. It is never persisted.
// The caller owns the session and must Close it on logout so the key is
// wiped; store operations called with a closed or nil session fall back to
// plaintext pass-through, matching the "no encryption configured" state.
type Session struct {
	UserID int64
	key    []byte
}

// Login authenticates the user and derives the session key from the master
// password and the user's stored salt. The password hash used for
// authentication is never reused as the encryption key.
func (v *Vault) Login(username, password string) (*Session, error) {
	userID, err := v.Authenticate(username, password)
	if err != nil {
		return nil, err
	}

	salt, err := v.UserSalt(username)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}

	return &Session{UserID: userID, key: key}, nil
}

// Close wipes the session key. Decryption must not be attempted afterwards;
// reads through a closed session return stored values unchanged.
func (s *Session) Close() {
	if s == nil {
		return
	}
	crypto.SecureWipe(s.key)
	s.key = nil
}

// encryptionKey returns the session key, or nil for a nil or closed
// session. A nil key makes the field cipher pass values through unchanged.
func (s *Session) encryptionKey() []byte {
	if s == nil {
		return nil
	}
	return s.key
}
