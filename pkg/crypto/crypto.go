// Package crypto provides cryptographic primitives for SecureVault.
//
// This package implements AES-256-CBC field encryption and PBKDF2-HMAC-SHA256
// key derivation, plus the salted-SHA256 password hashing used for account
// authentication (which is deliberately independent from vault encryption).
//
// # Security Features
//
//   - AES-256-CBC field encryption with a fresh random IV per call
//   - PBKDF2-HMAC-SHA256 key derivation (100,000 iterations)
//   - Cryptographically secure random salt/IV generation
//   - Secure memory wiping for session keys
//
// # Known Limitation
//
// CBC mode carries no authentication tag. Decrypt detects structural
// corruption (truncated payload, bad padding) but cannot detect all
// tampering: a corrupted ciphertext may decrypt to garbage rather than
// fail. Callers cannot assume a successful Decrypt proves integrity.
//
// # Example Usage
//
//	salt, _ := crypto.GenerateSalt(crypto.SaltLength)
//	key, _ := crypto.DeriveKey("master password", salt)
//
//	ciphertext, err := crypto.Encrypt("hunter2", key)
//	plaintext, err := crypto.Decrypt(ciphertext, key)
//
//	crypto.SecureWipe(key)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation and cipher parameters.
const (
	// Iterations is the PBKDF2 iteration count.
	Iterations = 100_000

	// KeyLength is the length of derived encryption keys in bytes (256 bits).
	KeyLength = 32

	// IVLength is the AES-CBC initialization vector length in bytes.
	IVLength = 16

	// SaltLength is the per-user salt length in bytes (128 bits).
	SaltLength = 16
)

// Sentinel errors returned by crypto functions.
var (
	// ErrEmptyPassword indicates an empty master password was supplied.
	ErrEmptyPassword = errors.New("crypto: master password must not be empty")

	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("crypto: invalid key length, must be 32 bytes")

	// ErrCiphertextTooShort indicates the payload is shorter than one IV.
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")

	// ErrDecryptionFailed indicates the ciphertext could not be decrypted
	// (malformed encoding, misaligned blocks, or invalid padding).
	ErrDecryptionFailed = errors.New("crypto: decryption failed")
)

// DeriveKey derives a 256-bit encryption key from a master password using
// PBKDF2-HMAC-SHA256 with 100,000 iterations.
//
// Derivation is deterministic: the same password and salt always produce the
// same key, so a session key can be re-derived at every login without ever
// being persisted. The salt is caller-supplied (the user's account salt) and
// assumed correctly sized.
func DeriveKey(masterPassword string, salt []byte) ([]byte, error) {
	if masterPassword == "" {
		return nil, ErrEmptyPassword
	}
	return pbkdf2.Key([]byte(masterPassword), salt, Iterations, KeyLength, sha256.New), nil
}

// Encrypt encrypts plaintext using AES-256-CBC with PKCS#7 padding.
//
// A fresh random 16-byte IV is drawn for every call; the result is
// base64(IV || ciphertext), so repeated encryptions of the same plaintext
// produce different outputs.
//
// Two short-circuits are part of the contract:
//   - empty plaintext maps to an empty ciphertext, and
//   - a nil key passes the plaintext through unchanged (the explicit
//     "no encryption configured" state).
func Encrypt(plaintext string, key []byte) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if key == nil {
		return plaintext, nil
	}
	if len(key) != KeyLength {
		return "", ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("crypto: failed to create cipher: %w", err)
	}

	iv := make([]byte, IVLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("crypto: failed to generate IV: %w", err)
	}

	padded := padPKCS7([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	combined := make([]byte, 0, IVLength+len(ciphertext))
	combined = append(combined, iv...)
	combined = append(combined, ciphertext...)
	return base64.StdEncoding.EncodeToString(combined), nil
}

// Decrypt decrypts a base64(IV || ciphertext) string produced by Encrypt.
//
// Empty input and nil keys mirror the Encrypt short-circuits. Structural
// failures (undecodable base64, payload shorter than one IV, misaligned
// blocks, invalid padding) return ErrCiphertextTooShort or
// ErrDecryptionFailed; tampering that preserves structure is undetectable
// in CBC mode and yields garbage instead of an error.
func Decrypt(ciphertext string, key []byte) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	if key == nil {
		return ciphertext, nil
	}
	if len(key) != KeyLength {
		return "", ErrInvalidKeyLength
	}

	combined, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(combined) < IVLength {
		return "", ErrCiphertextTooShort
	}

	iv := combined[:IVLength]
	data := combined[IVLength:]
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("crypto: failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, data)

	unpadded, err := unpadPKCS7(plaintext, aes.BlockSize)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(unpadded), nil
}

// GenerateSalt returns n cryptographically secure random bytes.
func GenerateSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: failed to generate salt: %w", err)
	}
	return salt, nil
}

// HashPassword returns base64(SHA256(salt || password)).
//
// This hash authenticates the account only. It is never used as an
// encryption key; DeriveKey re-derives a separate PBKDF2 key from the same
// salt for that purpose.
func HashPassword(password string, salt []byte) string {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// VerifyPassword compares a candidate password against a stored hash in
// constant time.
func VerifyPassword(password string, salt []byte, storedHash string) bool {
	return hmac.Equal([]byte(HashPassword(password, salt)), []byte(storedHash))
}

// SecureWipe overwrites a byte slice with zeros in a way that prevents
// compiler optimization from removing the operation.
// This is critical for securely destroying session keys.
func SecureWipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	// runtime.KeepAlive ensures the write operations are not optimized away
	// by the compiler since b is still "in use" after the loop.
	runtime.KeepAlive(b)
}

// padPKCS7 appends PKCS#7 padding up to blockSize.
func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// unpadPKCS7 strips and validates PKCS#7 padding.
func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("crypto: misaligned padded data")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("crypto: invalid padding length")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("crypto: invalid padding byte")
		}
	}
	return data[:len(data)-n], nil
}
