package vault

import "errors"

// Errors
var (
	// ErrInvalidInput is returned when a required field is empty or malformed.
	ErrInvalidInput = errors.New("vault: invalid input")

	// ErrUsernameTaken is returned when registering a username that already exists.
	// Usernames are case-sensitive, matching the unique index on users.username.
	ErrUsernameTaken = errors.New("vault: username already exists")

	// ErrInvalidCredentials is returned when authentication fails. The caller
	// cannot distinguish an unknown user from a wrong password.
	ErrInvalidCredentials = errors.New("vault: invalid username or password")

	// ErrDuplicateCredential is returned when the case-insensitive pair
	// (title, username) already exists for the user.
	ErrDuplicateCredential = errors.New("vault: a credential with this title and username already exists")

	// ErrNotFound is returned when operating on an id that does not exist.
	ErrNotFound = errors.New("vault: record not found")

	// ErrFileTooLarge is returned when an attachment exceeds MaxAttachmentSize.
	ErrFileTooLarge = errors.New("vault: attachment exceeds maximum size")
)
