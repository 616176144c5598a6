package slim

import "io"

// CredentialStore persists accounts keyed by username.
type CredentialStore interface {
	// FindAccount returns the account for username, or nil if none exists.
	FindAccount(username string) (*Account, error)

	// CreateAccount stores a new account. It fails if the username exists.
	CreateAccount(account *Account) error

	// UpdateProfile replaces the embedded profile copy of an existing account.
	UpdateProfile(profile *UserProfile) error
}

// LogRepository is the per-user persistent slot for the log collection.
// Reads and writes always cover the whole collection.
type LogRepository interface {
	// LoadLogs returns the stored collection for username, or an empty
	// collection if nothing has been saved yet.
	LoadLogs(username string) ([]*DailyLog, error)

	// SaveLogs replaces the stored collection for username.
	SaveLogs(username string, logs []*DailyLog) error
}

// SessionStore remembers which user is logged in between invocations.
type SessionStore interface {
	// ActiveSession returns the logged-in username, or "" if none.
	ActiveSession() (string, error)

	// SetActiveSession records username as logged in.
	SetActiveSession(username string) error

	// ClearActiveSession forgets the logged-in user.
	ClearActiveSession() error
}

// Database is the full persistence surface used by the application.
type Database interface {
	CredentialStore
	LogRepository
	SessionStore

	// Close closes the database connection.
	Close() error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Verify reports whether password matches hash.
	Verify(hash, password string) (bool, error)
}

// ImageStore keeps food photos and generated images, addressed by the
// SHA-256 checksum of their bytes.
type ImageStore interface {
	// Put stores size bytes read from r under key. Storing an existing key is a no-op.
	Put(key string, contentType string, r io.Reader, size int64) error

	// Get writes the image stored under key to w.
	Get(key string, w io.Writer) error

	// ValidateSetup verifies that the store is reachable and writable.
	ValidateSetup() error
}
