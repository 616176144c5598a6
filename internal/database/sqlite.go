package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"slimlog/internal/database/migrations"
	"slimlog/internal/slim"
)

// SQLiteDatabase implements slim.Database on SQLite.
//
// Accounts keep the profile as a JSON document next to the password hash.
// Each user's log collection is a single JSON blob that is replaced wholesale
// on every save.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens a SQLite database.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tests that need a properly configured SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		// The PRAGMA below only reaches one pooled connection; the DSN covers the rest.
		dsn = path + "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Account operations

func (s *SQLiteDatabase) FindAccount(username string) (*slim.Account, error) {
	var (
		hash    string
		profile string
	)
	err := s.db.QueryRowContext(context.Background(),
		`SELECT password_hash, profile FROM accounts WHERE username = ?`, username,
	).Scan(&hash, &profile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding account: %w", err)
	}

	account := &slim.Account{Username: username, PasswordHash: hash}
	if err := json.Unmarshal([]byte(profile), &account.Profile); err != nil {
		return nil, fmt.Errorf("decoding profile for %s: %w", username, err)
	}
	return account, nil
}

func (s *SQLiteDatabase) CreateAccount(account *slim.Account) error {
	profile, err := json.Marshal(account.Profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(context.Background(),
		`INSERT INTO accounts (username, password_hash, profile, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		account.Username, account.PasswordHash, string(profile), now, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return slim.ErrDuplicateUser
		}
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) UpdateProfile(profile *slim.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	res, err := s.db.ExecContext(context.Background(),
		`UPDATE accounts SET profile = ?, updated_at = ? WHERE username = ?`,
		string(data), time.Now().UTC(), profile.Username,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating profile: %w", slim.ErrUserNotFound)
	}
	return nil
}

// Log operations

func (s *SQLiteDatabase) LoadLogs(username string) ([]*slim.DailyLog, error) {
	var payload string
	err := s.db.QueryRowContext(context.Background(),
		`SELECT payload FROM daily_logs WHERE username = ?`, username,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*slim.DailyLog{}, nil
		}
		return nil, fmt.Errorf("loading logs: %w", err)
	}

	var logs []*slim.DailyLog
	if err := json.Unmarshal([]byte(payload), &logs); err != nil {
		return nil, fmt.Errorf("decoding logs for %s: %w", username, err)
	}
	if logs == nil {
		logs = []*slim.DailyLog{}
	}
	return logs, nil
}

// SaveLogs replaces the stored collection in a single statement, so a failed
// write leaves the previous snapshot intact.
func (s *SQLiteDatabase) SaveLogs(username string, logs []*slim.DailyLog) error {
	if logs == nil {
		logs = []*slim.DailyLog{}
	}
	payload, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("encoding logs: %w", err)
	}

	_, err = s.db.ExecContext(context.Background(), `
		INSERT INTO daily_logs (username, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		username, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving logs: %w", err)
	}
	return nil
}

// Session operations

func (s *SQLiteDatabase) ActiveSession() (string, error) {
	var username string
	err := s.db.QueryRowContext(context.Background(),
		`SELECT username FROM sessions WHERE id = 1`,
	).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("reading session: %w", err)
	}
	return username, nil
}

func (s *SQLiteDatabase) SetActiveSession(username string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO sessions (id, username, started_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET username = excluded.username, started_at = excluded.started_at`,
		username, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording session: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ClearActiveSession() error {
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// SchemaStatus reports the current and latest schema versions.
func (s *SQLiteDatabase) SchemaStatus() (migrations.Status, error) {
	return migrations.ReadStatus(s.db)
}

// Migrate applies any pending schema migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements slim.Database interface
var _ slim.Database = (*SQLiteDatabase)(nil)
