package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"slimlog/internal/config"
	"slimlog/internal/credential"
	"slimlog/internal/database"
	"slimlog/internal/encryption"
	"slimlog/internal/gemini"
	"slimlog/internal/images"
	"slimlog/internal/slim"
)

// SlimApp is the application layer between the CLI and the domain services.
// It constructs all dependencies from config, resumes the remembered session,
// exposes operations that accept raw file paths, and manages the DB lifecycle
// on Close.
type SlimApp struct {
	cfg      *config.Config
	db       *database.SQLiteDatabase
	images   slim.ImageStore
	ai       slim.Collaborator
	session  *slim.SessionManager
	tracker  *slim.Tracker
	archiver *slim.Archiver
	op       *Operation
	clock    slim.Clock
	logger   slim.Logger
	logFile  *os.File
}

// Option overrides a dependency NewSlimApp would otherwise build from config.
type Option func(*options)

type options struct {
	collaborator slim.Collaborator
	clock        slim.Clock
	idgen        slim.IDGenerator
	stderr       io.Writer
	stderrLevel  slog.Level
}

// WithCollaborator replaces the configured AI collaborator.
func WithCollaborator(c slim.Collaborator) Option {
	return func(o *options) { o.collaborator = c }
}

// WithClock replaces the wall clock.
func WithClock(c slim.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithIDGenerator replaces the UUID entry id generator.
func WithIDGenerator(g slim.IDGenerator) Option {
	return func(o *options) { o.idgen = g }
}

// WithStderr mirrors log records at or above level to w in addition to the
// log file, which always receives every record.
func WithStderr(w io.Writer, level slog.Level) Option {
	return func(o *options) {
		o.stderr = w
		o.stderrLevel = level
	}
}

// NewSlimApp creates a fully wired SlimApp from the given config.
// operation identifies the CLI command being run (e.g. "add", "report").
// The caller must call Close when done.
func NewSlimApp(cfg *config.Config, operation string, opts ...Option) (*SlimApp, error) {
	o := options{clock: slim.RealClock{}, idgen: slim.UUIDGenerator{}}
	for _, opt := range opts {
		opt(&o)
	}

	op := NewOperation(operation, o.clock.Now())
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, o.stderr, o.stderrLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	closeLog := func() {
		if logFile != nil {
			logFile.Close()
		}
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		closeLog()
		return nil, fmt.Errorf("database schema out of date (run 'slim db migrate'): %w", err)
	}

	store, err := images.NewStoreFromConfig(context.Background(), cfg.Images)
	if err != nil {
		db.Close()
		closeLog()
		return nil, fmt.Errorf("creating image store: %w", err)
	}

	hasher, err := credential.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		db.Close()
		closeLog()
		return nil, fmt.Errorf("creating password hasher: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Export)
	if err != nil {
		db.Close()
		closeLog()
		return nil, fmt.Errorf("creating export sealer: %w", err)
	}

	ai := o.collaborator
	if ai == nil {
		ai, err = gemini.NewCollaboratorFromConfig(cfg.Collaborator, log)
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			// Local logging still works; AI features report unavailable.
			log.Warn("collaborator offline", "reason", err)
			ai, err = gemini.Offline{}, nil
		}
		if err != nil {
			db.Close()
			closeLog()
			return nil, fmt.Errorf("creating collaborator: %w", err)
		}
	}

	session := slim.NewSessionManager(db, db, db, hasher, o.clock, log)
	if _, err := session.Resume(); err != nil {
		db.Close()
		closeLog()
		return nil, fmt.Errorf("resuming session: %w", err)
	}

	return &SlimApp{
		cfg:      cfg,
		db:       db,
		images:   store,
		ai:       ai,
		session:  session,
		tracker:  slim.NewTracker(session, ai, store, o.idgen, o.clock, log),
		archiver: slim.NewArchiver(session, sealer, o.clock, log),
		op:       op,
		clock:    o.clock,
		logger:   log,
		logFile:  logFile,
	}, nil
}

// Session returns the session manager.
func (a *SlimApp) Session() *slim.SessionManager { return a.session }

// Tracker returns the view controller for the active user.
func (a *SlimApp) Tracker() *slim.Tracker { return a.tracker }

// Fail marks the running operation as failed so Close records it.
func (a *SlimApp) Fail(err error) {
	a.op.Fail(err)
}

// LoadPhoto reads an image from rawPath. An empty path means no photo.
func (a *SlimApp) LoadPhoto(rawPath string) (*slim.Image, error) {
	if rawPath == "" {
		return nil, nil
	}
	return slim.ReadImageFile(rawPath)
}

// SavePhoto writes img to rawPath.
func (a *SlimApp) SavePhoto(img *slim.Image, rawPath string) error {
	if err := os.WriteFile(rawPath, img.Data, 0644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

// WriteFoodPhoto copies the stored photo of entry id to rawPath.
func (a *SlimApp) WriteFoodPhoto(id, rawPath string) error {
	f, err := os.Create(rawPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", rawPath, err)
	}
	if err := a.tracker.FoodPhoto(id, f); err != nil {
		f.Close()
		os.Remove(rawPath)
		return err
	}
	return f.Close()
}

// ExportTo writes a sealed export of the active user's logs to rawPath.
// An existing file is never overwritten.
func (a *SlimApp) ExportTo(rawPath, passphrase string) (int, error) {
	f, err := os.OpenFile(rawPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return 0, fmt.Errorf("creating export file: %w", err)
	}
	n, err := a.archiver.Export(f, passphrase)
	if err != nil {
		f.Close()
		os.Remove(rawPath)
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing export file: %w", err)
	}
	return n, nil
}

// ImportFrom replaces the active user's logs with a sealed export at rawPath.
func (a *SlimApp) ImportFrom(rawPath, passphrase string) (int, error) {
	f, err := os.Open(rawPath)
	if err != nil {
		return 0, fmt.Errorf("opening export file: %w", err)
	}
	defer f.Close()
	return a.archiver.Import(f, passphrase)
}

// BackupDatabase snapshots the database to rawPath.
func (a *SlimApp) BackupDatabase(rawPath string) error {
	if _, err := os.Stat(rawPath); err == nil {
		return fmt.Errorf("backup target %s already exists", rawPath)
	}
	return a.db.BackupTo(rawPath)
}

// Check verifies that the schema is current and the image store is usable.
func (a *SlimApp) Check() error {
	if err := a.db.CheckMigrations(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := a.images.ValidateSetup(); err != nil {
		return fmt.Errorf("image store: %w", err)
	}
	return nil
}

// Close records the outcome of the operation and closes all resources.
func (a *SlimApp) Close() error {
	var firstErr error

	a.op.Finish(a.clock.Now())
	if a.op.Err != "" {
		a.logger.Warn("operation failed", "operation", a.op.Name, "error", a.op.Err, "elapsed", a.op.Elapsed())
	} else {
		a.logger.Info("operation finished", "operation", a.op.Name, "elapsed", a.op.Elapsed())
	}

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
