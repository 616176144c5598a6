package slim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ArchiveFormatVersion is written into every export.
const ArchiveFormatVersion = 1

// Sealer encrypts and decrypts export files under a passphrase.
type Sealer interface {
	Seal(r io.Reader, w io.Writer, passphrase string) error

	// Open fails with ErrBadCredential when passphrase is wrong.
	Open(r io.Reader, w io.Writer, passphrase string) error
}

// Archive is the plaintext payload of an export file.
type Archive struct {
	Version    int         `json:"version"`
	Username   string      `json:"username"`
	ExportedAt time.Time   `json:"exportedAt"`
	Logs       []*DailyLog `json:"logs"`
}

// Archiver exports the active user's logs to a sealed file and imports them back.
type Archiver struct {
	session *SessionManager
	sealer  Sealer
	clock   Clock
	logger  Logger
}

func NewArchiver(session *SessionManager, sealer Sealer, clock Clock, logger Logger) *Archiver {
	return &Archiver{session: session, sealer: sealer, clock: clock, logger: logger}
}

// Export writes the whole log collection of the active user to w, sealed
// with passphrase. It returns the number of days written.
func (a *Archiver) Export(w io.Writer, passphrase string) (int, error) {
	book, err := a.session.Logbook()
	if err != nil {
		return 0, err
	}

	archive := Archive{
		Version:    ArchiveFormatVersion,
		Username:   book.Username(),
		ExportedAt: a.clock.Now(),
		Logs:       book.Logs(),
	}
	data, err := json.Marshal(archive)
	if err != nil {
		return 0, fmt.Errorf("encoding export: %w", err)
	}

	if err := a.sealer.Seal(bytes.NewReader(data), w, passphrase); err != nil {
		return 0, fmt.Errorf("sealing export: %w", err)
	}
	a.logger.Info("exported logs", "user", archive.Username, "days", len(archive.Logs))
	return len(archive.Logs), nil
}

// Import replaces the active user's logs with the contents of a sealed
// export. The export must belong to the same user. Nothing changes unless
// the whole file decrypts and validates.
func (a *Archiver) Import(r io.Reader, passphrase string) (int, error) {
	book, err := a.session.Logbook()
	if err != nil {
		return 0, err
	}

	var plain bytes.Buffer
	if err := a.sealer.Open(r, &plain, passphrase); err != nil {
		return 0, fmt.Errorf("opening export: %w", err)
	}

	var archive Archive
	if err := json.Unmarshal(plain.Bytes(), &archive); err != nil {
		return 0, fmt.Errorf("decoding export: %w", err)
	}
	if archive.Version != ArchiveFormatVersion {
		return 0, invalid("export", fmt.Sprintf("unsupported format version %d", archive.Version))
	}
	if archive.Username != book.Username() {
		return 0, invalid("export", fmt.Sprintf("belongs to %s, not %s", archive.Username, book.Username()))
	}
	if archive.Logs == nil {
		archive.Logs = []*DailyLog{}
	}

	if err := book.Replace(archive.Logs); err != nil {
		return 0, fmt.Errorf("importing logs: %w", err)
	}
	a.logger.Info("imported logs", "user", archive.Username, "days", len(archive.Logs))
	return len(archive.Logs), nil
}
