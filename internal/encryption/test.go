package encryption

import (
	"bytes"
	"fmt"
	"io"

	"slimlog/internal/slim"
)

// testHeader is prepended to sealed data by TestSealer to make the output
// clearly different from plaintext while remaining deterministic and reversible.
var testHeader = []byte("SLIMENC\x00")

// TestSealer is a simple, deterministic sealer for testing.
// It writes a fixed header followed by the passphrase length, the passphrase
// and the plaintext. Open checks the passphrase and strips both.
type TestSealer struct{}

var _ slim.Sealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (s *TestSealer) Seal(r io.Reader, w io.Writer, passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase is required")
	}
	if len(passphrase) > 255 {
		return fmt.Errorf("passphrase too long for test sealer")
	}
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := w.Write(append([]byte{byte(len(passphrase))}, passphrase...)); err != nil {
		return fmt.Errorf("writing test passphrase: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (s *TestSealer) Open(r io.Reader, w io.Writer, passphrase string) error {
	header := make([]byte, len(testHeader)+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header[:len(testHeader)], testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	stored := make([]byte, int(header[len(testHeader)]))
	if _, err := io.ReadFull(r, stored); err != nil {
		return fmt.Errorf("reading test passphrase: %w", err)
	}
	if string(stored) != passphrase {
		return fmt.Errorf("decrypting export: %w", slim.ErrBadCredential)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
