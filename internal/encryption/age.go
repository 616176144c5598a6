package encryption

import (
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"slimlog/internal/slim"
)

// AgeSealer implements slim.Sealer with age's scrypt passphrase recipients.
// Each sealed file carries its own salt, so the same passphrase can open any
// export without keys on disk.
type AgeSealer struct {
	workFactor int
}

var _ slim.Sealer = (*AgeSealer)(nil)

// NewAgeSealer creates an AgeSealer. A workFactor of 0 keeps age's default
// scrypt cost; tests pass a small value to stay fast.
func NewAgeSealer(workFactor int) *AgeSealer {
	return &AgeSealer{workFactor: workFactor}
}

// Seal reads plaintext from r and writes age-encrypted ciphertext to w.
func (s *AgeSealer) Seal(r io.Reader, w io.Writer, passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase is required")
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if s.workFactor > 0 {
		recipient.SetWorkFactor(s.workFactor)
	}

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Open reads age-encrypted ciphertext from r and writes plaintext to w.
// A wrong passphrase is reported as slim.ErrBadCredential.
func (s *AgeSealer) Open(r io.Reader, w io.Writer, passphrase string) error {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		if errors.Is(err, age.ErrIncorrectIdentity) {
			return fmt.Errorf("decrypting export: %w", slim.ErrBadCredential)
		}
		return fmt.Errorf("creating decrypted reader: %w", err)
	}

	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}
