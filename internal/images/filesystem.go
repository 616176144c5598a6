package images

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"slimlog/internal/slim"
)

// FileSystemStore keeps images as files named by their key:
//
//	<root>/
//	  <key[0:2]>/
//	    <key>     (image bytes)
//
// The two-character fan-out keeps directories small.
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a filesystem image store rooted at the given path.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

func (s *FileSystemStore) path(key string) string {
	if len(key) < 2 {
		return filepath.Join(s.root, "_", key)
	}
	return filepath.Join(s.root, key[:2], key)
}

// Put stores size bytes from r under key.
// Storing a key that already exists is a no-op.
func (s *FileSystemStore) Put(key string, contentType string, r io.Reader, size int64) error {
	destPath := s.path(key)

	if _, err := os.Stat(destPath); err == nil {
		written, err := io.Copy(io.Discard, r)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if written != size {
			return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	return writeFile(destPath, r, size)
}

// Get writes the image stored under key to w.
func (s *FileSystemStore) Get(key string, w io.Writer) error {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the root exists and accepts writes.
func (s *FileSystemStore) ValidateSetup() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("image root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("image root is not a directory: %s", s.root)
	}

	probe, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("image root not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// writeFile writes data from r to destPath using a temp file and rename.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements slim.ImageStore interface
var _ slim.ImageStore = (*FileSystemStore)(nil)
