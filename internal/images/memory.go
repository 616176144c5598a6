package images

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"slimlog/internal/slim"
)

// MemoryStore keeps images in memory. It is useful for tests and for
// throwaway sessions configured with images.type = "memory".
// This implementation is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	content map[string][]byte
	types   map[string]string
}

// NewMemoryStore creates an empty in-memory image store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		content: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// Put stores size bytes from r under key.
func (m *MemoryStore) Put(key string, contentType string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.content[key] = data
	m.types[key] = contentType
	return nil
}

// Get writes the image stored under key to w.
func (m *MemoryStore) Get(key string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.content[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// ContentType returns the MIME type recorded for key, or "" if unknown.
func (m *MemoryStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}

// Len returns the number of stored images.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.content)
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryStore implements slim.ImageStore interface
var _ slim.ImageStore = (*MemoryStore)(nil)
