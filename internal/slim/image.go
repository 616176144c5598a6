package slim

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
)

// ImageKey returns the content address of an image: the hex SHA-256 of its bytes.
func ImageKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StoreImage puts img in store and returns its key.
func StoreImage(store ImageStore, img *Image) (string, error) {
	key := ImageKey(img.Data)
	if err := store.Put(key, img.MIMEType, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}
	return key, nil
}

// ReadImageFile loads an image from disk and sniffs its MIME type.
func ReadImageFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		return nil, invalid("image", "file is empty")
	}
	mimeType := http.DetectContentType(data)
	if !isImageType(mimeType) {
		return nil, invalid("image", fmt.Sprintf("unsupported content type %s", mimeType))
	}
	return &Image{MIMEType: mimeType, Data: data}, nil
}

func isImageType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}
