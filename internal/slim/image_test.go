package slim_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slimlog/internal/slim"
)

func TestImageKey(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := slim.ImageKey([]byte("abc")); got != want {
		t.Errorf("ImageKey() = %s, want %s", got, want)
	}
}

func TestReadImageFile(t *testing.T) {
	dir := t.TempDir()
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantErr  bool
	}{
		{name: "png", data: png, wantMIME: "image/png"},
		{name: "text", data: []byte("just some words"), wantErr: true},
		{name: "empty", data: []byte{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}

			img, err := slim.ReadImageFile(path)
			if tt.wantErr {
				var verr *slim.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("ReadImageFile() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadImageFile() error = %v", err)
			}
			if img.MIMEType != tt.wantMIME {
				t.Errorf("MIMEType = %q, want %q", img.MIMEType, tt.wantMIME)
			}
		})
	}

	if _, err := slim.ReadImageFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("ReadImageFile() for a missing file expected error")
	}
}
