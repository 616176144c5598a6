package images

import (
	"context"
	"fmt"

	"slimlog/internal/config"
	"slimlog/internal/slim"
)

// NewStoreFromConfig creates an ImageStore based on the images config type.
func NewStoreFromConfig(ctx context.Context, cfg config.ImagesConfig) (slim.ImageStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem image store requires root to be set")
		}
		store, err := NewFileSystemStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		store, err := NewS3Store(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown image store type: %s", cfg.Type)
	}
}
