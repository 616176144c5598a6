package encryption

import (
	"fmt"

	"slimlog/internal/config"
	"slimlog/internal/slim"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
func NewSealerFromConfig(cfg config.ExportConfig) (slim.Sealer, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeSealer(cfg.ScryptWorkFactor), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown export encryption type: %q", cfg.Type)
	}
}
