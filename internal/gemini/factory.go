package gemini

import (
	"errors"
	"fmt"
	"os"

	"slimlog/internal/config"
	"slimlog/internal/slim"
)

// ErrMissingAPIKey means the configured API key variable is empty.
var ErrMissingAPIKey = errors.New("gemini api key is not set")

// NewCollaboratorFromConfig creates a Collaborator based on the collaborator config type.
// The Gemini API key is read from the environment variable named by api_key_env.
func NewCollaboratorFromConfig(cfg config.CollaboratorConfig, logger slim.Logger) (slim.Collaborator, error) {
	switch cfg.Type {
	case "gemini":
		keyEnv := cfg.APIKeyEnv
		if keyEnv == "" {
			keyEnv = "GEMINI_API_KEY"
		}
		apiKey := os.Getenv(keyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%w: export %s or switch collaborator.type to offline", ErrMissingAPIKey, keyEnv)
		}
		timeout, err := cfg.RequestTimeout()
		if err != nil {
			return nil, err
		}
		client, err := New(Options{
			APIKey:         apiKey,
			BaseURL:        cfg.BaseURL,
			TextModel:      cfg.TextModel,
			ReasoningModel: cfg.ReasoningModel,
			ImageModel:     cfg.ImageModel,
			Timeout:        timeout,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "offline":
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("unknown collaborator type: %s", cfg.Type)
	}
}
