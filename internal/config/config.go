package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for slim.
type Config struct {
	BaseDir      string             `toml:"base_dir"`
	LogDir       string             `toml:"log_dir"`
	Database     DatabaseConfig     `toml:"database"`
	Images       ImagesConfig       `toml:"images"`
	Collaborator CollaboratorConfig `toml:"collaborator"`
	Auth         AuthConfig         `toml:"auth"`
	Export       ExportConfig       `toml:"export"`
}

// DatabaseConfig represents configuration for the account and log database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ImagesConfig represents configuration for the food photo store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ImagesConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", or "s3"

	// FileSystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"` // S3-compatible stores such as MinIO
}

// CollaboratorConfig selects and tunes the generative model backend.
type CollaboratorConfig struct {
	Type           string `toml:"type"`                  // "gemini" or "offline"
	APIKeyEnv      string `toml:"api_key_env,omitempty"` // environment variable holding the API key
	BaseURL        string `toml:"base_url,omitempty"`
	TextModel      string `toml:"text_model,omitempty"`      // recognition, verdicts, chat
	ReasoningModel string `toml:"reasoning_model,omitempty"` // weekly reports and day analysis
	ImageModel     string `toml:"image_model,omitempty"`     // image generation and editing
	Timeout        string `toml:"timeout,omitempty"`         // Go duration, e.g. "60s"
}

// RequestTimeout parses Timeout, falling back to one minute when unset.
func (c CollaboratorConfig) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid collaborator timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid collaborator timeout %q: must be positive", c.Timeout)
	}
	return d, nil
}

// AuthConfig holds password hashing settings.
type AuthConfig struct {
	BcryptCost int `toml:"bcrypt_cost,omitempty"` // 0 means the library default
}

// ExportConfig selects how exported logs are encrypted.
type ExportConfig struct {
	Type             string `toml:"type"`                         // "age" (default) or "test"
	ScryptWorkFactor int    `toml:"scrypt_work_factor,omitempty"` // log2 of the scrypt cost; 0 keeps the age default
}

// NewConfig creates a new Config rooted at baseDir with a local sqlite
// database, filesystem photo store and the Gemini collaborator.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Images: ImagesConfig{
			Type: "filesystem",
			Root: filepath.Join(baseDir, "images"),
		},
		Collaborator: CollaboratorConfig{
			Type:           "gemini",
			APIKeyEnv:      "GEMINI_API_KEY",
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			TextModel:      "gemini-2.5-flash",
			ReasoningModel: "gemini-2.5-pro",
			ImageModel:     "gemini-2.5-flash-image",
			Timeout:        "60s",
		},
		Export: ExportConfig{Type: "age"},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
