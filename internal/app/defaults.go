package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFileName is the dotenv file read from the base directory.
const EnvFileName = ".env"

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - SLIM_CONFIG_PATH: config file location (default: ~/.config/slim.toml)
//   - SLIM_HOME: base directory for slim data (default: ~/.local/share/slim)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// LoadEnvFile loads baseDir/.env into the process environment so secrets
// such as the Gemini API key need not be exported by hand. Variables that are
// already set win. A missing file is not an error.
func LoadEnvFile(baseDir string) error {
	path := filepath.Join(baseDir, EnvFileName)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// getConfigPath returns the config file path, checking SLIM_CONFIG_PATH env var first,
// then falling back to the default ~/.config/slim.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("SLIM_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "slim.toml"), nil
}

// getBaseDir returns the base directory for slim data, checking SLIM_HOME env var first,
// then falling back to the XDG default ~/.local/share/slim.
func getBaseDir() (string, error) {
	if path := os.Getenv("SLIM_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "slim"), nil
}
