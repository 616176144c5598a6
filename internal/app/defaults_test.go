package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("SLIM_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("SLIM_HOME", "/custom/slim")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/config.toml")
		}
		if defaults["base_dir"] != "/custom/slim" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/slim")
		}
		if defaults["log_dir"] != "/custom/slim/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/slim/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("SLIM_CONFIG_PATH", "")
		t.Setenv("SLIM_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "slim.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "slim")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if defaults["log_dir"] != wantLog {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], wantLog)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is fine", func(t *testing.T) {
		if err := LoadEnvFile(t.TempDir()); err != nil {
			t.Errorf("LoadEnvFile() error = %v", err)
		}
	})

	t.Run("sets unset variables only", func(t *testing.T) {
		dir := t.TempDir()
		content := "SLIM_TEST_DOTENV_NEW=from-file\nSLIM_TEST_DOTENV_SET=from-file\n"
		if err := os.WriteFile(filepath.Join(dir, EnvFileName), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SLIM_TEST_DOTENV_SET", "from-shell")
		t.Setenv("SLIM_TEST_DOTENV_NEW", "")
		os.Unsetenv("SLIM_TEST_DOTENV_NEW")

		if err := LoadEnvFile(dir); err != nil {
			t.Fatalf("LoadEnvFile() error = %v", err)
		}
		if got := os.Getenv("SLIM_TEST_DOTENV_NEW"); got != "from-file" {
			t.Errorf("SLIM_TEST_DOTENV_NEW = %q, want from-file", got)
		}
		if got := os.Getenv("SLIM_TEST_DOTENV_SET"); got != "from-shell" {
			t.Errorf("SLIM_TEST_DOTENV_SET = %q, want from-shell", got)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, EnvFileName), []byte("BAD-KEY=1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if err := LoadEnvFile(dir); err == nil {
			t.Error("LoadEnvFile() expected error for malformed file")
		}
	})
}
