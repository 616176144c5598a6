package main

import (
	"fmt"
	"log/slog"
	"os"

	"slimlog/internal/app"
	"slimlog/internal/config"
	"slimlog/internal/database"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and the .env file next to the data.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config (run 'slim config init' first): %w", err)
	}

	if err := app.LoadEnvFile(cfg.BaseDir); err != nil {
		return nil, "", err
	}
	return cfg, defaults["config_path"], nil
}

// newApp reads the config and creates a SlimApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "add", "report").
func newApp(cmd *cobra.Command, operation string) (*app.SlimApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var opts []app.Option
	switch verbose, _ := cmd.Flags().GetCount("verbose"); {
	case verbose == 1:
		opts = append(opts, app.WithStderr(os.Stderr, slog.LevelInfo))
	case verbose > 1:
		opts = append(opts, app.WithStderr(os.Stderr, slog.LevelDebug))
	}

	a, err := app.NewSlimApp(cfg, operation, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a fresh SlimApp and records its outcome in the log.
func withApp(cmd *cobra.Command, operation string, fn func(a *app.SlimApp) error) error {
	a, err := newApp(cmd, operation)
	if err != nil {
		return err
	}
	defer a.Close()

	err = fn(a)
	a.Fail(err)
	return err
}

var rootCmd = &cobra.Command{
	Use:          "slim",
	Short:        "Calorie tracker with an AI coach",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Printf("Put %s=<key> in %s/%s to enable the AI coach.\n",
			cfg.Collaborator.APIKeyEnv, cfg.BaseDir, app.EnvFileName)
		fmt.Println("Next: slim db migrate")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Database:     %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		switch cfg.Images.Type {
		case "s3":
			fmt.Printf("Images:       s3://%s/%s\n", cfg.Images.S3Bucket, cfg.Images.S3Prefix)
		default:
			fmt.Printf("Images:       %s %s\n", cfg.Images.Type, cfg.Images.Root)
		}
		fmt.Printf("Collaborator: %s (text %s, reasoning %s, image %s)\n",
			cfg.Collaborator.Type, cfg.Collaborator.TextModel, cfg.Collaborator.ReasoningModel, cfg.Collaborator.ImageModel)
		keyState := "not set"
		if os.Getenv(cfg.Collaborator.APIKeyEnv) != "" {
			keyState = "set"
		}
		fmt.Printf("API Key:      %s (%s)\n", cfg.Collaborator.APIKeyEnv, keyState)
		fmt.Printf("Export:       %s\n", cfg.Export.Type)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the database and image store are usable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "check", func(a *app.SlimApp) error {
			if err := a.Check(); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		})
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.NewDatabaseFromConfig(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			return err
		}
		st, err := db.SchemaStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Database at schema version %d\n", st.Version)
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.NewDatabaseFromConfig(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		st, err := db.SchemaStatus()
		if err != nil {
			return err
		}
		switch {
		case st.Fresh:
			fmt.Printf("Not migrated (latest is %d)\n", st.Latest)
		case st.Dirty:
			fmt.Printf("Version %d (dirty, latest is %d)\n", st.Version, st.Latest)
		default:
			fmt.Printf("Version %d (latest is %d)\n", st.Version, st.Latest)
		}
		return nil
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup PATH",
	Short: "Snapshot the database to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "backup", func(a *app.SlimApp) error {
			if err := a.BackupDatabase(args[0]); err != nil {
				return err
			}
			fmt.Printf("Database copied to %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Mirror log output to stderr (-vv includes debug)")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configCheckCmd)

	// db subcommands
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbBackupCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
}
