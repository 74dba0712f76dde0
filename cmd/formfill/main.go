// Package main provides the formfill command line.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/config"
	"github.com/jonathan/formfill/internal/observability"
)

// Environment variables consulted when the matching flag is not set.
const (
	envProfile = "FORMFILL_PROFILE"
	envConfig  = "FORMFILL_CONFIG"
	envDB      = "DATABASE_URL"
)

const defaultProfilePath = "profile.json"

var (
	configPath  string
	profilePath string
	verbose     bool
	logFormat   string
	dbURL       string

	settings config.Config
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "formfill",
	Short: "Fill web questionnaires from a stored profile",
	Long: `formfill opens a questionnaire (Google Forms first) in Chrome, works out what each
question asks, answers it from your profile and leaves the form open for you to
review. It never submits a form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		settings = cfg

		logger, err = observability.NewLogger(settings.Verbose, settings.LogFormat)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json (defaults to $"+envConfig+")")
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", "", "Path to the profile JSON or YAML (defaults to $"+envProfile+", then "+defaultProfilePath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail and print classified fields")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log encoding: console or json")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL URL for fill history (defaults to $"+envDB+")")
}

// loadSettings merges the config file, environment and flags, flags winning.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Defaults()

	path := configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = profilePath
	} else if env := os.Getenv(envProfile); env != "" && cfg.Profile == "" {
		cfg.Profile = env
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = dbURL
	} else if env := os.Getenv(envDB); env != "" && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = env
	}

	defaults := config.Defaults()
	defaults.Profile = defaultProfilePath
	cfg = cfg.MergeWithDefaults(defaults)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
