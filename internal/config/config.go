// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/formfill/internal/fill"
)

// Default values applied by MergeWithDefaults when a field is left unset.
const (
	DefaultDebugURL          = "http://localhost:9222"
	DefaultFieldDelayMinMs   = 500
	DefaultFieldDelayMaxMs   = 1500
	DefaultNavigationTimeout = 30000
	DefaultDropdownTimeout   = 5000
	DefaultLaunchWaitMs      = 3000
	DefaultLogFormat         = "console"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// AutoSubmit is read and reported but never acted on; forms are left for review.
	AutoSubmit bool `json:"auto_submit,omitempty"`

	FieldDelay FieldDelay `json:"field_delay"`
	Browser    Browser    `json:"browser"`

	NavigationTimeoutMs int `json:"navigation_timeout_ms,omitempty" validate:"gte=0"`
	DropdownTimeoutMs   int `json:"dropdown_timeout_ms,omitempty" validate:"gte=0"`
	ReviewTimeoutMs     int `json:"review_timeout_ms,omitempty" validate:"gte=0"`

	Profile   string `json:"profile,omitempty"`                                            // Path to the profile document
	Verbose   bool   `json:"verbose,omitempty"`                                            // Debug-level logging
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=json console"` // zap encoder

	// DatabaseURL enables fill history in PostgreSQL when set.
	DatabaseURL string `json:"database_url,omitempty"`
}

// FieldDelay bounds the random pause between fields, in milliseconds.
type FieldDelay struct {
	Min int `json:"min,omitempty" validate:"gte=0"`
	Max int `json:"max,omitempty" validate:"gte=0,gtefield=Min"`
}

// Browser describes how to reach Chrome.
type Browser struct {
	DebugURL           string `json:"debug_url,omitempty" validate:"omitempty,url"`
	Headless           bool   `json:"headless,omitempty"`
	ConnectToExisting  bool   `json:"connect_to_existing,omitempty"`
	UseExistingProfile bool   `json:"use_existing_profile,omitempty"`
	ExecPath           string `json:"exec_path,omitempty"`
	UserDataDir        string `json:"user_data_dir,omitempty"`
	LaunchWaitMs       int    `json:"launch_wait_ms,omitempty" validate:"gte=0"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		FieldDelay: FieldDelay{Min: DefaultFieldDelayMinMs, Max: DefaultFieldDelayMaxMs},
		Browser: Browser{
			DebugURL:           DefaultDebugURL,
			ConnectToExisting:  true,
			UseExistingProfile: true,
			LaunchWaitMs:       DefaultLaunchWaitMs,
		},
		NavigationTimeoutMs: DefaultNavigationTimeout,
		DropdownTimeoutMs:   DefaultDropdownTimeout,
		LogFormat:           DefaultLogFormat,
	}
}

// LoadConfig loads configuration from a JSON file over Defaults, so keys the
// file leaves out keep their default values.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration has valid values.
// Required inputs such as the form URL come from CLI arguments, not the file.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("'%s' failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// Bools cannot be told apart from an explicit false and are taken from c as-is.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.FieldDelay.Min == 0 && result.FieldDelay.Max == 0 {
		result.FieldDelay = defaults.FieldDelay
	}
	if result.Browser.DebugURL == "" {
		result.Browser.DebugURL = defaults.Browser.DebugURL
	}
	if result.Browser.ExecPath == "" {
		result.Browser.ExecPath = defaults.Browser.ExecPath
	}
	if result.Browser.UserDataDir == "" {
		result.Browser.UserDataDir = defaults.Browser.UserDataDir
	}
	if result.Browser.LaunchWaitMs == 0 {
		result.Browser.LaunchWaitMs = defaults.Browser.LaunchWaitMs
	}
	if result.NavigationTimeoutMs == 0 {
		result.NavigationTimeoutMs = defaults.NavigationTimeoutMs
	}
	if result.DropdownTimeoutMs == 0 {
		result.DropdownTimeoutMs = defaults.DropdownTimeoutMs
	}
	if result.ReviewTimeoutMs == 0 {
		result.ReviewTimeoutMs = defaults.ReviewTimeoutMs
	}
	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	return result
}

// FillOptions maps the pacing and timeout settings onto dispatcher options.
func (c *Config) FillOptions() fill.Options {
	opts := fill.DefaultOptions()
	if c.FieldDelay.Min > 0 || c.FieldDelay.Max > 0 {
		opts.DelayMin = ms(c.FieldDelay.Min)
		opts.DelayMax = ms(c.FieldDelay.Max)
	}
	if c.DropdownTimeoutMs > 0 {
		opts.DropdownTimeout = ms(c.DropdownTimeoutMs)
	}
	return opts
}

// NavigationTimeout is the page-load budget.
func (c *Config) NavigationTimeout() time.Duration { return ms(c.NavigationTimeoutMs) }

// ReviewTimeout bounds the review wait; zero waits until interrupted.
func (c *Config) ReviewTimeout() time.Duration { return ms(c.ReviewTimeoutMs) }

// LaunchWait is how long to give a freshly launched Chrome before reconnecting.
func (c *Config) LaunchWait() time.Duration { return ms(c.Browser.LaunchWaitMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
