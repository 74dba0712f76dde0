package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"auto_submit": true,
		"field_delay": {"min": 100, "max": 200},
		"browser": {"debug_url": "http://localhost:9333", "headless": true},
		"dropdown_timeout_ms": 2500,
		"profile": "profile.yaml",
		"verbose": true,
		"database_url": "postgres://localhost:5432/formfill"
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.AutoSubmit)
	assert.Equal(t, FieldDelay{Min: 100, Max: 200}, cfg.FieldDelay)
	assert.Equal(t, "http://localhost:9333", cfg.Browser.DebugURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 2500, cfg.DropdownTimeoutMs)
	assert.Equal(t, "profile.yaml", cfg.Profile)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "postgres://localhost:5432/formfill", cfg.DatabaseURL)
}

func TestLoadConfig_OmittedKeysKeepDefaults(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"browser": {"headless": true}}`), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.ConnectToExisting)
	assert.Equal(t, DefaultDebugURL, cfg.Browser.DebugURL)
	assert.Equal(t, FieldDelay{Min: DefaultFieldDelayMinMs, Max: DefaultFieldDelayMaxMs}, cfg.FieldDelay)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_Defaults(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_DelayRange(t *testing.T) {
	cfg := &Config{FieldDelay: FieldDelay{Min: 900, Max: 100}}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Max")
	assert.Contains(t, err.Error(), "gtefield")
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := &Config{DropdownTimeoutMs: -1}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DropdownTimeoutMs")
}

func TestValidate_LogFormat(t *testing.T) {
	cfg := &Config{LogFormat: "xml"}
	assert.Error(t, cfg.Validate())

	cfg.LogFormat = "json"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_DebugURL(t *testing.T) {
	cfg := &Config{Browser: Browser{DebugURL: "not a url"}}
	assert.Error(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		Profile:    "me.json",
		FieldDelay: FieldDelay{Min: 0, Max: 50},
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "me.json", merged.Profile)
	assert.Equal(t, FieldDelay{Min: 0, Max: 50}, merged.FieldDelay, "a partial delay is kept as written")
	assert.Equal(t, DefaultDebugURL, merged.Browser.DebugURL)
	assert.Equal(t, DefaultNavigationTimeout, merged.NavigationTimeoutMs)
	assert.Equal(t, DefaultLogFormat, merged.LogFormat)
	assert.False(t, merged.Browser.ConnectToExisting, "bools are never merged")
}

func TestMergeWithDefaults_EmptyDelay(t *testing.T) {
	merged := (&Config{}).MergeWithDefaults(Defaults())
	assert.Equal(t, FieldDelay{Min: DefaultFieldDelayMinMs, Max: DefaultFieldDelayMaxMs}, merged.FieldDelay)
}

func TestFillOptions(t *testing.T) {
	cfg := Config{
		FieldDelay:        FieldDelay{Min: 10, Max: 20},
		DropdownTimeoutMs: 750,
	}

	opts := cfg.FillOptions()
	assert.Equal(t, 10*time.Millisecond, opts.DelayMin)
	assert.Equal(t, 20*time.Millisecond, opts.DelayMax)
	assert.Equal(t, 750*time.Millisecond, opts.DropdownTimeout)
	assert.Equal(t, "cuchd.in", opts.CollegeEmailDomain)
}

func TestDurations(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout())
	assert.Equal(t, 3*time.Second, cfg.LaunchWait())
	assert.Zero(t, cfg.ReviewTimeout())
}
