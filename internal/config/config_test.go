package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/some/path"},
		Catalog: CatalogConfig{
			BaseURL:           "https://catalog.example",
			RequestsPerSecond: 10,
			ReferenceLanguage: "en",
		},
		Species: SpeciesConfig{BaseURL: "https://species.example", RequestsPerSecond: 5},
		Admin:   AdminConfig{Backend: AdminBackendSQLite, CacheTTL: 5 * time.Minute},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"INFO", true},   // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }, "data path cannot be empty"},
		{"no species url", func(c *Config) { c.Species.BaseURL = "" }, "species URL is required"},
		{"zero rate", func(c *Config) { c.Catalog.RequestsPerSecond = 0 }, "requests per second"},
		{"bad language", func(c *Config) { c.Catalog.ReferenceLanguage = "not a tag" }, "invalid reference language"},
		{"unknown backend", func(c *Config) { c.Admin.Backend = "etcd" }, "invalid admin backend"},
		{"redis without url", func(c *Config) { c.Admin.Backend = AdminBackendRedis }, "REDIS_URL is required"},
		{"negative ttl", func(c *Config) { c.Admin.CacheTTL = -time.Second }, "cache TTL"},
		{"watch without dir", func(c *Config) { c.Roster.Watch = true }, "roster directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidate_RedisBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.Backend = AdminBackendRedis
	cfg.Admin.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())
}

func TestExpandStoragePaths_Defaults(t *testing.T) {
	cfg := &Config{}

	require.NoError(t, cfg.expandStoragePaths())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	base := filepath.Join(homeDir, "BinderKeep")
	assert.Equal(t, base, cfg.Storage.DataPath)
	assert.Equal(t, filepath.Join(base, "device"), cfg.Storage.DevicePath)
	assert.Equal(t, filepath.Join(base, "account.db"), cfg.Storage.AccountDBPath)
}

func TestExpandStoragePaths_TildeExpansion(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataPath: "~/my-data"}}

	require.NoError(t, cfg.expandStoragePaths())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "my-data"), cfg.Storage.DataPath)
	assert.Equal(t, filepath.Join(homeDir, "my-data", "device"), cfg.Storage.DevicePath)
}

func TestExpandStoragePaths_ExplicitPathsWin(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{
		DataPath:      "/data",
		DevicePath:    "/fast/device",
		AccountDBPath: "relative/account.db",
	}}

	require.NoError(t, cfg.expandStoragePaths())

	assert.Equal(t, "/fast/device", cfg.Storage.DevicePath)
	assert.True(t, filepath.IsAbs(cfg.Storage.AccountDBPath))
	assert.Contains(t, cfg.Storage.AccountDBPath, "relative/account.db")
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := `SPECIES_URL=https://species.example
CATALOG_RPS=2.5
ADMIN_ACTORS=alice@example.com, bob@example.com ,
LOG_LEVEL=warn
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	t.Setenv("DATA_PATH", dir)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SPECIES_URL", "")
	t.Setenv("CATALOG_RPS", "")
	t.Setenv("ADMIN_ACTORS", "")
	t.Setenv("ADMIN_CACHE_TTL", "")

	cfg, err := Load([]string{"-env-file", envFile, "-admin-cache-ttl", "30s", "-roster-dir", dir, "-roster-watch", "yes"})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level, "env beats .env")
	assert.Equal(t, "https://species.example", cfg.Species.BaseURL)
	assert.InDelta(t, 2.5, cfg.Catalog.RequestsPerSecond, 1e-9)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, cfg.Admin.Actors)
	assert.Equal(t, 30*time.Second, cfg.Admin.CacheTTL, "flag beats default")
	assert.Equal(t, filepath.Join(dir, "device"), cfg.Storage.DevicePath)
	assert.Equal(t, dir, cfg.Roster.TablesDir)
	assert.True(t, cfg.Roster.Watch)
	assert.Equal(t, AdminBackendSQLite, cfg.Admin.Backend)
	assert.Equal(t, "en", cfg.Catalog.ReferenceLanguage)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SPECIES_URL", "https://species.example")
	_, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing"), "-catalog-timeout", "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_TIMEOUT")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a,,b , "))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	// Test flag value takes priority.
	result := getConfigValue("flag-value", "ENV_KEY", "default-value")
	assert.Equal(t, "flag-value", result)

	// Test env var when flag is empty.
	os.Setenv("TEST_ENV_KEY", "env-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_ENV_KEY")      //nolint:errcheck // Test cleanup

	result = getConfigValue("", "TEST_ENV_KEY", "default-value")
	assert.Equal(t, "env-value", result)

	// Test default when both are empty.
	result = getConfigValue("", "NONEXISTENT_KEY", "default-value")
	assert.Equal(t, "default-value", result)
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	// Create temp .env file.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `# Test env file
ENV=staging
LOG_LEVEL=debug
DATA_PATH=/test/path
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Clear any existing env vars.
	os.Unsetenv("ENV")           //nolint:errcheck // Test cleanup
	os.Unsetenv("LOG_LEVEL")     //nolint:errcheck // Test cleanup
	os.Unsetenv("DATA_PATH")     //nolint:errcheck // Test cleanup
	os.Unsetenv("QUOTED_VALUE")  //nolint:errcheck // Test cleanup
	os.Unsetenv("SINGLE_QUOTED") //nolint:errcheck // Test cleanup
	defer func() {
		os.Unsetenv("ENV")           //nolint:errcheck // Test cleanup
		os.Unsetenv("LOG_LEVEL")     //nolint:errcheck // Test cleanup
		os.Unsetenv("DATA_PATH")     //nolint:errcheck // Test cleanup
		os.Unsetenv("QUOTED_VALUE")  //nolint:errcheck // Test cleanup
		os.Unsetenv("SINGLE_QUOTED") //nolint:errcheck // Test cleanup
	}()

	// Load the file.
	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Verify values were loaded.
	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "/test/path", os.Getenv("DATA_PATH"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	// Create temp .env file with invalid format.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
ANOTHER_VALID=value
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Should return error.
	err = loadEnvFile(envFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	err := loadEnvFile("/nonexistent/file/.env")
	assert.Error(t, err)
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	// Set env var first.
	os.Setenv("TEST_VAR", "original-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_VAR")           //nolint:errcheck // Test cleanup

	// Create temp .env file that tries to override it.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `TEST_VAR=new-value`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Load the file.
	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Original value should be preserved.
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}

func TestLoadEnvFile_EmptyLines(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `
KEY1=value1


KEY2=value2

# Comment

KEY3=value3
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	os.Unsetenv("KEY1") //nolint:errcheck // Test cleanup
	os.Unsetenv("KEY2") //nolint:errcheck // Test cleanup
	os.Unsetenv("KEY3") //nolint:errcheck // Test cleanup
	defer func() {
		os.Unsetenv("KEY1") //nolint:errcheck // Test cleanup
		os.Unsetenv("KEY2") //nolint:errcheck // Test cleanup
		os.Unsetenv("KEY3") //nolint:errcheck // Test cleanup
	}()

	err = loadEnvFile(envFile)
	require.NoError(t, err)

	assert.Equal(t, "value1", os.Getenv("KEY1"))
	assert.Equal(t, "value2", os.Getenv("KEY2"))
	assert.Equal(t, "value3", os.Getenv("KEY3"))
}

func TestLoadEnvFile_Whitespace(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `  KEY_WITH_SPACES  =  value with spaces  `
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	os.Unsetenv("KEY_WITH_SPACES")       //nolint:errcheck // Test cleanup
	defer os.Unsetenv("KEY_WITH_SPACES") //nolint:errcheck // Test cleanup

	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Whitespace should be trimmed.
	assert.Equal(t, "value with spaces", os.Getenv("KEY_WITH_SPACES"))
}
