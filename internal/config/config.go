// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Admin document backends.
const (
	AdminBackendSQLite = "sqlite"
	AdminBackendRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Catalog CatalogConfig
	Species SpeciesConfig
	Admin   AdminConfig
	Roster  RosterConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds the on-disk locations of the device and account stores.
type StorageConfig struct {
	DataPath      string
	DevicePath    string // Badger directory (default: {data}/device)
	AccountDBPath string // SQLite file (default: {data}/account.db)
}

// CatalogConfig configures the card catalog client.
type CatalogConfig struct {
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
	// ReferenceLanguage is the language ids are resolved in when a localized search misses.
	ReferenceLanguage string
}

// SpeciesConfig configures the species roster client.
type SpeciesConfig struct {
	BaseURL           string
	RequestsPerSecond float64
}

// AdminConfig configures the shared admin documents.
type AdminConfig struct {
	Backend  string // sqlite or redis
	RedisURL string
	// Actors may write admin documents. Reads are open to everyone.
	Actors   []string
	CacheTTL time.Duration
}

// RosterConfig configures the curated roster tables.
type RosterConfig struct {
	// TablesDir overrides the built-in tables per file. Empty uses the built-in tables only.
	TablesDir string
	// Watch reloads the tables when files in TablesDir change.
	Watch bool
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("binderkeep", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Storage flags
	dataPath := fs.String("data-path", "", "Base path for local data")
	devicePath := fs.String("device-path", "", "Device store directory (default: {data}/device)")
	accountDBPath := fs.String("account-db", "", "Account database file (default: {data}/account.db)")

	// Collaborator flags
	catalogURL := fs.String("catalog-url", "", "Card catalog base URL")
	catalogRPS := fs.String("catalog-rps", "", "Catalog requests per second (default: 10)")
	catalogTimeout := fs.String("catalog-timeout", "", "Catalog request timeout (default: 10s)")
	referenceLanguage := fs.String("reference-language", "", "Catalog reference language (default: en)")
	speciesURL := fs.String("species-url", "", "Species roster base URL")
	speciesRPS := fs.String("species-rps", "", "Species requests per second (default: 5)")

	// Admin flags
	adminBackend := fs.String("admin-backend", "", "Admin document backend (sqlite, redis)")
	redisURL := fs.String("redis-url", "", "Redis URL for the redis admin backend")
	adminActors := fs.String("admin-actors", "", "Comma-separated actors allowed to write admin documents")
	adminCacheTTL := fs.String("admin-cache-ttl", "", "Admin document cache lifetime (default: 5m)")

	// Roster flags
	rosterDir := fs.String("roster-dir", "", "Directory of roster table overrides")
	rosterWatch := fs.String("roster-watch", "", "Reload roster tables on change (default: false)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath:      getConfigValue(*dataPath, "DATA_PATH", ""),
			DevicePath:    getConfigValue(*devicePath, "DEVICE_PATH", ""),
			AccountDBPath: getConfigValue(*accountDBPath, "ACCOUNT_DB_PATH", ""),
		},
		Catalog: CatalogConfig{
			BaseURL:           getConfigValue(*catalogURL, "CATALOG_URL", "https://api.tcgdex.net/v2"),
			ReferenceLanguage: getConfigValue(*referenceLanguage, "REFERENCE_LANGUAGE", "en"),
		},
		Species: SpeciesConfig{
			BaseURL: getConfigValue(*speciesURL, "SPECIES_URL", ""),
		},
		Admin: AdminConfig{
			Backend:  getConfigValue(*adminBackend, "ADMIN_BACKEND", AdminBackendSQLite),
			RedisURL: getConfigValue(*redisURL, "REDIS_URL", ""),
			Actors:   splitList(getConfigValue(*adminActors, "ADMIN_ACTORS", "")),
		},
		Roster: RosterConfig{
			TablesDir: getConfigValue(*rosterDir, "ROSTER_DIR", ""),
			Watch:     getBoolConfigValue(*rosterWatch, "ROSTER_WATCH", false),
		},
	}

	var err error
	if cfg.Catalog.RequestsPerSecond, err = getFloatConfigValue(*catalogRPS, "CATALOG_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.Species.RequestsPerSecond, err = getFloatConfigValue(*speciesRPS, "SPECIES_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.Catalog.Timeout, err = getDurationConfigValue(*catalogTimeout, "CATALOG_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.Admin.CacheTTL, err = getDurationConfigValue(*adminCacheTTL, "ADMIN_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}
	if cfg.Roster.TablesDir != "" {
		if cfg.Roster.TablesDir, err = expandPath(cfg.Roster.TablesDir, ""); err != nil {
			return nil, fmt.Errorf("invalid roster directory: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Catalog.BaseURL == "" {
		return errors.New("catalog URL is required")
	}
	if c.Species.BaseURL == "" {
		return errors.New("species URL is required")
	}
	if c.Catalog.RequestsPerSecond <= 0 || c.Species.RequestsPerSecond <= 0 {
		return errors.New("requests per second must be positive")
	}
	if _, err := language.Parse(c.Catalog.ReferenceLanguage); err != nil {
		return fmt.Errorf("invalid reference language %q: %w", c.Catalog.ReferenceLanguage, err)
	}

	switch c.Admin.Backend {
	case AdminBackendSQLite:
	case AdminBackendRedis:
		if c.Admin.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis admin backend")
		}
	default:
		return fmt.Errorf("invalid admin backend: %s (must be sqlite or redis)", c.Admin.Backend)
	}
	if c.Admin.CacheTTL < 0 {
		return errors.New("admin cache TTL cannot be negative")
	}

	if c.Roster.Watch && c.Roster.TablesDir == "" {
		return errors.New("roster watch needs a roster directory")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePaths expands the data path and derives the store locations from it.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Storage.DataPath, err = expandPath(c.Storage.DataPath, filepath.Join(homeDir, "BinderKeep")); err != nil {
		return err
	}
	if c.Storage.DevicePath, err = expandPath(c.Storage.DevicePath, filepath.Join(c.Storage.DataPath, "device")); err != nil {
		return err
	}
	if c.Storage.AccountDBPath, err = expandPath(c.Storage.AccountDBPath, filepath.Join(c.Storage.DataPath, "account.db")); err != nil {
		return err
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) (float64, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return v, nil
}

// getDurationConfigValue returns a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
