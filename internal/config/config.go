// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	PrivateKey  string   `mapstructure:"privatekey"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Google API access: a service account with Search Console and GA4 read
	// scopes, plus an API key for Custom Search.
	GoogleCredentialsFile string `mapstructure:"googlecredentialsfile"`
	GoogleAPIKey          string `mapstructure:"googleapikey"`
	SearchEngineID        string `mapstructure:"searchengineid"`
	SearchLocale          string `mapstructure:"searchlocale"`
	SearchQuotaPerDay     int    `mapstructure:"searchquotaperday"`

	// Advisory LLM settings (OpenAI-compatible endpoint)
	LLMBaseURL        string `mapstructure:"llmbaseurl"`
	LLMAPIKey         string `mapstructure:"llmapikey"`
	LLMModel          string `mapstructure:"llmmodel"`
	LLMRequestsPerMin int    `mapstructure:"llmrequestspermin"`

	// Job scheduling settings
	RefreshIntervalHours int `mapstructure:"refreshintervalhours"`

	// Data retention settings
	RunsRetentionDays int `mapstructure:"runsretentiondays"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "searchlens")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("privatekey", "88888888888888888888888888888888")
		v.SetDefault("storagepath", "storage")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("searchlocale", "en")
		v.SetDefault("searchquotaperday", 100)
		v.SetDefault("llmbaseurl", "https://api.openai.com/v1")
		v.SetDefault("llmmodel", "gpt-4o-mini")
		v.SetDefault("llmrequestspermin", 20)
		v.SetDefault("refreshintervalhours", 24)
		v.SetDefault("runsretentiondays", 180)

		// Bind environment variables
		v.BindEnv("appname", "SEARCHLENS_APP_NAME")
		v.BindEnv("appport", "SEARCHLENS_APP_PORT")
		v.BindEnv("environment", "SEARCHLENS_ENV")
		v.BindEnv("loglevel", "SEARCHLENS_LOG_LEVEL")
		v.BindEnv("privatekey", "SEARCHLENS_PRIVATE_KEY")
		v.BindEnv("storagepath", "SEARCHLENS_STORAGE_PATH")
		v.BindEnv("logsdir", "SEARCHLENS_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "SEARCHLENS_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "SEARCHLENS_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "SEARCHLENS_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "SEARCHLENS_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "SEARCHLENS_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "SEARCHLENS_DB_MAX_IDLE_CONNS")
		v.BindEnv("googlecredentialsfile", "SEARCHLENS_GOOGLE_CREDENTIALS_FILE")
		v.BindEnv("googleapikey", "SEARCHLENS_GOOGLE_API_KEY")
		v.BindEnv("searchengineid", "SEARCHLENS_SEARCH_ENGINE_ID")
		v.BindEnv("searchlocale", "SEARCHLENS_SEARCH_LOCALE")
		v.BindEnv("searchquotaperday", "SEARCHLENS_SEARCH_QUOTA_PER_DAY")
		v.BindEnv("llmbaseurl", "SEARCHLENS_LLM_BASE_URL")
		v.BindEnv("llmapikey", "SEARCHLENS_LLM_API_KEY")
		v.BindEnv("llmmodel", "SEARCHLENS_LLM_MODEL")
		v.BindEnv("llmrequestspermin", "SEARCHLENS_LLM_REQUESTS_PER_MIN")
		v.BindEnv("refreshintervalhours", "SEARCHLENS_REFRESH_INTERVAL_HOURS")
		v.BindEnv("runsretentiondays", "SEARCHLENS_RUNS_RETENTION_DAYS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		// Validate
		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()

		// Validate private key - in production, must be explicitly set (not empty, not default)
		defaultKey := "88888888888888888888888888888888"
		if cfg.PrivateKey == "" {
			log.Fatal("Private key is required")
		}
		if cfg.IsProduction() && cfg.PrivateKey == defaultKey {
			log.Fatal("Production requires a unique SEARCHLENS_PRIVATE_KEY (cannot use default)")
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if c.SearchQuotaPerDay < 0 {
		return fmt.Errorf("invalid search quota per day: %d", c.SearchQuotaPerDay)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory returns the path to public/static assets (implements cartridge.Config interface).
// The service surface is a JSON API, so there are no assets to serve.
func (c *Config) GetPublicDirectory() string {
	return ""
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
func (c *Config) GetAssetsPrefix() string {
	return "/"
}

// GetAppName returns the application name (implements cartridge.FactoryConfig interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// DatabaseDSN returns the database connection string (implements cartridge.FactoryConfig interface).
func (c *Config) DatabaseDSN() string {
	return c.GetDatabasePath()
}

// GetSessionSecret returns the session encryption key (implements cartridge.FactoryConfig interface).
func (c *Config) GetSessionSecret() string {
	return c.PrivateKey
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment.
// If explicitly set via env var, uses that value. Otherwise test gets 1 for
// stability and other environments get 10 for concurrent report queries.
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment.
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
