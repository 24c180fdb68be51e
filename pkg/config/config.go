package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Wallabag struct {
		BaseURL      string        `yaml:"base_url" json:"base_url" jsonschema:"required,description=Wallabag server base URL (e.g. https://app.wallabag.it)"`
		ClientID     string        `yaml:"client_id" json:"client_id" jsonschema:"required,description=OAuth client id"`
		ClientSecret string        `yaml:"client_secret" json:"client_secret" jsonschema:"required,description=OAuth client secret (can use environment variable)"`
		Username     string        `yaml:"username" json:"username" jsonschema:"required,description=Wallabag user name"`
		Password     string        `yaml:"password" json:"password" jsonschema:"required,description=Wallabag user password (can use environment variable)"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP timeout for API calls"`
		PerPage      int           `yaml:"per_page" json:"per_page" jsonschema:"default=30,description=Entries per page when fetching"`
	} `yaml:"wallabag" json:"wallabag" jsonschema:"description=Wallabag server and credentials"`

	Vault struct {
		Dir    string `yaml:"dir" json:"dir" jsonschema:"required,description=Root directory of the markdown vault"`
		Folder string `yaml:"folder" json:"folder" jsonschema:"default=wallabag,description=Folder inside the vault for synced notes"`
	} `yaml:"vault" json:"vault" jsonschema:"description=Local vault configuration"`

	Sync struct {
		Interval   time.Duration `yaml:"interval" json:"interval" jsonschema:"default=30m,description=Interval between periodic sync runs"`
		MaxWorkers int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,description=Maximum concurrent per-entry reconciliations"`
	} `yaml:"sync" json:"sync" jsonschema:"description=Sync scheduling configuration"`

	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Fallback content extraction for entries without content"`

	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:wallabag-sync.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Sync history database configuration"`
}

// ExtractionConfig holds fallback content extraction settings
type ExtractionConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Fetch and extract the original page when an entry has no content"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Extraction timeout per entry"`
	MinTextLength int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=100,description=Minimum text length to consider valid"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=wallabag-sync/1.0,description=User agent for HTTP requests"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for wallabag client
	if cfg.Wallabag.Timeout == 0 {
		cfg.Wallabag.Timeout = 30 * time.Second
	}
	if cfg.Wallabag.PerPage == 0 {
		cfg.Wallabag.PerPage = 30
	}

	// set defaults for vault
	if cfg.Vault.Folder == "" {
		cfg.Vault.Folder = "wallabag"
	}

	// set defaults for sync
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 30 * time.Minute
	}
	if cfg.Sync.MaxWorkers == 0 {
		cfg.Sync.MaxWorkers = 5
	}

	// set defaults for extraction
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 30 * time.Second
	}
	if cfg.Extraction.MinTextLength == 0 {
		cfg.Extraction.MinTextLength = 100
	}
	if cfg.Extraction.UserAgent == "" {
		cfg.Extraction.UserAgent = "wallabag-sync/1.0"
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:wallabag-sync.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate wallabag config
	if cfg.Wallabag.BaseURL == "" {
		return fmt.Errorf("wallabag.base_url is required")
	}
	if !strings.HasPrefix(cfg.Wallabag.BaseURL, "http://") && !strings.HasPrefix(cfg.Wallabag.BaseURL, "https://") {
		return fmt.Errorf("wallabag.base_url must start with http:// or https://")
	}
	if cfg.Wallabag.ClientID == "" {
		return fmt.Errorf("wallabag.client_id is required")
	}
	if cfg.Wallabag.ClientSecret == "" {
		return fmt.Errorf("wallabag.client_secret is required")
	}
	if cfg.Wallabag.Username == "" {
		return fmt.Errorf("wallabag.username is required")
	}
	if cfg.Wallabag.Password == "" {
		return fmt.Errorf("wallabag.password is required")
	}
	if cfg.Wallabag.PerPage < 1 {
		return fmt.Errorf("wallabag.per_page must be at least 1")
	}

	// validate vault config
	if cfg.Vault.Dir == "" {
		return fmt.Errorf("vault.dir is required")
	}

	// validate sync config
	if cfg.Sync.Interval < time.Minute {
		return fmt.Errorf("sync.interval must be at least 1 minute")
	}
	if cfg.Sync.MaxWorkers < 1 {
		return fmt.Errorf("sync.max_workers must be at least 1")
	}

	// validate extraction config
	if cfg.Extraction.Enabled {
		if cfg.Extraction.Timeout < time.Second {
			return fmt.Errorf("extraction timeout must be at least 1 second")
		}
		if cfg.Extraction.MinTextLength < 0 {
			return fmt.Errorf("extraction min_text_length must be non-negative")
		}
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}

// Credentials returns the wallabag credentials for one sync run
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{
		ClientID:     c.Wallabag.ClientID,
		ClientSecret: c.Wallabag.ClientSecret,
		Username:     c.Wallabag.Username,
		Password:     c.Wallabag.Password,
	}
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetExtractionConfig returns fallback extraction configuration
func (c *Config) GetExtractionConfig() ExtractionConfig {
	return c.Extraction
}
