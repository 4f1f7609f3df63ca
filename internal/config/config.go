package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"
	"github.com/localrivet/logx"

	"github.com/buildgrid/azdo-mcp/internal/tools"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the Azure DevOps MCP server configuration
type Config struct {
	// Azure contains the connection settings. All three values are
	// required; the process refuses to start without them.
	Azure struct {
		// OrganizationURL is the base URL of the Azure DevOps
		// organization, e.g. https://dev.azure.com/contoso.
		OrganizationURL string `json:"organization_url" env:"AZURE_ORG_URL" validate:"required"`

		// TenantID is the Entra ID tenant used to obtain credentials.
		TenantID string `json:"tenant_id" env:"AZURE_TENANT_ID" validate:"required"`

		// ClientID is the application (client) identity used to
		// obtain credentials.
		ClientID string `json:"client_id" env:"AZURE_CLIENT_ID" validate:"required"`
	} `json:"azure"`

	// Boards contains work item query defaults.
	Boards struct {
		// DefaultWorkItemType is used when a list request omits the type.
		DefaultWorkItemType string `json:"default_work_item_type" env:"DEFAULT_WORK_ITEM_TYPE"`

		// DefaultMaxCount is used when a list request omits max_count.
		DefaultMaxCount int `json:"default_max_count" env:"DEFAULT_MAX_COUNT" validate:"min:1"`
	} `json:"boards"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".azdomcpconfig"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// NewConfig creates a new Config instance with default values.
// The Azure connection settings have no defaults on purpose: they must
// come from the config file or the environment.
func NewConfig() *Config {
	config := &Config{}
	config.Boards.DefaultWorkItemType = tools.DefaultWorkItemType
	config.Boards.DefaultMaxCount = tools.DefaultMaxCount
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Create a default logger for configuration loading
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create default configuration
	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// File doesn't exist; the environment provider still applies,
		// so connection settings may come from env vars alone.
		stdLogger.Info("Config file not found, using defaults and environment", "path", configPath)
		config := configurator.New(stdLogger).
			WithProvider(configurator.NewDefaultProvider()).
			WithProvider(configurator.NewEnvProvider("AZDOMCP"))
		if err := config.Load(context.Background(), cfg); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	// Create configurator instance
	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider("AZDOMCP")).
		WithValidator(configurator.NewDefaultValidator())

	// Load configuration
	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Store the config path for future operations
	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Save using configurator's SaveToFile function
	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Update internal state
	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetLoggerFromConfig creates a gomcp logx.Logger based on the configuration
func GetLoggerFromConfig(cfg *Config) logx.Logger {
	return logx.NewLogger(cfg.Logging.Level)
}
