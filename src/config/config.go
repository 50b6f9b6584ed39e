package config

import (
	"fmt"
	"os"

	"trading-server/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// DefaultMaxFrameBytes caps payload sizes when the config does not set one.
const DefaultMaxFrameBytes uint32 = 16 << 20 // 16 MiB

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// NewDefaultConfig builds a runnable configuration without a YAML file,
// for when the launcher is driven purely by CLI flags.
func NewDefaultConfig() *Config {
	c := &Config{MConfig: &models.MConfig{
		Name:     "trading-server",
		Host:     "0.0.0.0",
		Port:     8443,
		LogLevel: "INFO",
		TLS: models.MTLSConfig{
			CertFile: "certs/server.crt",
			KeyFile:  "certs/server.key",
		},
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: "trading.db",
		},
	}}
	c.ApplyDefaults()
	return c
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Framing.MaxFrameBytes == 0 {
		c.Framing.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if c.Monitor.Host == "" {
		c.Monitor.Host = "127.0.0.1"
	}
	if c.Monitor.Port == 0 {
		c.Monitor.Port = 8080
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d", c.Port)
	}

	// Validate TLS configuration
	if c.TLS.CertFile == "" {
		return fmt.Errorf("TLS certificate file cannot be empty")
	}
	if c.TLS.KeyFile == "" {
		return fmt.Errorf("TLS private key file cannot be empty")
	}

	// Validate Monitor configuration
	if c.Monitor.Enabled {
		if c.Monitor.Port <= 0 || c.Monitor.Port > 65535 {
			return fmt.Errorf("invalid monitor port number: %d", c.Monitor.Port)
		}
		if c.Monitor.Port == c.Port && c.Monitor.Host == c.Host {
			return fmt.Errorf("monitor cannot share the trading server address %s:%d", c.Host, c.Port)
		}
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
