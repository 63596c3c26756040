// Package config loads server configuration once at process start.
// Values come from the environment (PDI_ prefix) with an optional YAML
// config file underneath; missing database credentials for a network driver
// is a fatal startup condition, not a per-request error.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bbeeken/PDIMCPServer/internal/errors"
	"github.com/bbeeken/PDIMCPServer/internal/version"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Config represents the complete server configuration
type Config struct {
	Database DatabaseConfig `json:"database" mapstructure:"database" yaml:"database"`
	Server   ServerConfig   `json:"server" mapstructure:"server" yaml:"server"`
	HTTP     HTTPConfig     `json:"http" mapstructure:"http" yaml:"http"`
	LLM      LLMConfig      `json:"llm" mapstructure:"llm" yaml:"llm"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging" yaml:"logging"`
}

// DatabaseConfig contains warehouse connection settings
type DatabaseConfig struct {
	Driver      string `json:"driver" mapstructure:"driver" yaml:"driver"`
	Path        string `json:"path" mapstructure:"path" yaml:"path"` // sqlite only
	Host        string `json:"host" mapstructure:"host" yaml:"host"`
	Port        int    `json:"port" mapstructure:"port" yaml:"port"`
	Name        string `json:"name" mapstructure:"name" yaml:"name"`
	User        string `json:"user" mapstructure:"user" yaml:"user"`
	Password    string `json:"password" mapstructure:"password" yaml:"-"`
	PoolSize    int    `json:"poolSize" mapstructure:"pool_size" yaml:"pool_size"`
	MaxOverflow int    `json:"maxOverflow" mapstructure:"max_overflow" yaml:"max_overflow"`
	ViewsFile   string `json:"viewsFile" mapstructure:"views_file" yaml:"views_file"`
}

// ServerConfig identifies the server to MCP clients
type ServerConfig struct {
	Name    string `json:"name" mapstructure:"name" yaml:"name"`
	Version string `json:"version" mapstructure:"version" yaml:"version"`
}

// HTTPConfig contains the HTTP front-end settings
type HTTPConfig struct {
	Host      string `json:"host" mapstructure:"host" yaml:"host"`
	Port      int    `json:"port" mapstructure:"port" yaml:"port"`
	TokenHash string `json:"tokenHash" mapstructure:"token_hash" yaml:"-"` // bcrypt hash; empty disables auth
}

// LLMConfig points the chat front end at its language-model server.
// Consumed by the dashboards, not by this process.
type LLMConfig struct {
	Host  string `json:"host" mapstructure:"host" yaml:"host"`
	Model string `json:"model" mapstructure:"model" yaml:"model"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" yaml:"format"`
	Level  string `json:"level" mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:      DriverSQLite,
			Path:        "warehouse.db",
			Port:        5432,
			PoolSize:    10,
			MaxOverflow: 20,
		},
		Server: ServerConfig{
			Name:    version.ServerName,
			Version: version.Version,
		},
		HTTP: HTTPConfig{
			Host: "localhost",
			Port: 8080,
		},
		LLM: LLMConfig{
			Host:  "http://localhost:11434",
			Model: "llama3",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from the environment and an optional config file.
// configFile may be empty; environment variables always win.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("database.driver", defaults.Database.Driver)
	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.pool_size", defaults.Database.PoolSize)
	v.SetDefault("database.max_overflow", defaults.Database.MaxOverflow)
	v.SetDefault("server.name", defaults.Server.Name)
	v.SetDefault("server.version", defaults.Server.Version)
	v.SetDefault("http.host", defaults.HTTP.Host)
	v.SetDefault("http.port", defaults.HTTP.Port)
	v.SetDefault("llm.host", defaults.LLM.Host)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetEnvPrefix("PDI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration can actually reach a warehouse.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.NewConfigError("database.path")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			return errors.NewConfigError("database.host")
		}
		if c.Database.Name == "" {
			return errors.NewConfigError("database.name")
		}
		if c.Database.User == "" {
			return errors.NewConfigError("database.user")
		}
		if c.Database.Password == "" {
			return errors.NewConfigError("database.password")
		}
	default:
		return errors.New(errors.ConfigMissing,
			fmt.Sprintf("unsupported database driver %q (valid: sqlite, pgx)", c.Database.Driver))
	}

	if c.Database.PoolSize < 1 {
		return errors.New(errors.ConfigMissing, "database.pool_size must be at least 1")
	}
	if c.Database.MaxOverflow < 0 {
		return errors.New(errors.ConfigMissing, "database.max_overflow must not be negative")
	}

	return nil
}

// DSN assembles the driver-specific connection string from components.
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			c.User, c.Password, c.Host, c.Port, c.Name)
	default:
		return c.Path
	}
}

// Render returns the effective configuration as YAML with secrets elided.
func (c *Config) Render() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}
	return string(data), nil
}
