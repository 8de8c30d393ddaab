package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

const (
	SourceSQLite   = "sqlite"
	SourceSubgraph = "subgraph"
	SourceNone     = "none"

	DefaultPageSize = 50
	DefaultTimeout  = 30 * time.Second
	DefaultHost     = "localhost"
	DefaultPort     = "8080"
	DefaultChainID  = 11155111
)

type Config struct {
	Source SourceConfig `toml:"source"`
	Search SearchConfig `toml:"search"`
	Server ServerConfig `toml:"server"`
}

// SourceConfig selects and configures the indexed source agents are read from.
type SourceConfig struct {
	Type     string `toml:"type"`
	Database string `toml:"database,omitempty"`

	URL     string   `toml:"url,omitempty"`
	ChainID int64    `toml:"chain_id,omitempty"`
	Timeout Duration `toml:"timeout,omitempty"`
	APIKey  string   `toml:"api_key,omitempty"`
}

type SearchConfig struct {
	PageSize int `toml:"page_size"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	dbPath, err := GetDefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("getting default database path: %w", err)
	}
	c := &Config{
		Source: SourceConfig{Type: SourceSQLite, Database: dbPath},
	}
	c.applyDefaults()
	return c, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.Source.Type == "" {
		config.Source.Type = SourceSQLite
	}
	if config.Source.Type == SourceSQLite && config.Source.Database == "" {
		dbPath, err := GetDefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("getting default database path: %w", err)
		}
		config.Source.Database = dbPath
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Source.ChainID == 0 {
		c.Source.ChainID = DefaultChainID
	}
	if c.Source.Timeout.Duration == 0 {
		c.Source.Timeout = Duration{DefaultTimeout}
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = DefaultPageSize
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
}

// Validate checks the source section is usable.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case SourceSQLite:
		if c.Source.Database == "" {
			return fmt.Errorf("source.database is required for the sqlite source")
		}
	case SourceSubgraph:
		if c.Source.URL == "" {
			return fmt.Errorf("source.url is required for the subgraph source")
		}
	case SourceNone:
	default:
		return fmt.Errorf("unknown source type %q", c.Source.Type)
	}
	return nil
}

// Address returns the host:port the API server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	dbPath := c.Source.Database
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return "", fmt.Errorf("getting default database path: %w", err)
		}
	}

	// Replace the placeholder database with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/agentscope/agents.db", dbPath, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default storage directory for the agent mirror
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	storageDir := filepath.Join(dataDir, "agentscope")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", storageDir, err)
	}

	return storageDir, nil
}

// GetDefaultDBPath returns the default mirror database path in the user's data directory
func GetDefaultDBPath() (string, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(storageDir, "agents.db"), nil
}

// GetConfigDir returns the configuration directory for agentscope
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	appConfigDir := filepath.Join(configDir, "agentscope")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", appConfigDir, err)
	}

	return appConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
