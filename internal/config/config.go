package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jbweber/homelab/nbdhcp/internal/datastore"
)

// EnvPrefix is prepended to every environment variable nbdhcp reads, e.g. NBDHCP_DB_PATH
const EnvPrefix = "NBDHCP"

// Config holds all configuration for the nbdhcp service
type Config struct {
	DBPath   string `mapstructure:"db_path"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		DBPath:   "~/nbdhcp/data/nbdhcp.db",
		Port:     "8080",
		LogLevel: "info",
	}
}

// SetDefaults registers the NewConfig values on v so that environment
// variables are picked up for every key.
func SetDefaults(v *viper.Viper) {
	defaults := NewConfig()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("log_level", defaults.LogLevel)
}

// Load resolves the configuration from, lowest precedence first: defaults,
// the optional YAML file, NBDHCP_* environment variables and any flags
// already bound on v.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	return cfg, nil
}

// InitializeDatabase opens the database, tunes it and brings the schema up to date
func (c *Config) InitializeDatabase() (*datastore.Datastore, error) {
	dbPath := c.expandPath(c.DBPath)

	// Ensure database directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	ds, err := datastore.New(connectionDSN(dbPath))
	if err != nil {
		return nil, err
	}

	OptimizeDatabaseConnection(ds.DB)

	if err := ApplyPragmaOptimizations(ds.DB); err != nil {
		ds.Close()
		return nil, fmt.Errorf("failed to apply performance optimizations: %w", err)
	}

	return ds, nil
}

// expandPath expands ~ to home directory
func (c *Config) expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(homeDir, path[2:])
}
