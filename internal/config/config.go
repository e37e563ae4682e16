// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/amaumene/packarr/internal/constants"
)

const (
	defaultConfigFile   = "config.json"
	defaultDatabasePath = "./packs.db"
)

// Config holds the application configuration. It supports loading from
// environment variables and an optional JSON file; environment
// variables take precedence.
type Config struct {
	// Debrid provider API keys
	APIKeyAllDebrid string `json:"API_KEY_ALLDEBRID"`
	APIKeyTorBox    string `json:"API_KEY_TORBOX"`

	// Public torrent-metadata mirrors, queried in parallel as the last
	// fallback tier.
	MirrorURLs []string `json:"MIRROR_URLS"`

	// Storage settings
	DatabasePath string        `json:"DATABASE_PATH"`
	PackTTL      time.Duration `json:"-"`
	PackTTLDays  int           `json:"PACK_TTL_DAYS"`

	// HTTP server
	Port string `json:"PORT"`
}

// Load reads configuration from environment variables and an optional
// JSON file.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath: getEnvOrDefault("DATABASE_PATH", defaultDatabasePath),
		Port:         getEnvOrDefault("PORT", constants.DefaultPort),
		PackTTLDays:  constants.DefaultPackTTLDays,
	}

	configFile := getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFromFile(configFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if adKey := os.Getenv("API_KEY_ALLDEBRID"); adKey != "" {
		c.APIKeyAllDebrid = adKey
	}
	if tbKey := os.Getenv("API_KEY_TORBOX"); tbKey != "" {
		c.APIKeyTorBox = tbKey
	}
}

func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

// Validate checks the configuration and fills derived and default
// values.
func (c *Config) Validate() error {
	if c.PackTTLDays <= 0 {
		c.PackTTLDays = constants.DefaultPackTTLDays
	}
	c.PackTTL = time.Duration(c.PackTTLDays) * 24 * time.Hour

	if len(c.MirrorURLs) == 0 {
		c.MirrorURLs = []string{
			"https://itorrents.org/torrent/%s.torrent",
			"https://torrage.info/torrent.php?h=%s",
		}
	}

	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
