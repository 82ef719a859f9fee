// Package config provides YAML-based configuration loading for shiftboard.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SecretEnv overrides auth.secret when set, so the signing key can stay out
// of the config file.
const SecretEnv = "SHIFTBOARD_AUTH_SECRET"

// Config is the top-level shiftboard configuration, loaded from shiftboard.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Admin    AdminConfig    `yaml:"admin"`
	Digest   DigestConfig   `yaml:"digest"`
}

// DatabaseConfig holds connection settings for the relational store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite, mysql, postgres
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	Secret string `yaml:"secret"`
}

// AdminConfig describes the bootstrap admin account created by `sb db init`.
type AdminConfig struct {
	SapID    string `yaml:"sap_id"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// DigestConfig controls the scheduled daily production digest.
type DigestConfig struct {
	Schedule string        `yaml:"schedule"` // 5-field cron expression; empty disables
	Slack    ChannelConfig `yaml:"slack"`
	Discord  ChannelConfig `yaml:"discord"`
}

// ChannelConfig is a bot token plus the channel the digest is posted to.
type ChannelConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether both token and channel are set.
func (c ChannelConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			c.Database.Path = "shiftboard.db"
		}
	case "mysql":
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
	case "postgres":
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
	}
	if c.Database.Name == "" && c.Database.Driver != "sqlite" {
		c.Database.Name = "shiftboard"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if secret, ok := os.LookupEnv(SecretEnv); ok && secret != "" {
		c.Auth.Secret = secret
	}
	if c.Admin.SapID == "" {
		c.Admin.SapID = "0000"
	}
	if c.Admin.Name == "" {
		c.Admin.Name = "Administrator"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql, postgres)", c.Database.Driver))
	}
	if c.Database.Driver != "sqlite" && c.Database.User == "" {
		errs = append(errs, "database.user is required for "+c.Database.Driver)
	}
	if c.Auth.Secret == "" {
		errs = append(errs, "auth.secret is required (or set "+SecretEnv+")")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Digest.Schedule != "" && !c.Digest.Slack.Enabled() && !c.Digest.Discord.Enabled() {
		errs = append(errs, "digest.schedule is set but neither digest.slack nor digest.discord is configured")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
