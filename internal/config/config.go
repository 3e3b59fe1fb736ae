// Package config provides YAML-based configuration loading for Switchboard.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Switchboard configuration, loaded from config.yaml.
type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Departments []string       `yaml:"departments"`
	Hours       HoursConfig    `yaml:"hours"`
	Janitor     JanitorConfig  `yaml:"janitor"`
	Slack       SlackConfig    `yaml:"slack"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects and parameterizes the backing database.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	Path     string `yaml:"path"`   // sqlite file path
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
}

// HoursConfig holds the default office-hours window seeded for departments
// that have none configured yet.
type HoursConfig struct {
	Default string `yaml:"default"`
}

// JanitorConfig controls the background sweep that closes idle sessions and
// audits segmentation.
type JanitorConfig struct {
	Schedule    string `yaml:"schedule"`     // 5-field cron expression
	IdleMinutes int    `yaml:"idle_minutes"` // close open sessions idle this long
}

// SlackConfig enables data-integrity alerts to a Slack webhook.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
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
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "switchboard.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Name == "" {
			c.Database.Name = "switchboard"
		}
	}
	if len(c.Departments) == 0 {
		c.Departments = []string{"support", "sales", "accounts"}
	}
	if c.Hours.Default == "" {
		c.Hours.Default = "08:00-17:00"
	}
	if c.Janitor.Schedule == "" {
		c.Janitor.Schedule = "*/10 * * * *"
	}
	if c.Janitor.IdleMinutes == 0 {
		c.Janitor.IdleMinutes = 24 * 60
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, "server.port is out of range")
	}
	for i, d := range c.Departments {
		if d == "" {
			errs = append(errs, fmt.Sprintf("departments[%d] is empty", i))
		}
	}
	if c.Janitor.IdleMinutes < 0 {
		errs = append(errs, "janitor.idle_minutes must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
