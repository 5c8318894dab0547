// Package config provides configuration loading for the slave. It supports
// loading from properties/INI files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Config holds all configuration options for the slave.
type Config struct {
	Master         string        // controller host the channel connects to
	SlaveID        string        // agent identity; generated when empty
	SlaveSecret    string        // shared secret
	CheckInterval  time.Duration // channel liveness check period
	DataDir        string        // persistent state (agent identity file)
	MetricsEnabled bool
	MetricsPort    string
}

// defaultConfig returns a Config with hardcoded defaults.
func defaultConfig() *Config {
	return &Config{
		CheckInterval:  5 * time.Second,
		DataDir:        "/var/lib/automatica-slave",
		MetricsEnabled: false,
		MetricsPort:    "9099",
	}
}

// LoadConfig loads configuration from the specified file path.
// Precedence: environment variables > config file > defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			iniFile, err := ini.Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}

			section := iniFile.Section("")

			if section.HasKey("master") {
				cfg.Master = section.Key("master").String()
			}
			if section.HasKey("slave_id") {
				cfg.SlaveID = section.Key("slave_id").String()
			}
			if section.HasKey("slave_secret") {
				cfg.SlaveSecret = section.Key("slave_secret").String()
			}
			if section.HasKey("check_interval") {
				seconds, err := section.Key("check_interval").Int()
				if err != nil || seconds <= 0 {
					return nil, fmt.Errorf("invalid check_interval in %s: %s", path, section.Key("check_interval").String())
				}
				cfg.CheckInterval = time.Duration(seconds) * time.Second
			}
			if section.HasKey("data_dir") {
				cfg.DataDir = section.Key("data_dir").String()
			}
			if section.HasKey("metrics_enabled") {
				cfg.MetricsEnabled = parseBool(section.Key("metrics_enabled").String())
			}
			if section.HasKey("metrics_port") {
				cfg.MetricsPort = section.Key("metrics_port").String()
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("cannot access config file %s: %w", path, err)
		}
		// If file doesn't exist, just use defaults (no error)
	}

	if v := os.Getenv("MASTER"); v != "" {
		cfg.Master = v
	}
	if v := os.Getenv("SLAVE_ID"); v != "" {
		cfg.SlaveID = v
	}
	if v := os.Getenv("SLAVE_SECRET"); v != "" {
		cfg.SlaveSecret = v
	}
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid CHECK_INTERVAL: %s", v)
		}
		cfg.CheckInterval = time.Duration(seconds) * time.Second
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.MetricsEnabled = parseBool(v)
	}
	if v := os.Getenv("METRICS_PORT"); v != "" {
		cfg.MetricsPort = v
	}

	return cfg, nil
}

// LoadConfigWithDefaults tries to load configuration from default locations:
// /etc/automatica-slave/slave.conf, then ./slave.conf, then hardcoded
// defaults. Environment variables override file values.
func LoadConfigWithDefaults() (*Config, error) {
	defaultPaths := []string{
		"/etc/automatica-slave/slave.conf",
		"./slave.conf",
	}

	for _, path := range defaultPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}

	return LoadConfig("")
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.Master == "" {
		return fmt.Errorf("master is required (config key master or env MASTER)")
	}
	if c.SlaveSecret == "" {
		return fmt.Errorf("slave_secret is required (config key slave_secret or env SLAVE_SECRET)")
	}
	return nil
}

func parseBool(v string) bool {
	v = strings.ToLower(v)
	return v == "true" || v == "1" || v == "yes"
}
