package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"luxebites/internal/models"
)

const DefaultPath = "config.yaml"

// Config is the whole server configuration. Values come from the YAML file first
// and are then overridden by environment variables.
type Config struct {
	Server   Server            `yaml:"server"`
	Storage  Storage           `yaml:"storage"`
	SMTP     SMTP              `yaml:"smtp"`
	Checkout Checkout          `yaml:"checkout"`
	LogLevel string            `yaml:"log_level"`
	Journal  string            `yaml:"journal"`
	Menu     []models.MenuItem `yaml:"menu"`
}

// Server holds listen ports and TLS settings.
type Server struct {
	Port      string `yaml:"port"`
	HTTPSPort string `yaml:"https_port"`
	TLS       bool   `yaml:"tls"`
	CertFile  string `yaml:"cert_file"`
	KeyFile   string `yaml:"key_file"`
}

// Storage selects where session data lives: memory, file, redis or postgres.
type Storage struct {
	Driver      string        `yaml:"driver"`
	File        string        `yaml:"file"`
	RedisURL    string        `yaml:"redis_url"`
	RedisPrefix string        `yaml:"redis_prefix"`
	RedisTTL    time.Duration `yaml:"redis_ttl"`
	PostgresDSN string        `yaml:"postgres_dsn"`
}

// SMTP configures confirmation e-mails. Delivery is off without user and pass.
type SMTP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	From string `yaml:"from"`
}

// Checkout tunes the checkout processors.
type Checkout struct {
	ClearDelay time.Duration `yaml:"clear_delay"`
	TimeZone   string        `yaml:"time_zone"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:      "8082",
			HTTPSPort: "8443",
			CertFile:  "localhost.crt",
			KeyFile:   "localhost.key",
		},
		Storage: Storage{
			Driver:      "memory",
			File:        "data/luxebites.json",
			RedisPrefix: "luxebites",
			RedisTTL:    30 * 24 * time.Hour,
		},
		SMTP: SMTP{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Checkout: Checkout{
			ClearDelay: 2 * time.Second,
			TimeZone:   "Africa/Accra",
			SessionTTL: 2 * time.Hour,
		},
		LogLevel: "info",
	}
}

// Load reads path (a missing file is fine) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.User = getEnv("SMTP_USER", c.SMTP.User)
	c.SMTP.Pass = getEnv("SMTP_PASS", c.SMTP.Pass)
	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.RedisURL = getEnv("REDIS_URL", c.Storage.RedisURL)
	c.Storage.PostgresDSN = getEnv("DATABASE_URL", c.Storage.PostgresDSN)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.SMTP.Port = port
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "file":
	case "redis":
		if c.Storage.RedisURL == "" {
			return errors.New("storage driver redis needs redis_url or REDIS_URL")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage driver postgres needs postgres_dsn or DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port == "" {
		return errors.New("server port is empty")
	}
	if c.Checkout.ClearDelay < 0 {
		return errors.New("checkout clear_delay must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the time zone delivery estimates are shown in.
func (c *Config) Location() (*time.Location, error) {
	if c.Checkout.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Checkout.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("checkout time_zone: %w", err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
