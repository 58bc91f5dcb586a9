package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration. URL, when set, takes
// precedence over the individual fields.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// JWTConfig holds access token configuration
type JWTConfig struct {
	Secret        string        `yaml:"secret"`
	TTL           time.Duration `yaml:"ttl"`
	RefreshHeader string        `yaml:"refresh_header"`
}

// AuthConfig controls whether swatch routes require a valid bearer token
type AuthConfig struct {
	RequireToken bool `yaml:"require_token"`
}

// StorageConfig holds upload storage configuration
type StorageConfig struct {
	Backend     string   `yaml:"backend"`
	BaseDir     string   `yaml:"base_dir"`
	ModelDir    string   `yaml:"model_dir"`
	MaxUploadMB int64    `yaml:"max_upload_mb"`
	S3          S3Config `yaml:"s3"`
}

// S3Config holds S3 bucket configuration
type S3Config struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file, fills in defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SWATCH_JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("SWATCH_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("SWATCH_STORAGE_DIR"); v != "" {
		c.Storage.BaseDir = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = 30 * time.Minute
	}
	if c.JWT.RefreshHeader == "" {
		c.JWT.RefreshHeader = "X-Refresh-Token"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageLocal
	}
	if c.Storage.BaseDir == "" {
		c.Storage.BaseDir = defaultBaseDir()
	}
	if c.Storage.ModelDir == "" {
		c.Storage.ModelDir = "model image"
	}
	if c.Storage.MaxUploadMB <= 0 {
		c.Storage.MaxUploadMB = 32
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// defaultBaseDir is the swatch folder on the current user's desktop
func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "swach image"
	}
	return filepath.Join(home, "Desktop", "swach image")
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}

	switch c.Storage.Backend {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("storage.s3.bucket is required for the s3 backend"))
		}
		if c.Storage.S3.Region == "" {
			errs = append(errs, errors.New("storage.s3.region is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		errs = append(errs, errors.New("database.url or database.host is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MaxUploadBytes returns the multipart size limit in bytes
func (c *StorageConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
