package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds process configuration, loaded from an optional YAML file
// with environment variables taking precedence. Secrets (database DSN,
// object-store credentials) normally arrive via the environment or a
// .env file.
type Config struct {
	DatabaseURL string `yaml:"database_url"`

	Minio struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		PublicURL string `yaml:"public_url"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"minio"`

	Sweep struct {
		// Resolved values; populated from the *_hours fields and the
		// SWEEP_RETENTION / SWEEP_INTERVAL environment variables.
		Retention time.Duration `yaml:"-"`
		Interval  time.Duration `yaml:"-"`

		RetentionHours int `yaml:"retention_hours"`
		IntervalHours  int `yaml:"interval_hours"`
	} `yaml:"sweep"`
}

// loadConfig reads the config file if it exists, then layers the
// environment on top.
func loadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.Sweep.Retention = 24 * time.Hour
	cfg.Sweep.Interval = 24 * time.Hour

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	if cfg.Sweep.RetentionHours > 0 {
		cfg.Sweep.Retention = time.Duration(cfg.Sweep.RetentionHours) * time.Hour
	}
	if cfg.Sweep.IntervalHours > 0 {
		cfg.Sweep.Interval = time.Duration(cfg.Sweep.IntervalHours) * time.Hour
	}

	overlayEnv(&cfg)
	return cfg, nil
}

func overlayEnv(cfg *Config) {
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Minio.Bucket, "MINIO_BUCKET")
	setString(&cfg.Minio.PublicURL, "MINIO_PUBLIC_URL")

	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Minio.UseSSL = b
		}
	}
	if v := os.Getenv("SWEEP_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sweep.Retention = d
		}
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sweep.Interval = d
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
