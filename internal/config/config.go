// Package config resolves service settings from defaults, an optional YAML
// file, and environment variables, in that order. The MONGO_URI and
// ML_SERVICE_URL names are load-bearing: deployments already set them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr = ":5000"
	DefaultMongoURI   = "mongodb://localhost:27017"
	DefaultMLURL      = "http://localhost:8000"
	DefaultUploadDir  = "uploads"

	// DefaultMaxUploadBytes caps CSV uploads at 100 MiB.
	DefaultMaxUploadBytes = 100 * 1024 * 1024

	defaultEnvironment = "local_development"

	configFilePerm = 0o600
)

type Config struct {
	ListenAddr     string `yaml:"listen_addr,omitempty"`
	MongoURI       string `yaml:"mongo_uri,omitempty"`
	MLServiceURL   string `yaml:"ml_service_url,omitempty"`
	UploadDir      string `yaml:"upload_dir,omitempty"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes,omitempty"`
	Environment    string `yaml:"environment,omitempty"`
	// AdminSecret enables bearer-token protection on destructive endpoints
	// when non-empty. Raw string or base64url, see internal/auth.
	AdminSecret string `yaml:"admin_secret,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ListenAddr:     DefaultListenAddr,
		MongoURI:       DefaultMongoURI,
		MLServiceURL:   DefaultMLURL,
		UploadDir:      DefaultUploadDir,
		MaxUploadBytes: DefaultMaxUploadBytes,
		Environment:    defaultEnvironment,
	}
}

// Load resolves the effective config. path may be empty or point at a
// missing file; both mean "defaults plus environment".
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// fine, file is optional
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("unmarshal config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("max_upload_bytes must be > 0, got %d", cfg.MaxUploadBytes)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.MongoURI, "MONGO_URI")
	setFromEnv(&cfg.MLServiceURL, "ML_SERVICE_URL")
	setFromEnv(&cfg.ListenAddr, "SENTIMENT_LISTEN")
	setFromEnv(&cfg.UploadDir, "SENTIMENT_UPLOAD_DIR")
	setFromEnv(&cfg.Environment, "SENTIMENT_ENV")
	setFromEnv(&cfg.AdminSecret, "SENTIMENT_ADMIN_SECRET")

	if v := os.Getenv("SENTIMENT_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Save writes cfg to path atomically.
func Save(path string, cfg Config) error {
	encoded, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := renameio.WriteFile(path, encoded, configFilePerm); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// MaxUploadMB reports the upload cap in whole-ish megabytes for messages and
// the health payload.
func (c Config) MaxUploadMB() float64 {
	return float64(c.MaxUploadBytes) / (1024 * 1024)
}
