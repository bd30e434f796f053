// Package config loads piggybank.yaml (or piggybank.toml), .env and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/piggybank-dev/piggybank/internal/kv"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/pin"
)

// File names looked up in the data directory, in order.
const (
	YAMLFile = "piggybank.yaml"
	TOMLFile = "piggybank.toml"
	EnvFile  = ".env"
)

// Config represents the top-level piggybank.yaml configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	Security SecurityConfig `yaml:"security" toml:"security"`
	Session  SessionConfig  `yaml:"session" toml:"session"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Git      GitConfig      `yaml:"git" toml:"git"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Backend string `yaml:"backend" toml:"backend" env:"PIGGYBANK_STORAGE_BACKEND"` // memory, dir or sqlite
	Path    string `yaml:"path" toml:"path" env:"PIGGYBANK_STORAGE_PATH"`          // relative to the data directory
}

// SecurityConfig holds the PIN recovery code. Empty disables recovery.
type SecurityConfig struct {
	RecoveryCode string `yaml:"recovery_code" toml:"recovery_code" env:"PIGGYBANK_RECOVERY_CODE"`
}

// SessionConfig controls how long a parent login lasts. Zero never expires.
type SessionConfig struct {
	ParentTimeout time.Duration `yaml:"parent_timeout" toml:"parent_timeout" env:"PIGGYBANK_PARENT_TIMEOUT"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" env:"PIGGYBANK_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"PIGGYBANK_LOG_FORMAT"` // text or json
}

// GitConfig controls snapshot commits of the data directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" toml:"auto_commit" env:"PIGGYBANK_GIT_AUTO_COMMIT"`
	AuthorName  string `yaml:"author_name" toml:"author_name"`
	AuthorEmail string `yaml:"author_email" toml:"author_email"`
}

// Default returns a Config with sensible defaults for a new data directory.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: kv.BackendDir,
		},
		Security: SecurityConfig{
			RecoveryCode: pin.DefaultRecoveryCode,
		},
		Session: SessionConfig{
			ParentTimeout: 30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Git: GitConfig{
			AuthorName:  "Piggybank",
			AuthorEmail: "piggybank@localhost",
		},
	}
}

// StoragePath returns the backend location inside home. An empty path picks a
// per-backend default.
func (c *Config) StoragePath(home string) string {
	p := c.Storage.Path
	if p == "" {
		switch c.Storage.Backend {
		case kv.BackendSQLite:
			p = "piggybank.db"
		default:
			p = "data"
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case kv.BackendMemory, kv.BackendDir, kv.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if c.Security.RecoveryCode != "" && !pin.ValidateFormat(c.Security.RecoveryCode) {
		errs = append(errs, fmt.Errorf("security.recovery_code: must be 4 digits or empty"))
	}
	if c.Session.ParentTimeout < 0 {
		errs = append(errs, fmt.Errorf("session.parent_timeout: must not be negative"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// LoggerConfig converts the log section into a log.Config.
func (c *Config) LoggerConfig() log.Config {
	lc := log.DefaultConfig()
	if lvl, err := log.ParseLevel(c.Log.Level); err == nil {
		lc.Level = lvl
	}
	if c.Log.Format != "" {
		lc.Format = strings.ToLower(c.Log.Format)
	}
	return lc
}

// File returns the config file in dir, preferring YAML. Empty if neither exists.
func File(dir string) string {
	for _, name := range []string{YAMLFile, TOMLFile} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load builds the configuration for a data directory: defaults, then the
// config file if present, then .env and the process environment.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if path := File(dir); path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}

	envPath := filepath.Join(dir, EnvFile)
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envPath, err)
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if filepath.Ext(path) == ".toml" {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// Save writes a Config, as TOML if path ends in .toml and YAML otherwise.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if filepath.Ext(path) == ".toml" {
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(cfg)
		data = []byte(sb.String())
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
