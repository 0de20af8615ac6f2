package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

// Config is read from the environment, optionally layered over a YAML file
type Config struct {
	Env      string `yaml:"env" env:"KANBAN_ENV" env-default:"prod"`
	DataDir  string `yaml:"data_dir" env:"KANBAN_DATA_DIR"`
	DBFile   string `yaml:"db_file" env:"KANBAN_DB_FILE" env-default:"kanban.db"`
	LogLevel string `yaml:"log_level" env:"KANBAN_LOG_LEVEL" env-default:"info"`
	LogFile  string `yaml:"log_file" env:"KANBAN_LOG_FILE" env-default:"kanban.log"`
}

// Reader produces a Config
type Reader interface {
	Read() (*Config, error)
}

// EnvReader reads the environment, first loading the YAML file at Path if set
type EnvReader struct {
	Path string
}

// NewEnvReader returns a reader that honours KANBAN_CONFIG
func NewEnvReader() EnvReader {
	return EnvReader{Path: os.Getenv("KANBAN_CONFIG")}
}

func (r EnvReader) Read() (*Config, error) {
	cfg := new(Config)

	var err error
	if r.Path != "" {
		// ReadConfig also applies env overrides
		err = cleanenv.ReadConfig(r.Path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir, err = defaultDataDir()
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %q", c.Env)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	if c.DBFile == "" {
		return fmt.Errorf("db file must not be empty")
	}
	return nil
}

// DBPath returns the database location; relative names live in DataDir
func (c *Config) DBPath() string {
	return c.resolve(c.DBFile)
}

// LogPath returns the log file location; relative names live in DataDir
func (c *Config) LogPath() string {
	return c.resolve(c.LogFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// defaultDataDir uses the XDG data directory or falls back to ~/.local/share
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "kanban"), nil
}
