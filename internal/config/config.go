// Package config loads the recipe service configuration from a TOML file, an
// optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the complete recipe service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	Auth    AuthConfig    `toml:"auth"`
	Log     LogConfig     `toml:"log"`
}

type ServerConfig struct {
	// Listen address, host:port
	Addr string `toml:"addr"`
	// Origin echoed in Access-Control-Allow-Origin; empty disables CORS headers
	AllowOrigin string `toml:"allowOrigin"`
}

type CatalogConfig struct {
	// SQLite database file
	Database string `toml:"database"`
	// Seed files or glob patterns imported at startup
	Seeds []string `toml:"seeds"`
	// Re-import seeds when a seed file changes
	Watch bool `toml:"watch"`
}

type AuthConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type LogConfig struct {
	// off, normal or verbose
	Level string `toml:"level"`
}

// Environment variables that override file values.
const (
	EnvAddr     = "RECIPE_ADDR"
	EnvDatabase = "RECIPE_DB"
	EnvUser     = "RECIPE_ADMIN_USER"
	EnvPassword = "RECIPE_ADMIN_PASSWORD"
	EnvSeed     = "RECIPE_SEED"
	EnvLogLevel = "RECIPE_LOG_LEVEL"
)

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Server:  ServerConfig{Addr: ":5000", AllowOrigin: "*"},
		Catalog: CatalogConfig{Database: "recipes.sqlite"},
		Auth:    AuthConfig{Username: "admin", Password: "admin123"},
		Log:     LogConfig{Level: "normal"},
	}
}

// Load reads path (optional when empty and recipeserver.toml is absent), then
// envFile, then the environment, and fills gaps from Defaults.
func Load(path, envFile string) (Config, error) {
	cfg := Config{}
	explicit := path != ""
	if path == "" {
		path = "recipeserver.toml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	} else if explicit {
		return Config{}, fmt.Errorf("config file not found: %s", path)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	return MergeWithDefaults(cfg), nil
}

func decodeFile(path string, cfg *Config) error {
	metadata, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		var unknown []string
		for _, key := range undecoded {
			unknown = append(unknown, key.String())
		}
		return fmt.Errorf("unknown fields in config: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dest *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dest = strings.TrimSpace(v)
		}
	}
	set(EnvAddr, &cfg.Server.Addr)
	set(EnvDatabase, &cfg.Catalog.Database)
	set(EnvUser, &cfg.Auth.Username)
	set(EnvPassword, &cfg.Auth.Password)
	set(EnvLogLevel, &cfg.Log.Level)
	if v, ok := lookup(EnvSeed); ok && strings.TrimSpace(v) != "" {
		cfg.Catalog.Seeds = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == os.PathListSeparator }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MergeWithDefaults fills every empty field of cfg from Defaults.
func MergeWithDefaults(cfg Config) Config {
	defaults := Defaults()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.AllowOrigin == "" {
		cfg.Server.AllowOrigin = defaults.Server.AllowOrigin
	}
	if cfg.Catalog.Database == "" {
		cfg.Catalog.Database = defaults.Catalog.Database
	}
	if cfg.Auth.Username == "" {
		cfg.Auth.Username = defaults.Auth.Username
	}
	if cfg.Auth.Password == "" {
		cfg.Auth.Password = defaults.Auth.Password
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	return cfg
}
