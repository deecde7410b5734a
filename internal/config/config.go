// Package config loads browser settings from a YAML file, MOLBROWSE_*
// environment variables and defaults, in increasing order of precedence
// from defaults to environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "MOLBROWSE"
	FileName  = ".molbrowse.yaml"

	DefaultBaseURL  = "http://localhost:8000"
	DefaultTimeout  = 10 * time.Second
	DefaultRPS      = 5.0
	DefaultBurst    = 5
	DefaultRetryMax = 3
)

type API struct {
	BaseURL  string
	Timeout  time.Duration
	RPS      float64
	Burst    int
	RetryMax int
}

type Log struct {
	File    string
	Level   string
	Verbose bool
}

type Config struct {
	Token string
	API   API
	// ServerSearch forwards submitted search terms as the search query
	// parameter. Local filtering applies either way.
	ServerSearch bool
	// CachePath is the sqlite snapshot file; empty disables the cache.
	CachePath string
	Log       Log
}

// DefaultPath is the config file in the user's home directory.
func DefaultPath() string {
	return filepath.Join(homeDir(), FileName)
}

// DefaultCachePath is the snapshot database in the user's home directory.
func DefaultCachePath() string {
	return filepath.Join(homeDir(), ".molbrowse", "cache.db")
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	return "."
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("token", "")
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("api.rps", DefaultRPS)
	v.SetDefault("api.burst", DefaultBurst)
	v.SetDefault("api.retry_max", DefaultRetryMax)
	v.SetDefault("search.server_side", false)
	v.SetDefault("cache.path", DefaultCachePath())
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.verbose", false)
	return v
}

// Load reads path when it exists. A missing file is not an error; defaults
// and environment still apply.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Token: strings.TrimSpace(v.GetString("token")),
		API: API{
			BaseURL:  strings.TrimSpace(v.GetString("api.base_url")),
			Timeout:  v.GetDuration("api.timeout"),
			RPS:      v.GetFloat64("api.rps"),
			Burst:    v.GetInt("api.burst"),
			RetryMax: v.GetInt("api.retry_max"),
		},
		ServerSearch: v.GetBool("search.server_side"),
		CachePath:    strings.TrimSpace(v.GetString("cache.path")),
		Log: Log{
			File:    strings.TrimSpace(v.GetString("log.file")),
			Level:   v.GetString("log.level"),
			Verbose: v.GetBool("log.verbose"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the client cannot run with.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is empty")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url %q: scheme must be http or https", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.RPS <= 0 || c.API.Burst <= 0 {
		return fmt.Errorf("api.rps and api.burst must be positive")
	}
	if c.API.RetryMax < 0 {
		return fmt.Errorf("api.retry_max must not be negative")
	}
	return nil
}

// Save writes cfg as YAML to path with owner-only permissions. The token is
// required; it is the reason the file exists.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(cfg.Token) == "" {
		return errors.New("token is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config dir: %w", err)
		}
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigPermissions(0o600)
	v.Set("token", cfg.Token)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.rps", cfg.API.RPS)
	v.Set("api.burst", cfg.API.Burst)
	v.Set("api.retry_max", cfg.API.RetryMax)
	v.Set("search.server_side", cfg.ServerSearch)
	v.Set("cache.path", cfg.CachePath)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.verbose", cfg.Log.Verbose)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
