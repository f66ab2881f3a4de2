// Package config loads teleflow settings from defaults, an optional TOML
// file, .env files and TELEFLOW_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/db"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/logging"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

// Coaching providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds teleflow configuration.
type Config struct {
	Language      script.Locale
	StoragePath   string
	ScriptPath    string
	AutosaveDelay time.Duration
	TickInterval  time.Duration
	LogFile       string
	Coach         Coach
}

// Coach configures the coaching backend. An empty APIKey is valid and means
// coaching is not configured.
type Coach struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// fileConfig mirrors the TOML layout. Durations are strings so they can be
// written as "1s" or "500ms".
type fileConfig struct {
	Language string `toml:"language"`
	Storage  struct {
		Path string `toml:"path"`
	} `toml:"storage"`
	Script struct {
		Path string `toml:"path"`
	} `toml:"script"`
	Session struct {
		AutosaveDelay string `toml:"autosave_delay"`
		TickInterval  string `toml:"tick_interval"`
	} `toml:"session"`
	Coach struct {
		Provider  string `toml:"provider"`
		Model     string `toml:"model"`
		APIKey    string `toml:"api_key"`
		BaseURL   string `toml:"base_url"`
		MaxTokens int    `toml:"max_tokens"`
		Timeout   string `toml:"timeout"`
	} `toml:"coach"`
	Log struct {
		File string `toml:"file"`
	} `toml:"log"`
}

// DefaultPath returns ~/.config/teleflow/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "teleflow", "config.toml")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Language:      script.LocaleVN,
		StoragePath:   db.DefaultDBPath(),
		AutosaveDelay: time.Second,
		TickInterval:  time.Second,
		LogFile:       logging.DefaultPath(),
		Coach: Coach{
			Provider:  ProviderAnthropic,
			MaxTokens: 300,
			Timeout:   30 * time.Second,
		},
	}
}

// Load builds the configuration. An empty path reads DefaultPath if it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.applyFile(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := LoadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.resolveAPIKey()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads each existing file into the environment. Variables that
// are already set are left alone.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := script.ParseLocale(string(c.Language)); err != nil {
		return err
	}
	switch c.Coach.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported coach provider %q", c.Coach.Provider)
	}
	if c.AutosaveDelay <= 0 {
		return fmt.Errorf("autosave_delay must be positive, got %v", c.AutosaveDelay)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %v", c.TickInterval)
	}
	if c.Coach.MaxTokens <= 0 {
		return fmt.Errorf("coach max_tokens must be positive, got %d", c.Coach.MaxTokens)
	}
	return nil
}

func (c *Config) applyFile(data []byte) error {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse toml: %w", err)
	}

	if fc.Language != "" {
		loc, err := script.ParseLocale(fc.Language)
		if err != nil {
			return err
		}
		c.Language = loc
	}
	setString(&c.StoragePath, expandHome(fc.Storage.Path))
	setString(&c.ScriptPath, expandHome(fc.Script.Path))
	setString(&c.LogFile, expandHome(fc.Log.File))
	setString(&c.Coach.Provider, strings.ToLower(fc.Coach.Provider))
	setString(&c.Coach.Model, fc.Coach.Model)
	setString(&c.Coach.APIKey, fc.Coach.APIKey)
	setString(&c.Coach.BaseURL, fc.Coach.BaseURL)
	if fc.Coach.MaxTokens != 0 {
		c.Coach.MaxTokens = fc.Coach.MaxTokens
	}

	durations := []struct {
		name string
		raw  string
		dest *time.Duration
	}{
		{"session.autosave_delay", fc.Session.AutosaveDelay, &c.AutosaveDelay},
		{"session.tick_interval", fc.Session.TickInterval, &c.TickInterval},
		{"coach.timeout", fc.Coach.Timeout, &c.Coach.Timeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dest = parsed
	}
	return nil
}

func (c *Config) applyEnv() error {
	if val := os.Getenv("TELEFLOW_LANGUAGE"); val != "" {
		loc, err := script.ParseLocale(val)
		if err != nil {
			return fmt.Errorf("TELEFLOW_LANGUAGE: %w", err)
		}
		c.Language = loc
	}
	overrideString(&c.StoragePath, "TELEFLOW_DB_PATH")
	overrideString(&c.ScriptPath, "TELEFLOW_SCRIPT")
	overrideString(&c.LogFile, "TELEFLOW_LOG_FILE")
	overrideDuration(&c.AutosaveDelay, "TELEFLOW_AUTOSAVE_DELAY")
	overrideDuration(&c.TickInterval, "TELEFLOW_TICK_INTERVAL")

	overrideString(&c.Coach.Provider, "TELEFLOW_COACH_PROVIDER")
	c.Coach.Provider = strings.ToLower(c.Coach.Provider)
	overrideString(&c.Coach.Model, "TELEFLOW_COACH_MODEL")
	overrideString(&c.Coach.APIKey, "TELEFLOW_COACH_API_KEY")
	overrideString(&c.Coach.BaseURL, "TELEFLOW_COACH_BASE_URL")
	overrideInt(&c.Coach.MaxTokens, "TELEFLOW_COACH_MAX_TOKENS")
	overrideDuration(&c.Coach.Timeout, "TELEFLOW_COACH_TIMEOUT")
	return nil
}

// resolveAPIKey falls back to the provider's own variable, then API_KEY.
func (c *Config) resolveAPIKey() {
	if c.Coach.APIKey != "" {
		return
	}
	providerEnv := "ANTHROPIC_API_KEY"
	if c.Coach.Provider == ProviderOpenAI {
		providerEnv = "OPENAI_API_KEY"
	}
	for _, key := range []string{providerEnv, "API_KEY"} {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			c.Coach.APIKey = val
			return
		}
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func setString(dest *string, val string) {
	if val != "" {
		*dest = val
	}
}

func overrideString(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

func overrideDuration(dest *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*dest = parsed
		}
	}
}

func overrideInt(dest *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dest = parsed
		}
	}
}
