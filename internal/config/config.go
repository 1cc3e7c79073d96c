package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DotEnvPath is the .env file loaded into the environment by Load.
var DotEnvPath = ".env"

// Config represents the redline configuration.
type Config struct {
	Provider              string        `yaml:"provider" json:"provider"`
	Model                 string        `yaml:"model" json:"model"`
	MaxTokens             int           `yaml:"maxTokens" json:"maxTokens"`
	Temperature           float64       `yaml:"temperature" json:"temperature"`
	SegmentSize           int           `yaml:"segmentSize" json:"segmentSize"`
	Concurrency           int           `yaml:"concurrency" json:"concurrency"`
	SegmentTimeoutSeconds int           `yaml:"segmentTimeoutSeconds" json:"segmentTimeoutSeconds"`
	Format                string        `yaml:"format" json:"format"`
	FailOn                string        `yaml:"failOn" json:"failOn"`
	MaxSuggestions        int           `yaml:"maxSuggestions" json:"maxSuggestions"`
	RulesFile             string        `yaml:"rulesFile,omitempty" json:"rulesFile,omitempty"`
	Server                ServerConfig  `yaml:"server" json:"server"`
	Cache                 CacheConfig   `yaml:"cache" json:"cache"`
	Privacy               PrivacyConfig `yaml:"privacy" json:"privacy"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	Dir        string `yaml:"dir,omitempty" json:"dir,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds" json:"ttlSeconds"`
}

// PrivacyConfig controls what is masked before text leaves the machine.
type PrivacyConfig struct {
	RedactPHI bool `yaml:"redactPHI" json:"redactPHI"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:              "openai",
		Model:                 "gpt-4",
		MaxTokens:             2000,
		Temperature:           0.7,
		SegmentSize:           1000,
		Concurrency:           4,
		SegmentTimeoutSeconds: 120,
		Format:                "text",
		FailOn:                "none",
		Server: ServerConfig{
			Addr: ":8000",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactPHI: true,
		},
	}
}

// Validate reports settings that would make an analysis impossible.
func (c Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider must be set")
	}
	if c.SegmentSize <= 0 {
		return fmt.Errorf("segmentSize must be positive, got %d", c.SegmentSize)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", c.Temperature)
	}
	if c.MaxTokens < 0 || c.MaxSuggestions < 0 || c.SegmentTimeoutSeconds < 0 {
		return fmt.Errorf("maxTokens, maxSuggestions and segmentTimeoutSeconds must not be negative")
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for redline.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "redline"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "redline"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "redline"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "redline"), nil
	default:
		return filepath.Join(home, ".config", "redline"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile returns the defaults overlaid with the config file. A missing
// file yields the defaults.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	// Unmarshalling onto the defaults keeps every key the file omits.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	mergeOverrides(&cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadDotEnv sets variables from DotEnvPath that are not already set.
func loadDotEnv() error {
	if DotEnvPath == "" {
		return nil
	}
	if err := godotenv.Load(DotEnvPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", DotEnvPath, err)
	}
	return nil
}

// envKeys maps environment variables to config keys.
var envKeys = []struct {
	env string
	key string
}{
	{"REDLINE_PROVIDER", "provider"},
	{"REDLINE_MODEL", "model"},
	{"REDLINE_MAX_TOKENS", "maxTokens"},
	{"REDLINE_TEMPERATURE", "temperature"},
	{"REDLINE_SEGMENT_SIZE", "segmentSize"},
	{"REDLINE_CONCURRENCY", "concurrency"},
	{"REDLINE_FORMAT", "format"},
	{"REDLINE_FAIL_ON", "failOn"},
	{"REDLINE_ADDR", "server.addr"},
}

// mergeEnv applies REDLINE_* variables.
func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		if v := os.Getenv(e.env); v != "" {
			if err := SetField(cfg, e.key, v); err != nil {
				return fmt.Errorf("invalid %s: %w", e.env, err)
			}
		}
	}
	return nil
}

// mergeOverrides applies CLI flag values. Values that do not parse are ignored.
func mergeOverrides(cfg *Config, overrides map[string]string) {
	for k, v := range overrides {
		if v != "" {
			_ = SetField(cfg, k, v)
		}
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "rulesFile":
		cfg.RulesFile = value
	case "server.addr":
		cfg.Server.Addr = value
	case "cache.dir":
		cfg.Cache.Dir = value
	case "maxTokens":
		return setInt(&cfg.MaxTokens, key, value)
	case "segmentSize":
		return setInt(&cfg.SegmentSize, key, value)
	case "concurrency":
		return setInt(&cfg.Concurrency, key, value)
	case "segmentTimeoutSeconds":
		return setInt(&cfg.SegmentTimeoutSeconds, key, value)
	case "maxSuggestions":
		return setInt(&cfg.MaxSuggestions, key, value)
	case "cache.ttlSeconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		cfg.Temperature = f
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "privacy.redactPHI":
		return setBool(&cfg.Privacy.RedactPHI, key, value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}
