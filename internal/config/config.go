// Package config loads and validates cashsearch settings.
//
// Values come from, in increasing priority: built-in defaults, the YAML config
// file, a .env file, CASHSEARCH_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the application.
const EnvPrefix = "CASHSEARCH"

// Config is the full application configuration.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Logging LoggingConfig `mapstructure:"logging"`
	History HistoryConfig `mapstructure:"history"`
	Suggest SuggestConfig `mapstructure:"suggest"`
	Search  SearchConfig  `mapstructure:"search"`
}

// BackendConfig locates the search index API.
type BackendConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Burst     int           `mapstructure:"burst" validate:"gte=1"`
}

// SuggestConfig tunes the suggestion pipeline.
type SuggestConfig struct {
	Debounce          time.Duration `mapstructure:"debounce" validate:"gt=0"`
	MinLength         int           `mapstructure:"min_length" validate:"gte=1"`
	AutocompleteLimit int           `mapstructure:"autocomplete_limit" validate:"gte=1,lte=100"`
	SpellingLimit     int           `mapstructure:"spelling_limit" validate:"gte=1,lte=100"`
}

// SearchConfig tunes the search controller.
type SearchConfig struct {
	PageSize       int     `mapstructure:"page_size" validate:"gte=1,lte=200"`
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" validate:"gt=0,lte=1"`
}

// HistoryConfig controls the recent-search store.
type HistoryConfig struct {
	Path    string `mapstructure:"path"`
	Limit   int    `mapstructure:"limit" validate:"gte=1"`
	Enabled bool   `mapstructure:"enabled"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	File   string `mapstructure:"file"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://localhost:8080/api")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.rate_limit", 0.0)
	v.SetDefault("backend.burst", 5)

	v.SetDefault("suggest.debounce", 300*time.Millisecond)
	v.SetDefault("suggest.min_length", 2)
	v.SetDefault("suggest.autocomplete_limit", 10)
	v.SetDefault("suggest.spelling_limit", 5)

	v.SetDefault("search.page_size", 10)
	v.SetDefault("search.fuzzy_threshold", 0.3)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "~/.local/share/cashsearch/history.db")
	v.SetDefault("history.limit", 8)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
}

// ReadInto points v at cfgFile, or the standard locations when it is empty,
// wires environment overrides and reads the file. A missing config file is
// not an error.
func ReadInto(v *viper.Viper, cfgFile string) error {
	// A .env file is optional; real environment variables win over it.
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cashsearch"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	cfg.History.Path = ExpandPath(cfg.History.Path)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			problems := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("%w: history.path is required when history is enabled", common.ErrMissingConfig)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
