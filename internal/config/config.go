// Package config loads litgrep settings from defaults, an optional YAML
// file, LITGREP_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/agentic-research/litgrep/internal/lang"
	"github.com/agentic-research/litgrep/internal/preview"
	"github.com/agentic-research/litgrep/internal/source"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrMissingQuery    = errors.New("a query string is required")
	ErrNegativeContext = errors.New("context must not be negative")
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrUnknownColor    = errors.New("unknown color mode")
	ErrNotDirectory    = errors.New("not a directory")
)

// Output formats.
const (
	FormatText      = "text"
	FormatJSON      = "json"
	FormatJSONLines = "jsonl"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	envPrefix       = "LITGREP"
	configName      = ".litgrep"
	configType      = "yaml"
	defaultLogLevel = "warn"
)

// Config is everything a search needs.
type Config struct {
	Query      string   `mapstructure:"query"`
	Directory  string   `mapstructure:"directory"`
	Context    int      `mapstructure:"context"`
	Language   string   `mapstructure:"language"`
	Extensions []string `mapstructure:"extensions"`
	Format     string   `mapstructure:"format"`
	Color      string   `mapstructure:"color"`
	SkipDirs   []string `mapstructure:"skip_dirs"`
	FailFast   bool     `mapstructure:"fail_fast"`
	Strict     bool     `mapstructure:"strict"`
	LogLevel   string   `mapstructure:"log_level"`
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFile is read instead of searching for .litgrep.yaml.
	ConfigFile string
	// Flags are bound by FlagKeys; only flags the user set take effect.
	Flags *pflag.FlagSet
	// Overrides win over every other source.
	Overrides map[string]any
}

// FlagKeys maps configuration keys to the flag names that set them.
var FlagKeys = map[string]string{
	"directory":  "directory",
	"context":    "context",
	"language":   "language",
	"extensions": "ext",
	"format":     "format",
	"skip_dirs":  "skip-dir",
	"fail_fast":  "fail-fast",
	"log_level":  "log-level",
}

func setDefaults(v *viper.Viper) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	v.SetDefault("query", "")
	v.SetDefault("directory", cwd)
	v.SetDefault("context", preview.DefaultContext)
	v.SetDefault("language", lang.Default)
	v.SetDefault("extensions", []string{})
	v.SetDefault("format", FormatText)
	v.SetDefault("color", ColorAuto)
	v.SetDefault("skip_dirs", source.DefaultSkipDirs)
	v.SetDefault("fail_fast", false)
	v.SetDefault("strict", true)
	v.SetDefault("log_level", defaultLogLevel)
	return nil
}

// Load resolves and validates the configuration.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, name := range FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	// The search root's config file wins over the working directory's.
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if dir := v.GetString("directory"); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration before any file is touched.
func (c *Config) Validate() error {
	if c.Query == "" {
		return ErrMissingQuery
	}
	if c.Context < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeContext, c.Context)
	}
	if !slices.Contains([]string{FormatText, FormatJSON, FormatJSONLines}, c.Format) {
		return fmt.Errorf("%w %q", ErrUnknownFormat, c.Format)
	}
	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, c.Color) {
		return fmt.Errorf("%w %q", ErrUnknownColor, c.Color)
	}
	if _, err := lang.Lookup(c.Language); err != nil {
		return err
	}
	info, err := os.Stat(c.Directory)
	if err != nil {
		return fmt.Errorf("search directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, c.Directory)
	}
	return nil
}

// ResolveLanguage resolves the configured grammar and extension override.
func (c *Config) ResolveLanguage() (*lang.Language, error) {
	l, err := lang.Lookup(c.Language)
	if err != nil {
		return nil, err
	}
	return l.WithExtensions(c.Extensions), nil
}
