// Package config provides Viper-based configuration loading for the manifest
// generator.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "ZONEMANIFEST"

// PathsConfig holds the input and output locations.
type PathsConfig struct {
	// Root holds one working directory per map.
	Root string `mapstructure:"root"`
	// Output receives the generated <map>.csv manifests.
	Output string `mapstructure:"output"`
}

// BuildConfig holds build flavour settings.
type BuildConfig struct {
	// Singleplayer selects singleplayer conventions: no net constant
	// strings and the col_map_sp collision tag.
	Singleplayer bool `mapstructure:"singleplayer"`
}

// TokensConfig selects how entity-data key references are resolved.
// At most one of Table and Script may be set; neither means literal keys.
type TokensConfig struct {
	// Table is the path of a YAML token table.
	Table string `mapstructure:"table"`
	// Script is the path of a Lua script defining resolve_token(ref).
	Script string `mapstructure:"script"`
	// InstructionLimit bounds Lua opcodes per resolve_token call; 0 = default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Build   BuildConfig   `mapstructure:"build"`
	Tokens  TokensConfig  `mapstructure:"tokens"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validatePaths(c.Paths); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTokens(c.Tokens); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePaths(p PathsConfig) error {
	var errs []string
	if p.Root == "" {
		errs = append(errs, "paths.root must not be empty")
	}
	if p.Output == "" {
		errs = append(errs, "paths.output must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTokens(t TokensConfig) error {
	var errs []string
	if t.Table != "" && t.Script != "" {
		errs = append(errs, "tokens.table and tokens.script are mutually exclusive")
	}
	if t.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("tokens.instruction_limit must be >= 0, got %d", t.InstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// New returns a Viper instance with defaults and ZONEMANIFEST_ environment
// overrides applied. If path is non-empty the file is read as well.
//
// Postcondition: Returns a configured Viper or a non-nil error.
func New(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path uses defaults
// and the environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v, err := New(path)
	if err != nil {
		return Config{}, err
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.root", "zonetool")
	v.SetDefault("paths.output", "zone_source")

	v.SetDefault("build.singleplayer", false)

	v.SetDefault("tokens.table", "")
	v.SetDefault("tokens.script", "")
	v.SetDefault("tokens.instruction_limit", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
