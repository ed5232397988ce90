// Package config provides Viper-based configuration loading for the
// rollstat tools.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rollstat/rollstat/internal/roll"
	"github.com/rollstat/rollstat/internal/scripting"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EvaluationConfig holds distribution evaluation settings.
type EvaluationConfig struct {
	// MaxOutcomes caps the outcome-combination product during evaluation.
	MaxOutcomes int `mapstructure:"max_outcomes"`
	// Division selects the default division rounding: "round" or "floor".
	Division string `mapstructure:"division"`
}

// ScriptingConfig holds scenario script execution settings.
type ScriptingConfig struct {
	// InstructionLimit is the Lua opcode budget per script run.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// ContentConfig holds content loading settings.
type ContentConfig struct {
	// DiceDir is a directory of custom die definitions in YAML. Empty
	// means no custom dice are loaded.
	DiceDir string `mapstructure:"dice_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Content    ContentConfig    `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEvaluation(c.Evaluation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateEvaluation(e EvaluationConfig) error {
	var errs []string
	if e.MaxOutcomes < 1 {
		errs = append(errs, fmt.Sprintf("evaluation.max_outcomes must be >= 1, got %d", e.MaxOutcomes))
	}
	validDivision := map[string]bool{"round": true, "floor": true}
	if !validDivision[e.Division] {
		errs = append(errs, fmt.Sprintf("evaluation.division must be one of [round, floor], got %q", e.Division))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 1 {
		return fmt.Errorf("scripting.instruction_limit must be >= 1, got %d", s.InstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ROLLSTAT_ prefix
	v.SetEnvPrefix("ROLLSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in configuration, used when no config file is
// given.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Unmarshal of defaults cannot fail; the keys match the struct tags.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("evaluation.max_outcomes", roll.DefaultMaxOutcomes)
	v.SetDefault("evaluation.division", "round")

	v.SetDefault("scripting.instruction_limit", scripting.DefaultInstructionLimit)

	v.SetDefault("content.dice_dir", "")
}
