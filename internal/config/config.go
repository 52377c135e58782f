// Package config provides Viper-based configuration loading for the battle engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds tunables for the turn controller and the AI agents.
type BattleConfig struct {
	// Seed selects the randomness source: 0 uses crypto/rand, anything else a seeded PRNG.
	Seed int64 `mapstructure:"seed"`
	// CostCeiling caps the unbounded cost-to-all expansion used by the AI.
	CostCeiling int `mapstructure:"cost_ceiling"`
	// AIDelayMin and AIDelayMax bound the pacing delay between AI actions.
	// Both zero disables pacing (headless).
	AIDelayMin time.Duration `mapstructure:"ai_delay_min"`
	AIDelayMax time.Duration `mapstructure:"ai_delay_max"`
	// RandomTargetChance is the probability (0–1) that the AI picks a random legal target.
	RandomTargetChance float64 `mapstructure:"random_target_chance"`
	// MaxSets stops a headless battle after this many sets; 0 means unlimited.
	MaxSets int `mapstructure:"max_sets"`
}

// ContentConfig points at the static YAML content consumed by the engine.
type ContentConfig struct {
	RulesFile    string `mapstructure:"rules_file"`
	ScenarioFile string `mapstructure:"scenario_file"`
	AIDir        string `mapstructure:"ai_dir"`
	AIScriptDir  string `mapstructure:"ai_script_dir"`
	PlayerDomain string `mapstructure:"player_domain"`
	EnemyDomain  string `mapstructure:"enemy_domain"`
}

// TelemetryConfig holds OpenTelemetry tracing settings.
type TelemetryConfig struct {
	// Enabled turns on the OTLP HTTP exporter; otherwise a no-op tracer is used.
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Content   ContentConfig   `mapstructure:"content"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		errs = append(errs, "telemetry.service_name must not be empty when telemetry is enabled")
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

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.CostCeiling < 1 {
		errs = append(errs, fmt.Sprintf("battle.cost_ceiling must be >= 1, got %d", b.CostCeiling))
	}
	if b.AIDelayMin < 0 || b.AIDelayMax < 0 {
		errs = append(errs, "battle.ai_delay_min and battle.ai_delay_max must not be negative")
	}
	if b.AIDelayMax < b.AIDelayMin {
		errs = append(errs, "battle.ai_delay_max must not be less than battle.ai_delay_min")
	}
	if b.RandomTargetChance < 0 || b.RandomTargetChance > 1 {
		errs = append(errs, fmt.Sprintf("battle.random_target_chance must be in [0, 1], got %v", b.RandomTargetChance))
	}
	if b.MaxSets < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_sets must be >= 0, got %d", b.MaxSets))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.RulesFile == "" {
		errs = append(errs, "content.rules_file must not be empty")
	}
	if c.ScenarioFile == "" {
		errs = append(errs, "content.scenario_file must not be empty")
	}
	if c.AIDir == "" {
		errs = append(errs, "content.ai_dir must not be empty")
	}
	if c.PlayerDomain == "" || c.EnemyDomain == "" {
		errs = append(errs, "content.player_domain and content.enemy_domain must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
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

// Defaults returns a Viper instance carrying only the built-in defaults.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.cost_ceiling", 32)
	v.SetDefault("battle.ai_delay_min", "0s")
	v.SetDefault("battle.ai_delay_max", "0s")
	v.SetDefault("battle.random_target_chance", 0.25)
	v.SetDefault("battle.max_sets", 0)

	v.SetDefault("content.rules_file", "content/rules.yaml")
	v.SetDefault("content.scenario_file", "content/scenarios/crossing.yaml")
	v.SetDefault("content.ai_dir", "content/ai")
	v.SetDefault("content.ai_script_dir", "content/scripts/ai")
	v.SetDefault("content.player_domain", "skirmisher")
	v.SetDefault("content.enemy_domain", "skirmisher")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "skirmish")
}
