package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/pack-planner/internal/planner"
	"github.com/eugenenazirov/pack-planner/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	PlanningDefaults     storage.Defaults
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string          `yaml:"port"`
	PackDefaults         yamlPackDefault `yaml:"pack_defaults"`
	ShutdownGracePeriod  string          `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string          `yaml:"read_header_timeout"`
	WriteTimeout         string          `yaml:"write_timeout"`
	IdleTimeout          string          `yaml:"idle_timeout"`
	EnableRequestLogging *bool           `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit   `yaml:"rate_limit"`
}

// yamlPackDefault represents the pack defaults section in YAML.
type yamlPackDefault struct {
	MaxItems  int     `yaml:"max_items"`
	MaxWeight float64 `yaml:"max_weight"`
	SortOrder string  `yaml:"sort_order"`
}

// yamlRateLimit represents the rate limit section in YAML. Pointer fields
// distinguish an explicit zero (rate limiting disabled) from an absent key.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	MaxItems       *int
	MaxWeight      *float64
	SortOrder      *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		PlanningDefaults:     storage.DefaultPlanningDefaults(),
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.PackDefaults.MaxItems != 0 {
		cfg.PlanningDefaults.Limits.MaxItems = yamlCfg.PackDefaults.MaxItems
	}
	if yamlCfg.PackDefaults.MaxWeight != 0 {
		cfg.PlanningDefaults.Limits.MaxWeight = yamlCfg.PackDefaults.MaxWeight
	}
	if yamlCfg.PackDefaults.SortOrder != "" {
		order, err := planner.ParseSortOrder(yamlCfg.PackDefaults.SortOrder)
		if err != nil {
			return fmt.Errorf("parse pack_defaults.sort_order: %w", err)
		}
		cfg.PlanningDefaults.Order = order
	}

	if yamlCfg.ShutdownGracePeriod != "" {
		if d, err := time.ParseDuration(yamlCfg.ShutdownGracePeriod); err == nil {
			cfg.ShutdownGracePeriod = d
		}
	}

	if yamlCfg.ReadHeaderTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.ReadHeaderTimeout); err == nil {
			cfg.ReadHeaderTimeout = d
		}
	}

	if yamlCfg.WriteTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.WriteTimeout); err == nil {
			cfg.WriteTimeout = d
		}
	}

	if yamlCfg.IdleTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.IdleTimeout); err == nil {
			cfg.IdleTimeout = d
		}
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if raw := strings.TrimSpace(os.Getenv("PACK_MAX_ITEMS")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PlanningDefaults.Limits.MaxItems = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("PACK_MAX_WEIGHT")); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.PlanningDefaults.Limits.MaxWeight = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("PACK_SORT_ORDER")); raw != "" {
		order, err := planner.ParseSortOrder(raw)
		if err != nil {
			return fmt.Errorf("parse PACK_SORT_ORDER: %w", err)
		}
		cfg.PlanningDefaults.Order = order
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.MaxItems != nil && *overrides.MaxItems > 0 {
		cfg.PlanningDefaults.Limits.MaxItems = *overrides.MaxItems
	}

	if overrides.MaxWeight != nil && *overrides.MaxWeight > 0 {
		cfg.PlanningDefaults.Limits.MaxWeight = *overrides.MaxWeight
	}

	if overrides.SortOrder != nil && *overrides.SortOrder != "" {
		order, err := planner.ParseSortOrder(*overrides.SortOrder)
		if err != nil {
			return fmt.Errorf("parse sort order flag: %w", err)
		}
		cfg.PlanningDefaults.Order = order
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.PlanningDefaults.Limits.MaxItems <= 0 {
		return fmt.Errorf("default max items per pack must be positive")
	}
	if cfg.PlanningDefaults.Limits.MaxWeight <= 0 {
		return fmt.Errorf("default max pack weight must be positive")
	}
	return nil
}
