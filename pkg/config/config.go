package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for insight-engine.
// Configuration comes from config.yaml with environment variable overrides;
// environment variables always win. A missing config.yaml is fine; defaults
// and environment variables then apply on their own.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8088"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Analysis engine limits
	Analysis AnalysisConfig `yaml:"analysis"`
}

// AnalysisConfig bounds the engine's sampling and the upload surface.
type AnalysisConfig struct {
	// ValidationSampleRows caps how many rows quality checks scan.
	ValidationSampleRows int `yaml:"validation_sample_rows" env:"ANALYSIS_VALIDATION_SAMPLE_ROWS" env-default:"1000"`
	// InferenceSampleSize is how many non-empty values type inference reads per column.
	InferenceSampleSize int `yaml:"inference_sample_size" env:"ANALYSIS_INFERENCE_SAMPLE_SIZE" env-default:"10"`
	// ResultCacheCapacity is the number of result lists kept by the optional cache. Zero disables caching.
	ResultCacheCapacity int `yaml:"result_cache_capacity" env:"ANALYSIS_RESULT_CACHE_CAPACITY" env-default:"64"`
	// MaxUploadBytes caps the size of an uploaded dataset.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"ANALYSIS_MAX_UPLOAD_BYTES" env-default:"33554432"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.ValidationSampleRows <= 0 {
		return fmt.Errorf("validation_sample_rows must be positive, got %d", c.Analysis.ValidationSampleRows)
	}
	if c.Analysis.InferenceSampleSize <= 0 {
		return fmt.Errorf("inference_sample_size must be positive, got %d", c.Analysis.InferenceSampleSize)
	}
	if c.Analysis.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.Analysis.MaxUploadBytes)
	}
	return nil
}
