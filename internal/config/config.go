package config

import (
	"fmt"
	"os"
	"strconv"

	"billdocs/internal/logger"
	"billdocs/internal/render"
	"billdocs/internal/store"
)

type Config struct {
	// Storage Configuration
	DataPath     string
	DocumentsKey string
	ProfileKey   string

	// Rendering Configuration
	CurrencySymbol string
	ImageScale     int
	OutputDir      string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	scale, err := strconv.Atoi(getEnv("BILLDOCS_IMAGE_SCALE", strconv.Itoa(render.MinScale)))
	if err != nil {
		return nil, fmt.Errorf("BILLDOCS_IMAGE_SCALE must be an integer: %w", err)
	}

	config := &Config{
		DataPath:       getEnv("BILLDOCS_DATA_PATH", "billdocs.db"),
		DocumentsKey:   getEnv("BILLDOCS_DOCUMENTS_KEY", store.DefaultDocumentsKey),
		ProfileKey:     getEnv("BILLDOCS_PROFILE_KEY", store.DefaultProfileKey),
		CurrencySymbol: getEnv("BILLDOCS_CURRENCY_SYMBOL", render.DefaultCurrencySymbol),
		ImageScale:     scale,
		OutputDir:      getEnv("BILLDOCS_OUTPUT_DIR", "."),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:  getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:      getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default returns the configuration used when the environment is unusable.
func Default() *Config {
	return &Config{
		DataPath:       "billdocs.db",
		DocumentsKey:   store.DefaultDocumentsKey,
		ProfileKey:     store.DefaultProfileKey,
		CurrencySymbol: render.DefaultCurrencySymbol,
		ImageScale:     render.MinScale,
		OutputDir:      ".",
		LogLevel:       "info",
		LogFormat:      "console",
		LogTimeFormat:  "2006-01-02T15:04:05Z07:00",
		LogOutput:      "stderr",
	}
}

func (c *Config) validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("BILLDOCS_DATA_PATH is required")
	}
	if c.DocumentsKey == c.ProfileKey {
		return fmt.Errorf("BILLDOCS_DOCUMENTS_KEY and BILLDOCS_PROFILE_KEY must differ")
	}
	if c.ImageScale < render.MinScale {
		return fmt.Errorf("BILLDOCS_IMAGE_SCALE must be at least %d", render.MinScale)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// RenderOptions returns the options shared by all renderers.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		CurrencySymbol: c.CurrencySymbol,
		Scale:          c.ImageScale,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
