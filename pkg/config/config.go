package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"voicewell-server/pkg/errors"
)

// Config represents the complete application configuration
type Config struct {
	HTTP      HTTPConfig      `json:"http"`
	Database  DatabaseConfig  `json:"database"`
	Messaging MessagingConfig `json:"messaging"`
	Logging   LoggingConfig   `json:"logging"`
	Engine    EngineConfig    `json:"engine"`
}

// HTTPConfig holds the API server configuration
type HTTPConfig struct {
	// Port the HTTP server listens on
	Port int `json:"port" env:"HTTP_PORT" default:"8080"`

	ReadTimeout  time.Duration `json:"read_timeout" env:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `json:"write_timeout" env:"HTTP_WRITE_TIMEOUT" default:"10s"`

	// Whether the Prometheus /metrics endpoint is exposed
	EnableMetrics bool `json:"enable_metrics" env:"ENABLE_METRICS" default:"true"`
}

// DatabaseConfig holds SQLite persistence configuration
type DatabaseConfig struct {
	Path string `json:"path" env:"DB_PATH" default:"./voicewell.db"`
}

// MessagingConfig holds AMQP publishing configuration. An empty URL
// disables publishing entirely.
type MessagingConfig struct {
	URL       string `json:"url" env:"AMQP_URL"`
	QueueName string `json:"queue_name" env:"AMQP_QUEUE_NAME" default:"wellness_scores"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `json:"format" env:"LOG_FORMAT" default:"text"` // text or json
}

// EngineConfig holds scoring/forecasting window configuration
type EngineConfig struct {
	// Default number of daily points fed to the forecaster
	TrendWindowDays int `json:"trend_window_days" env:"TREND_WINDOW_DAYS" default:"30"`

	// Upper bound a request may ask for
	MaxTrendWindowDays int `json:"max_trend_window_days" env:"MAX_TREND_WINDOW_DAYS" default:"90"`
}

// Load reads configuration from the environment, trying .env files in the
// usual locations first.
func Load(logger *logrus.Logger) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Warn("Failed to get current working directory")
		wd = "unknown"
	}

	possibleEnvFiles := []string{
		".env",
		"../.env",
		filepath.Join(wd, ".env"),
	}

	var loadedFrom string
	for _, envFile := range possibleEnvFiles {
		if _, statErr := os.Stat(envFile); statErr == nil {
			if loadErr := godotenv.Load(envFile); loadErr == nil {
				loadedFrom, _ = filepath.Abs(envFile)
				break
			}
		}
	}

	if loadedFrom != "" {
		logger.WithFields(logrus.Fields{
			"working_dir": wd,
			"path":        loadedFrom,
		}).Info("Successfully loaded .env file")
	} else {
		logger.WithField("working_dir", wd).Debug("No .env file found, using environment variables only")
	}

	config := &Config{
		HTTP: HTTPConfig{
			Port:          getEnvInt("HTTP_PORT", 8080),
			ReadTimeout:   getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./voicewell.db"),
		},
		Messaging: MessagingConfig{
			URL:       getEnv("AMQP_URL", ""),
			QueueName: getEnv("AMQP_QUEUE_NAME", "wellness_scores"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Engine: EngineConfig{
			TrendWindowDays:    getEnvInt("TREND_WINDOW_DAYS", 30),
			MaxTrendWindowDays: getEnvInt("MAX_TREND_WINDOW_DAYS", 90),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return config, nil
}

// Validate checks the configuration for values that cannot work at runtime
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be in 1-65535, got %d", c.HTTP.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.Engine.TrendWindowDays < 2 {
		return fmt.Errorf("TREND_WINDOW_DAYS must be at least 2, got %d", c.Engine.TrendWindowDays)
	}
	if c.Engine.MaxTrendWindowDays < c.Engine.TrendWindowDays {
		return fmt.Errorf("MAX_TREND_WINDOW_DAYS (%d) must be >= TREND_WINDOW_DAYS (%d)",
			c.Engine.MaxTrendWindowDays, c.Engine.TrendWindowDays)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Logging.Format)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Logging.Level, err)
	}
	return nil
}

// ApplyLogging configures the logger from the loaded configuration
func (c *Config) ApplyLogging(logger *logrus.Logger) {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(c.Logging.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
