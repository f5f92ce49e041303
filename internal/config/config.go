package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration for the application
type Config struct {
	// HTTPAddr is the listen address of the API server
	HTTPAddr string
	// DatabaseURL selects PostgreSQL when set (postgres://...); otherwise a
	// SQLite file under DataDir is used
	DatabaseURL string
	// DataDir holds the SQLite database and the stored API credential
	DataDir string
	// OpenAIBaseURL overrides the chat-completions endpoint (tests, proxies)
	OpenAIBaseURL string
	// OpenAIModel is the chat model used for generation and validation
	OpenAIModel string
	// WordCountInterval is how often the scheduler reconciles category word counts
	WordCountInterval time.Duration
	LogLevel          string
	LogFormat         string
}

// Load reads configuration from the environment, consulting a .env file if present
func Load() *Config {
	// Missing .env is fine, env vars still apply
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DataDir:           getEnv("DATA_DIR", "data"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		WordCountInterval: time.Hour,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	if v := os.Getenv("WORD_COUNT_INTERVAL_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			cfg.WordCountInterval = time.Duration(m) * time.Minute
		}
	}

	return cfg
}

// NewLogger configures the process-wide logrus logger from config and returns it
func NewLogger(cfg *Config) *logrus.Logger {
	logger := logrus.StandardLogger()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
