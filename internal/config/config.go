package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Backend names accepted by TINIFIER_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Strategy names accepted by TINIFIER_STRATEGY.
const (
	StrategyHash  = "hash"
	StrategyToken = "token"
)

// DefaultAuthor is the sentinel identity used when no environment identity
// is available.
const DefaultAuthor = "SYSTEM"

// Config holds the runtime configuration, populated from TINIFIER_*
// environment variables with defaults.
type Config struct {
	Backend     string `env:"TINIFIER_BACKEND"`
	StoragePath string `env:"TINIFIER_STORAGE_PATH"`
	DatabaseDSN string `env:"TINIFIER_DATABASE_DSN"`
	RedisAddr   string `env:"TINIFIER_REDIS_ADDR"`
	Strategy    string `env:"TINIFIER_STRATEGY"`
	CodeLength  int    `env:"TINIFIER_CODE_LENGTH"`
	Author      string `env:"TINIFIER_AUTHOR"`
	LogLevel    string `env:"TINIFIER_LOG_LEVEL"`
}

// New builds the configuration from the environment, applies defaults and
// validates the result.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	// use defaults
	if cfg.Backend == "" {
		cfg.Backend = BackendFile
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "/tmp/tinifier"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyHash
	}
	if cfg.CodeLength == 0 {
		cfg.CodeLength = 8
	}
	if cfg.Author == "" {
		cfg.Author = resolveAuthor()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	// validate
	if err := validateBackend(cfg); err != nil {
		return nil, err
	}
	if err := validateStrategy(cfg); err != nil {
		return nil, err
	}
	if err := validateStoragePath(cfg.StoragePath); err != nil {
		return nil, err
	}
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveAuthor picks the creator identity: the USER environment variable,
// falling back to the SYSTEM sentinel.
func resolveAuthor() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}

	return DefaultAuthor
}

func validateBackend(cfg *Config) error {
	switch cfg.Backend {
	case BackendMemory, BackendFile, BackendRedis:
		return nil
	case BackendPostgres:
		if cfg.DatabaseDSN == "" {
			return fmt.Errorf("backend %q requires TINIFIER_DATABASE_DSN", cfg.Backend)
		}

		return nil
	default:
		return fmt.Errorf("unknown backend: %q", cfg.Backend)
	}
}

func validateStrategy(cfg *Config) error {
	switch cfg.Strategy {
	case StrategyHash:
		return nil
	case StrategyToken:
		if cfg.CodeLength < 2 || cfg.CodeLength > 36 {
			return fmt.Errorf("invalid code length: %d", cfg.CodeLength)
		}

		return nil
	default:
		return fmt.Errorf("unknown strategy: %q", cfg.Strategy)
	}
}

func validateStoragePath(path string) error {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return fmt.Errorf("storage path cannot be a directory: %s", path)
	}

	return nil
}

func validateLogLevel(logLevel string) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}

	return nil
}
