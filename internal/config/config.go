package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Calendar CalendarConfig
	Cache    CacheConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
	SSEExpiration    time.Duration
}

// CalendarConfig controls the authoritative Hijri source and the local
// converter.
type CalendarConfig struct {
	AuthoritativeURL      string
	AuthoritativeEnabled  bool
	AuthoritativeTimeout  time.Duration
	RefreshInterval       time.Duration
	LegacyDriftCorrection bool
}

// CacheConfig selects where tenant seed flags live.
type CacheConfig struct {
	Driver        string // memory | redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	CacheMemory    = "memory"
	CacheRedis     = "redis"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if getEnv("APP_ENV", "development") == "production" {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		slog.Debug("no .env file, using process environment")
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Riyadh"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     getEnv("DB_DRIVER", DriverPostgres),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "aqlhr"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "aqlhr.db"),
	}

	// JWT configuration
	sseExpiration, err := time.ParseDuration(getEnv("JWT_SSE_EXPIRATION_TIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_SSE_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		SSEExpiration:    sseExpiration,
	}

	// Calendar configuration
	timeout, err := time.ParseDuration(getEnv("HIJRI_SOURCE_TIMEOUT", "3s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HIJRI_SOURCE_TIMEOUT: %w", err)
	}
	refresh, err := time.ParseDuration(getEnv("CALENDAR_REFRESH_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_REFRESH_INTERVAL: %w", err)
	}
	sourceEnabled, err := strconv.ParseBool(getEnv("HIJRI_SOURCE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid HIJRI_SOURCE_ENABLED: %w", err)
	}
	legacyCorrection, err := strconv.ParseBool(getEnv("HIJRI_LEGACY_DRIFT_CORRECTION", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid HIJRI_LEGACY_DRIFT_CORRECTION: %w", err)
	}

	config.Calendar = CalendarConfig{
		AuthoritativeURL:      getEnv("HIJRI_SOURCE_URL", "https://api.aladhan.com"),
		AuthoritativeEnabled:  sourceEnabled,
		AuthoritativeTimeout:  timeout,
		RefreshInterval:       refresh,
		LegacyDriftCorrection: legacyCorrection,
	}

	// Cache configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Cache = CacheConfig{
		Driver:        getEnv("CACHE_DRIVER", CacheMemory),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err))
	}
	if c.JWT.SSEExpiration <= 0 {
		errs = append(errs, errors.New("JWT_SSE_EXPIRATION_TIME must be positive"))
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required for the postgres driver"))
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver))
	}

	switch c.Cache.Driver {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_DRIVER %q", c.Cache.Driver))
	}

	if c.Calendar.AuthoritativeTimeout <= 0 {
		errs = append(errs, errors.New("HIJRI_SOURCE_TIMEOUT must be positive"))
	}
	if c.Calendar.RefreshInterval <= 0 {
		errs = append(errs, errors.New("CALENDAR_REFRESH_INTERVAL must be positive"))
	}
	if c.Calendar.AuthoritativeEnabled && c.Calendar.AuthoritativeURL == "" {
		errs = append(errs, errors.New("HIJRI_SOURCE_URL is required when the source is enabled"))
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE %q is invalid: %w", c.App.Timezone, err))
	}

	return errors.Join(errs...)
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
