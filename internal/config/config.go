package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	// Embedded zone database so ORG_TIMEZONE resolves on hosts without one.
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	App        AppConfig        `yaml:"app"`
	CORS       CORSConfig       `yaml:"cors"`
	Attendance AttendanceConfig `yaml:"attendance"`

	location *time.Location
}

type DatabaseConfig struct {
	Host          string `yaml:"host" validate:"required"`
	Port          int    `yaml:"port" validate:"required,min=1,max=65535"`
	User          string `yaml:"user" validate:"required"`
	Password      string `yaml:"password" validate:"required"`
	Name          string `yaml:"name" validate:"required"`
	SSLMode       string `yaml:"ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns      int32  `yaml:"max_conns" validate:"gte=0"`
	MinConns      int32  `yaml:"min_conns" validate:"gte=0"`
	MigrationsDir string `yaml:"migrations_dir" validate:"required"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `yaml:"secret" validate:"required"`
	AccessExpiration string `yaml:"access_expiration" validate:"required"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Port              int           `yaml:"port" validate:"required,min=1,max=65535"`
	Env               string        `yaml:"env" validate:"oneof=development staging production test"`
	Name              string        `yaml:"name" validate:"required"`
	Version           string        `yaml:"version" validate:"required"`
	LogLevel          string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	RequestTimeoutRaw string        `yaml:"request_timeout"`
	RequestTimeout    time.Duration `yaml:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,required"`
}

// AttendanceConfig holds the organization timezone and absence sweep settings.
type AttendanceConfig struct {
	Timezone          string        `yaml:"timezone" validate:"required"`
	SweepEnabled      bool          `yaml:"sweep_enabled"`
	SweepIntervalRaw  string        `yaml:"sweep_interval"`
	SweepTimeoutRaw   string        `yaml:"sweep_timeout"`
	SweepLookbackDays int           `yaml:"sweep_lookback_days" validate:"gte=0,lte=31"`
	SweepInterval     time.Duration `yaml:"-"`
	SweepTimeout      time.Duration `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			User:          "postgres",
			Name:          "attendance_engine",
			SSLMode:       "disable",
			MigrationsDir: "migrations",
		},
		JWT: JWTConfig{
			AccessExpiration: "1h",
		},
		App: AppConfig{
			Port:              8080,
			Env:               "development",
			Name:              "attendance-engine",
			Version:           "v1.0.0",
			LogLevel:          "info",
			RequestTimeoutRaw: "15s",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Attendance: AttendanceConfig{
			Timezone:          "Asia/Jakarta",
			SweepEnabled:      true,
			SweepIntervalRaw:  "30m",
			SweepTimeoutRaw:   "10s",
			SweepLookbackDays: 1,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by CONFIG_PATH
// and environment variables, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	config := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	// Database configuration
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	if c.Database.Port, err = getEnvInt("DB_PORT", c.Database.Port); err != nil {
		return err
	}
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSL_MODE", c.Database.SSLMode)
	c.Database.MigrationsDir = getEnv("MIGRATIONS_DIR", c.Database.MigrationsDir)
	maxConns, err := getEnvInt("DB_MAX_CONNS", int(c.Database.MaxConns))
	if err != nil {
		return err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", int(c.Database.MinConns))
	if err != nil {
		return err
	}
	c.Database.MaxConns, c.Database.MinConns = int32(maxConns), int32(minConns)

	// Application configuration
	if c.App.Port, err = getEnvInt("APP_PORT", c.App.Port); err != nil {
		return err
	}
	c.App.Env = getEnv("APP_ENV", c.App.Env)
	c.App.Name = getEnv("APP_NAME", c.App.Name)
	c.App.Version = getEnv("APP_VERSION", c.App.Version)
	c.App.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.App.LogLevel))
	c.App.RequestTimeoutRaw = getEnv("REQUEST_TIMEOUT", c.App.RequestTimeoutRaw)

	// JWT configuration
	c.JWT.Secret = getEnv("JWT_SECRET_KEY", c.JWT.Secret)
	c.JWT.AccessExpiration = getEnv("JWT_ACCESS_EXPIRATION_TIME", c.JWT.AccessExpiration)

	c.CORS.AllowedOrigins = getEnvSlice("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)

	// Attendance configuration
	c.Attendance.Timezone = getEnv("ORG_TIMEZONE", c.Attendance.Timezone)
	if c.Attendance.SweepEnabled, err = getEnvBool("SWEEP_ENABLED", c.Attendance.SweepEnabled); err != nil {
		return err
	}
	c.Attendance.SweepIntervalRaw = getEnv("SWEEP_INTERVAL", c.Attendance.SweepIntervalRaw)
	c.Attendance.SweepTimeoutRaw = getEnv("SWEEP_TIMEOUT", c.Attendance.SweepTimeoutRaw)
	if c.Attendance.SweepLookbackDays, err = getEnvInt("SWEEP_LOOKBACK_DAYS", c.Attendance.SweepLookbackDays); err != nil {
		return err
	}

	return nil
}

// Validate validates the configuration and resolves its derived values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	var err error
	if c.App.RequestTimeout, err = parsePositiveDuration("REQUEST_TIMEOUT", c.App.RequestTimeoutRaw); err != nil {
		return err
	}
	if c.Attendance.SweepInterval, err = parsePositiveDuration("SWEEP_INTERVAL", c.Attendance.SweepIntervalRaw); err != nil {
		return err
	}
	if c.Attendance.SweepTimeout, err = parsePositiveDuration("SWEEP_TIMEOUT", c.Attendance.SweepTimeoutRaw); err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return fmt.Errorf("ORG_TIMEZONE: %w", err)
	}
	c.location = loc

	return nil
}

// Location returns the organization timezone. Validate must have succeeded first.
func (c *Config) Location() *time.Location {
	return c.location
}

// SlogLevel returns the configured log level, defaulting to info.
func (c AppConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
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

func parsePositiveDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
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
