package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CacheDisabled = "disabled"
)

type Config struct {
	Environment string `mapstructure:"ENV"`
	Storage     string `mapstructure:"STORAGE"`
	DBDSN       string `mapstructure:"DB_DSN"`

	TelegramToken    string `mapstructure:"TELEGRAM_TOKEN"`
	BarberTelegramID int64  `mapstructure:"BARBER_TELEGRAM_ID"`
	BarberPhone      string `mapstructure:"BARBER_PHONE"`

	HTTPAddr        string `mapstructure:"HTTP_ADDR"`
	BarberAPIToken  string `mapstructure:"BARBER_API_TOKEN"`
	RateLimitPerMin int    `mapstructure:"RATE_LIMIT_PER_MIN"`
	CORSOrigins     string `mapstructure:"CORS_ORIGINS"`

	Timezone        string `mapstructure:"TIMEZONE"`
	OpenTime        string `mapstructure:"OPEN_TIME"`
	CloseTime       string `mapstructure:"CLOSE_TIME"`
	SlotStepMinutes int    `mapstructure:"SLOT_STEP_MINUTES"`

	CacheBackend  string `mapstructure:"CACHE_BACKEND"`
	CacheTTLMs    int    `mapstructure:"CACHE_TTL_MS"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `mapstructure:"TWILIO_FROM"`

	CleanupCron   string `mapstructure:"CLEANUP_CRON"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`
}

var defaults = map[string]interface{}{
	"ENV":                "development",
	"STORAGE":            StoragePostgres,
	"DB_DSN":             "",
	"TELEGRAM_TOKEN":     "",
	"BARBER_TELEGRAM_ID": 0,
	"BARBER_PHONE":       "",
	"HTTP_ADDR":          ":8080",
	"BARBER_API_TOKEN":   "",
	"RATE_LIMIT_PER_MIN": 60,
	"CORS_ORIGINS":       "",
	"TIMEZONE":           "America/Sao_Paulo",
	"OPEN_TIME":          "09:00",
	"CLOSE_TIME":         "17:00",
	"SLOT_STEP_MINUTES":  30,
	"CACHE_BACKEND":      CacheMemory,
	"CACHE_TTL_MS":       3000,
	"REDIS_ADDR":         "localhost:6379",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"KAFKA_BROKERS":      "",
	"KAFKA_TOPIC":        "booking.appointments",
	"TWILIO_ACCOUNT_SID": "",
	"TWILIO_AUTH_TOKEN":  "",
	"TWILIO_FROM":        "",
	"CLEANUP_CRON":       "0 3 * * *",
	"MIGRATIONS_DIR":     "",
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return FromViper(viper.New())
}

// FromViper applies defaults and environment binding to v and validates the result
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}

	switch c.CacheBackend {
	case CacheMemory, CacheRedis, CacheDisabled:
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory, redis or disabled, got %q", c.CacheBackend)
	}

	if c.TelegramToken == "" && c.HTTPAddr == "" {
		return fmt.Errorf("nothing to serve: set TELEGRAM_TOKEN or HTTP_ADDR")
	}
	if c.CacheTTLMs <= 0 {
		return fmt.Errorf("CACHE_TTL_MS must be positive, got %d", c.CacheTTLMs)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TIMEZONE
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMs) * time.Millisecond
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CORSOriginList splits CORS_ORIGINS on commas; empty means any origin
func (c *Config) CORSOriginList() []string {
	var out []string
	for _, part := range strings.Split(c.CORSOrigins, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
