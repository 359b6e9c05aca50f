package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Поддерживаемые хранилища документов
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type HTTPConfig struct {
	Addr string
}

type StorageConfig struct {
	Backend string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type DBConfig struct {
	DSN string
}

type NATSConfig struct {
	URL     string
	Subject string
}

type ConsumerConfig struct {
	ClickhouseDSN string
	BatchSize     int
	FlushInterval string
	Port          string
}

type DashboardConfig struct {
	ReminderWindowDays int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	Storage     StorageConfig
	Redis       RedisConfig
	DB          DBConfig
	NATS        NATSConfig
	Consumer    ConsumerConfig
	Dashboard   DashboardConfig
}

// Load читает конфигурацию из окружения и необязательного файла app.env
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORAGE_BACKEND", BackendRedis)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "scheduler:")
	v.SetDefault("NATS_SUBJECT", "projects.events")
	v.SetDefault("BATCH_SIZE", 10)
	v.SetDefault("FLUSH_INTERVAL", "5s")
	v.SetDefault("CONSUMER_PORT", "8081")
	v.SetDefault("REMINDER_WINDOW_DAYS", 7)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Addr: v.GetString("HTTP_ADDR"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_PREFIX"),
		},
		DB: DBConfig{
			DSN: v.GetString("DB_DSN"),
		},
		NATS: NATSConfig{
			URL:     v.GetString("NATS_URL"),
			Subject: v.GetString("NATS_SUBJECT"),
		},
		Consumer: ConsumerConfig{
			ClickhouseDSN: v.GetString("CLICKHOUSE_DSN"),
			BatchSize:     v.GetInt("BATCH_SIZE"),
			FlushInterval: v.GetString("FLUSH_INTERVAL"),
			Port:          v.GetString("CONSUMER_PORT"),
		},
		Dashboard: DashboardConfig{
			ReminderWindowDays: v.GetInt("REMINDER_WINDOW_DAYS"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConsumer читает ту же конфигурацию и дополнительно требует NATS и ClickHouse
func LoadConsumer() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL is required")
	}
	if cfg.Consumer.ClickhouseDSN == "" {
		return nil, fmt.Errorf("CLICKHOUSE_DSN is required")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
	if cfg.Consumer.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", cfg.Consumer.BatchSize)
	}
	if cfg.Dashboard.ReminderWindowDays <= 0 {
		return fmt.Errorf("REMINDER_WINDOW_DAYS must be positive, got %d", cfg.Dashboard.ReminderWindowDays)
	}
	return nil
}
