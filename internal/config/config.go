// Package config содержит конфигурацию и загрузчик настроек.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RoGogDBD/inventory/internal/validation"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config содержит конфигурацию приложения
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logger    LoggerConfig    `yaml:"logger"`
	Seed      SeedConfig      `yaml:"seed"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" validate:"gt=0"`
}

// DatabaseConfig содержит настройки хранилища.
// Для sqlite DSN задаёт путь к файлу или ":memory:".
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=postgres sqlite memory"`
	DSN    string `yaml:"dsn" validate:"required_unless=Driver memory"`
}

// CacheConfig содержит настройки кеша позиций.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	MaxItems int           `yaml:"max_items" validate:"gt=0"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
}

// KafkaConfig содержит настройки Kafka. Пустой список брокеров отключает Kafka.
type KafkaConfig struct {
	Brokers          []string      `yaml:"brokers" validate:"dive,hostname_port"`
	EventsTopic      string        `yaml:"events_topic"`
	ImportTopic      string        `yaml:"import_topic"`
	GroupID          string        `yaml:"group_id"`
	DLQTopic         string        `yaml:"dlq_topic"`
	DLQMaxRetries    int           `yaml:"dlq_max_retries" validate:"gte=0"`
	DLQBackoff       time.Duration `yaml:"dlq_backoff" validate:"gte=0"`
	DLQBackoffCap    time.Duration `yaml:"dlq_backoff_cap" validate:"gte=0"`
	DLQBackoffJitter bool          `yaml:"dlq_backoff_jitter"`
}

// Enabled сообщает, заданы ли брокеры.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// TelemetryConfig содержит настройки трассировки и метрик.
type TelemetryConfig struct {
	ServiceName      string  `yaml:"service_name" validate:"notblank"`
	Environment      string  `yaml:"environment"`
	OTLPEndpoint     string  `yaml:"otlp_endpoint"`
	OTLPInsecure     bool    `yaml:"otlp_insecure"`
	TracesEnabled    bool    `yaml:"traces_enabled"`
	MetricsEnabled   bool    `yaml:"metrics_enabled"`
	TraceSampleRatio float64 `yaml:"trace_sample_ratio" validate:"gt=0,lte=1"`
	MetricsPath      string  `yaml:"metrics_path" validate:"startswith=/"`
}

// LoggerConfig содержит настройки логгера.
type LoggerConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error"`
	Encoding string `yaml:"encoding" validate:"oneof=json console"`
}

// SeedConfig управляет заполнением пустого хранилища примерами.
type SeedConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoadConfig загружает конфигурацию из файла CONFIG_PATH (по умолчанию config.yaml).
// Отсутствующий файл не ошибка: используются значения по умолчанию.
func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	normalizeConfig(&cfg)
	return &cfg, nil
}

// Validate проверяет конфигурацию по тегам validate.
func (c *Config) Validate() error {
	if err := validation.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ApplyFlags переопределяет настройки значениями из командной строки.
func (c *Config) ApplyFlags(f Flags) {
	if f.Addr != nil {
		c.Server.Host = f.Addr.Host
		c.Server.Port = f.Addr.Port
	}
	if f.Driver != "" {
		c.Database.Driver = f.Driver
	}
	if f.DSN != "" {
		c.Database.DSN = f.DSN
	}
}

// Address возвращает адрес сервера в формате host:port
func (s *ServerConfig) Address() string {
	if s.Host == "" {
		return fmt.Sprintf(":%d", s.Port)
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:         "",
			Port:         5000,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "inventory.db",
		},
		Cache: CacheConfig{
			Enabled:  true,
			MaxItems: 1000,
			TTL:      5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:          nil,
			EventsTopic:      "inventory.items.events",
			ImportTopic:      "inventory.items.import",
			GroupID:          "inventory-import",
			DLQTopic:         "inventory.items.import.dlq",
			DLQMaxRetries:    3,
			DLQBackoff:       500 * time.Millisecond,
			DLQBackoffCap:    5 * time.Second,
			DLQBackoffJitter: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:      "inventory",
			Environment:      "local",
			OTLPEndpoint:     "localhost:4318",
			OTLPInsecure:     true,
			TracesEnabled:    false,
			MetricsEnabled:   true,
			TraceSampleRatio: 1.0,
			MetricsPath:      "/metrics",
		},
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "json",
		},
		Seed: SeedConfig{
			Enabled: true,
		},
	}
}

func normalizeConfig(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Driver == DriverSQLite && cfg.Database.DSN == "" {
		cfg.Database.DSN = "inventory.db"
	}
	if cfg.Cache.MaxItems <= 0 {
		cfg.Cache.MaxItems = 1000
	}
	if cfg.Cache.TTL < 0 {
		cfg.Cache.TTL = 0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "inventory"
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		cfg.Telemetry.OTLPEndpoint = "localhost:4318"
	}
	if cfg.Telemetry.TraceSampleRatio <= 0 || cfg.Telemetry.TraceSampleRatio > 1 {
		cfg.Telemetry.TraceSampleRatio = 1.0
	}
	if cfg.Telemetry.MetricsPath == "" {
		cfg.Telemetry.MetricsPath = "/metrics"
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Encoding == "" {
		cfg.Logger.Encoding = "json"
	}
	if cfg.Kafka.DLQTopic == "" && cfg.Kafka.ImportTopic != "" {
		cfg.Kafka.DLQTopic = cfg.Kafka.ImportTopic + ".dlq"
	}
	if cfg.Kafka.DLQMaxRetries < 0 {
		cfg.Kafka.DLQMaxRetries = 0
	}
	if cfg.Kafka.DLQBackoff < 0 {
		cfg.Kafka.DLQBackoff = 0
	}
	if cfg.Kafka.DLQBackoffCap < 0 {
		cfg.Kafka.DLQBackoffCap = 0
	}
}
