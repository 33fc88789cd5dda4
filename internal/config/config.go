package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	BackendSQLX = "sqlx"
	BackendGORM = "gorm"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DBDriver       string        `env:"DB_DRIVER" envDefault:"sqlite3"`
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"file:taskmanager.db?_foreign_keys=on"`
	StoreBackend   string        `env:"STORE_BACKEND" envDefault:"sqlx"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// RabbitMQ необязателен для режима server: без URL события не публикуются
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"task_events"`
	}

	// Настройки для MinIO (архив удалённых пользователей в воркере)
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, которые env не умеет проверить сам.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use %q or %q)", c.DBDriver, DriverSQLite, DriverPostgres)
	}
	switch c.StoreBackend {
	case BackendSQLX, BackendGORM:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q (use %q or %q)", c.StoreBackend, BackendSQLX, BackendGORM)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// RabbitMQEnabled сообщает, настроена ли очередь событий.
func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQ.RabbitMQURL != ""
}

// MinioEnabled сообщает, настроено ли объектное хранилище для архива.
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioBucketName != ""
}
