package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/TaskManager/internal/adapter/storage/minio"
	"github.com/GoArmGo/TaskManager/internal/app"
	"github.com/GoArmGo/TaskManager/internal/config"
	"github.com/GoArmGo/TaskManager/internal/core/ports"
	"github.com/GoArmGo/TaskManager/internal/database/client"
	"github.com/GoArmGo/TaskManager/internal/database/orm"
	"github.com/GoArmGo/TaskManager/internal/database/storage"
	"github.com/GoArmGo/TaskManager/internal/logger"
	"github.com/GoArmGo/TaskManager/internal/rabbitmq"
	"github.com/GoArmGo/TaskManager/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Подключение к БД и миграции
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 3. Хранилище
	store, err := buildStore(cfg, dbClient, slogger)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	// 4. RabbitMQ: без URL события не публикуются, а worker не запустится.
	// Интерфейсы остаются настоящим nil, а не nil-указателем.
	var (
		publisher ports.EventPublisher
		consumer  ports.EventConsumer
	)
	if cfg.RabbitMQEnabled() {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		publisher, consumer = rabbitMQClient, rabbitMQClient
	} else {
		slogger.Warn("RABBITMQ_URL is not set, domain events are disabled")
	}

	// 5. S3 / MinIO для архива удалённых пользователей
	var files ports.FileStorage
	if cfg.MinioEnabled() {
		minioClient, err := minio.NewMinioClient(ctx, cfg, slogger)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		files = minioClient
	}

	// 6. Бизнес-логика
	userUseCase := usecase.NewUserUseCase(store, publisher, slogger)
	taskUseCase := usecase.NewTaskUseCase(store, publisher, slogger)
	eventProcessor := usecase.NewEventProcessor(files, slogger)

	application := app.NewApp(
		cfg,
		slogger,
		dbClient,
		userUseCase,
		taskUseCase,
		publisher,
		consumer,
		eventProcessor,
	)

	slogger.Info("all dependencies initialized",
		"driver", cfg.DBDriver,
		"backend", cfg.StoreBackend,
		"events", publisher != nil,
		"archive", files != nil,
	)
	return application, nil
}

// buildStore выбирает реализацию хранилища по STORE_BACKEND.
// Оба варианта работают поверх одного пула соединений.
func buildStore(cfg *config.Config, dbClient *client.Client, logger *slog.Logger) (ports.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendGORM:
		s, err := orm.Open(cfg.DBDriver, dbClient.DB.DB, logger)
		if err != nil {
			return nil, fmt.Errorf("store backend %s: %w", cfg.StoreBackend, err)
		}
		return s, nil
	case config.BackendSQLX:
		return storage.NewStore(dbClient.DB, logger), nil
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}
}
