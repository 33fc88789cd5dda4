package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/TaskManager/internal/config"
	"github.com/GoArmGo/TaskManager/internal/core/ports"
	"github.com/GoArmGo/TaskManager/internal/usecase"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

type App struct {
	Config    *config.Config
	logger    *slog.Logger
	db        io.Closer
	users     usecase.UserUseCase
	tasks     usecase.TaskUseCase
	publisher ports.EventPublisher
	consumer  ports.EventConsumer
	processor *usecase.EventProcessor
}

// NewApp собирает приложение из готовых зависимостей.
// publisher и consumer равны nil, если RabbitMQ не настроен.
func NewApp(cfg *config.Config,
	logger *slog.Logger,
	db io.Closer,
	users usecase.UserUseCase,
	tasks usecase.TaskUseCase,
	publisher ports.EventPublisher,
	consumer ports.EventConsumer,
	processor *usecase.EventProcessor) *App {
	return &App{
		Config:    cfg,
		logger:    logger,
		db:        db,
		users:     users,
		tasks:     tasks,
		publisher: publisher,
		consumer:  consumer,
		processor: processor,
	}
}

// Logger возвращает основной логгер приложения
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run запускает приложение в режиме mode и блокируется до SIGINT/SIGTERM
// или отмены ctx. Ресурсы закрываются в любом случае.
func (a *App) Run(ctx context.Context, mode string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = a.runServer(ctx)
	case ModeWorker:
		err = a.runWorker(ctx)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	a.logger.Info("завершение работы")
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("ошибка при завершении", "error", closeErr)
		if err == nil {
			err = closeErr
		}
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ошибка закрытия БД: %w", err))
		}
	}

	// publisher и consumer обычно один и тот же клиент RabbitMQ
	closed := map[io.Closer]bool{}
	for _, v := range []any{a.publisher, a.consumer} {
		closer, ok := v.(io.Closer)
		if !ok || closed[closer] {
			continue
		}
		closed[closer] = true
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ошибка закрытия RabbitMQ: %w", err))
		}
	}
	return errors.Join(errs...)
}
