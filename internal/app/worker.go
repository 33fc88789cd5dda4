package app

import (
	"context"
	"errors"
	"fmt"
)

// runWorker запускает потребителя RabbitMQ и обрабатывает события до отмены ctx
func (a *App) runWorker(ctx context.Context) error {
	if a.consumer == nil {
		return errors.New("режим worker требует RABBITMQ_URL")
	}
	if a.processor == nil {
		return errors.New("обработчик событий не настроен")
	}

	a.logger.Info("воркер запущен, ожидание сообщений в очереди RabbitMQ", "queue", a.Config.RabbitMQ.RabbitMQQueueName)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := a.consumer.StartConsumingEvents(workerCtx, a.processor.Handle); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("воркер успешно завершил работу")
	return nil
}
