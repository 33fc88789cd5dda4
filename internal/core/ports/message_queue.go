package ports

import (
	"context"
	"io"

	"github.com/GoArmGo/TaskManager/internal/messaging/payloads"
)

// EventPublisher публикует доменные события после успешного коммита.
// Используется usecase-слоем
type EventPublisher interface {
	PublishEvent(ctx context.Context, event payloads.Event) error
}

// EventConsumer используется воркером для получения событий из очереди
type EventConsumer interface {
	// StartConsumingEvents начинает прослушивание очереди.
	// handler вызывается для каждого полученного сообщения
	StartConsumingEvents(ctx context.Context, handler func(context.Context, payloads.Event) error) error
}

// FileStorage — порт для объектного хранилища (AWS S3, MinIO)
type FileStorage interface {
	// UploadFile загружает файл и возвращает его URL.
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}
