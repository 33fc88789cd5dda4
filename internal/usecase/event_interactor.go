package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/TaskManager/internal/core/ports"
	"github.com/GoArmGo/TaskManager/internal/messaging/payloads"
)

// ArchiveKey возвращает ключ объекта с архивом удалённого пользователя
func ArchiveKey(userID int64) string {
	return fmt.Sprintf("archive/users/%d.json", userID)
}

// EventProcessor обрабатывает события в режиме worker.
type EventProcessor struct {
	files  ports.FileStorage
	logger *slog.Logger
}

// NewEventProcessor создаёт обработчик. files может быть nil: тогда события
// только логируются, архив не пишется.
func NewEventProcessor(files ports.FileStorage, logger *slog.Logger) *EventProcessor {
	return &EventProcessor{files: files, logger: logger}
}

// Handle обрабатывает одно событие. Возвращённая ошибка означает, что
// сообщение нужно вернуть в очередь.
func (p *EventProcessor) Handle(ctx context.Context, ev payloads.Event) error {
	p.logger.Info("event received", "event_id", ev.ID, "type", ev.Type, "occurred_at", ev.OccurredAt)

	if ev.Type != payloads.UserDeleted || p.files == nil {
		return nil
	}

	var deleted payloads.UserDeletedPayload
	if err := ev.Decode(&deleted); err != nil {
		// повтор не поможет, сообщение отбрасываем
		p.logger.Error("malformed user.deleted payload, dropping", "event_id", ev.ID, "error", err)
		return nil
	}

	body, err := json.MarshalIndent(deleted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive for user %d: %w", deleted.User.ID, err)
	}

	key := ArchiveKey(deleted.User.ID)
	url, err := p.files.UploadFile(ctx, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return fmt.Errorf("upload archive for user %d: %w", deleted.User.ID, err)
	}

	p.logger.Info("deleted user archived",
		"user_id", deleted.User.ID,
		"tasks", len(deleted.Tasks),
		"url", url,
	)
	return nil
}
