package payloads

import (
	"encoding/json"
	"time"

	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/google/uuid"
)

// Типы доменных событий
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// Event описывает конверт события, который уходит в RabbitMQ.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// UserPayload несёт данные событий user.created / user.updated
type UserPayload struct {
	User domain.User `json:"user"`
}

// UserDeletedPayload содержит удалённого пользователя и снимок его задач,
// удалённых каскадом.
type UserDeletedPayload struct {
	User  domain.User   `json:"user"`
	Tasks []domain.Task `json:"tasks"`
}

// TaskPayload несёт данные событий task.*
type TaskPayload struct {
	Task domain.Task `json:"task"`
}

// NewEvent упаковывает data в конверт с новым идентификатором.
func NewEvent(eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}, nil
}

// Decode распаковывает Data в dst.
func (e Event) Decode(dst any) error {
	return json.Unmarshal(e.Data, dst)
}
