package ports

import (
	"context"

	"github.com/GoArmGo/TaskManager/internal/domain"
)

// UserStorage определяет методы для работы с таблицей users.
// Методы, возвращающие одну запись, отдают domain.ErrNotFound, если её нет.
type UserStorage interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, upd domain.UserUpdate) error
	Delete(ctx context.Context, id int64) error

	// UsernameExists и SlugExists используются генератором уникальных значений.
	// excludeID > 0 исключает запись с этим id (обновление самого себя).
	UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// TaskStorage определяет методы для работы с таблицей tasks
type TaskStorage interface {
	Create(ctx context.Context, task *domain.Task) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Task, error)
	Update(ctx context.Context, id int64, upd domain.TaskUpdate) error
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

// Repositories объединяет хранилища, привязанные к одной транзакции.
type Repositories interface {
	Users() UserStorage
	Tasks() TaskStorage
}

// Store описывает хранилище с поддержкой единицы работы на запрос.
// WithinTx коммитит, если fn вернула nil, и откатывает транзакцию в остальных случаях.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
