package usecase

import (
	"context"

	"github.com/GoArmGo/TaskManager/internal/domain"
)

// CreateUserInput содержит поля нового пользователя. Slug не принимается: он
// всегда выводится из Firstname.
type CreateUserInput struct {
	Username  string
	Firstname string
	Lastname  string
	Age       int
}

// UpdateUserInput содержит поля, которые меняет PUT /user/update/{id}
type UpdateUserInput struct {
	Firstname string
	Lastname  string
	Age       int
}

type CreateTaskInput struct {
	Title    string
	Content  string
	Priority int
	UserID   int64
}

type UpdateTaskInput struct {
	Title    string
	Content  string
	Priority int
}

// UserUseCase определяет бизнес-логику работы с пользователями.
// Отсутствующие сущности и пустые списки возвращаются как *domain.NotFoundError.
type UserUseCase interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error)
	// DeleteUser удаляет пользователя вместе со всеми его задачами
	DeleteUser(ctx context.Context, id int64) error
	// ListUserTasks возвращает задачи пользователя; пустой список не ошибка
	ListUserTasks(ctx context.Context, userID int64) ([]domain.Task, error)
}

// TaskUseCase определяет бизнес-логику работы с задачами
type TaskUseCase interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	// CreateTask проверяет, что владелец существует, и создаёт задачу
	CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, in UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}
