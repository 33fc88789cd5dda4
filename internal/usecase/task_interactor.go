package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/TaskManager/internal/core/ports"
	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/GoArmGo/TaskManager/internal/messaging/payloads"
)

const (
	msgNoTasks       = "There are no tasks"
	msgTaskNotFound  = "Task not found"
	msgOwnerNotFound = "User was not found"
)

// taskUseCase implements TaskUseCase
type taskUseCase struct {
	store     ports.Store
	publisher ports.EventPublisher
	logger    *slog.Logger
}

func NewTaskUseCase(store ports.Store, publisher ports.EventPublisher, logger *slog.Logger) TaskUseCase {
	return &taskUseCase{store: store, publisher: publisher, logger: logger}
}

func (uc *taskUseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		tasks, err = r.Tasks().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении задач: %w", err)
	}
	if len(tasks) == 0 {
		return nil, domain.NewNotFound(msgNoTasks)
	}
	return tasks, nil
}

func (uc *taskUseCase) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var task *domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		task, err = r.Tasks().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, taskErr(err, msgTaskNotFound, "usecase: ошибка при получении задачи %d: %w", id)
	}
	return task, nil
}

// CreateTask создаёт задачу только для существующего пользователя.
// Если пользователь исчезнет между проверкой и вставкой, внешний ключ
// даст тот же "User was not found".
func (uc *taskUseCase) CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	task := &domain.Task{
		Title:    in.Title,
		Content:  in.Content,
		Priority: in.Priority,
		UserID:   in.UserID,
	}

	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Users().GetByID(ctx, in.UserID); err != nil {
			return err
		}
		_, err := r.Tasks().Create(ctx, task)
		return err
	})
	if err != nil {
		return nil, taskErr(err, msgOwnerNotFound, "usecase: ошибка при создании задачи для пользователя %d: %w", in.UserID)
	}

	uc.logger.Info("task created", "id", task.ID, "user_id", task.UserID)
	publishEvent(ctx, uc.publisher, uc.logger, payloads.TaskCreated, payloads.TaskPayload{Task: *task})
	return task, nil
}

// UpdateTask меняет title, content и priority; id и user_id не трогаются
func (uc *taskUseCase) UpdateTask(ctx context.Context, id int64, in UpdateTaskInput) (*domain.Task, error) {
	var task *domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		if task, err = r.Tasks().GetByID(ctx, id); err != nil {
			return err
		}
		upd := domain.TaskUpdate{Title: in.Title, Content: in.Content, Priority: in.Priority}
		if err := r.Tasks().Update(ctx, id, upd); err != nil {
			return err
		}
		task.Title, task.Content, task.Priority = upd.Title, upd.Content, upd.Priority
		return nil
	})
	if err != nil {
		return nil, taskErr(err, msgTaskNotFound, "usecase: ошибка при обновлении задачи %d: %w", id)
	}

	uc.logger.Info("task updated", "id", id)
	publishEvent(ctx, uc.publisher, uc.logger, payloads.TaskUpdated, payloads.TaskPayload{Task: *task})
	return task, nil
}

func (uc *taskUseCase) DeleteTask(ctx context.Context, id int64) error {
	var task *domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		if task, err = r.Tasks().GetByID(ctx, id); err != nil {
			return err
		}
		return r.Tasks().Delete(ctx, id)
	})
	if err != nil {
		return taskErr(err, msgTaskNotFound, "usecase: ошибка при удалении задачи %d: %w", id)
	}

	uc.logger.Info("task deleted", "id", id)
	publishEvent(ctx, uc.publisher, uc.logger, payloads.TaskDeleted, payloads.TaskPayload{Task: *task})
	return nil
}

func taskErr(err error, notFound, format string, id int64) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFound(notFound)
	}
	return fmt.Errorf(format, id, err)
}
