package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/TaskManager/internal/database/dberr"
	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/jmoiron/sqlx"
)

const taskColumns = `id, title, content, priority, user_id`

// TaskStorage реализует ports.TaskStorage
type TaskStorage struct {
	q      sqlx.ExtContext
	logger *slog.Logger
}

func NewTaskStorage(q sqlx.ExtContext, logger *slog.Logger) *TaskStorage {
	return &TaskStorage{q: q, logger: logger}
}

// Create вставляет задачу. Несуществующий user_id даёт domain.ErrNotFound.
func (s *TaskStorage) Create(ctx context.Context, task *domain.Task) (int64, error) {
	start := time.Now()

	query := `
	INSERT INTO tasks (title, content, priority, user_id)
	VALUES (:title, :content, :priority, :user_id)
	RETURNING id
	`

	id, err := insertReturningID(ctx, s.q, query, task)
	if err != nil {
		err = dberr.Classify(err)
		s.logger.Error("failed to insert task", "user_id", task.UserID, "error", err)
		return 0, fmt.Errorf("ошибка при сохранении задачи: %w", err)
	}
	task.ID = id

	s.logger.Info("task saved successfully",
		"id", id,
		"user_id", task.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return id, nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	query := s.q.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	if err := sqlx.GetContext(ctx, s.q, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("task not found by id", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get task by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении задачи по ID: %w", err)
	}
	return &task, nil
}

func (s *TaskStorage) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := sqlx.SelectContext(ctx, s.q, &tasks, `SELECT `+taskColumns+` FROM tasks ORDER BY id`); err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		return nil, fmt.Errorf("ошибка при получении списка задач: %w", err)
	}
	return tasks, nil
}

// ListByUser возвращает задачи пользователя; пустой результат не ошибка
func (s *TaskStorage) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	var tasks []domain.Task
	query := s.q.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, s.q, &tasks, query, userID); err != nil {
		s.logger.Error("failed to list tasks by user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при получении задач пользователя %d: %w", userID, err)
	}
	return tasks, nil
}

func (s *TaskStorage) Update(ctx context.Context, id int64, upd domain.TaskUpdate) error {
	start := time.Now()

	query := s.q.Rebind(`UPDATE tasks SET title = ?, content = ?, priority = ? WHERE id = ?`)
	res, err := s.q.ExecContext(ctx, query, upd.Title, upd.Content, upd.Priority, id)
	if err := affectedOne(res, err); err != nil {
		s.logger.Error("failed to update task", "id", id, "error", err)
		return fmt.Errorf("ошибка при обновлении задачи %d: %w", id, err)
	}

	s.logger.Info("task updated", "id", id, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, s.q.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err := affectedOne(res, err); err != nil {
		s.logger.Error("failed to delete task", "id", id, "error", err)
		return fmt.Errorf("ошибка при удалении задачи %d: %w", id, err)
	}
	s.logger.Info("task deleted", "id", id)
	return nil
}

// DeleteByUser удаляет все задачи пользователя и возвращает их количество
func (s *TaskStorage) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := s.q.ExecContext(ctx, s.q.Rebind(`DELETE FROM tasks WHERE user_id = ?`), userID)
	if err != nil {
		s.logger.Error("failed to delete tasks by user", "user_id", userID, "error", err)
		return 0, fmt.Errorf("ошибка при удалении задач пользователя %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	s.logger.Info("tasks deleted by user", "user_id", userID, "count", n)
	return n, nil
}
