package orm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/TaskManager/internal/database/dberr"
	"github.com/GoArmGo/TaskManager/internal/domain"
	"gorm.io/gorm"
)

// TaskStorage реализует ports.TaskStorage с использованием GORM
type TaskStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func (s *TaskStorage) Create(ctx context.Context, task *domain.Task) (int64, error) {
	start := time.Now()

	m := taskModel{
		Title:    task.Title,
		Content:  task.Content,
		Priority: task.Priority,
		UserID:   task.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		err = dberr.Classify(err)
		s.logger.Error("failed to insert task", "user_id", task.UserID, "error", err)
		return 0, fmt.Errorf("ошибка при сохранении задачи с помощью GORM: %w", err)
	}
	task.ID = m.ID

	s.logger.Info("task saved successfully",
		"id", m.ID,
		"user_id", m.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return m.ID, nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var m taskModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get task by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении задачи по ID с помощью GORM: %w", err)
	}
	t := m.toDomain()
	return &t, nil
}

func (s *TaskStorage) List(ctx context.Context) ([]domain.Task, error) {
	return s.find(s.db.WithContext(ctx))
}

func (s *TaskStorage) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	return s.find(s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *TaskStorage) find(q *gorm.DB) ([]domain.Task, error) {
	var models []taskModel
	if err := q.Order("id").Find(&models).Error; err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		return nil, fmt.Errorf("ошибка при получении задач с помощью GORM: %w", err)
	}
	tasks := make([]domain.Task, 0, len(models))
	for _, m := range models {
		tasks = append(tasks, m.toDomain())
	}
	return tasks, nil
}

func (s *TaskStorage) Update(ctx context.Context, id int64, upd domain.TaskUpdate) error {
	res := s.db.WithContext(ctx).Model(&taskModel{}).Where("id = ?", id).Updates(map[string]any{
		"title":    upd.Title,
		"content":  upd.Content,
		"priority": upd.Priority,
	})
	if err := rowsAffected(res); err != nil {
		s.logger.Error("failed to update task", "id", id, "error", err)
		return fmt.Errorf("ошибка при обновлении задачи %d: %w", id, err)
	}
	s.logger.Info("task updated", "id", id)
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	if err := rowsAffected(s.db.WithContext(ctx).Delete(&taskModel{}, "id = ?", id)); err != nil {
		s.logger.Error("failed to delete task", "id", id, "error", err)
		return fmt.Errorf("ошибка при удалении задачи %d: %w", id, err)
	}
	s.logger.Info("task deleted", "id", id)
	return nil
}

func (s *TaskStorage) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&taskModel{})
	if res.Error != nil {
		s.logger.Error("failed to delete tasks by user", "user_id", userID, "error", res.Error)
		return 0, fmt.Errorf("ошибка при удалении задач пользователя %d: %w", userID, res.Error)
	}
	s.logger.Info("tasks deleted by user", "user_id", userID, "count", res.RowsAffected)
	return res.RowsAffected, nil
}
