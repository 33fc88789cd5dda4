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

// UserStorage реализует ports.UserStorage с использованием GORM
type UserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Create сохраняет пользователя с помощью GORM
func (s *UserStorage) Create(ctx context.Context, user *domain.User) (int64, error) {
	start := time.Now()

	m := userModel{
		Username:  user.Username,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Age:       user.Age,
		Slug:      user.Slug,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		err = dberr.Classify(err)
		s.logger.Error("failed to insert user", "username", user.Username, "error", err)
		return 0, fmt.Errorf("ошибка при сохранении пользователя с помощью GORM: %w", err)
	}
	user.ID = m.ID

	s.logger.Info("user saved successfully",
		"id", m.ID,
		"username", m.Username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return m.ID, nil
}

func (s *UserStorage) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get user by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя по ID с помощью GORM: %w", err)
	}
	u := m.toDomain()
	return &u, nil
}

func (s *UserStorage) List(ctx context.Context) ([]domain.User, error) {
	var models []userModel
	if err := s.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("ошибка при получении списка пользователей с помощью GORM: %w", err)
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}
	return users, nil
}

func (s *UserStorage) Update(ctx context.Context, id int64, upd domain.UserUpdate) error {
	res := s.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(map[string]any{
		"firstname": upd.Firstname,
		"lastname":  upd.Lastname,
		"age":       upd.Age,
		"slug":      upd.Slug,
	})
	if err := rowsAffected(res); err != nil {
		err = dberr.Classify(err)
		s.logger.Error("failed to update user", "id", id, "error", err)
		return fmt.Errorf("ошибка при обновлении пользователя %d: %w", id, err)
	}
	s.logger.Info("user updated", "id", id)
	return nil
}

func (s *UserStorage) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&userModel{}, "id = ?", id)
	if err := rowsAffected(res); err != nil {
		err = dberr.Classify(err)
		s.logger.Error("failed to delete user", "id", id, "error", err)
		return fmt.Errorf("ошибка при удалении пользователя %d: %w", id, err)
	}
	s.logger.Info("user deleted", "id", id)
	return nil
}

func (s *UserStorage) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	return s.exists(ctx, "username = ?", username, excludeID)
}

func (s *UserStorage) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return s.exists(ctx, "slug = ?", slug, excludeID)
}

func (s *UserStorage) exists(ctx context.Context, cond, value string, excludeID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&userModel{}).
		Where(cond, value).
		Where("id <> ?", excludeID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		s.logger.Error("failed to probe users", "cond", cond, "error", err)
		return false, fmt.Errorf("probe users (%s): %w", cond, err)
	}
	return count > 0, nil
}

// rowsAffected превращает "0 строк" в domain.ErrNotFound
func rowsAffected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
