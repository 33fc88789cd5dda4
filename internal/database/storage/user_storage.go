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

const userColumns = `id, username, firstname, lastname, age, slug`

// UserStorage реализует ports.UserStorage. q может быть *sqlx.DB или *sqlx.Tx.
type UserStorage struct {
	q      sqlx.ExtContext
	logger *slog.Logger
}

func NewUserStorage(q sqlx.ExtContext, logger *slog.Logger) *UserStorage {
	return &UserStorage{q: q, logger: logger}
}

// Create вставляет пользователя и возвращает присвоенный id
func (s *UserStorage) Create(ctx context.Context, user *domain.User) (int64, error) {
	start := time.Now()

	query := `
	INSERT INTO users (username, firstname, lastname, age, slug)
	VALUES (:username, :firstname, :lastname, :age, :slug)
	RETURNING id
	`

	id, err := insertReturningID(ctx, s.q, query, user)
	if err != nil {
		err = dberr.Classify(err)
		s.logger.Error("failed to insert user", "username", user.Username, "error", err)
		return 0, fmt.Errorf("ошибка при сохранении пользователя: %w", err)
	}
	user.ID = id

	s.logger.Info("user saved successfully",
		"id", id,
		"username", user.Username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return id, nil
}

// GetByID получает пользователя по id
func (s *UserStorage) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	query := s.q.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	if err := sqlx.GetContext(ctx, s.q, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("user not found by id", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get user by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя по ID: %w", err)
	}
	return &user, nil
}

// List возвращает всех пользователей в порядке вставки
func (s *UserStorage) List(ctx context.Context) ([]domain.User, error) {
	start := time.Now()

	var users []domain.User
	if err := sqlx.SelectContext(ctx, s.q, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("ошибка при получении списка пользователей: %w", err)
	}

	s.logger.Debug("listed users", "count", len(users), "duration_ms", time.Since(start).Milliseconds())
	return users, nil
}

// Update перезаписывает изменяемые поля пользователя
func (s *UserStorage) Update(ctx context.Context, id int64, upd domain.UserUpdate) error {
	start := time.Now()

	query := s.q.Rebind(`UPDATE users SET firstname = ?, lastname = ?, age = ?, slug = ? WHERE id = ?`)
	res, err := s.q.ExecContext(ctx, query, upd.Firstname, upd.Lastname, upd.Age, upd.Slug, id)
	if err := affectedOne(res, err); err != nil {
		err = dberr.Classify(err)
		s.logger.Error("failed to update user", "id", id, "error", err)
		return fmt.Errorf("ошибка при обновлении пользователя %d: %w", id, err)
	}

	s.logger.Info("user updated", "id", id, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Delete удаляет пользователя. Задачи пользователя должны быть удалены раньше.
func (s *UserStorage) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	res, err := s.q.ExecContext(ctx, s.q.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err := affectedOne(res, err); err != nil {
		err = dberr.Classify(err)
		s.logger.Error("failed to delete user", "id", id, "error", err)
		return fmt.Errorf("ошибка при удалении пользователя %d: %w", id, err)
	}

	s.logger.Info("user deleted", "id", id, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *UserStorage) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	return s.exists(ctx, "username", username, excludeID)
}

func (s *UserStorage) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return s.exists(ctx, "slug", slug, excludeID)
}

// exists проверяет, занято ли значение колонки. column берётся только из констант из этого файла.
func (s *UserStorage) exists(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	var found bool
	query := s.q.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE ` + column + ` = ? AND id <> ?)`)
	if err := sqlx.GetContext(ctx, s.q, &found, query, value, excludeID); err != nil {
		s.logger.Error("failed to probe user column", "column", column, "error", err)
		return false, fmt.Errorf("probe users.%s: %w", column, err)
	}
	return found, nil
}
