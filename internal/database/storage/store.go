package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/TaskManager/internal/core/ports"
	"github.com/jmoiron/sqlx"
)

// Store реализует ports.Store поверх sqlx: одна транзакция на вызов WithinTx.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

type txRepositories struct {
	users *UserStorage
	tasks *TaskStorage
}

func (r txRepositories) Users() ports.UserStorage { return r.users }
func (r txRepositories) Tasks() ports.TaskStorage { return r.tasks }

// WithinTx выполняет fn в транзакции. Ошибка или паника в fn откатывают её.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", "error", err)
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	repos := txRepositories{
		users: NewUserStorage(tx, s.logger),
		tasks: NewTaskStorage(tx, s.logger),
	}

	if err := fn(ctx, repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("failed to rollback transaction", "error", rbErr, "cause", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", "error", err)
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
