package orm

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/TaskManager/internal/config"
	"github.com/GoArmGo/TaskManager/internal/core/ports"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store реализует ports.Store с помощью GORM поверх уже открытого *sql.DB
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open оборачивает существующий пул соединений в GORM.
// Пул принадлежит вызывающему и закрывается им же.
func Open(driver string, conn *sql.DB, logger *slog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.New(postgres.Config{Conn: conn})
	case config.DriverSQLite:
		dialector = sqlite.New(sqlite.Config{DriverName: config.DriverSQLite, Conn: conn})
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации GORM: %w", err)
	}
	return NewStore(db, logger), nil
}

func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

type txRepositories struct {
	users *UserStorage
	tasks *TaskStorage
}

func (r txRepositories) Users() ports.UserStorage { return r.users }
func (r txRepositories) Tasks() ports.TaskStorage { return r.tasks }

// WithinTx выполняет fn в транзакции GORM: коммит при nil, откат при ошибке или панике
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, txRepositories{
			users: &UserStorage{db: tx, logger: s.logger},
			tasks: &TaskStorage{db: tx, logger: s.logger},
		})
	})
}
