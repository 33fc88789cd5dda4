package client

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/TaskManager/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationsFS embed.FS

// applyMigrations применяет все доступные миграции к бд
func applyMigrations(db *sqlx.DB, driver, dsn string, logger *slog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("не удалось открыть источник миграций: %w", err)
	}

	var m *migrate.Migrate
	switch driver {
	case config.DriverPostgres:
		// мигратор открывает своё соединение по URL и закрывает его сам
		m, err = migrate.NewWithSourceInstance("iofs", src, dsn)
		if err != nil {
			return fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
		}
		defer m.Close()
	case config.DriverSQLite:
		// m.Close() здесь не вызываем: драйвер закрыл бы общий *sql.DB
		drv, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("не удалось создать драйвер миграций sqlite3: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite3", drv)
		if err != nil {
			return fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
		}
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrations up to date", "driver", driver)
			return nil
		}
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("migrations applied", "driver", driver, "version", version)
	return nil
}
