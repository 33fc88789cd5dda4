package client

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/TaskManager/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Client владеет пулом соединений с БД. Создаётся один раз в DI-контейнере
// и закрывается при завершении приложения.
type Client struct {
	DB     *sqlx.DB
	Driver string
	logger *slog.Logger
}

// NewClient открывает соединение согласно конфигурации и применяет миграции
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	return Open(cfg.DBDriver, cfg.DatabaseURL, logger)
}

// Open открывает соединение с драйвером driver ("postgres" или "sqlite3")
// и применяет встроенные миграции.
func Open(driver, dsn string, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		logger.Error("failed to open database connection", "driver", driver, "error", err)
		return nil, fmt.Errorf("ошибка открытия соединения с БД: %w", err)
	}

	switch driver {
	case config.DriverSQLite:
		// одно соединение: SQLite не любит конкурентных писателей,
		// а in-memory база живёт, пока живо соединение
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := applyMigrations(db, driver, dsn, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка при применении миграций: %w", err)
	}

	logger.Info("database connection established",
		"driver", driver,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, Driver: driver, logger: logger}, nil
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
