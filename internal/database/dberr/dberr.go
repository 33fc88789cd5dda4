// Package dberr приводит ошибки драйверов БД к доменным ошибкам.
package dberr

import (
	"errors"
	"fmt"

	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Коды SQLSTATE PostgreSQL
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Classify оборачивает нарушения ограничений в domain.ErrConflict
// (уникальность) и domain.ErrNotFound (внешний ключ). Остальные ошибки
// возвращаются как есть.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Message)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, pqErr.Message)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", domain.ErrConflict, liteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, liteErr.Error())
		}
		return err
	}

	// gorm с TranslateError переводит ошибки pgx/sqlite в свои
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}
