package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/jmoiron/sqlx"
)

// insertReturningID выполняет именованный INSERT ... RETURNING id.
// Работает и в PostgreSQL, и в SQLite >= 3.35.
func insertReturningID(ctx context.Context, q sqlx.ExtContext, query string, arg any) (int64, error) {
	rows, err := sqlx.NamedQueryContext(ctx, q, query, arg)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("insert returned no id")
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, rows.Err()
}

// affectedOne превращает "0 затронутых строк" в domain.ErrNotFound
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
