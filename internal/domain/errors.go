package domain

import "errors"

var (
	// ErrNotFound — запрошенная сущность (или владелец задачи) отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrConflict — нарушено ограничение уникальности в хранилище.
	ErrConflict = errors.New("conflict")
)

// NotFoundError несёт человекочитаемую причину для клиента.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFound(reason string) error {
	return &NotFoundError{Reason: reason}
}
