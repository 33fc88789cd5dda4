package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ProbeFunc сообщает, занято ли значение в хранилище
type ProbeFunc func(ctx context.Context, value string) (bool, error)

// UniqueValue возвращает base, если оно свободно, иначе base-XXXXXXXX,
// где XXXXXXXX это 8 случайных hex-символов. Перебор продолжается, пока probe
// не сообщит о свободном значении; ограничения на число попыток нет.
func UniqueValue(ctx context.Context, base string, probe ProbeFunc) (string, error) {
	return uniqueValue(ctx, base, probe, randomSuffix)
}

func uniqueValue(ctx context.Context, base string, probe ProbeFunc, suffix func() string) (string, error) {
	candidate := base
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := probe(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + suffix()
	}
}

// randomSuffix возвращает первые 8 hex-символов случайного UUID v4
func randomSuffix() string {
	return uuid.NewString()[:8]
}

// Slugify нормализует имя: нижний регистр, транслитерация в ASCII, дефисы.
func Slugify(s string) string {
	return slug.Make(s)
}
