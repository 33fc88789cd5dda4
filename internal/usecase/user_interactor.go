package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/TaskManager/internal/core/ports"
	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/GoArmGo/TaskManager/internal/messaging/payloads"
)

const (
	msgNoUsers      = "There are no users"
	msgUserNotFound = "User not found"
)

// userUseCase implements UserUseCase
type userUseCase struct {
	store     ports.Store
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewUserUseCase создает новый экземпляр UserUseCase.
// publisher может быть nil, тогда события не публикуются.
func NewUserUseCase(store ports.Store, publisher ports.EventPublisher, logger *slog.Logger) UserUseCase {
	return &userUseCase{store: store, publisher: publisher, logger: logger}
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		users, err = r.Users().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении пользователей: %w", err)
	}
	// пустой список для клиента означает 404, а не пустой ответ
	if len(users) == 0 {
		return nil, domain.NewNotFound(msgNoUsers)
	}
	return users, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		user, err = r.Users().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, userErr(err, "usecase: ошибка при получении пользователя %d: %w", id)
	}
	return user, nil
}

// CreateUser создаёт пользователя. Username и slug проходят через UniqueValue,
// поэтому сохранённые значения могут получить случайный суффикс.
func (uc *userUseCase) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	user := &domain.User{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Age:       in.Age,
	}

	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		user.Username, err = UniqueValue(ctx, in.Username, func(ctx context.Context, v string) (bool, error) {
			return r.Users().UsernameExists(ctx, v, 0)
		})
		if err != nil {
			return fmt.Errorf("generate username: %w", err)
		}
		user.Slug, err = UniqueValue(ctx, Slugify(in.Firstname), func(ctx context.Context, v string) (bool, error) {
			return r.Users().SlugExists(ctx, v, 0)
		})
		if err != nil {
			return fmt.Errorf("generate slug: %w", err)
		}
		_, err = r.Users().Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при создании пользователя: %w", err)
	}

	uc.logger.Info("user created", "id", user.ID, "username", user.Username, "slug", user.Slug)
	uc.publish(ctx, payloads.UserCreated, payloads.UserPayload{User: *user})
	return user, nil
}

// UpdateUser обновляет имя, фамилию и возраст; slug пересчитывается из нового имени.
func (uc *userUseCase) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error) {
	var user *domain.User
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		if user, err = r.Users().GetByID(ctx, id); err != nil {
			return err
		}

		slugValue, err := UniqueValue(ctx, Slugify(in.Firstname), func(ctx context.Context, v string) (bool, error) {
			return r.Users().SlugExists(ctx, v, id)
		})
		if err != nil {
			return fmt.Errorf("generate slug: %w", err)
		}

		upd := domain.UserUpdate{Firstname: in.Firstname, Lastname: in.Lastname, Age: in.Age, Slug: slugValue}
		if err := r.Users().Update(ctx, id, upd); err != nil {
			return err
		}
		user.Firstname, user.Lastname, user.Age, user.Slug = upd.Firstname, upd.Lastname, upd.Age, upd.Slug
		return nil
	})
	if err != nil {
		return nil, userErr(err, "usecase: ошибка при обновлении пользователя %d: %w", id)
	}

	uc.logger.Info("user updated", "id", id, "slug", user.Slug)
	uc.publish(ctx, payloads.UserUpdated, payloads.UserPayload{User: *user})
	return user, nil
}

// DeleteUser удаляет сначала задачи пользователя, затем его самого, в одной транзакции
func (uc *userUseCase) DeleteUser(ctx context.Context, id int64) error {
	var deleted payloads.UserDeletedPayload
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := r.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		tasks, err := r.Tasks().ListByUser(ctx, id)
		if err != nil {
			return err
		}
		if _, err := r.Tasks().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := r.Users().Delete(ctx, id); err != nil {
			return err
		}
		deleted = payloads.UserDeletedPayload{User: *user, Tasks: tasks}
		return nil
	})
	if err != nil {
		return userErr(err, "usecase: ошибка при удалении пользователя %d: %w", id)
	}

	uc.logger.Info("user deleted with tasks", "id", id, "tasks", len(deleted.Tasks))
	uc.publish(ctx, payloads.UserDeleted, deleted)
	return nil
}

func (uc *userUseCase) ListUserTasks(ctx context.Context, userID int64) ([]domain.Task, error) {
	var tasks []domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		var err error
		tasks, err = r.Tasks().ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, userErr(err, "usecase: ошибка при получении задач пользователя %d: %w", userID)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (uc *userUseCase) publish(ctx context.Context, eventType string, data any) {
	publishEvent(ctx, uc.publisher, uc.logger, eventType, data)
}

// userErr превращает domain.ErrNotFound в "User not found", остальное оборачивает
func userErr(err error, format string, id int64) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFound(msgUserNotFound)
	}
	return fmt.Errorf(format, id, err)
}

// publishEvent публикует событие после коммита. Ошибка публикации только
// логируется: запись в БД уже состоялась.
func publishEvent(ctx context.Context, publisher ports.EventPublisher, logger *slog.Logger, eventType string, data any) {
	if publisher == nil {
		return
	}
	ev, err := payloads.NewEvent(eventType, data)
	if err != nil {
		logger.Error("failed to build event", "type", eventType, "error", err)
		return
	}
	if err := publisher.PublishEvent(ctx, ev); err != nil {
		logger.Warn("failed to publish event", "type", eventType, "event_id", ev.ID, "error", err)
	}
}
