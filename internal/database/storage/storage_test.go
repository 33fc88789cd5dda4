package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/GoArmGo/TaskManager/internal/core/ports"
	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/GoArmGo/TaskManager/internal/logger"
	"github.com/GoArmGo/TaskManager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	c := testutil.OpenSQLite(t)
	return NewStore(c.DB, logger.NewNop())
}

// inTx выполняет fn в транзакции и падает при ошибке
func inTx(t *testing.T, s *Store, fn func(ctx context.Context, r ports.Repositories) error) {
	t.Helper()
	require.NoError(t, s.WithinTx(context.Background(), fn))
}

func alice() *domain.User {
	return &domain.User{Username: "alice", Firstname: "Alice", Lastname: "Doe", Age: 30, Slug: "alice"}
}

func TestUserStorage_CRUD(t *testing.T) {
	s := newTestStore(t)

	var id int64
	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		u := alice()
		var err error
		id, err = r.Users().Create(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		return nil
	})
	require.NotZero(t, id)

	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		got, err := r.Users().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.User{ID: id, Username: "alice", Firstname: "Alice", Lastname: "Doe", Age: 30, Slug: "alice"}, *got)

		require.NoError(t, r.Users().Update(ctx, id, domain.UserUpdate{Firstname: "Alicia", Lastname: "Roe", Age: 31, Slug: "alicia"}))
		got, err = r.Users().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", got.Firstname)
		assert.Equal(t, "alicia", got.Slug)
		assert.Equal(t, "alice", got.Username)

		users, err := r.Users().List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		require.NoError(t, r.Users().Delete(ctx, id))
		_, err = r.Users().GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
}

func TestUserStorage_MissingRows(t *testing.T) {
	s := newTestStore(t)

	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		_, err := r.Users().GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, r.Users().Update(ctx, 99, domain.UserUpdate{Firstname: "x"}), domain.ErrNotFound)
		assert.ErrorIs(t, r.Users().Delete(ctx, 99), domain.ErrNotFound)

		users, err := r.Users().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
		return nil
	})
}

func TestUserStorage_ExistsProbes(t *testing.T) {
	s := newTestStore(t)

	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		u := alice()
		_, err := r.Users().Create(ctx, u)
		require.NoError(t, err)

		ok, err := r.Users().UsernameExists(ctx, "alice", 0)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.Users().SlugExists(ctx, "alice", 0)
		require.NoError(t, err)
		assert.True(t, ok)

		// собственная строка исключается
		ok, err = r.Users().SlugExists(ctx, "alice", u.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = r.Users().UsernameExists(ctx, "bob", 0)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
}

func TestUserStorage_UniqueIndexIsConflict(t *testing.T) {
	s := newTestStore(t)

	err := s.WithinTx(context.Background(), func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Users().Create(ctx, alice()); err != nil {
			return err
		}
		_, err := r.Users().Create(ctx, alice())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// транзакция откатилась целиком
	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		users, err := r.Users().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
		return nil
	})
}

func TestTaskStorage_CRUDAndByUser(t *testing.T) {
	s := newTestStore(t)

	var userID, taskID int64
	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		var err error
		userID, err = r.Users().Create(ctx, alice())
		require.NoError(t, err)

		taskID, err = r.Tasks().Create(ctx, &domain.Task{Title: "T1", Content: "C1", Priority: 1, UserID: userID})
		require.NoError(t, err)
		_, err = r.Tasks().Create(ctx, &domain.Task{Title: "T2", Content: "C2", Priority: 2, UserID: userID})
		require.NoError(t, err)
		return nil
	})

	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		require.NoError(t, r.Tasks().Update(ctx, taskID, domain.TaskUpdate{Title: "T1b", Content: "C1b", Priority: 5}))
		got, err := r.Tasks().GetByID(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, domain.Task{ID: taskID, Title: "T1b", Content: "C1b", Priority: 5, UserID: userID}, *got)

		byUser, err := r.Tasks().ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, byUser, 2)
		assert.Equal(t, taskID, byUser[0].ID)

		none, err := r.Tasks().ListByUser(ctx, userID+100)
		require.NoError(t, err)
		assert.Empty(t, none)

		n, err := r.Tasks().DeleteByUser(ctx, userID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		all, err := r.Tasks().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		assert.ErrorIs(t, r.Tasks().Delete(ctx, taskID), domain.ErrNotFound)
		return nil
	})
}

func TestTaskStorage_ForeignKeyIsNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.WithinTx(context.Background(), func(ctx context.Context, r ports.Repositories) error {
		_, err := r.Tasks().Create(ctx, &domain.Task{Title: "T", Content: "C", Priority: 1, UserID: 404})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_RollbackOnError(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, r ports.Repositories) error {
		_, err := r.Users().Create(ctx, alice())
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		users, err := r.Users().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
		return nil
	})
}

func TestStore_RollbackOnPanic(t *testing.T) {
	s := newTestStore(t)

	assert.Panics(t, func() {
		_ = s.WithinTx(context.Background(), func(ctx context.Context, r ports.Repositories) error {
			_, _ = r.Users().Create(ctx, alice())
			panic("handler crashed")
		})
	})

	inTx(t, s, func(ctx context.Context, r ports.Repositories) error {
		users, err := r.Users().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
		return nil
	})
}
