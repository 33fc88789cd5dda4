package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoArmGo/TaskManager/internal/database/storage"
	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/GoArmGo/TaskManager/internal/logger"
	"github.com/GoArmGo/TaskManager/internal/testutil"
	"github.com/GoArmGo/TaskManager/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	c := testutil.OpenSQLite(t)
	log := logger.NewNop()
	store := storage.NewStore(c.DB, log)
	return NewRouter(
		usecase.NewUserUseCase(store, nil, log),
		usecase.NewTaskUseCase(store, nil, log),
		5*time.Second,
		log,
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createUser(t *testing.T, h http.Handler, username, firstname string) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"firstname":%q,"lastname":"Doe","age":30}`, username, firstname)
	rec := do(t, h, http.MethodPost, "/user/create", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conf := decode[Confirmation](t, rec)
	require.NotNil(t, conf.ID)
	return *conf.ID
}

func TestAliceScenario(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/user/create", `{"username":"alice","firstname":"Alice","lastname":"Doe","age":30}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	conf := decode[Confirmation](t, rec)
	assert.Equal(t, 201, conf.StatusCode)
	assert.Equal(t, "Successful", conf.Transaction)
	require.NotNil(t, conf.ID)
	userID := *conf.ID

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/user/%d", userID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, UserResponse{ID: userID, Username: "alice", Firstname: "Alice", Lastname: "Doe", Age: 30, Slug: "alice"},
		decode[UserResponse](t, rec))

	rec = do(t, h, http.MethodPost, "/task/create", fmt.Sprintf(`{"title":"T1","content":"C1","priority":1,"user_id":%d}`, userID))
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := *decode[Confirmation](t, rec).ID

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/user/%d/tasks", userID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []TaskResponse{{ID: taskID, Title: "T1", Content: "C1", Priority: 1, UserID: userID}},
		decode[[]TaskResponse](t, rec))

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/user/delete/%d", userID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	conf = decode[Confirmation](t, rec)
	assert.Equal(t, "User and associated tasks delete is successful", conf.Transaction)
	assert.Nil(t, conf.ID)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/task/%d", taskID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decode[errorResponse](t, rec).Detail)
}

func TestEmptyCollectionsAre404(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/user/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "There are no users", decode[errorResponse](t, rec).Detail)

	rec = do(t, h, http.MethodGet, "/task/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "There are no tasks", decode[errorResponse](t, rec).Detail)
}

func TestListUsers(t *testing.T) {
	h := newTestRouter(t)
	first := createUser(t, h, "alice", "Alice")
	second := createUser(t, h, "alice", "Alice")

	rec := do(t, h, http.MethodGet, "/user/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]UserResponse](t, rec)
	require.Len(t, users, 2)
	assert.Equal(t, first, users[0].ID)
	assert.Equal(t, second, users[1].ID)
	assert.NotEqual(t, users[0].Username, users[1].Username)
	assert.NotEqual(t, users[0].Slug, users[1].Slug)
}

func TestCreateUser_SlugInBodyIgnored(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/user/create", `{"username":"bob","firstname":"Bob","lastname":"Roe","age":0,"slug":"custom"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := *decode[Confirmation](t, rec).ID

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/user/%d", id), "")
	got := decode[UserResponse](t, rec)
	assert.Equal(t, "bob", got.Slug)
	assert.Equal(t, 0, got.Age)
}

func TestUpdateUser(t *testing.T) {
	h := newTestRouter(t)
	id := createUser(t, h, "alice", "Alice")

	rec := do(t, h, http.MethodPut, fmt.Sprintf("/user/update/%d", id), `{"firstname":"Alicia","lastname":"Smith","age":31}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Confirmation{StatusCode: 200, Transaction: "User update is successful"}, decode[Confirmation](t, rec))

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/user/%d", id), "")
	got := decode[UserResponse](t, rec)
	assert.Equal(t, "alicia", got.Slug)
	assert.Equal(t, "Smith", got.Lastname)

	rec = do(t, h, http.MethodPut, "/user/update/999", `{"firstname":"X","lastname":"Y","age":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode[errorResponse](t, rec).Detail)
}

func TestTaskLifecycle(t *testing.T) {
	h := newTestRouter(t)
	userID := createUser(t, h, "alice", "Alice")

	rec := do(t, h, http.MethodPost, "/task/create", fmt.Sprintf(`{"title":"T1","content":"C1","priority":-3,"user_id":%d}`, userID))
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := *decode[Confirmation](t, rec).ID

	rec = do(t, h, http.MethodPut, fmt.Sprintf("/task/update/%d", taskID), `{"title":"T2","content":"C2","priority":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task update is successful", decode[Confirmation](t, rec).Transaction)

	rec = do(t, h, http.MethodGet, "/task/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []TaskResponse{{ID: taskID, Title: "T2", Content: "C2", Priority: 7, UserID: userID}},
		decode[[]TaskResponse](t, rec))

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/task/delete/%d", taskID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task delete is successful", decode[Confirmation](t, rec).Transaction)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/task/delete/%d", taskID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTask_UnknownUser(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/task/create", `{"title":"T","content":"C","priority":1,"user_id":42}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User was not found", decode[errorResponse](t, rec).Detail)

	rec = do(t, h, http.MethodGet, "/task/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no task may be stored")
}

func TestUserTasksOfUnknownUser(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/user/7/tasks", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode[errorResponse](t, rec).Detail)
}

func TestUserTasksEmptyIsOK(t *testing.T) {
	h := newTestRouter(t)
	id := createUser(t, h, "alice", "Alice")
	rec := do(t, h, http.MethodGet, fmt.Sprintf("/user/%d/tasks", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestValidation(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		field  string
	}{
		{"missing age", http.MethodPost, "/user/create", `{"username":"a","firstname":"A","lastname":"B"}`, "age"},
		{"wrong type", http.MethodPost, "/user/create", `{"username":"a","firstname":"A","lastname":"B","age":"old"}`, "age"},
		{"missing user_id", http.MethodPost, "/task/create", `{"title":"T","content":"C","priority":1}`, "user_id"},
		{"missing priority", http.MethodPut, "/task/update/1", `{"title":"T","content":"C"}`, "priority"},
		{"missing firstname", http.MethodPut, "/user/update/1", `{"lastname":"B","age":3}`, "firstname"},
		{"non-integer id", http.MethodGet, "/user/abc", "", "id"},
		{"non-integer task id", http.MethodDelete, "/task/delete/x1", "", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			resp := decode[errorResponse](t, rec)
			require.NotEmpty(t, resp.Errors)
			assert.Equal(t, tt.field, resp.Errors[0].Field)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/user/create", `{"username":`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode[errorResponse](t, rec).Detail, "Malformed JSON body")
	})
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

// stubUsers отдаёт заранее заданную ошибку из каждого метода
type stubUsers struct {
	usecase.UserUseCase
	err error
}

func (s stubUsers) ListUsers(context.Context) ([]domain.User, error) { return nil, s.err }

func (s stubUsers) CreateUser(context.Context, usecase.CreateUserInput) (*domain.User, error) {
	return nil, s.err
}

func TestFailureMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		detail string
	}{
		{"internal fault", errors.New("connection reset"), http.StatusInternalServerError, "Internal Server Error"},
		{"conflict", fmt.Errorf("insert: %w", domain.ErrConflict), http.StatusConflict, detailConflict},
		{"not found reason", domain.NewNotFound("There are no users"), http.StatusNotFound, "There are no users"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(stubUsers{err: tt.err}, nil, 0, logger.NewNop())

			rec := do(t, h, http.MethodGet, "/user/", "")
			assert.Equal(t, tt.code, rec.Code)
			resp := decode[errorResponse](t, rec)
			assert.Equal(t, tt.detail, resp.Detail)
			assert.NotContains(t, rec.Body.String(), "connection reset")

			rec = do(t, h, http.MethodPost, "/user/create", `{"username":"a","firstname":"A","lastname":"B","age":1}`)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

// panicUsers проверяет, что Recoverer превращает панику в 500
type panicUsers struct{ usecase.UserUseCase }

func (panicUsers) ListUsers(context.Context) ([]domain.User, error) { panic("boom") }

func TestPanicRecovered(t *testing.T) {
	h := NewRouter(panicUsers{}, nil, 0, logger.NewNop())
	rec := do(t, h, http.MethodGet, "/user/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
