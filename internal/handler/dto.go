package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Поля запросов объявлены указателями, так отсутствующее поле отличается от нулевого
// значения, и "age": 0 остаётся допустимым.

type CreateUserRequest struct {
	Username  *string `json:"username" validate:"required"`
	Firstname *string `json:"firstname" validate:"required"`
	Lastname  *string `json:"lastname" validate:"required"`
	Age       *int    `json:"age" validate:"required"`
	// Slug принимается, но игнорируется
	Slug *string `json:"slug,omitempty"`
}

type UpdateUserRequest struct {
	Firstname *string `json:"firstname" validate:"required"`
	Lastname  *string `json:"lastname" validate:"required"`
	Age       *int    `json:"age" validate:"required"`
}

type CreateTaskRequest struct {
	Title    *string `json:"title" validate:"required"`
	Content  *string `json:"content" validate:"required"`
	Priority *int    `json:"priority" validate:"required"`
	UserID   *int64  `json:"user_id" validate:"required"`
}

type UpdateTaskRequest struct {
	Title    *string `json:"title" validate:"required"`
	Content  *string `json:"content" validate:"required"`
	Priority *int    `json:"priority" validate:"required"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
	Slug      string `json:"slug"`
}

type TaskResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Priority int    `json:"priority"`
	UserID   int64  `json:"user_id"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Age:       u.Age,
		Slug:      u.Slug,
	}
}

func newTaskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:       t.ID,
		Title:    t.Title,
		Content:  t.Content,
		Priority: t.Priority,
		UserID:   t.UserID,
	}
}

func newUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

func newTaskResponses(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t))
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// в ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestError: тело запроса не разобрано или не прошло валидацию
type requestError struct {
	detail string
	fields []fieldError
}

func (e *requestError) Error() string { return e.detail }

// decodeRequest разбирает JSON-тело в dst и проверяет теги validate
func decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &requestError{
				detail: detailValidation,
				fields: []fieldError{{Field: typeErr.Field, Message: fmt.Sprintf("expected %s", typeErr.Type)}},
			}
		}
		return &requestError{detail: "Malformed JSON body: " + err.Error()}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return &requestError{detail: detailValidation, fields: fields}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "field required"
	}
	return fmt.Sprintf("failed on %q", fe.Tag())
}

// decodeOrReject разбирает тело; при ошибке сразу отвечает 422
func decodeOrReject(w http.ResponseWriter, r *http.Request, dst any, logger *slog.Logger) bool {
	err := decodeRequest(r, dst)
	if err == nil {
		return true
	}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		logger.Warn("invalid request body", "path", r.URL.Path, "error", reqErr.detail, "fields", len(reqErr.fields))
		respondWithJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: reqErr.detail, Errors: reqErr.fields}, logger)
		return false
	}
	respondWithFailure(w, r, err, logger)
	return false
}
