package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/TaskManager/internal/usecase"
)

const (
	msgCreated     = "Successful"
	msgUserUpdated = "User update is successful"
	msgUserDeleted = "User and associated tasks delete is successful"
)

// UserHandler — обработчик HTTP-запросов для работы с пользователями.
type UserHandler struct {
	users  usecase.UserUseCase
	logger *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: uc, logger: logger}
}

// ListUsers обрабатывает GET /user/
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newUserResponses(users), h.logger)
}

// GetUser обрабатывает GET /user/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newUserResponse(*user), h.logger)
}

// CreateUser обрабатывает POST /user/create
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeOrReject(w, r, &req, h.logger) {
		return
	}
	if req.Slug != nil {
		h.logger.Debug("client slug ignored", "slug", *req.Slug)
	}

	user, err := h.users.CreateUser(r.Context(), usecase.CreateUserInput{
		Username:  *req.Username,
		Firstname: *req.Firstname,
		Lastname:  *req.Lastname,
		Age:       *req.Age,
	})
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}

	h.logger.Info("user created via API", "id", user.ID)
	respondConfirmation(w, http.StatusCreated, msgCreated, &user.ID, h.logger)
}

// UpdateUser обрабатывает PUT /user/update/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeOrReject(w, r, &req, h.logger) {
		return
	}

	_, err := h.users.UpdateUser(r.Context(), id, usecase.UpdateUserInput{
		Firstname: *req.Firstname,
		Lastname:  *req.Lastname,
		Age:       *req.Age,
	})
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondConfirmation(w, http.StatusOK, msgUserUpdated, nil, h.logger)
}

// DeleteUser обрабатывает DELETE /user/delete/{id}, удаляет и задачи пользователя
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondConfirmation(w, http.StatusOK, msgUserDeleted, nil, h.logger)
}

// ListUserTasks обрабатывает GET /user/{id}/tasks
func (h *UserHandler) ListUserTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	tasks, err := h.users.ListUserTasks(r.Context(), id)
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskResponses(tasks), h.logger)
}
