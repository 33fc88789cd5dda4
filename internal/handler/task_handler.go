package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/TaskManager/internal/usecase"
)

const (
	msgTaskUpdated = "Task update is successful"
	msgTaskDeleted = "Task delete is successful"
)

type TaskHandler struct {
	tasks  usecase.TaskUseCase
	logger *slog.Logger
}

func NewTaskHandler(uc usecase.TaskUseCase, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: uc, logger: logger}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskResponses(tasks), h.logger)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskResponse(*task), h.logger)
}

// CreateTask обрабатывает POST /task/create, владелец должен существовать
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeOrReject(w, r, &req, h.logger) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), usecase.CreateTaskInput{
		Title:    *req.Title,
		Content:  *req.Content,
		Priority: *req.Priority,
		UserID:   *req.UserID,
	})
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}

	h.logger.Info("task created via API", "id", task.ID, "user_id", task.UserID)
	respondConfirmation(w, http.StatusCreated, msgCreated, &task.ID, h.logger)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if !decodeOrReject(w, r, &req, h.logger) {
		return
	}

	_, err := h.tasks.UpdateTask(r.Context(), id, usecase.UpdateTaskInput{
		Title:    *req.Title,
		Content:  *req.Content,
		Priority: *req.Priority,
	})
	if err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondConfirmation(w, http.StatusOK, msgTaskUpdated, nil, h.logger)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(r.Context(), id); err != nil {
		respondWithFailure(w, r, err, h.logger)
		return
	}
	respondConfirmation(w, http.StatusOK, msgTaskDeleted, nil, h.logger)
}
