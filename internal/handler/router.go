package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/TaskManager/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает chi-роутер со всеми маршрутами API
func NewRouter(users usecase.UserUseCase, tasks usecase.TaskUseCase, timeout time.Duration, logger *slog.Logger) http.Handler {
	userHandler := NewUserHandler(users, logger)
	taskHandler := NewTaskHandler(tasks, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not Found", logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", logger)
	})

	r.Route("/user", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)
		r.Post("/create", userHandler.CreateUser)
		r.Get("/{id}", userHandler.GetUser)
		r.Get("/{id}/tasks", userHandler.ListUserTasks)
		r.Put("/update/{id}", userHandler.UpdateUser)
		r.Delete("/delete/{id}", userHandler.DeleteUser)
	})

	r.Route("/task", func(r chi.Router) {
		r.Get("/", taskHandler.ListTasks)
		r.Post("/create", taskHandler.CreateTask)
		r.Get("/{id}", taskHandler.GetTask)
		r.Put("/update/{id}", taskHandler.UpdateTask)
		r.Delete("/delete/{id}", taskHandler.DeleteTask)
	})

	return r
}
