package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/TaskManager/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	detailInternal   = "Internal Server Error"
	detailConflict   = "Resource with the same unique value already exists"
	detailValidation = "Validation error"
	detailBadID      = "Path parameter id must be an integer"
)

// errorResponse описывает тело любого ответа с ошибкой
type errorResponse struct {
	Detail string       `json:"detail"`
	Errors []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Confirmation это ответ на успешную операцию записи.
// ID заполняется только для операций создания.
type Confirmation struct {
	StatusCode  int    `json:"status_code"`
	Transaction string `json:"transaction"`
	ID          *int64 `json:"id,omitempty"`
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, errorResponse{Detail: message}, logger)
}

func respondConfirmation(w http.ResponseWriter, code int, message string, id *int64, logger *slog.Logger) {
	respondWithJSON(w, code, Confirmation{StatusCode: code, Transaction: message, ID: id}, logger)
}

// respondWithFailure переводит ошибку usecase в HTTP-статус.
// Внутренние подробности клиенту не отдаются.
func respondWithFailure(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		respondWithError(w, http.StatusNotFound, nf.Reason, logger)
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", logger)
	case errors.Is(err, domain.ErrConflict):
		logger.Warn("unique constraint race", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusConflict, detailConflict, logger)
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, detailInternal, logger)
	}
}

// pathID читает {id} из пути; при ошибке ответ уже отправлен
func pathID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warn("invalid id parameter", "id", raw, "error", err)
		respondWithJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Detail: detailBadID,
			Errors: []fieldError{{Field: "id", Message: "value is not a valid integer"}},
		}, logger)
		return 0, false
	}
	return id, true
}
