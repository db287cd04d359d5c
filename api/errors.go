package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/garnizeh/pereval/pkg/repository"
)

type errorResponse struct {
	Error string `json:"error"`
}

// stateResponse is the PATCH envelope: state 1 on success, 0 otherwise.
type stateResponse struct {
	State   int    `json:"state"`
	Message string `json:"message"`
}

// statusFor maps store and validation errors onto HTTP status codes.
func statusFor(err error) int {
	var rv *repository.RuleViolation
	switch {
	case errors.Is(err, repository.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &rv):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func logFailure(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("request_id", RequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logFailure(r, status, err)
	writeJSON(w, errorResponse{Error: err.Error()}, status)
}

func writeState(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logFailure(r, status, err)
	writeJSON(w, stateResponse{State: 0, Message: err.Error()}, status)
}
