package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// Error is a domain failure carrying the HTTP status it maps to at the
// boundary. Services raise these at the point of detection; handlers write
// them unmodified.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

func BadRequest(msg string) *Error   { return New(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, msg) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, msg) }
func Conflict(msg string) *Error     { return New(http.StatusConflict, msg) }

// Write maps any error to a JSON error response. Typed domain errors keep
// their status; a missing document surfaces as 404; everything else is a 500.
func Write(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"

	var appErr *Error
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		msg = appErr.Message
	case errors.Is(err, mongo.ErrNoDocuments):
		status = http.StatusNotFound
		msg = "Resource not found"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"status": status, "error": msg})
}
