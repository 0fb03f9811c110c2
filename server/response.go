package server

import (
	"encoding/json"
	"net/http"
)

// Exception types reported by non-envelope errors.
const (
	excValidation = "ValidationError"
	excPermission = "PermissionError"
	excInternal   = "InternalServerError"
	excNotFound   = "DoesNotExistError"
)

// envelope wraps the result of a whitelisted method.
type envelope struct {
	Message any `json:"message"`
}

// exception is the body of a failed call that did not produce a result.
type exception struct {
	ExcType   string `json:"exc_type"`
	Exception string `json:"exception"`
}

// failure is the result returned by method handlers that caught an error.
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(v)
}

func writeMessage(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, envelope{Message: result})
}

func writeException(w http.ResponseWriter, status int, excType, message string) {
	writeJSON(w, status, exception{ExcType: excType, Exception: message})
}
