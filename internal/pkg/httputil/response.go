// Package httputil provides HTTP helpers shared by the dashboard handlers.
package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bissquit/cryptodefi/internal/gate"
	"github.com/go-playground/validator/v10"
)

// ErrorBody is the payload of the {"error": ...} envelope.
type ErrorBody struct {
	Message string       `json:"message"`
	Details any          `json:"details,omitempty"`
	Notice  *gate.Notice `json:"notice,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes a raw JSON response without envelope.
// Use Success for {"data": ...} wrapped responses.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := io.WriteString(w, text); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Success writes a JSON response with {"data": ...} envelope.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, struct {
		Data any `json:"data"`
	}{data})
}

// Error writes a JSON response with {"error": {"message": ...}} envelope.
func Error(w http.ResponseWriter, status int, message string) {
	WriteError(w, status, ErrorBody{Message: message})
}

// WriteError writes body inside the error envelope.
func WriteError(w http.ResponseWriter, status int, body ErrorBody) {
	JSON(w, status, struct {
		Error ErrorBody `json:"error"`
	}{body})
}

// ValidationError writes a validation error response.
// validator.ValidationErrors become per-field details; anything else is reported as text.
func ValidationError(w http.ResponseWriter, err error) {
	body := ErrorBody{Message: "validation error", Details: err.Error()}

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		fields := make([]FieldError, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, FieldError{Field: e.Field(), Message: e.Tag()})
		}
		body.Details = fields
	}

	WriteError(w, http.StatusBadRequest, body)
}

// StartEvents sends the headers of a Server-Sent Events response.
func StartEvents(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
}

// Event writes one Server-Sent Event with a JSON data line.
func Event(w io.Writer, id uint64, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
