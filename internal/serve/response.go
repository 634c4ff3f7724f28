// Package serve is the HTTP content server behind modalkit serve. It hands
// stored dialog definitions to remote-source dialogs and manages them over
// a small JSON API.
package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcus/modalkit/internal/store"
)

// Envelope is the standard response wrapper for API responses.
// Success: {"ok": true, "data": {...}}
// Error:   {"ok": false, "error": {"code": "...", "message": "...", "details": ...}}
//
// GET /dialogs/{name} is the exception: it answers in the bare content shape
// remote-source dialogs read.
type Envelope struct {
	OK    bool          `json:"ok"`
	Data  any           `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload holds structured error information.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// FieldError describes a single validation failure on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Standard error codes mapped to HTTP status codes.
const (
	ErrValidation   = "validation_error" // 400
	ErrNotFound     = "not_found"        // 404
	ErrUnauthorized = "unauthorized"     // 401
	ErrInternal     = "internal"         // 500
)

// WriteSuccess writes a JSON success envelope with the given data and status.
func WriteSuccess(w http.ResponseWriter, data any, status int) {
	writeJSON(w, Envelope{OK: true, Data: data}, status)
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, code, message string, status int) {
	writeJSON(w, Envelope{OK: false, Error: &ErrorPayload{Code: code, Message: message}}, status)
}

// WriteValidation writes a 400 validation_error response with field-level details.
func WriteValidation(w http.ResponseWriter, fields []FieldError) {
	writeJSON(w, Envelope{
		OK: false,
		Error: &ErrorPayload{
			Code:    ErrValidation,
			Message: "Validation failed",
			Details: fields,
		},
	}, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "err", err)
	}
}

// ContentResponse is the body remote-source dialogs consume.
type ContentResponse struct {
	Content map[string]any `json:"content"`
	HTML    string         `json:"html,omitempty"`
}

// DialogDTO is the API representation of a stored definition.
// Options serializes as {} when empty, never null.
type DialogDTO struct {
	Name      string         `json:"name"`
	Options   map[string]any `json:"options"`
	HTML      string         `json:"html"`
	UpdatedAt string         `json:"updated_at"`
}

// DialogBody is the request body of PUT /dialogs/{name}.
type DialogBody struct {
	Options map[string]any `json:"options"`
	HTML    string         `json:"html"`
}

// DialogToDTO converts a stored definition.
func DialogToDTO(def *store.Definition) DialogDTO {
	opts := def.Options
	if opts == nil {
		opts = map[string]any{}
	}
	return DialogDTO{
		Name:      def.Name,
		Options:   opts,
		HTML:      def.HTML,
		UpdatedAt: def.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// DialogsToDTOs converts a list, returning [] rather than nil.
func DialogsToDTOs(defs []store.Definition) []DialogDTO {
	out := make([]DialogDTO, 0, len(defs))
	for i := range defs {
		out = append(out, DialogToDTO(&defs[i]))
	}
	return out
}

// DialogToContent converts a definition to the remote-source shape.
func DialogToContent(def *store.Definition) ContentResponse {
	content := def.Options
	if content == nil {
		content = map[string]any{}
	}
	return ContentResponse{Content: content, HTML: def.HTML}
}
