package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/server/auth"
	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

// envelope is the body of every JSON response.
type envelope struct {
	Status     bool   `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Error      any    `json:"error"`
}

// MarshalJSON emits data on success and error (possibly null) on failure.
func (e envelope) MarshalJSON() ([]byte, error) {
	if e.Status {
		return json.Marshal(struct {
			Status     bool   `json:"status"`
			StatusCode int    `json:"status_code"`
			Message    string `json:"message"`
			Data       any    `json:"data"`
		}{e.Status, e.StatusCode, e.Message, e.Data})
	}
	return json.Marshal(struct {
		Status     bool   `json:"status"`
		StatusCode int    `json:"status_code"`
		Message    string `json:"message"`
		Error      any    `json:"error"`
	}{e.Status, e.StatusCode, e.Message, e.Error})
}

type paginatedEnvelope struct {
	Status          bool   `json:"status"`
	StatusCode      int    `json:"status_code"`
	Message         string `json:"message"`
	Data            any    `json:"data"`
	Page            int    `json:"page"`
	Limit           int    `json:"limit"`
	Total           int    `json:"total"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

// internalErrorDetails is exposed for 500 responses in development.
type internalErrorDetails struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"status":false,"status_code":500,"message":"Internal server error","error":null}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

func (h *Handler) respond(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, envelope{Status: code < 400, StatusCode: code, Message: message, Data: data})
}

func (h *Handler) respondPage(w http.ResponseWriter, message string, data any, q pageQuery, total int) {
	writeJSON(w, http.StatusOK, paginatedEnvelope{
		Status:          true,
		StatusCode:      http.StatusOK,
		Message:         message,
		Data:            data,
		Page:            q.Page,
		Limit:           q.Limit,
		Total:           total,
		HasNextPage:     q.Page*q.Limit < total,
		HasPreviousPage: q.Page > 1,
	})
}

// respondError writes an error envelope and records it in the logs table.
// cause is the underlying error, if any; payload goes out as "error".
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, code int, message string, payload any, cause error) {
	h.recordError(r, message, cause)
	writeJSON(w, code, envelope{Status: false, StatusCode: code, Message: message, Error: payload})
}

// respondInternal writes a 500. Details are exposed only in development.
func (h *Handler) respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	var payload any
	if h.development && err != nil {
		payload = internalErrorDetails{
			Message:   err.Error(),
			Timestamp: h.now().UTC(),
			Path:      r.URL.Path,
			Method:    r.Method,
		}
	}
	h.respondError(w, r, http.StatusInternalServerError, msgInternalServerError, payload, err)
}

func (h *Handler) recordError(r *http.Request, message string, cause error) {
	if h.errorLog == nil {
		return
	}
	stack := "No stack available"
	if cause != nil {
		stack = cause.Error()
	}
	entry := &models.Log{
		Level:   models.LogLevelError,
		Message: message,
		Stack:   stack,
		Meta: models.LogMeta{
			Timestamp: h.now().UTC(),
			Endpoint:  r.URL.RequestURI(),
			Method:    r.Method,
			IP:        clientIP(r),
		},
	}
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		entry.Meta.UserID = p.UserID
	}
	if err := h.errorLog.Record(r.Context(), entry); err != nil && !errors.Is(err, r.Context().Err()) {
		h.logger.Error(r.Context(), "failed to persist error log", "message", message, "error", err)
	}
}
