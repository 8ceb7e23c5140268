package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"financas/internal/core"
)

// Every handler answers with this envelope. Data is present on success,
// Message and Errors on failure.
type response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Errors  []any  `json:"errors,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, response{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, response{Status: "error", Message: message})
}

// writeError maps domain errors onto status codes. Unknown errors become
// opaque 500s; the detail is only echoed in development.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		fieldErrors := make([]any, 0, len(ve.Fields))
		for _, fe := range ve.Fields {
			fieldErrors = append(fieldErrors, fe)
		}
		writeJSON(w, http.StatusBadRequest, response{
			Status:  "error",
			Message: "dados invalidos",
			Errors:  fieldErrors,
		})
	case errors.Is(err, core.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, "id invalido")
	case errors.Is(err, core.ErrDuplicate):
		writeMessage(w, http.StatusBadRequest, "registo duplicado")
	case errors.Is(err, core.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "nao autenticado")
	case errors.Is(err, core.ErrInactiveUser):
		writeMessage(w, http.StatusUnauthorized, "conta desativada")
	case errors.Is(err, core.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "acesso negado")
	case errors.Is(err, core.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "registo nao encontrado")
	default:
		s.logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		resp := response{Status: "error", Message: "erro interno"}
		if !s.isProduction {
			resp.Detail = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}
