package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/tools"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRunError maps input validation and generation failures onto the
// error envelope.
func writeRunError(w http.ResponseWriter, err error) {
	var verr *tools.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid input",
			Code:    "INVALID_INPUT",
			Details: verr.Fields,
		})
		return
	}
	if errors.Is(err, tools.ErrUnknownTool) {
		writeError(w, http.StatusNotFound, "tool not found", "NOT_FOUND")
		return
	}

	aerr := ai.AsError(err)
	resp := ErrorResponse{Error: aerr.Message, Code: aerr.Code}
	if len(aerr.Violations) > 0 {
		resp.Details = aerr.Violations
	}
	writeJSON(w, aerr.Status, resp)
}
