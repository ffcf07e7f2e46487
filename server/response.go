package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"playshare/apperr"
	"playshare/logger"
)

// errorBody is the JSON envelope for every failed request. Internal error
// detail is logged server-side and never serialized to the client.
type errorBody struct {
	Error struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	} `json:"error"`
}

// writeJSON serializes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", logger.ErrorField(err))
	}
}

// writeError maps err onto the API error taxonomy and writes the error
// envelope. Errors outside the taxonomy become a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.Error("unhandled internal error", logger.ErrorField(err))
		appErr = apperr.ErrInternal
	} else if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed", logger.String("code", appErr.Code), logger.ErrorField(err))
	}

	var body errorBody
	body.Error.Code = appErr.Code
	body.Error.Message = appErr.Message
	body.Error.Details = appErr.Details
	writeJSON(w, appErr.HTTPStatus, body)
}

// notFoundHandler serves the generic 404 used when handlers fall through.
func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperr.ErrNotFound)
}
