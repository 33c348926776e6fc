// Package httpserver contains the HTTP handlers and middleware for the
// scoring and rewrite API. Handlers translate between the JSON surface and
// the usecase services; business rules live below this package.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto the wire taxonomy. Raw provider
// payloads stay in logs; the envelope carries a plain-language message.
func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	status := http.StatusInternalServerError
	code := "SERVER_ERROR"
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		status = http.StatusBadRequest
		code = "MISSING_INPUT"
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
		code = "BAD_REQUEST"
	case errors.Is(err, domain.ErrMethodNotAllowed):
		status = http.StatusMethodNotAllowed
		code = "METHOD_NOT_ALLOWED"
	case errors.Is(err, domain.ErrServerMisconfig):
		status = http.StatusInternalServerError
		code = "SERVER_MISCONFIG"
	case errors.Is(err, domain.ErrUpstreamTimeout), errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
		code = "LLM_UPSTREAM_ERROR"
	case errors.Is(err, domain.ErrNonJSONResponse):
		status = http.StatusBadGateway
		code = "NON_JSON_RESPONSE"
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: err.Error(), Details: details}})
}
