package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
)

const (
	headerSessionID     = "X-Session-ID"
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrUnknownTool):
		return http.StatusNotFound, e.ErrUnknownTool.Error()
	case errors.Is(err, e.ErrSessionRequired):
		return http.StatusBadRequest, e.ErrSessionRequired.Error()
	case e.KindOf(err) == e.KindValidation:
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// callerFromRequest читает сессию и необязательный bearer-токен из заголовков.
func callerFromRequest(r *http.Request) (usecase.Caller, error) {
	sid := strings.TrimSpace(r.Header.Get(headerSessionID))
	if sid == "" {
		return usecase.Caller{}, e.ErrSessionRequired
	}

	var token string
	if auth := r.Header.Get(headerAuthorization); strings.HasPrefix(auth, bearerPrefix) {
		token = strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
	}

	return usecase.Caller{SessionID: sid, Token: token}, nil
}
