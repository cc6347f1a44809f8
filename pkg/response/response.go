package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// Envelope is the body of every JSON response. Error carries the error code;
// Detail is only set for INTERNAL errors outside production.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

var hideInternal atomic.Bool

// HideInternalDetail stops the cause of INTERNAL errors from reaching clients.
// Called once at startup in production.
func HideInternalDetail(hide bool) {
	hideInternal.Store(hide)
}

func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("Failed to encode response")
	}
}

func OK(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Error maps err to its status code and writes the failure envelope.
func Error(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	body := Envelope{Success: false, Error: string(code)}

	var appErr *apperrors.AppError
	switch {
	case code == apperrors.CodeInternal:
		body.Message = "internal server error"
		if !hideInternal.Load() {
			body.Detail = err.Error()
		}
	case errors.As(err, &appErr):
		body.Message = appErr.Message
	}
	JSON(w, apperrors.HTTPStatus(code), body)
}

// Fail writes an error envelope for a code without an underlying error value.
func Fail(w http.ResponseWriter, code apperrors.Code, message string) {
	Error(w, apperrors.New(code, message))
}
