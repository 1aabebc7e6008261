// internal/api/handler/response.go
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"money-transfer-api/internal/api/types"
	"money-transfer-api/internal/util"
	"money-transfer-api/internal/validation"
)

// DefaultTimeout bounds how long a single request may run.
const DefaultTimeout = 60 * time.Second

const (
	maxBodyBytes        = 1 << 20
	genericErrorMessage = "Something went wrong"
)

// responder writes envelopes and maps service errors to HTTP statuses.
// Every handler embeds one.
type responder struct {
	logger      *slog.Logger
	development bool
}

func newResponder(logger *slog.Logger, development bool) responder {
	return responder{logger: logger, development: development}
}

func (rp responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	if err := types.WriteJSON(w, code, payload); err != nil {
		rp.logger.Error("Failed to write JSON response", "error", err)
	}
}

func (rp responder) respondSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	rp.respondWithJSON(w, code, types.Response{Success: true, Message: message, Data: data})
}

// respondWithError maps err onto a status code and failure envelope.
func (rp responder) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	message := err.Error()
	var details interface{}

	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		statusCode = http.StatusBadRequest
		message = "Validation failed"
		details = verrs
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
	case util.IsError(err, util.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid email or password"
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Unauthorized"
	case util.IsError(err, util.ErrEmailTaken):
		statusCode = http.StatusConflict
		message = "User with this email already exists"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Resource already exists"
	case util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "User not found"
	case util.IsError(err, util.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		message = "Transaction not found"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrTransferFailed):
		message = "Transfer processing failed"
	}

	attrs := []any{
		"status", statusCode,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"request_id", chimw.GetReqID(r.Context()),
		"error", err,
	}
	if statusCode >= http.StatusInternalServerError {
		rp.logger.Error("Request failed", attrs...)
		if !rp.development {
			message = genericErrorMessage
		}
	} else {
		rp.logger.Warn("Request rejected", attrs...)
	}

	rp.respondWithJSON(w, statusCode, types.Response{Success: false, Message: message, Details: details})
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body", util.ErrInvalidInput)
	}
	return nil
}
