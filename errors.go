package mailroom

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
	"github.com/dmitrymomot/mailroom/pkg/validator"
)

// Re-exported from pkg/mailer so callers need a single import.
var (
	ErrNotEnabled         = mailer.ErrNotEnabled
	ErrInvalidParams      = mailer.ErrInvalidParams
	ErrTransportInit      = mailer.ErrTransportInit
	ErrTransportSend      = mailer.ErrTransportSend
	ErrUnknownTransport   = mailer.ErrUnknownTransport
	ErrSendFailed         = mailer.ErrSendFailed
	ErrVerificationFailed = mailer.ErrVerificationFailed
	ErrPollTimeout        = mailer.ErrPollTimeout
)

// SendFailedError is returned by Send when the transport failed.
type SendFailedError = mailer.SendFailedError

// ErrorHandler renders errors returned by the HTTP handlers.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the JSON body written by DefaultErrorHandler.
type ErrorResponse struct {
	Error  string                     `json:"error"`
	Code   string                     `json:"code"`
	Fields validator.ValidationErrors `json:"fields,omitempty"`
}

// StatusCode maps an error returned by Send onto an HTTP status code.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidParams) && validator.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownTransport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotEnabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrSendFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns a stable machine-readable code for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidParams):
		return "invalid_params"
	case errors.Is(err, ErrUnknownTransport):
		return "unknown_transport"
	case errors.Is(err, ErrNotEnabled):
		return "not_enabled"
	case errors.Is(err, ErrSendFailed):
		return "send_failed"
	default:
		return "internal_error"
	}
}

// DefaultErrorHandler writes err as an ErrorResponse with the status from StatusCode.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := StatusCode(err)
	resp := ErrorResponse{
		Error:  err.Error(),
		Code:   ErrorCode(err),
		Fields: validator.ExtractValidationErrors(err),
	}
	if code == http.StatusInternalServerError {
		resp.Error = http.StatusText(code)
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
