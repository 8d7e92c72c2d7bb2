package api

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidRole       = "INVALID_ROLE"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidSignature  = "INVALID_SIGNATURE"
	CodePaymentNotAllowed = "PAYMENT_NOT_ALLOWED"
	CodePaymentConflict   = "PAYMENT_CONFLICT"
	CodeWebhookFailed     = "WEBHOOK_FAILED"
)

const (
	ErrNotFound          = "not found"
	ErrValidationFailed  = "validation failed"
	ErrUnauthorized      = "missing or invalid credentials"
	ErrInvalidSignature  = "invalid signature"
	ErrMissingSignature  = "missing stripe-signature header"
	ErrPaymentNotAllowed = "request does not accept this payment"
	ErrPaymentConflict   = "payment intent already attached"
	ErrWebhookFailed     = "webhook handler failed"
)

type apiError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

func WriteApiError(w http.ResponseWriter, logger *zap.Logger, message string, code string, statusCode int) {
	writeApiError(w, logger, message, code, statusCode, nil)
}

// WriteValidationError reports per-field messages from ozzo-validation so forms can show them inline.
func WriteValidationError(w http.ResponseWriter, logger *zap.Logger, err error) {
	fields := make(map[string]string)

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for name, ferr := range verrs {
			fields[name] = ferr.Error()
		}
	}

	writeApiError(w, logger, ErrValidationFailed, CodeValidationFailed, http.StatusBadRequest, fields)
}

func writeApiError(w http.ResponseWriter, logger *zap.Logger, message string, code string, statusCode int, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	e := apiError{}
	e.Error.Code = code
	e.Error.Message = message
	if len(fields) > 0 {
		e.Error.Fields = fields
	}

	err := json.NewEncoder(w).Encode(e)
	if err != nil {
		logger.Error("WriteError: failed to encoding response", zap.Error(err))
	}
}
