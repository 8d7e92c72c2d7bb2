package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/auth"
	"majaz-portal/internal/domain"
)

// maxJSONBody caps form and API bodies; none of them legitimately come near it.
const maxJSONBody = int64(16 << 10)

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, logger *zap.Logger, errMessage string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Status:  statusCode,
		Message: errMessage,
	}

	err := json.NewEncoder(w).Encode(resp)
	if err != nil {
		logger.Error("WriteError: failed to encoding response", zap.Error(err))
	}
}

// Unauthorized is the failure callback for auth.Middleware.
func Unauthorized(logger *zap.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("Auth: rejected request", zap.String("path", r.URL.Path), zap.Error(err))
		api.WriteApiError(w, logger, api.ErrUnauthorized, api.CodeUnauthorized, http.StatusUnauthorized)
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, statusCode int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
	return err
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, logger, "body too large", http.StatusRequestEntityTooLarge)
		return
	}
	WriteError(w, logger, "failed to decode body", http.StatusBadRequest)
}

func customer(r *http.Request) auth.Customer {
	c, _ := auth.CustomerFrom(r.Context())
	return c
}

func toApiRequest(req *domain.Request) api.Request {
	out := api.Request{
		ID:              req.ID,
		Tier:            string(req.Tier),
		Status:          string(req.Status),
		VehicleMake:     req.VehicleMake,
		VehicleModel:    req.VehicleModel,
		VehicleYear:     req.VehicleYear,
		VIN:             req.VIN,
		Location:        req.Location,
		Notes:           req.Notes,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Locale:          req.Locale,
		StripePaymentID: req.StripePaymentID,
		StripeDepositID: req.StripeDepositID,
		PaidAt:          req.PaidAt,
		RefundedAt:      req.RefundedAt,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
	if req.PreferredDate != nil {
		out.PreferredDate = req.PreferredDate.Format("2006-01-02")
	}

	return out
}

func toApiEvents(events []domain.Event) []api.Event {
	out := make([]api.Event, len(events))
	for i, e := range events {
		out[i] = api.Event{
			ID:          e.ID,
			Type:        string(e.Type),
			Description: e.Description,
			Payload:     e.Payload,
			CreatedAt:   e.CreatedAt,
		}
	}
	return out
}
