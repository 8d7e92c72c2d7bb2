package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/domain"
	"majaz-portal/internal/i18n"
	"majaz-portal/internal/repository"
)

func CreateRequest(repo repository.Repository, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		var in api.CreateRequestInput
		err := decodeJSON(w, r, &in)
		if err != nil {
			logger.Warn("CreateRequest: failed to decode body", zap.Error(err))
			writeDecodeError(w, logger, err)
			return
		}

		in.VehicleMake = strings.TrimSpace(in.VehicleMake)
		in.VehicleModel = strings.TrimSpace(in.VehicleModel)
		in.Location = strings.TrimSpace(in.Location)
		in.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))

		err = in.Validate()
		if err != nil {
			logger.Warn("CreateRequest: validation failed", zap.Error(err))
			api.WriteValidationError(w, logger, err)
			return
		}

		tier, err := domain.ParseTier(in.Tier)
		if err != nil {
			logger.Warn("CreateRequest: unknown tier", zap.Error(err))
			api.WriteApiError(w, logger, api.ErrValidationFailed, api.CodeValidationFailed, http.StatusBadRequest)
			return
		}

		c := customer(r)

		locale := i18n.FromRequest(r)
		if in.Locale != "" {
			locale = i18n.Parse(in.Locale)
		}

		req := &domain.Request{
			CustomerID:    c.ID,
			CustomerEmail: c.Email,
			CustomerName:  c.Name,
			CustomerPhone: in.Phone,
			Locale:        locale.String(),
			Tier:          tier,
			Status:        domain.StatusPendingPayment,
			VehicleMake:   in.VehicleMake,
			VehicleModel:  in.VehicleModel,
			VehicleYear:   in.VehicleYear,
			VIN:           in.VIN,
			Location:      in.Location,
			PreferredDate: in.PreferredDateValue(),
			Notes:         in.Notes,
			Amount:        tier.Price(),
			Currency:      domain.Currency,
		}

		event := domain.Event{
			Type:        domain.EventRequestCreated,
			Description: fmt.Sprintf("%s assessment requested for %d %s %s", tier, in.VehicleYear, in.VehicleMake, in.VehicleModel),
		}

		created, err := repo.CreateRequest(ctx, req, event)
		if err != nil {
			logger.Error("CreateRequest: failed to create request", zap.String("customer_id", c.ID), zap.Error(err))
			WriteError(w, logger, "failed to create request", http.StatusInternalServerError)
			return
		}

		_ = writeJSON(w, logger, http.StatusCreated, toApiRequest(created))

		logger.Info("CreateRequest: request created",
			zap.String("request_id", created.ID),
			zap.String("customer_id", c.ID),
			zap.String("tier", string(tier)),
		)
	}
}
