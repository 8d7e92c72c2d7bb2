package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/domain"
	"majaz-portal/internal/payments"
	"majaz-portal/internal/repository"
)

type PaymentCreator interface {
	CreatePaymentIntent(ctx context.Context, p payments.IntentParams) (*payments.Intent, error)
}

func CreatePaymentIntent(repo repository.Repository, intents PaymentCreator, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		var in api.CreatePaymentIntentInput
		err := decodeJSON(w, r, &in)
		if err != nil {
			logger.Warn("CreatePaymentIntent: failed to decode body", zap.Error(err))
			writeDecodeError(w, logger, err)
			return
		}

		err = in.Validate()
		if err != nil {
			logger.Warn("CreatePaymentIntent: validation failed", zap.Error(err))
			api.WriteValidationError(w, logger, err)
			return
		}

		kind, err := domain.ParsePaymentKind(in.PaymentType)
		if err != nil {
			logger.Warn("CreatePaymentIntent: unknown payment type", zap.Error(err))
			api.WriteApiError(w, logger, api.ErrValidationFailed, api.CodeValidationFailed, http.StatusBadRequest)
			return
		}

		c := customer(r)

		req, err := repo.GetRequest(ctx, in.RequestID)
		if err != nil {
			if errors.Is(err, repository.ErrRequestNotFound) {
				logger.Warn("CreatePaymentIntent: request not found", zap.String("request_id", in.RequestID))
				api.WriteApiError(w, logger, api.ErrNotFound, api.CodeNotFound, http.StatusNotFound)
				return
			}

			logger.Error("CreatePaymentIntent: failed to get request", zap.String("request_id", in.RequestID), zap.Error(err))
			WriteError(w, logger, "failed to get request", http.StatusInternalServerError)
			return
		}

		if req.CustomerID != c.ID {
			logger.Warn("CreatePaymentIntent: request owned by another customer",
				zap.String("request_id", in.RequestID),
				zap.String("customer_id", c.ID),
			)
			api.WriteApiError(w, logger, api.ErrNotFound, api.CodeNotFound, http.StatusNotFound)
			return
		}

		if !req.Status.AcceptsPayment(kind) {
			logger.Warn("CreatePaymentIntent: payment not allowed",
				zap.String("request_id", req.ID),
				zap.String("status", string(req.Status)),
				zap.String("payment_type", string(kind)),
			)
			api.WriteApiError(w, logger, api.ErrPaymentNotAllowed, api.CodePaymentNotAllowed, http.StatusConflict)
			return
		}

		amount := req.Tier.Amount(kind, req.Status == domain.StatusDepositPaid)

		intent, err := intents.CreatePaymentIntent(ctx, payments.IntentParams{
			RequestID:    req.ID,
			Tier:         string(req.Tier),
			PaymentType:  string(kind),
			Locale:       req.Locale,
			Amount:       amount,
			Currency:     domain.Currency,
			ReceiptEmail: req.CustomerEmail,
			Description:  fmt.Sprintf("MAJAZ %s assessment (%s)", req.Tier, kind),
		})
		if err != nil {
			logger.Error("CreatePaymentIntent: stripe rejected intent", zap.String("request_id", req.ID), zap.Error(err))
			WriteError(w, logger, "failed to create payment intent", http.StatusBadGateway)
			return
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"payment_intent_id": intent.ID,
			"payment_type":      kind,
			"amount":            intent.Amount,
			"currency":          intent.Currency,
		})
		event := domain.Event{
			Type:        domain.EventPaymentIntentCreated,
			Description: fmt.Sprintf("%s payment intent created", kind),
			Payload:     payload,
		}

		err = repo.AttachPaymentIntent(ctx, req.ID, kind, intent.ID, event)
		if err != nil {
			if errors.Is(err, repository.ErrPaymentAlreadyAttached) {
				logger.Warn("CreatePaymentIntent: intent already attached",
					zap.String("request_id", req.ID),
					zap.String("payment_intent_id", intent.ID),
				)
				api.WriteApiError(w, logger, api.ErrPaymentConflict, api.CodePaymentConflict, http.StatusConflict)
				return
			}

			logger.Error("CreatePaymentIntent: failed to attach intent", zap.String("request_id", req.ID), zap.Error(err))
			WriteError(w, logger, "failed to store payment intent", http.StatusInternalServerError)
			return
		}

		_ = writeJSON(w, logger, http.StatusOK, api.PaymentIntent{
			RequestID:       req.ID,
			PaymentIntentID: intent.ID,
			ClientSecret:    intent.ClientSecret,
			PaymentType:     string(kind),
			Amount:          intent.Amount,
			Currency:        intent.Currency,
		})

		logger.Info("CreatePaymentIntent: intent ready",
			zap.String("request_id", req.ID),
			zap.String("payment_intent_id", intent.ID),
			zap.Int64("amount", intent.Amount),
		)
	}
}
