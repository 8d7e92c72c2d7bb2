package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v72"
	"go.uber.org/zap"

	"majaz-portal/internal/api"
	"majaz-portal/internal/billing"
)

// maxWebhookBody matches the limit Stripe documents for webhook payloads.
const maxWebhookBody = int64(65536)

type EventVerifier interface {
	ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

type EventHandler interface {
	HandleEvent(ctx context.Context, event stripe.Event) (billing.Outcome, error)
}

func StripeWebhook(verifier EventVerifier, events EventHandler, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			logger.Warn("StripeWebhook: missing signature header")
			api.WriteApiError(w, logger, api.ErrMissingSignature, api.CodeInvalidSignature, http.StatusBadRequest)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Warn("StripeWebhook: failed to read body", zap.Error(err))
			WriteError(w, logger, "failed to read body", http.StatusServiceUnavailable)
			return
		}

		event, err := verifier.ConstructEvent(payload, signature)
		if err != nil {
			logger.Warn("StripeWebhook: signature verification failed", zap.Error(err))
			api.WriteApiError(w, logger, api.ErrInvalidSignature, api.CodeInvalidSignature, http.StatusBadRequest)
			return
		}

		outcome, err := events.HandleEvent(ctx, event)
		if err != nil {
			logger.Error("StripeWebhook: failed to handle event",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.Type),
				zap.Error(err),
			)
			api.WriteApiError(w, logger, api.ErrWebhookFailed, api.CodeWebhookFailed, http.StatusInternalServerError)
			return
		}

		_ = writeJSON(w, logger, http.StatusOK, api.WebhookResponse{Success: true, Received: true})

		logger.Info("StripeWebhook: event processed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("outcome", string(outcome)),
		)
	}
}
