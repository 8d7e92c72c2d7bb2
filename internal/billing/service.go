// Package billing applies verified Stripe webhook events to assessment requests.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v72"
	"go.uber.org/zap"

	"majaz-portal/internal/domain"
	"majaz-portal/internal/idempotency"
	"majaz-portal/internal/repository"
)

const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded         = "charge.refunded"
)

const releaseTimeout = 5 * time.Second

type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeFailed    Outcome = "failed"
)

type Store interface {
	FindRequestByPaymentIntent(ctx context.Context, intentID string) (*domain.Request, error)
	ApplyPaymentUpdate(ctx context.Context, update domain.PaymentUpdate) (bool, error)
}

type Notifier interface {
	PaymentSucceeded(ctx context.Context, req *domain.Request, amount int64, currency string) error
	PaymentFailed(ctx context.Context, req *domain.Request, reason string) error
	RefundIssued(ctx context.Context, req *domain.Request, amount int64, currency string) error
}

type Service struct {
	store    Store
	claims   idempotency.Store
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, claims idempotency.Store, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		claims:   claims,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// change is what one Stripe event means for the request it points at.
type change struct {
	intentID string
	build    func(req *domain.Request, kind domain.PaymentKind) (domain.PaymentUpdate, func(ctx context.Context) error)
}

func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) (outcome Outcome, err error) {
	defer func() {
		reportWebhookEvent(event.Type, outcome)
	}()

	c, err := s.decode(event)
	if err != nil {
		return OutcomeFailed, err
	}
	if c == nil {
		s.logger.Info("ignoring stripe event", zap.String("event_id", event.ID), zap.String("event_type", event.Type))
		return OutcomeIgnored, nil
	}

	log := s.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("payment_intent_id", c.intentID),
	)

	claimed, err := s.claims.Claim(ctx, event.ID)
	if err != nil {
		// The database still rejects replays, so a broken claim store only costs the fast path.
		log.Warn("failed to claim stripe event", zap.Error(err))
		claimed = true
	}
	if !claimed {
		log.Info("stripe event already claimed")
		return OutcomeDuplicate, nil
	}

	outcome, err = s.apply(ctx, event, c, log)
	if err != nil {
		// ctx may be the reason apply failed; the claim must still go so Stripe's retry is processed.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if rerr := s.claims.Release(rctx, event.ID); rerr != nil {
			log.Warn("failed to release stripe event claim", zap.Error(rerr))
		}
		return OutcomeFailed, err
	}

	return outcome, nil
}

func (s *Service) apply(ctx context.Context, event stripe.Event, c *change, log *zap.Logger) (Outcome, error) {
	req, err := s.store.FindRequestByPaymentIntent(ctx, c.intentID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			log.Warn("no request for payment intent")
			return OutcomeUnmatched, nil
		}
		return OutcomeFailed, fmt.Errorf("failed to find request for %s: %w", c.intentID, err)
	}

	kind, ok := req.PaymentKindFor(c.intentID)
	if !ok {
		kind = domain.PaymentFull
	}

	update, notify := c.build(req, kind)
	update.RequestID = req.ID
	stripeEventID := event.ID
	update.Event.StripeEventID = &stripeEventID

	applied, err := s.store.ApplyPaymentUpdate(ctx, update)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to apply %s to request %s: %w", event.Type, req.ID, err)
	}
	if !applied {
		log.Info("stripe event already applied", zap.String("request_id", req.ID))
		return OutcomeDuplicate, nil
	}

	log.Info("applied stripe event",
		zap.String("request_id", req.ID),
		zap.String("payment_type", string(kind)),
	)

	if notify != nil {
		if err := notify(ctx); err != nil {
			log.Error("failed to send payment email", zap.String("request_id", req.ID), zap.Error(err))
		}
	}

	return OutcomeApplied, nil
}

func (s *Service) decode(event stripe.Event) (*change, error) {
	switch event.Type {
	case EventPaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		return &change{intentID: pi.ID, build: s.succeeded(&pi)}, nil

	case EventPaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		return &change{intentID: pi.ID, build: s.failed(&pi)}, nil

	case EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("failed to decode charge: %w", err)
		}
		if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
			return nil, fmt.Errorf("charge %s has no payment intent", ch.ID)
		}
		return &change{intentID: ch.PaymentIntent.ID, build: s.refunded(&ch)}, nil
	}

	return nil, nil
}

func (s *Service) succeeded(pi *stripe.PaymentIntent) func(*domain.Request, domain.PaymentKind) (domain.PaymentUpdate, func(context.Context) error) {
	return func(req *domain.Request, kind domain.PaymentKind) (domain.PaymentUpdate, func(context.Context) error) {
		now := s.now().UTC()
		update := domain.PaymentUpdate{
			Kind:   kind,
			PaidAt: &now,
			Event: domain.Event{
				Type:        domain.EventPaymentSucceeded,
				Description: fmt.Sprintf("%s payment of %d %s succeeded", kind, pi.Amount, pi.Currency),
				Payload: payload(map[string]interface{}{
					"payment_intent_id": pi.ID,
					"payment_type":      kind,
					"amount":            pi.Amount,
					"currency":          pi.Currency,
				}),
			},
		}

		return update, func(ctx context.Context) error {
			return s.notifier.PaymentSucceeded(ctx, req, pi.Amount, string(pi.Currency))
		}
	}
}

func (s *Service) failed(pi *stripe.PaymentIntent) func(*domain.Request, domain.PaymentKind) (domain.PaymentUpdate, func(context.Context) error) {
	return func(req *domain.Request, kind domain.PaymentKind) (domain.PaymentUpdate, func(context.Context) error) {
		reason := "payment failed"
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			reason = pi.LastPaymentError.Msg
		}

		update := domain.PaymentUpdate{
			Kind: kind,
			Event: domain.Event{
				Type:        domain.EventPaymentFailed,
				Description: fmt.Sprintf("%s payment failed: %s", kind, reason),
				Payload: payload(map[string]interface{}{
					"payment_intent_id": pi.ID,
					"payment_type":      kind,
					"amount":            pi.Amount,
					"currency":          pi.Currency,
					"failure_message":   reason,
				}),
			},
		}

		return update, func(ctx context.Context) error {
			return s.notifier.PaymentFailed(ctx, req, reason)
		}
	}
}

func (s *Service) refunded(ch *stripe.Charge) func(*domain.Request, domain.PaymentKind) (domain.PaymentUpdate, func(context.Context) error) {
	return func(req *domain.Request, kind domain.PaymentKind) (domain.PaymentUpdate, func(context.Context) error) {
		now := s.now().UTC()
		update := domain.PaymentUpdate{
			Kind:       kind,
			RefundedAt: &now,
			Event: domain.Event{
				Type:        domain.EventPaymentRefunded,
				Description: fmt.Sprintf("refunded %d of %d %s", ch.AmountRefunded, ch.Amount, ch.Currency),
				Payload: payload(map[string]interface{}{
					"charge_id":         ch.ID,
					"payment_intent_id": ch.PaymentIntent.ID,
					"payment_type":      kind,
					"amount_refunded":   ch.AmountRefunded,
					"currency":          ch.Currency,
					"full_refund":       ch.Refunded,
				}),
			},
		}

		return update, func(ctx context.Context) error {
			return s.notifier.RefundIssued(ctx, req, ch.AmountRefunded, string(ch.Currency))
		}
	}
}

func payload(v map[string]interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}
