package payments

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"
	"go.uber.org/zap"
)

const (
	MetadataRequestID   = "requestId"
	MetadataTier        = "tier"
	MetadataPaymentType = "paymentType"
	MetadataLocale      = "locale"
)

type Config struct {
	SecretKey      string        `env:"STRIPE_SECRET_KEY" env-required:"true"`
	WebhookSecret  string        `env:"STRIPE_WEBHOOK_SECRET" env-required:"true"`
	PublishableKey string        `env:"STRIPE_PUBLISHABLE_KEY" env-required:"true"`
	Timeout        time.Duration `env:"STRIPE_TIMEOUT" env-default:"10s"`
}

type IntentParams struct {
	RequestID    string
	Tier         string
	PaymentType  string
	Locale       string
	Amount       int64
	Currency     string
	ReceiptEmail string
	Description  string
}

type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}

type Client struct {
	sc     *client.API
	logger *zap.Logger
}

// New authenticates a Stripe client using the provided config
func New(config *Config, logger *zap.Logger) *Client {
	sc := &client.API{}

	sc.Init(config.SecretKey, stripe.NewBackends(&http.Client{
		Transport: ClientMetricsRoundTripper(http.DefaultTransport),
		Timeout:   config.Timeout,
	}))

	return &Client{sc: sc, logger: logger}
}

func (c *Client) CreatePaymentIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String(IdempotencyKey(p)),
		},
		Amount:             stripe.Int64(p.Amount),
		Currency:           stripe.String(p.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Description:        stripe.String(p.Description),
	}
	if p.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(p.ReceiptEmail)
	}
	params.AddMetadata(MetadataRequestID, p.RequestID)
	params.AddMetadata(MetadataTier, p.Tier)
	params.AddMetadata(MetadataPaymentType, p.PaymentType)
	params.AddMetadata(MetadataLocale, p.Locale)

	pi, err := c.sc.PaymentIntents.New(params)
	if err != nil {
		c.logger.Error("failed to create payment intent", zap.String("request_id", p.RequestID), zap.Error(err))
		return nil, fmt.Errorf("failed to create payment intent for request %s: %w", p.RequestID, err)
	}

	c.logger.Info("created payment intent",
		zap.String("request_id", p.RequestID),
		zap.String("payment_intent_id", pi.ID),
		zap.Int64("amount", pi.Amount),
	)
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

// IdempotencyKey makes repeated checkout submissions for the same request, payment type
// and amount resolve to one intent.
func IdempotencyKey(p IntentParams) string {
	return fmt.Sprintf("%s:%s:%s:%d", p.RequestID, p.PaymentType, p.Tier, p.Amount)
}

type Verifier struct {
	secret string
}

func NewVerifier(webhookSecret string) *Verifier {
	return &Verifier{secret: webhookSecret}
}

// ConstructEvent checks the Stripe-Signature header against the payload.
// https://stripe.com/docs/webhooks/signatures#verify-official-libraries
func (v *Verifier) ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, v.secret)
}
