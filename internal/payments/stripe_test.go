package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"go.uber.org/zap"

	"majaz-portal/internal/payments/paymentstest"
)

const webhookSecret = "whsec_test"

func TestVerifierAcceptsSignedPayload(t *testing.T) {
	payload := paymentstest.EventPayload(t, "evt_1", "payment_intent.succeeded", map[string]interface{}{
		"id":     "pi_1",
		"object": "payment_intent",
	})

	v := NewVerifier(webhookSecret)
	ev, err := v.ConstructEvent(payload, paymentstest.SignatureHeader(payload, webhookSecret, time.Now()))
	require.NoError(t, err)
	require.Equal(t, "evt_1", ev.ID)
	require.Equal(t, "payment_intent.succeeded", ev.Type)
	require.Equal(t, "pi_1", ev.Data.Object["id"])
}

func TestVerifierRejectsTamperedPayload(t *testing.T) {
	payload := paymentstest.EventPayload(t, "evt_1", "charge.refunded", map[string]interface{}{"id": "ch_1"})
	header := paymentstest.SignatureHeader(payload, webhookSecret, time.Now())

	v := NewVerifier(webhookSecret)

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '
	_, err := v.ConstructEvent(tampered, header)
	require.Error(t, err)

	_, err = v.ConstructEvent(payload, paymentstest.SignatureHeader(payload, "whsec_other", time.Now()))
	require.Error(t, err)

	_, err = v.ConstructEvent(payload, paymentstest.SignatureHeader(payload, webhookSecret, time.Now().Add(-time.Hour)))
	require.Error(t, err)
}

func TestCreatePaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.Equal(t, "req-1:deposit:gold:58000", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "58000", r.PostForm.Get("amount"))
		require.Equal(t, "aed", r.PostForm.Get("currency"))
		require.Equal(t, "req-1", r.PostForm.Get("metadata[requestId]"))
		require.Equal(t, "deposit", r.PostForm.Get("metadata[paymentType]"))
		require.Equal(t, "buyer@example.com", r.PostForm.Get("receipt_email"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "pi_123",
			"object": "payment_intent",
			"client_secret": "pi_123_secret_abc",
			"amount": 58000,
			"currency": "aed",
			"status": "requires_payment_method"
		}`))
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:        stripe.String(srv.URL),
		HTTPClient: srv.Client(),
	})
	sc := &client.API{}
	sc.Init("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	c := &Client{sc: sc, logger: zap.NewNop()}
	intent, err := c.CreatePaymentIntent(context.Background(), IntentParams{
		RequestID:    "req-1",
		Tier:         "gold",
		PaymentType:  "deposit",
		Locale:       "en",
		Amount:       58000,
		Currency:     "aed",
		ReceiptEmail: "buyer@example.com",
		Description:  "MAJAZ gold assessment deposit",
	})
	require.NoError(t, err)
	require.Equal(t, "pi_123", intent.ID)
	require.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	require.EqualValues(t, 58000, intent.Amount)
	require.Equal(t, "aed", intent.Currency)
}
