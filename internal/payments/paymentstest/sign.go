// Package paymentstest builds Stripe webhook payloads for tests.
package paymentstest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
)

// SignatureHeader returns a Stripe-Signature value for payload signed with secret.
func SignatureHeader(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.", ts.Unix())))
	mac.Write(payload)

	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// EventPayload wraps object into a Stripe event envelope.
func EventPayload(t *testing.T, id, eventType string, object interface{}) []byte {
	t.Helper()

	raw, err := json.Marshal(object)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]interface{}{
		"id":          id,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"created":     time.Now().Unix(),
		"data": map[string]interface{}{
			"object": json.RawMessage(raw),
		},
	})
	require.NoError(t, err)

	return payload
}

// Event decodes a payload produced by EventPayload.
func Event(t *testing.T, payload []byte) stripe.Event {
	t.Helper()

	var ev stripe.Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}
