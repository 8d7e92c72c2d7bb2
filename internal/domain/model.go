package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownRole = errors.New("unknown role")

type Role string

const (
	RoleFounder    Role = "founder"
	RoleInspector  Role = "inspector"
	RoleSpecialist Role = "specialist"
	RoleConcierge  Role = "concierge"
	RoleSupport    Role = "support"
)

var Roles = []Role{RoleFounder, RoleInspector, RoleSpecialist, RoleConcierge, RoleSupport}

// ParseRole accepts only the known role values. Empty input is not a role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

type TeamMember struct {
	ID              string
	Name            string
	NameAr          string
	Role            Role
	Bio             string
	BioAr           string
	Rating          float64
	InspectionCount int
	Email           string
	Phone           string
	WhatsApp        string
	PhotoURL        string
	Languages       []string
	SortOrder       int
}

type Request struct {
	ID              string
	CustomerID      string
	CustomerEmail   string
	CustomerName    string
	CustomerPhone   string
	Locale          string
	Tier            Tier
	Status          Status
	VehicleMake     string
	VehicleModel    string
	VehicleYear     int
	VIN             string
	Location        string
	PreferredDate   *time.Time
	Notes           string
	Amount          int64
	Currency        string
	StripePaymentID *string
	StripeDepositID *string
	PaidAt          *time.Time
	RefundedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PaymentKindFor reports which of the request's intents intentID is.
func (r *Request) PaymentKindFor(intentID string) (PaymentKind, bool) {
	switch {
	case r.StripeDepositID != nil && *r.StripeDepositID == intentID:
		return PaymentDeposit, true
	case r.StripePaymentID != nil && *r.StripePaymentID == intentID:
		return PaymentFull, true
	}

	return "", false
}

type RequestFilter struct {
	CustomerID string
	Status     Status
	Query      string
	Limit      int
}

type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventPaymentIntentCreated EventType = "payment_intent_created"
	EventPaymentSucceeded     EventType = "payment_succeeded"
	EventPaymentFailed        EventType = "payment_failed"
	EventPaymentRefunded      EventType = "payment_refunded"
)

type Event struct {
	ID            string
	RequestID     string
	Type          EventType
	Description   string
	Payload       json.RawMessage
	StripeEventID *string
	CreatedAt     time.Time
}

// PaymentUpdate is one Stripe-driven change to a request plus its audit row.
// The resulting status is worked out by Next against the locked row, never from a
// snapshot read earlier. Nil timestamps leave the columns untouched, and RefundedAt
// is only written when the request ends up refunded.
type PaymentUpdate struct {
	RequestID  string
	Kind       PaymentKind
	PaidAt     *time.Time
	RefundedAt *time.Time
	Event      Event
}

// Ledger totals what Stripe captured and refunded on one request, in fils.
type Ledger struct {
	Paid     int64
	Refunded int64
}

// Next returns the status current moves to once the update's event is recorded.
// ledger must already include that event.
func (u PaymentUpdate) Next(current Status, ledger Ledger) Status {
	switch u.Event.Type {
	case EventPaymentSucceeded:
		return current.AfterPaymentSucceeded(u.Kind)
	case EventPaymentFailed:
		return current.AfterPaymentFailed()
	case EventPaymentRefunded:
		return current.AfterRefund(ledger)
	}
	return current
}
