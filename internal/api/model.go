package api

import (
	"encoding/json"
	"time"
)

type TeamMember struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	RoleLabel       string   `json:"role_label"`
	Bio             string   `json:"bio"`
	Rating          float64  `json:"rating"`
	InspectionCount int      `json:"inspection_count"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	WhatsApp        string   `json:"whatsapp,omitempty"`
	PhotoURL        string   `json:"photo_url,omitempty"`
	Languages       []string `json:"languages"`
}

type TeamResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Data    []TeamMember `json:"data"`
}

type Tier struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Features       []string `json:"features"`
	Price          int64    `json:"price"`
	Deposit        int64    `json:"deposit"`
	Currency       string   `json:"currency"`
	PriceDisplay   string   `json:"price_display"`
	DepositDisplay string   `json:"deposit_display"`
}

type PricingResponse struct {
	Locale         string `json:"locale"`
	Dir            string `json:"dir"`
	PublishableKey string `json:"publishable_key"`
	Tiers          []Tier `json:"tiers"`
}

type Request struct {
	ID              string     `json:"id"`
	Tier            string     `json:"tier"`
	Status          string     `json:"status"`
	VehicleMake     string     `json:"vehicle_make"`
	VehicleModel    string     `json:"vehicle_model"`
	VehicleYear     int        `json:"vehicle_year"`
	VIN             string     `json:"vin,omitempty"`
	Location        string     `json:"location"`
	PreferredDate   string     `json:"preferred_date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	Locale          string     `json:"locale"`
	StripePaymentID *string    `json:"stripe_payment_id,omitempty"`
	StripeDepositID *string    `json:"stripe_deposit_id,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Events          []Event    `json:"events,omitempty"`
}

type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type PaymentIntent struct {
	RequestID       string `json:"request_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	PaymentType     string `json:"payment_type"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

type WebhookResponse struct {
	Success  bool `json:"success"`
	Received bool `json:"received"`
}

type RequestList struct {
	Count int       `json:"count"`
	Data  []Request `json:"data"`
}

type RequestStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}
