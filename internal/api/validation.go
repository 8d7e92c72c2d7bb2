package api

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"majaz-portal/internal/domain"
)

const dateLayout = "2006-01-02"

var errInvalidValue = errors.New("must be a valid value")

var (
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ]{6,19}$`)
	vinRe   = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
)

type CreateRequestInput struct {
	Tier          string `json:"tier"`
	VehicleMake   string `json:"vehicle_make"`
	VehicleModel  string `json:"vehicle_model"`
	VehicleYear   int    `json:"vehicle_year"`
	VIN           string `json:"vin"`
	Location      string `json:"location"`
	PreferredDate string `json:"preferred_date"`
	Notes         string `json:"notes"`
	Phone         string `json:"phone"`
	Locale        string `json:"locale"`
}

func (in CreateRequestInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Tier, validation.Required, validation.By(parsedBy(domain.ParseTier))),
		validation.Field(&in.VehicleMake, validation.Required, validation.Length(1, 60)),
		validation.Field(&in.VehicleModel, validation.Required, validation.Length(1, 60)),
		validation.Field(&in.VehicleYear, validation.Required, validation.Min(1900), validation.Max(time.Now().Year()+1)),
		validation.Field(&in.VIN, validation.Match(vinRe).Error("must be a 17 character VIN")),
		validation.Field(&in.Location, validation.Required, validation.Length(2, 120)),
		validation.Field(&in.PreferredDate, validation.Date(dateLayout)),
		validation.Field(&in.Notes, validation.Length(0, 2000)),
		validation.Field(&in.Phone, validation.Match(phoneRe).Error("must be a valid phone number")),
		validation.Field(&in.Locale, validation.In("en", "ar")),
	)
}

// PreferredDateValue assumes Validate has passed.
func (in CreateRequestInput) PreferredDateValue() *time.Time {
	if in.PreferredDate == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, in.PreferredDate)
	if err != nil {
		return nil
	}
	return &t
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Locale  string `json:"locale"`
}

func (in ContactInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Phone, validation.Match(phoneRe).Error("must be a valid phone number")),
		validation.Field(&in.Subject, validation.Length(0, 150)),
		validation.Field(&in.Message, validation.Required, validation.Length(10, 5000)),
		validation.Field(&in.Locale, validation.In("en", "ar")),
	)
}

type CreatePaymentIntentInput struct {
	RequestID   string `json:"request_id"`
	PaymentType string `json:"payment_type"`
}

func (in CreatePaymentIntentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.RequestID, validation.Required),
		validation.Field(&in.PaymentType, validation.Required, validation.By(parsedBy(domain.ParsePaymentKind))),
	)
}

// parsedBy turns a domain parser into a rule so handlers and forms agree on what is valid.
func parsedBy[T any](parse func(string) (T, error)) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := parse(s); err != nil {
			return errInvalidValue
		}
		return nil
	}
}
