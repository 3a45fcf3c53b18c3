package payment

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/member"
)

// Payment statuses
const (
	StatusPaid   = "Paid"
	StatusUnpaid = "Unpaid"
)

// Record is a monthly payment as served by the upstream API.
// ID is null until the record has been persisted. Month is the first
// day of the month the payment covers.
type Record struct {
	ID         null.Int    `json:"id"`
	Member     int         `json:"member"`
	MemberName string      `json:"member_name,omitempty"`
	SportType  null.String `json:"sport_type,omitempty"`
	Month      string      `json:"month"` // YYYY-MM-01
	Status     string      `json:"status"`
	Amount     float64     `json:"amount"`
	Assurance  bool        `json:"assurance"`
	Passport   bool        `json:"passport"` // only meaningful for Karate members
}

// API is the upstream payments collection.
type API interface {
	ListPayments(ctx context.Context) ([]Record, error)
	CreatePayment(ctx context.Context, rec Record) (Record, error)
	UpdatePayment(ctx context.Context, id int, rec Record) (Record, error)
}

// SavePayment is a full replacement payload for a member's payment in
// the selected month. A present PaymentID selects update over create.
type SavePayment struct {
	PaymentID null.Int `json:"payment_id"`
	MemberID  int      `json:"member_id" validate:"required"`
	Status    string   `json:"status" validate:"required,oneof=Paid Unpaid"`
	Amount    float64  `json:"amount" validate:"gte=0"`
	Assurance bool     `json:"assurance"`
	Passport  bool     `json:"passport"`
}

// Validate checks the payload; the passport fee flag is rejected for
// members not enrolled in Karate.
func (sp *SavePayment) Validate(validate *validator.Validate, sport string) error {
	if err := validate.Struct(sp); err != nil {
		return err
	}
	if sp.Passport && sport != member.SportKarate {
		return core.NewValidationError(nil, core.FieldError{
			Field: "passport",
			Error: "passport fee only applies to Karate members",
		})
	}
	return nil
}
