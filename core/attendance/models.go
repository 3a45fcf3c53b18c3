package attendance

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// Attendance statuses. StatusNotMarked is synthesized by the day-sheet
// merge for members without a record; it is never persisted upstream.
const (
	StatusPresent   = "Present"
	StatusAbsent    = "Absent"
	StatusNotMarked = "NOT MARKED"
)

// Record is an attendance row as served by the upstream API.
// ID is null until the record has been persisted.
type Record struct {
	ID         null.Int    `json:"id"`
	Member     int         `json:"member"`
	MemberName string      `json:"member_name,omitempty"`
	SportType  null.String `json:"sport_type,omitempty"`
	Date       string      `json:"date"` // YYYY-MM-DD
	Status     string      `json:"status"`
}

// API is the upstream attendance collection.
type API interface {
	ListAttendance(ctx context.Context, date string) ([]Record, error)
	CreateAttendance(ctx context.Context, rec Record) (Record, error)
	UpdateAttendance(ctx context.Context, id int, rec Record) (Record, error)
}

// Mark is a request to set a member's status for the selected date.
type Mark struct {
	MemberID int    `json:"member_id" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=Present Absent"`
}

func (m *Mark) Validate(validate *validator.Validate) error {
	return validate.Struct(m)
}
