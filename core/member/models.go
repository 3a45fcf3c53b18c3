package member

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kiwisport/clubboard/core"
)

// Sport types
const (
	SportKarate   = "Karate"
	SportGym      = "Gym"
	SportFootball = "Football"
)

// FilterAll is the sentinel sport filter value that matches every member.
const FilterAll = "All"

const SubscriptionActive = "Active"

var Sports = []string{SportKarate, SportGym, SportFootball}

// Member is the club's roster entry as served by the upstream API.
// Optional fields are nullable so a cleared value round-trips as an
// explicit null instead of being dropped from update payloads.
type Member struct {
	ID                 int         `json:"id"`
	Name               string      `json:"name"`
	PhoneNumber        null.String `json:"phone_number"`
	DateOfBirth        null.String `json:"date_of_birth"`      // YYYY-MM-DD
	RegistrationDate   null.String `json:"registration_date"`  // YYYY-MM-DD
	PassportNumber     null.String `json:"passport_number"`
	SportType          null.String `json:"sport_type"`
	SubscriptionStatus string      `json:"subscription_status"`
	Image              null.String `json:"image"` // URL; uploads go out as multipart
}

func (m Member) Sport() string  { return m.SportType.String }
func (m Member) IsActive() bool { return m.SubscriptionStatus == SubscriptionActive }

// Upload is a binary image attached to a member create/update.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// NewMember contains information needed to register a new Member.
type NewMember struct {
	Name             string  `json:"name" form:"name" validate:"required"`
	PhoneNumber      string  `json:"phone_number" form:"phone_number"`
	DateOfBirth      string  `json:"date_of_birth" form:"date_of_birth" validate:"omitempty,isodate"`
	RegistrationDate string  `json:"registration_date" form:"registration_date" validate:"omitempty,isodate"`
	PassportNumber   string  `json:"passport_number" form:"passport_number"`
	SportType        string  `json:"sport_type" form:"sport_type" validate:"omitempty,sport"`
	Image            *Upload `json:"-" form:"-"`
}

func (nm *NewMember) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.PhoneNumber = core.CleanString(nm.PhoneNumber)
	nm.PassportNumber = core.CleanString(nm.PassportNumber)
	return validate.Struct(nm)
}

// UpdateMember is a full replacement of an existing Member.
// Every field is always sent upstream; empty values clear the stored ones.
type UpdateMember struct {
	Name             string  `json:"name" form:"name" validate:"required"`
	PhoneNumber      string  `json:"phone_number" form:"phone_number"`
	DateOfBirth      string  `json:"date_of_birth" form:"date_of_birth" validate:"omitempty,isodate"`
	RegistrationDate string  `json:"registration_date" form:"registration_date" validate:"omitempty,isodate"`
	PassportNumber   string  `json:"passport_number" form:"passport_number"`
	SportType        string  `json:"sport_type" form:"sport_type" validate:"omitempty,sport"`
	Image            *Upload `json:"-" form:"-"` // nil keeps the stored image
}

func (um *UpdateMember) Validate(validate *validator.Validate) error {
	um.Name = core.CleanString(um.Name)
	um.PhoneNumber = core.CleanString(um.PhoneNumber)
	um.PassportNumber = core.CleanString(um.PassportNumber)
	return validate.Struct(um)
}

// FromMember prefills an update with the member's current values, so
// untouched fields are re-sent rather than omitted.
func (um *UpdateMember) FromMember(m Member) {
	um.Name = m.Name
	um.PhoneNumber = m.PhoneNumber.String
	um.DateOfBirth = m.DateOfBirth.String
	um.RegistrationDate = m.RegistrationDate.String
	um.PassportNumber = m.PassportNumber.String
	um.SportType = m.SportType.String
}

// QueryFilter is the roster view selection: free-text search on the
// name plus an exact sport match.
type QueryFilter struct {
	Search string `query:"search"`
	Sport  string `query:"sport"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Sport = core.CleanString(qf.Sport)
}

// Match reports whether m passes the filter. Search is a
// case-insensitive substring match on the name; an empty search matches
// all. Sport is an exact match; empty or the "All" sentinel matches all.
func (qf QueryFilter) Match(m Member) bool {
	if qf.Search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(qf.Search)) {
		return false
	}
	if qf.Sport != "" && qf.Sport != FilterAll && m.Sport() != qf.Sport {
		return false
	}
	return true
}

// Filter applies qf to members: search first, sport second.
func Filter(members []Member, qf QueryFilter) []Member {
	res := make([]Member, 0, len(members))
	for _, m := range members {
		if qf.Match(m) {
			res = append(res, m)
		}
	}
	return res
}
