package operator

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/kiwisport/clubboard/core"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var AllRoles = []string{RoleAdmin, RoleStaff}

// Operator is a dashboard user. Operators are local to the gateway;
// club members never log in here.
type Operator struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (op *Operator) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	op.PasswordHash = hash
	return nil
}

func (op *Operator) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(op.PasswordHash, []byte(pwd))
}

func (op *Operator) HasRole(role string) bool {
	for _, r := range op.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (op *Operator) IsAdmin() bool { return op.HasRole(RoleAdmin) }

// NewOperator contains information needed to create a new Operator.
type NewOperator struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"required,min=3,alphanum"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,dive,oneof=admin staff"`
}

func (no *NewOperator) Validate(validate *validator.Validate, svc *Service) error {
	no.Name = core.CleanString(no.Name)
	no.Username = core.CleanString(no.Username, true /* lower */)
	no.Email = core.CleanString(no.Email, true /* lower */)

	if err := validate.Struct(no); err != nil {
		return err
	}
	return svc.CheckUniqueness(no.Username, no.Email)
}

// UpdateOperator defines what information may be provided to modify an
// existing Operator.
type UpdateOperator struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=3,alphanum"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,dive,oneof=admin staff"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uo *UpdateOperator) Validate(orig Operator, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(uo.Name); name != "" {
		uo.Name = name
	} else {
		uo.Name = orig.Name
	}
	if uname := core.CleanString(uo.Username, true /* lower */); uname != "" {
		uo.Username = uname
	} else {
		uo.Username = orig.Username
	}
	if email := core.CleanString(uo.Email, true /* lower */); email != "" {
		uo.Email = email
	} else {
		uo.Email = orig.Email
	}

	if err := validate.Struct(uo); err != nil {
		return err
	}
	return svc.CheckUniqueness(uo.Username, uo.Email, orig)
}

type ResetPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }
