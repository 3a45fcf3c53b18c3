package operator

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core"
)

var (
	// errors
	ErrNotFound       = errors.New("operator not found")
	ErrEmailExists    = errors.New("an operator with this email already exists")
	ErrUsernameExists = errors.New("an operator with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excluded ...Operator) error
		CreateOperator(ctx context.Context, op Operator) (Operator, error)
		QueryAllOperators(ctx context.Context) ([]Operator, error)
		GetOperatorByID(ctx context.Context, id string) (Operator, error)
		GetOperatorByUsernameOrEmail(ctx context.Context, uname string) (Operator, error)
		UpdateOperator(ctx context.Context, op Operator, isActive *bool) (Operator, error)
		UpdateOrCreateOperator(ctx context.Context, op Operator) (Operator, error)
		SetLastLogin(ctx context.Context, op Operator) (Operator, error)
		DeleteOperatorsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	initTokenGen(conf)
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) CheckUniqueness(uname, email string, excluded ...Operator) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, excluded...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, no NewOperator) (Operator, error) {
	now := time.Now().UTC()
	op := Operator{
		ID:        uuid.New().String(),
		Name:      no.Name,
		Username:  no.Username,
		Email:     no.Email,
		IsActive:  true,
		Roles:     no.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := op.SetPassword(no.Password); err != nil {
		return Operator{}, err
	}
	return svc.repo.CreateOperator(ctx, op)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Operator, error) {
	return svc.repo.QueryAllOperators(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Operator, error) {
	return svc.repo.GetOperatorByID(ctx, id)
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (Operator, error) {
	return svc.repo.GetOperatorByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id string, uo UpdateOperator) (Operator, error) {
	op := Operator{
		ID:        id,
		Name:      uo.Name,
		Username:  uo.Username,
		Email:     uo.Email,
		Roles:     uo.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if uo.Password != "" {
		if err := op.SetPassword(uo.Password); err != nil {
			return Operator{}, err
		}
	}
	return svc.repo.UpdateOperator(ctx, op, uo.IsActive)
}

func (svc *Service) SetLastLogin(ctx context.Context, op Operator) (Operator, error) {
	return svc.repo.SetLastLogin(ctx, op)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteOperatorsByID(ctx, ids...)
}

// RequestPasswordReset emails the operator a tokened reset link.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	op, err := svc.repo.GetOperatorByUsernameOrEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	token, err := MakeToken(op)
	if err != nil {
		return pkgerrors.Wrap(err, "making reset token")
	}

	url := fmt.Sprintf("%s/password-reset?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(op), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: op.Name, Address: op.Email}},
		Subject: "Password reset",
		BodyStr: "Follow this link to reset your password:\n" + url,
	})
	return nil
}

// ResetPassword verifies the reset token and sets the new password.
func (svc *Service) ResetPassword(ctx context.Context, data ResetPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	op, err := svc.repo.GetOperatorByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(op, data.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = op.SetPassword(data.Password); err != nil {
		return err
	}
	op.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateOperator(ctx, op, nil)
	return err
}
