package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/operator"
)

// addOperator updates or creates an operator.Operator
func (cli *commandLine) addOperator(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	op, err := cli.opRepo.GetOperatorByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err != operator.ErrNotFound {
			return err
		}
		op, err = cli.opRepo.GetOperatorByUsernameOrEmail(ctx, email)
		if err != nil {
			if err != operator.ErrNotFound {
				return err
			}
			now := time.Now().UTC()
			op = operator.Operator{
				ID:        uuid.New().String(),
				Name:      uname,
				Username:  uname,
				Email:     email,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}
	}
	if isAdmin {
		op.Roles = operator.AllRoles
	}
	op.IsActive = true
	if err := op.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.opRepo.UpdateOrCreateOperator(ctx, op); err != nil {
		return err
	}
	return nil
}
