package main

import (
	"context"

	"github.com/kiwisport/clubboard/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)

	op, err := cli.opRepo.GetOperatorByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	if err := op.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.opRepo.UpdateOperator(ctx, op, nil); err != nil {
		return err
	}
	return nil
}
