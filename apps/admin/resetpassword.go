package main

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

func (cli *commandLine) resetPassword(ctx context.Context, login string, pwd []byte) error {
	if err := cli.connect(); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword(pwd, bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return cli.repo.SetUserPassword(ctx, login, hash)
}
