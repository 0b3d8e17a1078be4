package main

import (
	"context"
	"time"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/user"
)

// addSuperuser updates or creates a super-admin account.
func (cli *commandLine) addSuperuser(uname, email, pwd string) error {
	var usr user.User
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.Role = auth.RoleSuperAdmin
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
