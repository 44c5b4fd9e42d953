package main

import (
	"context"
	"time"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd, role, dept string, isAdmin bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)
	dept = core.CleanString(dept, true /* lower */)

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      name,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.Name = name
	usr.Role = role
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	if dept != "" {
		usr.Department = dept
	}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
