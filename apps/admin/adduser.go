package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, pwd string, role user.Role) error {
	usr, err := cli.usrSvc.AddUser(context.Background(), uname, pwd, role)
	if err != nil {
		return err
	}
	fmt.Printf("user %q (%s) saved\n", usr.Username, usr.Role)
	return nil
}
