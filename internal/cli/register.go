package cli

import (
	"context"
	"os"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.catalog.Register(ctx, email, string(password), name)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	a.user = user
	printlnFn("Registered as", user.Email)
	return nil
}
