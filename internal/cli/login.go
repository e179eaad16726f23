package cli

import (
	"context"
	"os"
)

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	exists, err := a.catalog.CheckUserExists(ctx, email)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if !exists {
		printlnFn("No account for", email, "- use 'register' to create one")
		return nil
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.catalog.Login(ctx, email, string(password))
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	a.user = user
	printlnFn("Logged in as", user.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.catalog.Logout(ctx); err != nil {
		printlnFn(err.Error())
		return err
	}

	a.user = nil
	printlnFn("Logged out")
	return nil
}
