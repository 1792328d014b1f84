package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) register(ctx context.Context) {

	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil || username == "" {
		fmt.Println("Registration cancelled")
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil || password == "" {
		fmt.Println("Registration cancelled")
		return
	}

	if err := a.authService.Register(ctx, username, password); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("Registered. You can login now.")
}

func (a *App) login(ctx context.Context) {

	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil || username == "" {
		fmt.Println("Login cancelled")
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil || password == "" {
		fmt.Println("Login cancelled")
		return
	}

	userID, err := a.authService.Login(ctx, username, password)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	a.userID = userID
	a.userName = username
	a.items = nil
	a.syncService.SetUser(userID)

	fmt.Printf("Logged in as %s\n", username)
}

func (a *App) logout(ctx context.Context) {
	a.userID = ""
	a.userName = ""
	a.items = nil
	a.syncService.SetUser("")
	fmt.Println("Logged out")
}
