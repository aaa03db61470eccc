package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ttttiu/WAS/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, email and password and creates a new
// account on the server. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Register(ctx, userName, email, string(password))
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Printf("Registered %s (id %d)\n", user.Username, user.ID)
	return nil
}

// Login prompts for credentials and authenticates against the server.
// On success the session token and identity are kept on the App for
// subsequent commands. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.token = res.Token
	a.userName = res.Username
	a.role = res.Role

	log.Printf("Login successful")
	return nil
}

// Logout tells the server the session is over and drops the local token.
func (a *App) Logout(ctx context.Context) error {
	if a.token == "" {
		return nil
	}

	if _, err := a.api.Logout(ctx, a.token); err != nil {
		log.Printf("Logout error: %s", err.Error())
	}

	a.token = ""
	a.userName = ""
	a.role = ""

	fmt.Println("Logged out")
	return nil
}
