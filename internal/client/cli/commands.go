package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
)

// Whoami shows the identity bound to the current session token.
func (a *App) Whoami(ctx context.Context) error {
	me, err := a.api.Me(ctx, a.token)
	if err != nil {
		log.Printf("Request failed: %s", err.Error())
		return err
	}
	fmt.Printf("%s (id %d, role %s)\n", me.Username, me.UserID, me.Role)
	return nil
}

// Check asks the server whether the current session satisfies a role.
func (a *App) Check(ctx context.Context) error {
	role, err := getSimpleText(a.reader, "Enter role to check", os.Stdout)
	if err != nil {
		return err
	}

	allowed, err := a.api.CheckPermission(ctx, a.token, role)
	if err != nil {
		log.Printf("Request failed: %s", err.Error())
		return err
	}

	if allowed {
		fmt.Printf("Role %q: allowed\n", role)
	} else {
		fmt.Printf("Role %q: denied\n", role)
	}
	return nil
}

// Users lists all accounts. Requires an admin session.
func (a *App) Users(ctx context.Context) error {
	users, err := a.api.ListUsers(ctx, a.token)
	if err != nil {
		log.Printf("Request failed: %s", err.Error())
		return err
	}

	for _, u := range users {
		status := "active"
		if !u.IsActive {
			status = "inactive"
		}
		fmt.Printf("%5d  %-20s %-10s %s\n", u.ID, u.Username, u.Role, status)
	}
	return nil
}

// Delete removes an account by id. Requires an admin session.
func (a *App) Delete(ctx context.Context) error {
	raw, err := getSimpleText(a.reader, "Enter user id to delete", os.Stdout)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Println("Invalid id:", raw)
		return err
	}

	if err := a.api.DeleteUser(ctx, a.token, id); err != nil {
		log.Printf("Request failed: %s", err.Error())
		return err
	}

	fmt.Printf("Deleted user %d\n", id)
	return nil
}
