// Package models holds the persistent data structures of the auth system.
package models

import "time"

// User is a snapshot of one row of the users table.
//
// Snapshots are immutable by convention: code that needs to change login
// state (attempts counter, last login) builds a copy via WithLoginState and
// writes it back explicitly. This keeps concurrent requests from aliasing
// the same record.
type User struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string
	Salt          string
	Role          string
	IsActive      bool
	LoginAttempts int
	LastLogin     *time.Time
	CreatedAt     time.Time
}

// WithLoginState returns a copy of the user with the attempt counter and
// last-login timestamp replaced.
func (u *User) WithLoginState(attempts int, lastLogin *time.Time) *User {
	c := *u
	c.LoginAttempts = attempts
	c.LastLogin = lastLogin
	return &c
}
