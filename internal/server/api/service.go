// Package api exposes the auth service over HTTP.
package api

import (
	"context"

	"github.com/ttttiu/WAS/internal/server/auth"
	"github.com/ttttiu/WAS/internal/server/models"
)

// UserService is the application surface the HTTP layer depends on.
type UserService interface {
	Register(ctx context.Context, username, email, password, role string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) bool
	VerifyToken(token string) (*auth.Claims, error)
	CheckPermission(token, requiredRole string) bool
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
