package users

import (
	"context"
	"time"

	"github.com/ttttiu/WAS/internal/server/models"
)

// Repository is the user-store contract consumed by the services layer.
//
// Lookup methods return common.ErrNotFound when no row matches; Create
// returns common.ErrDuplicateKey when the username or email is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// UpdateLoginState writes back the attempt counter and last-login
	// timestamp of one user.
	UpdateLoginState(ctx context.Context, id int64, attempts int, lastLogin *time.Time) error

	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]*models.User, error)
}
