// Package services holds the application services of the auth server.
// UserService orchestrates registration, login and token checks on top of
// the user repository and the session authenticator.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ttttiu/WAS/internal/common"
	"github.com/ttttiu/WAS/internal/dbx"
	"github.com/ttttiu/WAS/internal/logging"
	"github.com/ttttiu/WAS/internal/server/auth"
	"github.com/ttttiu/WAS/internal/server/config"
	"github.com/ttttiu/WAS/internal/server/models"
	"github.com/ttttiu/WAS/internal/server/repositories/repomanager"
	"github.com/ttttiu/WAS/internal/server/sessions"
)

type UserService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	authenticator     *sessions.Authenticator
	logger            logging.Logger
	minPasswordLength int
	saltLength        int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, a *sessions.Authenticator, cfg *config.Config, l logging.Logger) *UserService {
	return &UserService{
		db:                db,
		repomanager:       m,
		authenticator:     a,
		logger:            l.With("module", "user_service"),
		minPasswordLength: cfg.MinPasswordLength,
		saltLength:        cfg.SaltLength,
	}
}

// Register creates a new user with a freshly salted password hash.
// An empty role defaults to "user". Short passwords fail with
// common.ErrPasswordTooShort; taken usernames or emails fail with
// common.ErrDuplicateKey (enforced by the store's unique constraints,
// so concurrent registrations cannot race past the check).
func (s *UserService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {

	if len(password) < s.minPasswordLength {
		return nil, fmt.Errorf("%w: minimum length is %d", common.ErrPasswordTooShort, s.minPasswordLength)
	}

	if role == "" {
		role = auth.RoleUser
	}

	salt, err := auth.GenerateSalt(s.saltLength)
	if err != nil {
		return nil, fmt.Errorf("error generating salt: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: auth.HashPassword(password, salt),
		Salt:         salt,
		Role:         role,
		IsActive:     true,
	}

	repo := s.repomanager.Users(s.db)

	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "new user registered", "username", username, "role", role)
	return created, nil
}

// Login loads the user snapshot, runs the authenticator's login state
// machine and persists the resulting login state. The read and the
// write-back of the attempt counter run inside one transaction so that
// concurrent attempts for the same username serialize on the row.
//
// Returns the session token on success. Unknown usernames surface as
// common.ErrNotFound; the authenticator's failures pass through unchanged.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {

	var token string
	var loginErr error

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByUsername(ctx, username)
		if err != nil {
			return err
		}

		var updated *models.User
		token, updated, loginErr = s.authenticator.Login(user, password)

		// Terminal outcomes (locked, deactivated) leave the record untouched.
		if updated != nil {
			if err := repo.UpdateLoginState(ctx, user.ID, updated.LoginAttempts, updated.LastLogin); err != nil {
				return fmt.Errorf("error updating login state: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "login attempt for unknown user", "username", username)
			return "", common.ErrNotFound
		}
		s.logger.Error(ctx, "login failed", "username", username, "error", err.Error())
		return "", common.ErrInternal
	}

	if loginErr != nil {
		s.logger.Warn(ctx, "failed login attempt", "username", username, "reason", loginErr.Error())
		return "", loginErr
	}

	s.logger.Info(ctx, "user logged in", "username", username)
	return token, nil
}

// Logout reports whether the presented token was still valid. Advisory only.
func (s *UserService) Logout(ctx context.Context, token string) bool {
	ok := s.authenticator.Logout(token)
	if ok {
		s.logger.Info(ctx, "user logged out")
	}
	return ok
}

// VerifyToken checks the token and returns its claims.
func (s *UserService) VerifyToken(token string) (*auth.Claims, error) {
	return s.authenticator.VerifyToken(token)
}

// CheckPermission reports whether the token grants the required role.
func (s *UserService) CheckPermission(token, requiredRole string) bool {
	return s.authenticator.CheckPermission(token, requiredRole)
}

// ListUsers returns all user records.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)

	users, err := repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// DeleteUser removes a user record by id.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	repo := s.repomanager.Users(s.db)

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("error deleting user: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}
