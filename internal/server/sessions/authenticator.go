// Package sessions implements the session authenticator: the login state
// machine, stateless logout, and role-based permission checks.
//
// Sessions are self-contained tokens. Possession of a structurally valid,
// unexpired, correctly signed token is the session; there is no server-side
// session table, so logout cannot revoke a token before its natural expiry.
package sessions

import (
	"errors"
	"time"

	"github.com/ttttiu/WAS/internal/common"
	"github.com/ttttiu/WAS/internal/server/auth"
	"github.com/ttttiu/WAS/internal/server/config"
	"github.com/ttttiu/WAS/internal/server/models"
)

// Authenticator evaluates login attempts and tokens against the configured
// security policy. It holds no mutable state beyond the signing secret,
// which is read-only after construction, so it is safe for concurrent use.
type Authenticator struct {
	secretKey   []byte
	tokenTTL    time.Duration
	maxAttempts int

	// now is a test seam for time.Now.
	now func() time.Time
}

// NewAuthenticator builds an Authenticator from config. A missing secret key
// is a configuration error and aborts startup; every expected authentication
// failure after this point is an ordinary return value.
func NewAuthenticator(cfg *config.Config) (*Authenticator, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key is not configured")
	}
	return &Authenticator{
		secretKey:   []byte(cfg.SecretKey),
		tokenTTL:    cfg.TokenExpiration,
		maxAttempts: cfg.MaxLoginAttempts,
		now:         time.Now,
	}, nil
}

// Login evaluates a login attempt against the user snapshot.
//
// The checks run in a fixed order:
//  1. a deactivated account fails with common.ErrAccountDeactivated;
//  2. an account whose attempt counter already reached the configured
//     maximum fails with common.ErrAccountLocked, even when the candidate
//     password is correct (the lock holds until an external counter reset);
//  3. otherwise the password is verified against the stored hash and salt.
//
// On success it returns a signed session token together with a new snapshot
// carrying a reset attempt counter and a fresh last-login timestamp. On a
// wrong password it returns common.ErrInvalidCredentials and a snapshot with
// the counter incremented. The caller persists the returned snapshot; the
// input user is never mutated.
func (a *Authenticator) Login(user *models.User, password string) (string, *models.User, error) {

	if !user.IsActive {
		return "", nil, common.ErrAccountDeactivated
	}

	if user.LoginAttempts >= a.maxAttempts {
		return "", nil, common.ErrAccountLocked
	}

	if !auth.VerifyPassword(password, user.Salt, user.PasswordHash) {
		return "", user.WithLoginState(user.LoginAttempts+1, user.LastLogin), common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.Role, a.secretKey, a.tokenTTL)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	lastLogin := a.now()
	return token, user.WithLoginState(0, &lastLogin), nil
}

// VerifyToken checks signature and expiry and returns the decoded claims.
func (a *Authenticator) VerifyToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, a.secretKey)
}

// Logout reports whether the presented token was still valid. It is advisory
// only: tokens are stateless and stay usable until they expire.
func (a *Authenticator) Logout(token string) bool {
	_, err := a.VerifyToken(token)
	return err == nil
}

// CheckPermission reports whether the token is valid and its role claim is
// at least as privileged as requiredRole.
//
// Both sides go through auth.RoleLevel, so an unrecognized requiredRole maps
// to level 0 and is satisfied by any authenticated token.
func (a *Authenticator) CheckPermission(token, requiredRole string) bool {
	claims, err := a.VerifyToken(token)
	if err != nil {
		return false
	}
	return auth.RoleLevel(claims.Role) >= auth.RoleLevel(requiredRole)
}
