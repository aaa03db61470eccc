// Package client implements the HTTP client for the auth server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ttttiu/WAS/internal/common"
)

// ErrUnavailable indicates the server could not be reached at all.
var ErrUnavailable = errors.New("server unavailable")

type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type UserInfo struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"is_active"`
	LoginAttempts int        `json:"login_attempts"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type LoginResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// do sends a JSON request and decodes the response body into out (when out
// is non-nil and the status is 2xx). Non-2xx statuses are mapped onto the
// shared error sentinels where possible.
func (c *AuthClient) do(ctx context.Context, method, path, token string, in, out any) error {

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var ae apiError
	_ = json.NewDecoder(resp.Body).Decode(&ae)
	msg := ae.Error.Message
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrInvalidCredentials, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrAccountDeactivated, msg)
	case http.StatusLocked:
		return fmt.Errorf("%w: %s", common.ErrAccountLocked, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrDuplicateKey, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	default:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}
}

func (c *AuthClient) Register(ctx context.Context, username, email, password string) (*UserInfo, error) {
	req := map[string]string{"username": username, "email": email, "password": password}
	var out UserInfo
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) Logout(ctx context.Context, token string) (bool, error) {
	var out struct {
		LoggedOut bool `json:"logged_out"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", token, nil, &out); err != nil {
		return false, err
	}
	return out.LoggedOut, nil
}

func (c *AuthClient) CheckPermission(ctx context.Context, token, role string) (bool, error) {
	var out struct {
		Role    string `json:"role"`
		Allowed bool   `json:"allowed"`
	}
	path := "/api/v1/auth/check?role=" + url.QueryEscape(role)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return false, err
	}
	return out.Allowed, nil
}

func (c *AuthClient) Me(ctx context.Context, token string) (*LoginResult, error) {
	var out LoginResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AuthClient) ListUsers(ctx context.Context, token string) ([]UserInfo, error) {
	var out struct {
		Users []UserInfo `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *AuthClient) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/users/"+strconv.FormatInt(id, 10), token, nil, nil)
}

// Ping probes server reachability.
func (c *AuthClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}
