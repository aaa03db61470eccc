package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ttttiu/WAS/internal/common"
	"github.com/ttttiu/WAS/internal/server/auth"
	"github.com/ttttiu/WAS/internal/server/models"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UserResponse struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"is_active"`
	LoginAttempts int        `json:"login_attempts"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// toUserResponse strips credential material from the record.
func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		IsActive:      u.IsActive,
		LoginAttempts: u.LoginAttempts,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
	}
}

func errJSON(msg string) gin.H {
	return gin.H{"error": gin.H{"message": msg}}
}

func (s *Server) registerHandler(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errJSON("Invalid request"))
		return
	}

	user, err := s.service.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Role)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, toUserResponse(user))
	case errors.Is(err, common.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, errJSON(err.Error()))
	case errors.Is(err, common.ErrDuplicateKey):
		c.JSON(http.StatusConflict, errJSON("Username or email already taken"))
	default:
		c.JSON(http.StatusInternalServerError, errJSON("Registration failed"))
	}
}

func (s *Server) loginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errJSON("Invalid request"))
		return
	}

	token, err := s.service.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrAccountLocked):
		c.JSON(http.StatusLocked, errJSON(err.Error()))
		return
	case errors.Is(err, common.ErrAccountDeactivated):
		c.JSON(http.StatusForbidden, errJSON(err.Error()))
		return
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrNotFound):
		// Unknown usernames answer the same as wrong passwords.
		c.JSON(http.StatusUnauthorized, errJSON("Invalid username or password"))
		return
	default:
		c.JSON(http.StatusInternalServerError, errJSON("Login failed"))
		return
	}

	claims, err := s.service.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errJSON("Login failed"))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	})
}

func (s *Server) logoutHandler(c *gin.Context) {
	token := c.GetString(ctxKeyToken)
	c.JSON(http.StatusOK, gin.H{"logged_out": s.service.Logout(c.Request.Context(), token)})
}

func (s *Server) checkHandler(c *gin.Context) {
	role := c.DefaultQuery("role", auth.RoleUser)
	token := c.GetString(ctxKeyToken)
	c.JSON(http.StatusOK, gin.H{"role": role, "allowed": s.service.CheckPermission(token, role)})
}

func (s *Server) meHandler(c *gin.Context) {
	claims := c.MustGet(ctxKeyClaims).(*auth.Claims)
	c.JSON(http.StatusOK, gin.H{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"role":     claims.Role,
	})
}

func (s *Server) listUsersHandler(c *gin.Context) {
	users, err := s.service.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errJSON("Failed to list users"))
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (s *Server) deleteUserHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errJSON("Invalid user id"))
		return
	}

	err = s.service.DeleteUser(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, errJSON("User not found"))
	default:
		c.JSON(http.StatusInternalServerError, errJSON("Failed to delete user"))
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
