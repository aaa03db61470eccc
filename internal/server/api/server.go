package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ttttiu/WAS/internal/logging"
	"github.com/ttttiu/WAS/internal/server/auth"
)

type Server struct {
	address string
	service UserService
	logger  logging.Logger
	engine  *gin.Engine
}

func NewServer(address string, s UserService, l logging.Logger) *Server {
	srv := &Server{
		address: address,
		service: s,
		logger:  l.With("module", "http_server"),
	}
	srv.engine = srv.buildRouter()
	return srv
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.healthHandler)

	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", s.registerHandler)
	v1.POST("/auth/login", s.loginHandler)

	authed := v1.Group("")
	authed.Use(AuthRequired(s.service))
	authed.POST("/auth/logout", s.logoutHandler)
	authed.GET("/auth/check", s.checkHandler)
	authed.GET("/me", s.meHandler)

	admin := authed.Group("/users")
	admin.Use(RequireRole(s.service, auth.RoleAdmin))
	admin.GET("", s.listUsersHandler)
	admin.DELETE("/:id", s.deleteUserHandler)

	return r
}

// Handler exposes the routing tree, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
