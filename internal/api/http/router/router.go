package router

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dtroode/authgate/internal/api/http/handler"
	"github.com/dtroode/authgate/internal/api/http/middleware"
	"github.com/dtroode/authgate/internal/apierror"
	"github.com/dtroode/authgate/internal/logger"
	"github.com/dtroode/authgate/internal/model"
)

// Router builds the public HTTP API.
type Router struct {
	authService    handler.AuthService
	pinger         model.Pinger
	metrics        http.Handler
	contextManager model.ContextManager
	allowedOrigins []string
	logger         *logger.Logger
}

// New creates a Router. pinger and metrics may be nil. An empty
// allowedOrigins list echoes back any origin.
func New(
	authService handler.AuthService,
	pinger model.Pinger,
	metrics http.Handler,
	contextManager model.ContextManager,
	allowedOrigins []string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		pinger:         pinger,
		metrics:        metrics,
		contextManager: contextManager,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Register creates the gin engine with middleware and all routes. Auth
// routes are served both at the root and under /api.
func (r *Router) Register() *gin.Engine {
	e := gin.New()
	e.HandleMethodNotAllowed = true

	requestID := middleware.NewRequestID(r.contextManager)
	logging := middleware.NewLogging(r.contextManager, r.logger)

	e.Use(
		requestID.Handle,
		logging.Handle,
		gin.CustomRecovery(r.recoverPanic),
		cors.New(r.corsConfig()),
	)

	e.NoMethod(func(c *gin.Context) {
		abortWith(c, apierror.NewErrMethodNotAllowed())
	})
	e.NoRoute(func(c *gin.Context) {
		abortWith(c, apierror.NewErrNotFound())
	})
	authHandler := handler.NewAuth(r.authService, r.logger)
	for _, g := range []*gin.RouterGroup{&e.RouterGroup, e.Group("/api")} {
		g.POST("/register", authHandler.Register)
		g.POST("/login", authHandler.Login)
		g.GET("/verify-auth", authHandler.Verify)
		g.POST("/logout", authHandler.Logout)

		// preflights that carry an Origin header are answered by the CORS middleware
		for _, path := range []string{"/register", "/login", "/verify-auth", "/logout"} {
			g.OPTIONS(path, preflight)
		}
	}

	e.GET("/health", handler.NewHealth(r.pinger).Check)
	if r.metrics != nil {
		e.GET("/metrics", gin.WrapH(r.metrics))
	}

	return e
}

func preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOriginFunc = r.originAllowed
	cfg.AllowCredentials = true
	cfg.AllowMethods = []string{
		http.MethodGet,
		http.MethodOptions,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodPost,
		http.MethodPut,
	}
	cfg.AllowHeaders = []string{
		"X-CSRF-Token",
		"X-Requested-With",
		"Accept",
		"Accept-Version",
		"Content-Length",
		"Content-MD5",
		"Content-Type",
		"Date",
		"X-Api-Version",
		middleware.RequestIDHeader,
	}
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	cfg.OptionsResponseStatusCode = http.StatusOK
	cfg.MaxAge = 12 * time.Hour

	return cfg
}

func (r *Router) originAllowed(origin string) bool {
	if len(r.allowedOrigins) == 0 {
		return true
	}
	return slices.Contains(r.allowedOrigins, origin)
}

func (r *Router) recoverPanic(c *gin.Context, recovered any) {
	r.logger.ErrorContext(c.Request.Context(), "HTTP handler panicked",
		"path", c.Request.URL.Path,
		"panic", recovered)
	abortWith(c, apierror.NewErrInternal(fmt.Errorf("panic: %v", recovered)))
}

func abortWith(c *gin.Context, apiErr *apierror.APIError) {
	c.AbortWithStatusJSON(apiErr.HTTPCode, gin.H{"message": apiErr.Message})
}
