package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authgate/internal/logger"
	"github.com/dtroode/authgate/internal/model"
)

// Logging writes one access log line per HTTP request.
type Logging struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(contextManager model.ContextManager, logger *logger.Logger) *Logging {
	return &Logging{contextManager: contextManager, logger: logger}
}

// Handle logs method, route, status and duration after the handler chain has run.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	ctx := c.Request.Context()
	args := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if requestID, ok := l.contextManager.GetRequestIDFromContext(ctx); ok {
		args = append(args, "request_id", requestID.String())
	}

	if c.Writer.Status() >= http.StatusInternalServerError {
		l.logger.ErrorContext(ctx, "HTTP request completed", args...)
		return
	}
	l.logger.InfoContext(ctx, "HTTP request completed", args...)
}
