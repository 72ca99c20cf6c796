package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/authgate/internal/logger"
	"github.com/dtroode/authgate/internal/model"
)

// Logging is a unary interceptor that logs gRPC requests and results.
type Logging struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(contextManager model.ContextManager, logger *logger.Logger) *Logging {
	return &Logging{contextManager: contextManager, logger: logger}
}

// HandleGRPC logs method name, duration and status for each unary request.
// Calls without an x-request-id metadata entry get a fresh one.
func (l *Logging) HandleGRPC(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	requestID, ok := l.contextManager.GetRequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.New()
		ctx = l.contextManager.SetRequestIDToContext(ctx, requestID)
	}

	l.logger.DebugContext(ctx, "gRPC request started",
		"method", info.FullMethod,
		"request_id", requestID.String())

	resp, err := handler(ctx, req)

	duration := time.Since(start)

	statusCode := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			statusCode = st.Code()
		} else {
			statusCode = codes.Internal
		}
	}

	l.logger.InfoContext(ctx, "gRPC request completed",
		"method", info.FullMethod,
		"request_id", requestID.String(),
		"duration_ms", duration.Milliseconds(),
		"status", statusCode.String())

	if err != nil {
		l.logger.ErrorContext(ctx, "gRPC request failed",
			"method", info.FullMethod,
			"request_id", requestID.String(),
			"error", err.Error(),
			"status", statusCode.String())
	}

	return resp, err
}
