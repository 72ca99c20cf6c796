package context

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/authgate/internal/model"
)

var _ model.ContextManager = (*Manager)(nil)

// RequestIDKey is the metadata key and, in canonical form, the HTTP header
// that carries the request ID.
const RequestIDKey string = "x-request-id"

// Manager keeps the request ID in the incoming metadata of a context so HTTP
// handlers and gRPC interceptors read it the same way.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetRequestIDToContext returns a copy of ctx whose incoming metadata carries requestID.
func (m *Manager) SetRequestIDToContext(ctx context.Context, requestID uuid.UUID) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(map[string]string{RequestIDKey: requestID.String()})
	} else {
		md = md.Copy()
		md.Set(RequestIDKey, requestID.String())
	}

	return metadata.NewIncomingContext(ctx, md)
}

// GetRequestIDFromContext returns the request ID stored in ctx, if any.
func (m *Manager) GetRequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, false
	}

	requestIDs := md.Get(RequestIDKey)
	if len(requestIDs) == 0 {
		return uuid.Nil, false
	}

	requestID, err := uuid.Parse(requestIDs[0])
	if err != nil {
		return uuid.Nil, false
	}

	return requestID, true
}
