package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/authgate/internal/model"
)

// RequestIDHeader is echoed on every response.
var RequestIDHeader = http.CanonicalHeaderKey("x-request-id")

// RequestID keeps a valid client supplied X-Request-ID or generates one, and
// stores it in the request context.
type RequestID struct {
	contextManager model.ContextManager
}

func NewRequestID(contextManager model.ContextManager) *RequestID {
	return &RequestID{contextManager: contextManager}
}

func (m *RequestID) Handle(c *gin.Context) {
	requestID, err := uuid.Parse(c.GetHeader(RequestIDHeader))
	if err != nil {
		requestID = uuid.New()
	}

	ctx := m.contextManager.SetRequestIDToContext(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(RequestIDHeader, requestID.String())

	c.Next()
}
