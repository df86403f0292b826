package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/nocapcooking/backend/internal/logging"
)

const (
	// HeaderRequestID carries the request correlation id in both directions.
	HeaderRequestID = "X-Request-Id"
	// ContextKeyRequestID is the gin context key holding the request id.
	ContextKeyRequestID = "request_id"
)

// RequestID extracts or generates a request id, echoes it in the response
// header and stores it on both the gin and the request context. Incoming ids
// that are not UUIDs are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), requestID))
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}
