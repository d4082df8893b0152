package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/netsession/internal/shared/id"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key holding the request ID
	RequestIDKey = "request_id"
)

// RequestID tags every request with an ID. A well-formed inbound ID is
// kept so callers can correlate retries; anything else is replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if !validRequestID(rid) {
			rid = id.NewRequestID().String()
		}
		c.Set(RequestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

func validRequestID(rid string) bool {
	raw, ok := strings.CutPrefix(rid, id.RequestPrefix+"_")
	return ok && id.IsValid(raw)
}
