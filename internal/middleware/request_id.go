package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Same header the outbound REST client stamps on its requests, so a
// serve-surface log line and a client log line correlate on one key.
const requestIDHeader = "X-Request-Id"

const requestIDKey = "request_id"

// RequestID assigns every request an id, honoring one supplied by the
// caller. The id is echoed in the response header and kept in the gin
// context for the logger and the panic handler.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}

// CurrentRequestID returns the id assigned by RequestID, or "" when
// the middleware did not run.
func CurrentRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
