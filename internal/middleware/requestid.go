package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pricekart/compare-service/internal/pkg/cuid2"
)

// RequestIDHeader is echoed back on every response so callers can
// correlate API responses with server logs.
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// RequestIDMiddleware assigns each request a unique id. Inbound ids from
// trusted proxies are preserved so traces stay continuous across hops.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = cuid2.GeneratePrefixedId("req", cuid2.PrefixedIdOptions{TimeSortable: true})
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
