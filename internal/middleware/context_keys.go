package middleware

import "github.com/gin-gonic/gin"

const callerIDKey = contextKey("callerID")

// DefaultCallerID is attributed to writes when no caller identity header is
// present, e.g. scheduled jobs or unauthenticated internal traffic.
const DefaultCallerID = "system"

// CallerIdentityMiddleware records the caller identity from the X-Caller-ID
// header for audit attribution. The ledger trusts its perimeter for
// authentication; this only captures who to attribute writes to.
func CallerIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := c.GetHeader("X-Caller-ID")
		if callerID == "" {
			callerID = DefaultCallerID
		}
		c.Set(string(callerIDKey), callerID)
		c.Next()
	}
}

// GetCallerIDFromContext retrieves the caller identity recorded by
// CallerIdentityMiddleware, falling back to DefaultCallerID.
func GetCallerIDFromContext(c *gin.Context) string {
	callerVal, exists := c.Get(string(callerIDKey))
	if !exists {
		return DefaultCallerID
	}

	callerID, ok := callerVal.(string)
	if !ok || callerID == "" {
		return DefaultCallerID
	}

	return callerID
}
