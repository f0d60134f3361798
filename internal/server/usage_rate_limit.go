package server

import "github.com/gin-gonic/gin"

// UsageRateLimit throttles usage recording per user. Redis being down fails
// open so recording never depends on the limiter's availability.
func (s *Server) UsageRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.usageLimiter.Enabled() {
			c.Next()
			return
		}

		uid, ok := userID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		allowed, err := s.usageLimiter.AllowUser(c.Request.Context(), uid.String())
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied("usage.record")
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}
