package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/boxtrack/boxtrack/internal/identity"
)

const ctxUserIDKey = "user_id"

// AuthRequired resolves the session token and threads the user id through
// both the gin context and the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(ctxUserIDKey, sess.UserID)
		c.Request = c.Request.WithContext(identity.WithUserID(c.Request.Context(), sess.UserID))

		c.Next()
	}
}

func userID(c *gin.Context) (snowflake.ID, bool) {
	if value, exists := c.Get(ctxUserIDKey); exists {
		if id, ok := value.(snowflake.ID); ok && id != 0 {
			return id, true
		}
	}
	return identity.UserIDFromContext(c.Request.Context())
}
