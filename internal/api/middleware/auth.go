package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"academic-records/internal/domain/user"
	"academic-records/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// RequireSession resolves the bearer token into a session and stores it in
// the gin context. Requests without a valid session are rejected.
func RequireSession(auth user.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

		session, err := auth.ValidateSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(apperror.HTTPStatus(err), gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequirePermission rejects sessions whose role may not perform action.
// It must run after RequireSession.
func RequirePermission(action user.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil || !session.Role.Can(action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": fmt.Sprintf("%v: %s required", apperror.ErrForbidden, action),
			})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session stored by RequireSession, or nil.
func SessionFrom(c *gin.Context) *user.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*user.Session)
	return s
}
