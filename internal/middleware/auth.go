package middleware

import (
	"net/http"
	"strings"

	"pharmapos/internal/apierror"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "user_id"
)

// TokenParser validates a bearer token and returns the user id it carries.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// JWTAuth validates the Bearer token on every protected route and stores the
// user id under UserIDKey.
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required"))
			return
		}

		userID, err := tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the authenticated user id, empty outside JWTAuth.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
