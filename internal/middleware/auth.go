package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dndinfo/internal/pkg/jwt"
	"dndinfo/internal/pkg/response"
)

type tokenValidator interface {
	ValidateToken(tokenStr string) (*jwt.Claims, error)
}

// JWTAuth rejects requests without a valid bearer token and stores
// user_id/role on the context for the handlers.
func JWTAuth(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		tokenStr, ok := bearerToken(h)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through otherwise. A present but invalid token is still
// rejected so clients notice expired sessions.
func OptionalAuth(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Next()
			return
		}

		tokenStr, ok := bearerToken(h)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}
		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return tok, tok != ""
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
}
