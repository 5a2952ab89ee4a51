package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"thingapi/internal/auth"
	"thingapi/internal/model"
)

// UserIDKey is the gin context key under which the authenticated user's
// uuid.UUID is stored.
const UserIDKey = "userID"

// JWTAuthMiddleware rejects requests without a valid bearer token and puts
// the token's subject into the context for handlers.
func JWTAuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, description string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
		Code:        http.StatusUnauthorized,
		Name:        http.StatusText(http.StatusUnauthorized),
		Description: description,
	})
}
