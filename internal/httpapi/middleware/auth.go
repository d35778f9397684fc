package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/techstore/support-api/internal/common"
)

// AuthRequired guards the evaluation dashboard endpoints with an HS256
// bearer token. The subject claim, when present, is exposed to handlers
// as "auth_subject".
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			common.Fail(c, http.StatusUnauthorized, 40101, "missing bearer token")
			c.Abort()
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			common.Fail(c, http.StatusUnauthorized, 40101, "invalid or expired token")
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				c.Set("auth_subject", sub)
			}
		}
		c.Next()
	}
}
