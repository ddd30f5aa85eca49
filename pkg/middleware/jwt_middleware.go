package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"topup/pkg/utils"
)

const AccountIDKey = "account_id"

// SessionAuth verifies the caller's bearer session and exposes the account id to handlers.
func SessionAuth(secret []byte, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			_ = c.Error(fmt.Errorf("%w: missing bearer token", utils.ErrAuthentication))
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			log.Debug("session rejected", zap.String("trace_id", c.GetString(TraceIDKey)), zap.Error(err))
			_ = c.Error(fmt.Errorf("%w: %v", utils.ErrAuthentication, err))
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(AccountIDKey, claims.Subject)
		c.Next()
	}
}
