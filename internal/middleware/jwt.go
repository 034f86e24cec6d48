package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
	"github.com/noah-isme/academic-monitor-api/pkg/logger"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated user.
const ContextUserKey = "currentUser"

// Authenticator validates tokens and resolves the user behind them.
type Authenticator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
	CurrentUser(ctx context.Context, claims *models.JWTClaims) (*models.User, error)
}

// JWT protects routes by requiring a valid access token for an existing account.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			return
		}
		user, err := auth.CurrentUser(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(logger.UserIDKey, user.ID)
		c.Next()
	}
}
