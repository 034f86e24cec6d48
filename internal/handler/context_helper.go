package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/middleware"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

func userFromContext(c *gin.Context) *models.User {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// requireUser answers unauthorized and returns false when the request carries no user.
func requireUser(c *gin.Context) (*models.User, bool) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

// bindJSON decodes the body, answering a validation error on malformed JSON.
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}

func queryFlag(c *gin.Context, key string) bool {
	switch strings.ToLower(c.Query(key)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
