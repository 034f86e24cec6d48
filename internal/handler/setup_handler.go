package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/service"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

type setupService interface {
	Status(ctx context.Context, userID string) (*service.SetupStatus, error)
}

// SetupHandler reports classroom setup progress.
type SetupHandler struct {
	service setupService
}

// NewSetupHandler constructs the handler.
func NewSetupHandler(svc setupService) *SetupHandler {
	return &SetupHandler{service: svc}
}

// Status godoc
// @Summary Setup progress
// @Description Entity counts of the active school year and which setup steps are unlocked
// @Tags Setup
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /setup-status [get]
func (h *SetupHandler) Status(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	status, err := h.service.Status(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}
