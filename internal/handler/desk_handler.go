package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/service"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

type deskService interface {
	List(ctx context.Context, userID, blockID string) ([]models.Desk, error)
	Create(ctx context.Context, userID string, req dto.CreateDeskRequest) (*models.Desk, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateDeskRequest) (*models.Desk, error)
	Move(ctx context.Context, userID, id string, req dto.MoveDeskRequest) (*service.DeskMove, error)
	Delete(ctx context.Context, userID, id string) error
}

// DeskHandler serves seating chart endpoints.
type DeskHandler struct {
	service deskService
}

// NewDeskHandler constructs the handler.
func NewDeskHandler(svc deskService) *DeskHandler {
	return &DeskHandler{service: svc}
}

// List godoc
// @Summary List desks
// @Tags Seating
// @Produce json
// @Security BearerAuth
// @Param blockId query string false "Block ID"
// @Success 200 {object} response.Envelope
// @Router /desks [get]
func (h *DeskHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	desks, err := h.service.List(c.Request.Context(), user.ID, c.Query("blockId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, desks)
}

// Create godoc
// @Summary Place a desk
// @Description Student desks require studentId and mirror the student's seat number
// @Tags Seating
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateDeskRequest true "Desk"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /desks [post]
func (h *DeskHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateDeskRequest
	if !bindJSON(c, &req, "invalid desk payload") {
		return
	}
	desk, err := h.service.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, desk)
}

// Update godoc
// @Summary Update desk
// @Tags Seating
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Desk ID"
// @Param payload body dto.UpdateDeskRequest true "Desk patch"
// @Success 200 {object} response.Envelope
// @Router /desks/{id} [patch]
func (h *DeskHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateDeskRequest
	if !bindJSON(c, &req, "invalid desk payload") {
		return
	}
	desk, err := h.service.Update(c.Request.Context(), user.ID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, desk)
}

// Move godoc
// @Summary Release a dragged desk
// @Description Applies grid rounding, group moves and nearest-desk alignment, then saves every moved desk
// @Tags Seating
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Desk ID"
// @Param payload body dto.MoveDeskRequest true "Release point"
// @Success 200 {object} response.Envelope
// @Router /desks/{id}/move [post]
func (h *DeskHandler) Move(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MoveDeskRequest
	if !bindJSON(c, &req, "invalid move payload") {
		return
	}
	move, err := h.service.Move(c.Request.Context(), user.ID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, move)
}

// Delete godoc
// @Summary Delete desk
// @Tags Seating
// @Security BearerAuth
// @Param id path string true "Desk ID"
// @Success 204
// @Router /desks/{id} [delete]
func (h *DeskHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
