package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

type blockService interface {
	List(ctx context.Context, userID string, includeArchived bool) ([]models.Block, error)
	Get(ctx context.Context, userID, id string) (*models.Block, error)
	Create(ctx context.Context, userID string, req dto.CreateBlockRequest) (*models.Block, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateBlockRequest) (*models.Block, error)
	Delete(ctx context.Context, userID, id string) error
}

// BlockHandler serves class period endpoints.
type BlockHandler struct {
	service blockService
}

// NewBlockHandler constructs the handler.
func NewBlockHandler(svc blockService) *BlockHandler {
	return &BlockHandler{service: svc}
}

// List godoc
// @Summary List blocks
// @Tags Blocks
// @Produce json
// @Security BearerAuth
// @Param includeArchived query bool false "Include archived blocks"
// @Success 200 {object} response.Envelope
// @Router /blocks [get]
func (h *BlockHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	blocks, err := h.service.List(c.Request.Context(), user.ID, queryFlag(c, "includeArchived"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, blocks)
}

// Get godoc
// @Summary Get block
// @Tags Blocks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blocks/{id} [get]
func (h *BlockHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	block, err := h.service.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, block)
}

// Create godoc
// @Summary Create block
// @Tags Blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateBlockRequest true "Block"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /blocks [post]
func (h *BlockHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateBlockRequest
	if !bindJSON(c, &req, "invalid block payload") {
		return
	}
	block, err := h.service.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// Update godoc
// @Summary Update block
// @Tags Blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Param payload body dto.UpdateBlockRequest true "Block patch"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id} [patch]
func (h *BlockHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateBlockRequest
	if !bindJSON(c, &req, "invalid block payload") {
		return
	}
	block, err := h.service.Update(c.Request.Context(), user.ID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, block)
}

// Delete godoc
// @Summary Delete block
// @Description Removes the block and its desks; students keep their block id
// @Tags Blocks
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 204
// @Router /blocks/{id} [delete]
func (h *BlockHandler) Delete(c *gin.Context) {
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
