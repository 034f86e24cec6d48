package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/service"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, userID string, query service.StudentQuery) ([]models.Student, error)
	ListUnassigned(ctx context.Context, userID, blockID string) ([]models.Student, error)
	Create(ctx context.Context, userID string, req dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, userID, id string) error
}

// StudentHandler serves roster endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Description Ordered by block then seat number. unassigned=1 returns active students of blockId without a desk.
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param blockId query string false "Block ID"
// @Param activeOnly query bool false "Only active students"
// @Param unassigned query bool false "Only students without a desk"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var (
		students []models.Student
		err      error
	)
	if queryFlag(c, "unassigned") {
		students, err = h.service.ListUnassigned(c.Request.Context(), user.ID, c.Query("blockId"))
	} else {
		students, err = h.service.List(c.Request.Context(), user.ID, service.StudentQuery{
			BlockID:    c.Query("blockId"),
			ActiveOnly: queryFlag(c, "activeOnly"),
		})
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateStudentRequest true "Student"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateStudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.service.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.UpdateStudentRequest true "Student patch"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [patch]
func (h *StudentHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.service.Update(c.Request.Context(), user.ID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Delete godoc
// @Summary Delete student
// @Description Removes the student with its attendance and lap history
// @Tags Students
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
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
