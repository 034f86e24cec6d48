package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

type authService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	UpdateAccount(ctx context.Context, userID string, req dto.UpdateAccountRequest) (*dto.CurrentUser, error)
	ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register godoc
// @Summary Register a teacher account
// @Description Creates the account and its first school year, then signs the teacher in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Register payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req, "invalid register payload") {
		return
	}
	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	response.OK(c, dto.NewCurrentUser(user))
}

// UpdateAccount godoc
// @Summary Update profile names
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateAccountRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /account [put]
func (h *AuthHandler) UpdateAccount(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if !bindJSON(c, &req, "invalid account payload") {
		return
	}
	current, err := h.service.UpdateAccount(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, current)
}

// ChangePassword godoc
// @Summary Change password
// @Description The current password is verified when supplied
// @Tags Authentication
// @Accept json
// @Security BearerAuth
// @Param payload body dto.ChangePasswordRequest true "Passwords"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /account/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req, "invalid password payload") {
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), user.ID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
