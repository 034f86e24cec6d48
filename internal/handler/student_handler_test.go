package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/service"
)

type studentServiceMock struct {
	query      service.StudentQuery
	unassigned string
}

func (m *studentServiceMock) List(ctx context.Context, userID string, query service.StudentQuery) ([]models.Student, error) {
	m.query = query
	return []models.Student{{ID: "a"}}, nil
}

func (m *studentServiceMock) ListUnassigned(ctx context.Context, userID, blockID string) ([]models.Student, error) {
	m.unassigned = blockID
	return []models.Student{}, nil
}

func (m *studentServiceMock) Create(ctx context.Context, userID string, req dto.CreateStudentRequest) (*models.Student, error) {
	return &models.Student{ID: "new", DisplayName: req.DisplayName}, nil
}

func (m *studentServiceMock) Update(ctx context.Context, userID, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	return &models.Student{ID: id}, nil
}

func (m *studentServiceMock) Delete(ctx context.Context, userID, id string) error {
	return nil
}

func TestStudentHandlerListRoutesUnassigned(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/students?blockId=block-1&unassigned=1", nil)
	withUser(c)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "block-1", mockSvc.unassigned)

	c, w = newGinContext(http.MethodGet, "/students?blockId=block-2&activeOnly=true", nil)
	withUser(c)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.StudentQuery{BlockID: "block-2", ActiveOnly: true}, mockSvc.query)
}

func TestStudentHandlerCreateAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{})

	c, w := newGinContext(http.MethodPost, "/students", []byte(`{"displayName":"Ada","blockId":"block-1","ml":true}`))
	withUser(c)
	handler.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"Ada"`)

	c, w = newGinContext(http.MethodDelete, "/students/a", nil)
	c.Params = gin.Params{{Key: "id", Value: "a"}}
	withUser(c)
	handler.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(nil)

	c, w := newGinContext(http.MethodGet, "/me", nil)
	withUser(c)
	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"teacher@example.com"`)

	c, w = newGinContext(http.MethodGet, "/me", nil)
	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
