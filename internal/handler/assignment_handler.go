package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pierojauregui/trilceperu-sub000/internal/dto"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	"github.com/pierojauregui/trilceperu-sub000/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	Get(ctx context.Context, id int64) (*models.Assignment, error)
	Create(ctx context.Context, req dto.AssignmentWriteRequest) (*models.Assignment, error)
	Update(ctx context.Context, id int64, req dto.AssignmentWriteRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id int64) error
}

// AssignmentHandler serves the assignment persistence endpoints.
type AssignmentHandler struct {
	assignments assignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments assignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List assignments
// @Tags Asignaciones
// @Produce json
// @Param q query string false "Teacher or course name"
// @Param profesor_id query int false "Teacher ID"
// @Param curso_id query int false "Course ID"
// @Param categoria_id query int false "Category ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /asignaciones [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	var query dto.AssignmentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err, "invalid filters"))
		return
	}
	items, err := h.assignments.List(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Get godoc
// @Summary Get assignment
// @Tags Asignaciones
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /asignaciones/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := h.assignments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// Create godoc
// @Summary Create assignment
// @Tags Asignaciones
// @Accept json
// @Produce json
// @Param payload body dto.AssignmentWriteRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /asignaciones [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.AssignmentWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid assignment payload"))
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Replace assignment
// @Description Replaces teacher, course and the whole slot list.
// @Tags Asignaciones
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param payload body dto.AssignmentWriteRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /asignaciones/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AssignmentWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid assignment payload"))
		return
	}
	assignment, err := h.assignments.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Asignaciones
// @Param id path int true "Assignment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /asignaciones/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.assignments.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
