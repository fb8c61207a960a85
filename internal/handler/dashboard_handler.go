package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pierojauregui/trilceperu-sub000/internal/dto"
	"github.com/pierojauregui/trilceperu-sub000/internal/middleware"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	"github.com/pierojauregui/trilceperu-sub000/pkg/response"
)

type assignmentListService interface {
	Load(ctx context.Context, token string, filter models.AssignmentFilter) (*models.AssignmentListView, error)
	Delete(ctx context.Context, token string, id int64, confirmed bool, filter models.AssignmentFilter) (*models.AssignmentListView, error)
}

type assignmentFormService interface {
	Open(ctx context.Context, token string, assignmentID *int64) (*models.AssignmentForm, error)
	Get(ctx context.Context, id string) (*models.AssignmentForm, error)
	Apply(ctx context.Context, id string, edit models.FormEdit) (*models.AssignmentForm, error)
	Submit(ctx context.Context, token string, id string) (*models.AssignmentForm, error)
	Discard(ctx context.Context, id string) error
	Validate(candidate models.AssignmentCandidate) models.ValidationResult
}

// DashboardHandler serves the assignment screens of the admin dashboard.
// The bearer token is read per request and passed down explicitly.
type DashboardHandler struct {
	list  assignmentListService
	forms assignmentFormService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(list assignmentListService, forms assignmentFormService) *DashboardHandler {
	return &DashboardHandler{list: list, forms: forms}
}

// List godoc
// @Summary Assignment list screen
// @Tags Dashboard
// @Produce json
// @Param q query string false "Teacher or course name"
// @Param profesor_id query int false "Teacher ID"
// @Param categoria_id query int false "Category ID"
// @Param curso_id query int false "Course ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/asignaciones [get]
func (h *DashboardHandler) List(c *gin.Context) {
	var query dto.AssignmentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err, "invalid filters"))
		return
	}
	view, err := h.list.Load(c.Request.Context(), middleware.Token(c), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Delete godoc
// @Summary Delete an assignment after confirmation
// @Tags Dashboard
// @Produce json
// @Param id path int true "Assignment ID"
// @Param confirm query bool true "Explicit acknowledgment"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /dashboard/asignaciones/{id} [delete]
func (h *DashboardHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.AssignmentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err, "invalid filters"))
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	view, err := h.list.Delete(c.Request.Context(), middleware.Token(c), id, confirmed, query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// OpenForm godoc
// @Summary Open a create or edit form
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body dto.OpenFormRequest false "Assignment to edit"
// @Success 201 {object} response.Envelope
// @Router /dashboard/asignaciones/forms [post]
func (h *DashboardHandler) OpenForm(c *gin.Context) {
	var req dto.OpenFormRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err, "invalid form request"))
			return
		}
	}
	form, err := h.forms.Open(c.Request.Context(), middleware.Token(c), req.AssignmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewFormResponse(form))
}

// GetForm godoc
// @Summary Current form state
// @Tags Dashboard
// @Produce json
// @Param form_id path string true "Form ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/asignaciones/forms/{form_id} [get]
func (h *DashboardHandler) GetForm(c *gin.Context) {
	form, err := h.forms.Get(c.Request.Context(), c.Param("form_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewFormResponse(form))
}

// EditForm godoc
// @Summary Edit form fields locally
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param form_id path string true "Form ID"
// @Param payload body models.FormEdit true "Edits"
// @Success 200 {object} response.Envelope
// @Router /dashboard/asignaciones/forms/{form_id} [patch]
func (h *DashboardHandler) EditForm(c *gin.Context) {
	var edit models.FormEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		response.Error(c, invalidPayload(err, "invalid form edit"))
		return
	}
	form, err := h.forms.Apply(c.Request.Context(), c.Param("form_id"), edit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewFormResponse(form))
}

// SubmitForm godoc
// @Summary Validate and save the form
// @Tags Dashboard
// @Produce json
// @Param form_id path string true "Form ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dashboard/asignaciones/forms/{form_id}/submit [post]
func (h *DashboardHandler) SubmitForm(c *gin.Context) {
	form, err := h.forms.Submit(c.Request.Context(), middleware.Token(c), c.Param("form_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewFormResponse(form))
}

// DiscardForm godoc
// @Summary Discard a form
// @Tags Dashboard
// @Param form_id path string true "Form ID"
// @Success 204
// @Router /dashboard/asignaciones/forms/{form_id} [delete]
func (h *DashboardHandler) DiscardForm(c *gin.Context) {
	if err := h.forms.Discard(c.Request.Context(), c.Param("form_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Validate godoc
// @Summary Run the assignment rules on a candidate
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body models.AssignmentCandidate true "Candidate"
// @Success 200 {object} response.Envelope
// @Router /dashboard/asignaciones/validate [post]
func (h *DashboardHandler) Validate(c *gin.Context) {
	var candidate models.AssignmentCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		response.Error(c, invalidPayload(err, "invalid candidate"))
		return
	}
	response.JSON(c, http.StatusOK, h.forms.Validate(candidate))
}
