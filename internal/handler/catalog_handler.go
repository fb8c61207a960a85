package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
	"github.com/pierojauregui/trilceperu-sub000/pkg/response"
)

type catalogService interface {
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	ListCourses(ctx context.Context, categoryID *int64) ([]models.Course, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListWeekdays(ctx context.Context) ([]models.Weekday, error)
	ListTimeBlocks(ctx context.Context) ([]models.TimeBlock, error)
}

// CatalogHandler serves the reference lists.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Teachers godoc
// @Summary Teachers available for assignment
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /asignaciones/profesores-disponibles [get]
func (h *CatalogHandler) Teachers(c *gin.Context) {
	items, err := h.catalog.ListTeachers(c.Request.Context())
	respondList(c, items, err)
}

// Courses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param categoria_id query int false "Category ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cursos [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	var categoryID *int64
	if raw := c.Query("categoria_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid categoria_id"))
			return
		}
		categoryID = &id
	}
	items, err := h.catalog.ListCourses(c.Request.Context(), categoryID)
	respondList(c, items, err)
}

// Categories godoc
// @Summary List course categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /categorias [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	items, err := h.catalog.ListCategories(c.Request.Context())
	respondList(c, items, err)
}

// Weekdays godoc
// @Summary Weekday enumeration
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /asignaciones/dias-semana [get]
func (h *CatalogHandler) Weekdays(c *gin.Context) {
	items, err := h.catalog.ListWeekdays(c.Request.Context())
	respondList(c, items, err)
}

// TimeBlocks godoc
// @Summary Selectable time blocks
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /asignaciones/bloques-horarios [get]
func (h *CatalogHandler) TimeBlocks(c *gin.Context) {
	items, err := h.catalog.ListTimeBlocks(c.Request.Context())
	respondList(c, items, err)
}

func respondList[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}
