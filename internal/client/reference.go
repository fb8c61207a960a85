package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pierojauregui/trilceperu-sub000/internal/dto"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
)

// ListTeachers fetches the teachers available for assignment.
func (c *Client) ListTeachers(ctx context.Context, token string) ([]models.Teacher, error) {
	var env dto.ListEnvelope
	if err := c.do(ctx, token, request{endpoint: "profesores.list", method: http.MethodGet, path: "/asignaciones/profesores-disponibles"}, &env); err != nil {
		return nil, err
	}
	return decodeList(env, dto.TeacherDTO.ToModel)
}

// ListCourses fetches courses. categoryID is sent as a query parameter;
// whether the endpoint honours it depends on the deployment.
func (c *Client) ListCourses(ctx context.Context, token string, categoryID *int64) ([]models.Course, error) {
	query := url.Values{}
	setID(query, "categoria_id", categoryID)

	var env dto.ListEnvelope
	if err := c.do(ctx, token, request{endpoint: "cursos.list", method: http.MethodGet, path: c.coursesPath, query: query}, &env); err != nil {
		return nil, err
	}
	return decodeList(env, dto.CourseDTO.ToModel)
}

// ListCategories fetches course categories.
func (c *Client) ListCategories(ctx context.Context, token string) ([]models.Category, error) {
	var env dto.ListEnvelope
	if err := c.do(ctx, token, request{endpoint: "categorias.list", method: http.MethodGet, path: "/categorias"}, &env); err != nil {
		return nil, err
	}
	return decodeList(env, dto.CategoryDTO.ToModel)
}

// ListWeekdays fetches the weekday enumeration.
func (c *Client) ListWeekdays(ctx context.Context, token string) ([]models.Weekday, error) {
	var env dto.ListEnvelope
	if err := c.do(ctx, token, request{endpoint: "dias_semana.list", method: http.MethodGet, path: "/asignaciones/dias-semana"}, &env); err != nil {
		return nil, err
	}
	return decodeList(env, dto.WeekdayDTO.ToModel)
}

// ListTimeBlocks fetches the selectable time blocks.
func (c *Client) ListTimeBlocks(ctx context.Context, token string) ([]models.TimeBlock, error) {
	var env dto.ListEnvelope
	if err := c.do(ctx, token, request{endpoint: "bloques_horarios.list", method: http.MethodGet, path: "/asignaciones/bloques-horarios"}, &env); err != nil {
		return nil, err
	}
	return decodeList(env, dto.TimeBlockDTO.ToModel)
}
