package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pierojauregui/trilceperu-sub000/internal/dto"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

// ListAssignments fetches every assignment. The filter is passed along but
// is only advisory; callers filter the result again.
func (c *Client) ListAssignments(ctx context.Context, token string, filter models.AssignmentFilter) ([]models.Assignment, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("q", filter.Search)
	}
	setID(query, "profesor_id", filter.TeacherID)
	setID(query, "curso_id", filter.CourseID)
	setID(query, "categoria_id", filter.CategoryID)

	var env dto.ListEnvelope
	if err := c.do(ctx, token, request{endpoint: "asignaciones.list", method: http.MethodGet, path: "/asignaciones", query: query}, &env); err != nil {
		return nil, err
	}
	return decodeList(env, dto.AssignmentDTO.ToModel)
}

// GetAssignment fetches one assignment.
func (c *Client) GetAssignment(ctx context.Context, token string, id int64) (*models.Assignment, error) {
	var env dto.ItemEnvelope
	if err := c.do(ctx, token, request{endpoint: "asignaciones.get", method: http.MethodGet, path: assignmentPath(id)}, &env); err != nil {
		return nil, err
	}
	return decodeAssignment(env, nil)
}

// CreateAssignment stores a new assignment.
func (c *Client) CreateAssignment(ctx context.Context, token string, write models.AssignmentWrite) (*models.Assignment, error) {
	var env dto.ItemEnvelope
	if err := c.do(ctx, token, request{endpoint: "asignaciones.create", method: http.MethodPost, path: "/asignaciones", body: write}, &env); err != nil {
		return nil, err
	}
	return decodeAssignment(env, &write)
}

// UpdateAssignment replaces teacher, course and the whole slot list.
func (c *Client) UpdateAssignment(ctx context.Context, token string, id int64, write models.AssignmentWrite) (*models.Assignment, error) {
	var env dto.ItemEnvelope
	if err := c.do(ctx, token, request{endpoint: "asignaciones.update", method: http.MethodPut, path: assignmentPath(id), body: write}, &env); err != nil {
		return nil, err
	}
	a, err := decodeAssignment(env, &write)
	if err != nil {
		return nil, err
	}
	if a.ID == 0 {
		a.ID = id
	}
	return a, nil
}

// DeleteAssignment removes an assignment permanently. A missing id is a
// not-found error.
func (c *Client) DeleteAssignment(ctx context.Context, token string, id int64) error {
	return c.do(ctx, token, request{endpoint: "asignaciones.delete", method: http.MethodDelete, path: assignmentPath(id)}, nil)
}

// decodeAssignment reads an item envelope. A write that succeeds without
// echoing the stored row is reported from the submitted payload.
func decodeAssignment(env dto.ItemEnvelope, write *models.AssignmentWrite) (*models.Assignment, error) {
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = appErrors.ErrServerValidation.Message
		}
		return nil, appErrors.Clone(appErrors.ErrServerValidation, msg)
	}
	if present(env.Data) {
		var d dto.AssignmentDTO
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "unexpected assignment shape from assignment service")
		}
		a := d.ToModel()
		return &a, nil
	}
	if write == nil {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "assignment service returned no data")
	}
	return &models.Assignment{
		TeacherID:     write.TeacherID,
		CourseID:      write.CourseID,
		Observations:  write.Observations,
		Status:        models.AssignmentStatusUnknown,
		ScheduleSlots: append([]models.ScheduleSlot(nil), write.Slots...),
	}, nil
}

func assignmentPath(id int64) string {
	return fmt.Sprintf("/asignaciones/%d", id)
}

func setID(q url.Values, key string, id *int64) {
	if id != nil && *id > 0 {
		q.Set(key, strconv.FormatInt(*id, 10))
	}
}

func present(raw json.RawMessage) bool {
	s := string(raw)
	return len(raw) > 0 && s != "null"
}
