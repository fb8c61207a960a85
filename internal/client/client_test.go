package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	"github.com/pierojauregui/trilceperu-sub000/pkg/config"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
	"github.com/pierojauregui/trilceperu-sub000/pkg/middleware/requestid"
)

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveUpstreamCall(endpoint string, status int, duration time.Duration) {
	r.calls = append(r.calls, endpoint)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	obs := &recordingObserver{}
	return New(config.UpstreamConfig{BaseURL: server.URL + "/", CoursesPath: "/cursos"}, server.Client(), obs, nil), obs
}

func TestListAssignmentsSendsTokenAndFilters(t *testing.T) {
	var gotAuth, gotQuery, gotReqID string
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotReqID = r.Header.Get(requestid.HeaderKey)
		assert.Equal(t, "/asignaciones", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id_asignacion":7,"id_profesor":"3","curso_id":5,"estado":"Activo","horarios":[{"id_dia":1,"dia_semana":"Lunes","hora_inicio":"08:00:00","hora_fin":"10:00:00"}]}]}`)
	})

	teacherID := int64(3)
	ctx := requestid.WithValue(context.Background(), "req-1")
	items, err := c.ListAssignments(ctx, "abc", models.AssignmentFilter{Search: "ana", TeacherID: &teacherID})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "profesor_id=3&q=ana", gotQuery)
	assert.Equal(t, "req-1", gotReqID)
	assert.Equal(t, []string{"asignaciones.list"}, obs.calls)

	a := items[0]
	assert.Equal(t, int64(7), a.ID)
	assert.Equal(t, int64(3), a.TeacherID)
	assert.Equal(t, int64(5), a.CourseID)
	assert.Equal(t, models.AssignmentStatusActive, a.Status)
	require.Len(t, a.ScheduleSlots, 1)
	assert.Equal(t, int64(1), a.ScheduleSlots[0].WeekdayID)
	assert.Equal(t, "08:00", a.ScheduleSlots[0].StartTime)
}

func TestMissingTokenAbortsBeforeNetwork(t *testing.T) {
	var hits int32
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := c.ListTeachers(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
	assert.Empty(t, obs.calls)
}

func TestCheckTokenRejectsExpiredJWT(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	fresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.True(t, IsAuth(CheckToken(expired, now)))
	assert.NoError(t, CheckToken(fresh, now))
	assert.NoError(t, CheckToken("opaque-token", now))
}

func TestDecodeErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel *appErrors.Error
		message  string
		lines    int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Token invalido"}`, sentinel: appErrors.ErrUnauthorized, message: "Token invalido"},
		{name: "not found", status: http.StatusNotFound, body: `{"detail":"Asignacion no encontrada"}`, sentinel: appErrors.ErrNotFound, message: "Asignacion no encontrada"},
		{name: "structured detail", status: http.StatusUnprocessableEntity, body: `{"detail":[{"loc":["body","horarios",0,"hora_fin"],"msg":"field required"}]}`, sentinel: appErrors.ErrServerValidation, message: "Unprocessable Entity", lines: 1},
		{name: "message only", status: http.StatusBadRequest, body: `{"success":false,"message":"El profesor no existe"}`, sentinel: appErrors.ErrServerValidation, message: "El profesor no existe"},
		{name: "no body", status: http.StatusInternalServerError, body: ``, sentinel: appErrors.ErrUpstream, message: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeError(tt.status, []byte(tt.body))
			require.True(t, errors.Is(err, tt.sentinel))
			appErr := appErrors.FromError(err)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Len(t, appErr.Details, tt.lines)
		})
	}

	err := decodeError(http.StatusUnprocessableEntity, []byte(`{"detail":[{"loc":["body","horarios",0,"hora_fin"],"msg":"field required"}]}`))
	assert.Equal(t, []string{"body.horarios.0.hora_fin: field required"}, appErrors.FlattenDetails(appErrors.FromError(err).Details))
}

func TestDecodeErrorKeepsUpstreamCode(t *testing.T) {
	err := decodeError(http.StatusUnprocessableEntity, []byte(`{"success":false,"message":"datos de asignacion invalidos","error":{"code":"VALIDATION_ERROR","message":"datos de asignacion invalidos"}}`))

	require.True(t, errors.Is(err, appErrors.ErrServerValidation))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrServerValidation.Code, appErr.Code)
	assert.EqualError(t, appErr.Err, "assignment service responded 422 (VALIDATION_ERROR)")

	plain := appErrors.FromError(decodeError(http.StatusBadGateway, nil))
	assert.EqualError(t, plain.Err, "assignment service responded 502")
}

func TestNetworkFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	c := New(config.UpstreamConfig{BaseURL: base}, nil, nil, nil)
	_, err := c.ListCategories(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNetwork))
}

func TestCreateAssignmentPostsCanonicalPayload(t *testing.T) {
	var body map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":11,"profesor_id":3,"curso_id":5,"estado":"programado","horarios":[]}}`)
	})

	write := models.AssignmentWrite{
		TeacherID: 3,
		CourseID:  5,
		Slots:     []models.ScheduleSlot{{WeekdayID: 1, StartTime: "08:00:00", EndTime: "10:00:00"}},
	}
	a, err := c.CreateAssignment(context.Background(), "abc", write)
	require.NoError(t, err)
	assert.Equal(t, int64(11), a.ID)
	assert.Equal(t, models.AssignmentStatusScheduled, a.Status)

	assert.EqualValues(t, 3, body["profesor_id"])
	assert.EqualValues(t, 5, body["curso_id"])
	slots := body["horarios"].([]interface{})
	require.Len(t, slots, 1)
	slot := slots[0].(map[string]interface{})
	assert.EqualValues(t, 1, slot["dia_semana_id"])
	assert.Equal(t, "08:00:00", slot["hora_inicio"])
}

func TestCreateAssignmentSuccessFalseIsServerValidation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"Curso sin cupo"}`)
	})

	_, err := c.CreateAssignment(context.Background(), "abc", models.AssignmentWrite{TeacherID: 1, CourseID: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrServerValidation))
	assert.Equal(t, "Curso sin cupo", appErrors.FromError(err).Message)
}

func TestUpdateAssignmentWithoutEchoKeepsID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/asignaciones/9", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"message":"ok"}`)
	})

	a, err := c.UpdateAssignment(context.Background(), "abc", 9, models.AssignmentWrite{TeacherID: 1, CourseID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.ID)
	assert.Equal(t, int64(1), a.TeacherID)
}

func TestDeleteMissingAssignmentIsNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Asignacion no encontrada"}`)
	})

	err := c.DeleteAssignment(context.Background(), "abc", 42)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestListCoursesAcceptsLegacyEnvelope(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"cursos":[{"id_curso":4,"nombre_curso":"Algebra","id_categoria":2,"modalidad":"sincrono"}]}`)
	})

	category := int64(2)
	courses, err := c.ListCourses(context.Background(), "abc", &category)
	require.NoError(t, err)
	assert.Equal(t, "categoria_id=2", gotQuery)
	require.Len(t, courses, 1)
	assert.Equal(t, int64(4), courses[0].ID)
	assert.Equal(t, "Algebra", courses[0].Name)
	assert.Equal(t, int64(2), courses[0].CategoryID)
}

func TestListTeachersJoinsNames(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/asignaciones/profesores-disponibles", r.URL.Path)
		_, _ = io.WriteString(w, `{"profesores":[{"id_profesor":1,"nombre":"Ana","apellido":"Quispe"}]}`)
	})

	teachers, err := c.ListTeachers(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Ana Quispe", teachers[0].FullName)
}
