package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierojauregui/trilceperu-sub000/internal/middleware"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

type fakeListSrv struct {
	view       *models.AssignmentListView
	err        error
	lastToken  string
	lastFilter models.AssignmentFilter
	deletedID  int64
	confirmed  bool
}

func (f *fakeListSrv) Load(_ context.Context, token string, filter models.AssignmentFilter) (*models.AssignmentListView, error) {
	f.lastToken = token
	f.lastFilter = filter
	return f.view, f.err
}

func (f *fakeListSrv) Delete(_ context.Context, token string, id int64, confirmed bool, filter models.AssignmentFilter) (*models.AssignmentListView, error) {
	f.lastToken = token
	f.deletedID = id
	f.confirmed = confirmed
	f.lastFilter = filter
	if !confirmed {
		return nil, appErrors.ErrConfirmationRequired
	}
	return f.view, f.err
}

type fakeFormSrv struct {
	form       *models.AssignmentForm
	err        error
	openedWith *int64
	lastEdit   models.FormEdit
	discarded  string
}

func (f *fakeFormSrv) Open(_ context.Context, token string, assignmentID *int64) (*models.AssignmentForm, error) {
	f.openedWith = assignmentID
	return f.form, f.err
}

func (f *fakeFormSrv) Get(_ context.Context, id string) (*models.AssignmentForm, error) {
	return f.form, f.err
}

func (f *fakeFormSrv) Apply(_ context.Context, id string, edit models.FormEdit) (*models.AssignmentForm, error) {
	f.lastEdit = edit
	return f.form, f.err
}

func (f *fakeFormSrv) Submit(_ context.Context, token string, id string) (*models.AssignmentForm, error) {
	return f.form, f.err
}

func (f *fakeFormSrv) Discard(_ context.Context, id string) error {
	f.discarded = id
	return f.err
}

func (f *fakeFormSrv) Validate(candidate models.AssignmentCandidate) models.ValidationResult {
	if !candidate.TeacherID.IsSet() {
		return models.ValidationResult{Errors: map[string]string{models.FieldTeacher: "Debe seleccionar un profesor"}}
	}
	return models.ValidationResult{Valid: true, Errors: map[string]string{}}
}

func newDashboardContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Set(middleware.ContextTokenKey, "token-1")
	return c, rec
}

func sampleForm() *models.AssignmentForm {
	form := models.NewAssignmentForm("f-1", models.FormModeCreate)
	form.Phase = models.FormPhaseReady
	form.CourseID = "7"
	form.Reference = models.ReferenceData{Courses: []models.Course{{ID: 7, Name: "Algebra", CategoryID: 1, Modality: models.ModalitySync}}}
	return form
}

func TestDashboardHandlerListPassesFilters(t *testing.T) {
	list := &fakeListSrv{view: &models.AssignmentListView{Rows: []models.AssignmentRow{{ID: 3, TeacherName: "Ana"}}, Total: 1}}
	handler := NewDashboardHandler(list, &fakeFormSrv{})

	c, rec := newDashboardContext(http.MethodGet, "/dashboard/asignaciones?q=ana&profesor_id=3&categoria_id=1", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token-1", list.lastToken)
	assert.Equal(t, "ana", list.lastFilter.Search)
	require.NotNil(t, list.lastFilter.TeacherID)
	assert.Equal(t, int64(3), *list.lastFilter.TeacherID)
	require.NotNil(t, list.lastFilter.CategoryID)
	assert.Nil(t, list.lastFilter.CourseID)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

func TestDashboardHandlerListRejectsBadFilter(t *testing.T) {
	handler := NewDashboardHandler(&fakeListSrv{}, &fakeFormSrv{})

	c, rec := newDashboardContext(http.MethodGet, "/dashboard/asignaciones?profesor_id=abc", "")
	handler.List(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDashboardHandlerDeleteRequiresConfirm(t *testing.T) {
	list := &fakeListSrv{view: &models.AssignmentListView{}}
	handler := NewDashboardHandler(list, &fakeFormSrv{})

	c, rec := newDashboardContext(http.MethodDelete, "/dashboard/asignaciones/4", "")
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	handler.Delete(c)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.False(t, list.confirmed)

	c, rec = newDashboardContext(http.MethodDelete, "/dashboard/asignaciones/4?confirm=true&curso_id=7", "")
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	handler.Delete(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), list.deletedID)
	require.NotNil(t, list.lastFilter.CourseID)
	assert.Equal(t, int64(7), *list.lastFilter.CourseID)

	c, rec = newDashboardContext(http.MethodDelete, "/dashboard/asignaciones/x?confirm=true", "")
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	handler.Delete(c)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDashboardHandlerOpenForm(t *testing.T) {
	forms := &fakeFormSrv{form: sampleForm()}
	handler := NewDashboardHandler(&fakeListSrv{}, forms)

	c, rec := newDashboardContext(http.MethodPost, "/dashboard/asignaciones/forms", "")
	handler.OpenForm(c)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, forms.openedWith)

	var body struct {
		Data struct {
			FormID        string          `json:"form_id"`
			SlotsExpected bool            `json:"slots_expected"`
			CourseOptions []models.Course `json:"course_options"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "f-1", body.Data.FormID)
	assert.True(t, body.Data.SlotsExpected)
	assert.Len(t, body.Data.CourseOptions, 1)

	c, rec = newDashboardContext(http.MethodPost, "/dashboard/asignaciones/forms", `{"assignment_id": 12}`)
	handler.OpenForm(c)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, forms.openedWith)
	assert.Equal(t, int64(12), *forms.openedWith)
}

func TestDashboardHandlerOpenFormPropagatesAuthError(t *testing.T) {
	handler := NewDashboardHandler(&fakeListSrv{}, &fakeFormSrv{err: appErrors.Clone(appErrors.ErrUnauthorized, "la sesion expiro")})

	c, rec := newDashboardContext(http.MethodPost, "/dashboard/asignaciones/forms", "")
	handler.OpenForm(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "la sesion expiro")
}

func TestDashboardHandlerEditForm(t *testing.T) {
	forms := &fakeFormSrv{form: sampleForm()}
	handler := NewDashboardHandler(&fakeListSrv{}, forms)

	c, rec := newDashboardContext(http.MethodPatch, "/dashboard/asignaciones/forms/f-1", `{"profesor_id": 3, "curso_id": "7", "add_row": true}`)
	c.Params = gin.Params{{Key: "form_id", Value: "f-1"}}
	handler.EditForm(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, forms.lastEdit.TeacherID)
	assert.Equal(t, models.FieldID("3"), *forms.lastEdit.TeacherID)
	assert.Equal(t, models.FieldID("7"), *forms.lastEdit.CourseID)
	assert.True(t, forms.lastEdit.AddRow)
	assert.Nil(t, forms.lastEdit.CategoryID)
}

func TestDashboardHandlerSubmitConflict(t *testing.T) {
	handler := NewDashboardHandler(&fakeListSrv{}, &fakeFormSrv{err: appErrors.ErrSubmitInProgress})

	c, rec := newDashboardContext(http.MethodPost, "/dashboard/asignaciones/forms/f-1/submit", "")
	c.Params = gin.Params{{Key: "form_id", Value: "f-1"}}
	handler.SubmitForm(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDashboardHandlerSubmitFailureReturnsForm(t *testing.T) {
	form := sampleForm()
	form.Phase = models.FormPhaseReady
	form.Failure = &models.SubmitFailure{Code: "SERVER_VALIDATION_ERROR", Message: "body.horarios.0.hora_fin: field required", Lines: []string{"body.horarios.0.hora_fin: field required"}}
	handler := NewDashboardHandler(&fakeListSrv{}, &fakeFormSrv{form: form})

	c, rec := newDashboardContext(http.MethodPost, "/dashboard/asignaciones/forms/f-1/submit", "")
	c.Params = gin.Params{{Key: "form_id", Value: "f-1"}}
	handler.SubmitForm(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"ready"`)
	assert.Contains(t, rec.Body.String(), "body.horarios.0.hora_fin: field required")
}

func TestDashboardHandlerDiscardForm(t *testing.T) {
	forms := &fakeFormSrv{}
	handler := NewDashboardHandler(&fakeListSrv{}, forms)

	c, _ := newDashboardContext(http.MethodDelete, "/dashboard/asignaciones/forms/f-9", "")
	c.Params = gin.Params{{Key: "form_id", Value: "f-9"}}
	handler.DiscardForm(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "f-9", forms.discarded)
}

func TestDashboardHandlerValidate(t *testing.T) {
	handler := NewDashboardHandler(&fakeListSrv{}, &fakeFormSrv{})

	c, rec := newDashboardContext(http.MethodPost, "/dashboard/asignaciones/validate", `{"curso_id": 7, "horarios": []}`)
	handler.Validate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data models.ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Data.Valid)
	assert.Equal(t, "Debe seleccionar un profesor", body.Data.Errors[models.FieldTeacher])

	c, rec = newDashboardContext(http.MethodPost, "/dashboard/asignaciones/validate", `{"curso_id": [}`)
	handler.Validate(c)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
