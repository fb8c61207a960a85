package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pierojauregui/trilceperu-sub000/internal/dto"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

type memoryAssignmentStore struct {
	items  map[int64]models.Assignment
	nextID int64
	err    error
}

func newMemoryAssignmentStore() *memoryAssignmentStore {
	return &memoryAssignmentStore{items: map[int64]models.Assignment{}, nextID: 1}
}

func (m *memoryAssignmentStore) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Assignment, 0, len(m.items))
	for id := m.nextID - 1; id > 0; id-- {
		if a, ok := m.items[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryAssignmentStore) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (m *memoryAssignmentStore) Create(ctx context.Context, a *models.Assignment) error {
	if m.err != nil {
		return m.err
	}
	a.ID = m.nextID
	m.nextID++
	if a.Status == "" {
		a.Status = models.AssignmentStatusScheduled
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.items[a.ID] = *a
	return nil
}

func (m *memoryAssignmentStore) Update(ctx context.Context, a *models.Assignment) error {
	existing, ok := m.items[a.ID]
	if !ok {
		return sql.ErrNoRows
	}
	a.Status = existing.Status
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now()
	m.items[a.ID] = *a
	return nil
}

func (m *memoryAssignmentStore) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type stubCatalogStore struct {
	teachers     map[int64]bool
	courses      map[int64]bool
	err          error
	weekdayLists int
	weekdayCount int
}

func newStubCatalogStore() *stubCatalogStore {
	return &stubCatalogStore{
		teachers: map[int64]bool{3: true, 4: true},
		courses:  map[int64]bool{7: true, 8: true, 9: true},
	}
}

func (s *stubCatalogStore) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	if s.err != nil {
		return nil, s.err
	}
	return sampleReference().Teachers, nil
}

func (s *stubCatalogStore) ListCourses(ctx context.Context, categoryID *int64) ([]models.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	return models.ReferenceData{Courses: sampleReference().Courses}.CoursesInCategory(categoryID), nil
}

func (s *stubCatalogStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, s.err
}

func (s *stubCatalogStore) ListWeekdays(ctx context.Context) ([]models.Weekday, error) {
	s.weekdayLists++
	if s.err != nil {
		return nil, s.err
	}
	return []models.Weekday{{ID: 1, Name: "Lunes"}, {ID: 2, Name: "Martes"}, {ID: 3, Name: "Miércoles"}}, nil
}

func (s *stubCatalogStore) ListTimeBlocks(ctx context.Context) ([]models.TimeBlock, error) {
	return []models.TimeBlock{}, nil
}

func (s *stubCatalogStore) TeacherExists(ctx context.Context, id int64) (bool, error) {
	return s.teachers[id], nil
}

func (s *stubCatalogStore) CourseExists(ctx context.Context, id int64) (bool, error) {
	return s.courses[id], nil
}

func (s *stubCatalogStore) CountWeekdays(ctx context.Context, ids []int64) (int, error) {
	s.weekdayCount++
	if s.err != nil {
		return 0, s.err
	}
	count := 0
	for _, id := range ids {
		if id >= 1 && id <= 3 {
			count++
		}
	}
	return count, nil
}

type recordingStoreMetrics struct {
	queries  []string
	failures []string
}

func (r *recordingStoreMetrics) ObserveDBQuery(label string, duration time.Duration) {
	r.queries = append(r.queries, label)
}

func (r *recordingStoreMetrics) RecordValidationFailure(field string) {
	r.failures = append(r.failures, field)
}

func newAssignmentServiceForTest(store *memoryAssignmentStore, metrics *recordingStoreMetrics) *AssignmentService {
	var m storeMetrics
	if metrics != nil {
		m = metrics
	}
	return NewAssignmentService(store, newStubCatalogStore(), validator.New(), m, zap.NewNop(), AssignmentRules{})
}

func weekdayID(v int64) *int64 { return &v }

func slotKeys(slots []models.ScheduleSlot) []string {
	keys := make([]string, 0, len(slots))
	for _, s := range slots {
		keys = append(keys, models.SlotKey(strconv.FormatInt(s.WeekdayID, 10), s.StartTime, s.EndTime))
	}
	return keys
}

func validationDetails(t *testing.T, err error) []appErrors.FieldError {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	return appErr.Details
}

func TestAssignmentServiceCreateRoundTrip(t *testing.T) {
	store := newMemoryAssignmentStore()
	metrics := &recordingStoreMetrics{}
	svc := newAssignmentServiceForTest(store, metrics)

	obs := "Laboratorio 2"
	created, err := svc.Create(context.Background(), dto.AssignmentWriteRequest{
		ProfesorID: 3,
		CursoID:    7,
		Horarios: []dto.ScheduleSlotRequest{
			{DiaSemanaID: weekdayID(1), HoraInicio: "08:00", HoraFin: "10:00"},
			{DiaSemanaID: weekdayID(3), HoraInicio: "14:00:00", HoraFin: "16:00:00"},
		},
		Observaciones: &obs,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, models.AssignmentStatusScheduled, created.Status)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fetched.TeacherID)
	assert.Equal(t, int64(7), fetched.CourseID)
	require.NotNil(t, fetched.Observations)
	assert.Equal(t, "Laboratorio 2", *fetched.Observations)

	assert.ElementsMatch(t, []string{"1|08:00|10:00", "3|14:00|16:00"}, slotKeys(fetched.ScheduleSlots))
	assert.Equal(t, "08:00:00", fetched.ScheduleSlots[0].StartTime)
	assert.Contains(t, metrics.queries, "assignments_create")
}

func TestAssignmentServiceCreateAcceptsLegacyContract(t *testing.T) {
	store := newMemoryAssignmentStore()
	svc := newAssignmentServiceForTest(store, nil)

	created, err := svc.Create(context.Background(), dto.AssignmentWriteRequest{
		IDProfesor: 4,
		IDCurso:    8,
		Horarios: []dto.ScheduleSlotRequest{
			{DiaSemana: "miercoles", HoraInicio: "09:00", HoraFin: "11:00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.TeacherID)
	assert.Equal(t, int64(8), created.CourseID)
	require.Len(t, created.ScheduleSlots, 1)
	assert.Equal(t, int64(3), created.ScheduleSlots[0].WeekdayID)
}

func TestAssignmentServiceWeekdayLookup(t *testing.T) {
	catalog := newStubCatalogStore()
	svc := NewAssignmentService(newMemoryAssignmentStore(), catalog, validator.New(), nil, zap.NewNop(), AssignmentRules{})

	_, err := svc.Create(context.Background(), dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Horarios: []dto.ScheduleSlotRequest{
		{DiaSemanaID: weekdayID(1), HoraInicio: "08:00", HoraFin: "10:00"},
		{DiaSemanaID: weekdayID(1), HoraInicio: "11:00", HoraFin: "12:00"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.weekdayCount)
	assert.Equal(t, 0, catalog.weekdayLists)

	_, err = svc.Create(context.Background(), dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Horarios: []dto.ScheduleSlotRequest{
		{DiaSemanaID: weekdayID(2), HoraInicio: "08:00", HoraFin: "10:00"},
		{DiaSemana: "Lunes", HoraInicio: "08:00", HoraFin: "10:00"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.weekdayCount)
	assert.Equal(t, 1, catalog.weekdayLists)

	_, err = svc.Create(context.Background(), dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Horarios: []dto.ScheduleSlotRequest{
		{DiaSemanaID: weekdayID(2), HoraInicio: "08:00", HoraFin: "10:00"},
		{DiaSemanaID: weekdayID(9), HoraInicio: "08:00", HoraFin: "10:00"},
	}})
	details := validationDetails(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, []string{"body", "horarios", "1", "dia_semana_id"}, details[0].Loc)
	assert.Equal(t, MsgWeekdayUnknown, details[0].Msg)
	assert.Equal(t, 2, catalog.weekdayCount)
	assert.Equal(t, 2, catalog.weekdayLists)
}

func TestAssignmentServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.AssignmentWriteRequest
		details []appErrors.FieldError
	}{
		{
			name: "missing teacher and course",
			req:  dto.AssignmentWriteRequest{},
			details: []appErrors.FieldError{
				{Loc: []string{"body", "curso_id"}, Msg: MsgCourseRequired},
				{Loc: []string{"body", "profesor_id"}, Msg: MsgTeacherRequired},
			},
		},
		{
			name: "missing end time",
			req: dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Horarios: []dto.ScheduleSlotRequest{
				{DiaSemanaID: weekdayID(1), HoraInicio: "08:00"},
			}},
			details: []appErrors.FieldError{{Loc: []string{"body", "horarios", "0", "hora_fin"}, Msg: MsgFieldRequired}},
		},
		{
			name: "unknown weekday",
			req: dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Horarios: []dto.ScheduleSlotRequest{
				{DiaSemanaID: weekdayID(9), HoraInicio: "08:00", HoraFin: "09:00"},
			}},
			details: []appErrors.FieldError{{Loc: []string{"body", "horarios", "0", "dia_semana_id"}, Msg: MsgWeekdayUnknown}},
		},
		{
			name: "order and duplicate",
			req: dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Horarios: []dto.ScheduleSlotRequest{
				{DiaSemanaID: weekdayID(1), HoraInicio: "08:00", HoraFin: "10:00"},
				{DiaSemanaID: weekdayID(2), HoraInicio: "12:00", HoraFin: "11:00"},
				{DiaSemanaID: weekdayID(1), HoraInicio: "08:00:00", HoraFin: "10:00:00"},
			}},
			details: []appErrors.FieldError{
				{Loc: []string{"body", "horarios", "1"}, Msg: MsgSlotOrder},
				{Loc: []string{"body", "horarios", "2"}, Msg: MsgSlotDuplicate},
			},
		},
		{
			name: "unknown teacher and course",
			req:  dto.AssignmentWriteRequest{ProfesorID: 30, CursoID: 70},
			details: []appErrors.FieldError{
				{Loc: []string{"body", "profesor_id"}, Msg: MsgTeacherNotFound},
				{Loc: []string{"body", "curso_id"}, Msg: MsgCourseNotFound},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemoryAssignmentStore()
			svc := newAssignmentServiceForTest(store, nil)

			_, err := svc.Create(context.Background(), tc.req)
			assert.Equal(t, tc.details, validationDetails(t, err))
			assert.Empty(t, store.items)
		})
	}
}

func TestAssignmentServiceSanitizesObservations(t *testing.T) {
	store := newMemoryAssignmentStore()
	svc := newAssignmentServiceForTest(store, nil)

	raw := `<script>alert(1)</script><b>Traer laptop</b>`
	created, err := svc.Create(context.Background(), dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Observaciones: &raw})
	require.NoError(t, err)
	require.NotNil(t, created.Observations)
	assert.Equal(t, "Traer laptop", *created.Observations)

	blank := "<p>  </p>"
	created, err = svc.Create(context.Background(), dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Observaciones: &blank})
	require.NoError(t, err)
	assert.Nil(t, created.Observations)
}

func TestAssignmentServiceUpdateReplacesSlots(t *testing.T) {
	store := newMemoryAssignmentStore()
	svc := newAssignmentServiceForTest(store, nil)

	created, err := svc.Create(context.Background(), dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7, Horarios: []dto.ScheduleSlotRequest{
		{DiaSemanaID: weekdayID(1), HoraInicio: "08:00", HoraFin: "10:00"},
		{DiaSemanaID: weekdayID(2), HoraInicio: "08:00", HoraFin: "10:00"},
	}})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, dto.AssignmentWriteRequest{ProfesorID: 4, CursoID: 9, Horarios: []dto.ScheduleSlotRequest{
		{DiaSemanaID: weekdayID(3), HoraInicio: "15:00", HoraFin: "17:00"},
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.TeacherID)
	assert.Equal(t, models.AssignmentStatusScheduled, updated.Status)
	require.Len(t, updated.ScheduleSlots, 1)
	assert.Equal(t, []string{"3|15:00|17:00"}, slotKeys(updated.ScheduleSlots))

	_, err = svc.Update(context.Background(), 99, dto.AssignmentWriteRequest{ProfesorID: 4, CursoID: 9})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAssignmentServiceDeleteTwice(t *testing.T) {
	store := newMemoryAssignmentStore()
	svc := newAssignmentServiceForTest(store, nil)

	created, err := svc.Create(context.Background(), dto.AssignmentWriteRequest{ProfesorID: 3, CursoID: 7})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	err = svc.Delete(context.Background(), created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, MsgAssignmentGone, appErrors.FromError(err).Message)

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAssignmentServiceListWrapsStoreErrors(t *testing.T) {
	store := newMemoryAssignmentStore()
	store.err = errors.New("connection reset")
	svc := newAssignmentServiceForTest(store, nil)

	_, err := svc.List(context.Background(), models.AssignmentFilter{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestAssignmentServiceRecordsValidationFailures(t *testing.T) {
	metrics := &recordingStoreMetrics{}
	svc := newAssignmentServiceForTest(newMemoryAssignmentStore(), metrics)

	_, err := svc.Create(context.Background(), dto.AssignmentWriteRequest{CursoID: 7})
	require.Error(t, err)
	assert.Equal(t, []string{"profesor_id"}, metrics.failures)
}

func TestCatalogServiceReturnsEmptyLists(t *testing.T) {
	metrics := &recordingStoreMetrics{}
	svc := NewCatalogService(newStubCatalogStore(), metrics, zap.NewNop())

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)

	courses, err := svc.ListCourses(context.Background(), weekdayID(1))
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, []string{"catalog_categories", "catalog_courses"}, metrics.queries)

	failing := newStubCatalogStore()
	failing.err = errors.New("boom")
	svc = NewCatalogService(failing, nil, zap.NewNop())
	_, err = svc.ListTeachers(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
