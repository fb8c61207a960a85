package service

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/pierojauregui/trilceperu-sub000/internal/dto"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

type assignmentStore interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id int64) error
}

type catalogStore interface {
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	ListCourses(ctx context.Context, categoryID *int64) ([]models.Course, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListWeekdays(ctx context.Context) ([]models.Weekday, error)
	ListTimeBlocks(ctx context.Context) ([]models.TimeBlock, error)
	TeacherExists(ctx context.Context, id int64) (bool, error)
	CourseExists(ctx context.Context, id int64) (bool, error)
	CountWeekdays(ctx context.Context, ids []int64) (int, error)
}

type storeMetrics interface {
	ObserveDBQuery(label string, duration time.Duration)
	RecordValidationFailure(field string)
}

// Detail messages returned by the assignment service.
const (
	MsgFieldRequired   = "field required"
	MsgTeacherNotFound = "el profesor no existe o no esta activo"
	MsgCourseNotFound  = "el curso no existe"
	MsgWeekdayUnknown  = "dia de la semana desconocido"
	MsgAssignmentGone  = "Asignacion no encontrada"
)

// AssignmentService implements the assignment persistence API. Payloads
// are re-validated with the same rules the dashboard applies.
type AssignmentService struct {
	repo      assignmentStore
	catalog   catalogStore
	validator *validator.Validate
	policy    *bluemonday.Policy
	metrics   storeMetrics
	logger    *zap.Logger
	rules     AssignmentRules
}

// NewAssignmentService constructs the service.
func NewAssignmentService(repo assignmentStore, catalog catalogStore, validate *validator.Validate, metrics storeMetrics, logger *zap.Logger, rules AssignmentRules) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(jsonTagName)
	return &AssignmentService{
		repo:      repo,
		catalog:   catalog,
		validator: validate,
		policy:    bluemonday.StrictPolicy(),
		metrics:   metrics,
		logger:    logger,
		rules:     rules,
	}
}

// List returns assignments matching filter.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	start := time.Now()
	items, err := s.repo.List(ctx, filter)
	s.observe("assignments_list", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return items, nil
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	start := time.Now()
	a, err := s.repo.FindByID(ctx, id)
	s.observe("assignments_get", start)
	if err != nil {
		return nil, s.mapStoreErr(err, "failed to load assignment")
	}
	return a, nil
}

// Create validates and stores a new assignment.
func (s *AssignmentService) Create(ctx context.Context, req dto.AssignmentWriteRequest) (*models.Assignment, error) {
	assignment, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	err = s.repo.Create(ctx, assignment)
	s.observe("assignments_create", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.logger.Info("assignment created", zap.Int64("assignment_id", assignment.ID), zap.Int("slots", len(assignment.ScheduleSlots)))
	return s.Get(ctx, assignment.ID)
}

// Update replaces teacher, course, observations and every slot of id.
// Concurrent updates are last-writer-wins.
func (s *AssignmentService) Update(ctx context.Context, id int64, req dto.AssignmentWriteRequest) (*models.Assignment, error) {
	assignment, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	assignment.ID = id
	start := time.Now()
	err = s.repo.Update(ctx, assignment)
	s.observe("assignments_update", start)
	if err != nil {
		return nil, s.mapStoreErr(err, "failed to update assignment")
	}
	s.logger.Info("assignment updated", zap.Int64("assignment_id", id), zap.Int("slots", len(assignment.ScheduleSlots)))
	return s.Get(ctx, id)
}

// Delete removes an assignment permanently. Deleting a missing id is a
// not-found error.
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.observe("assignments_delete", start)
	if err != nil {
		return s.mapStoreErr(err, "failed to delete assignment")
	}
	s.logger.Info("assignment deleted", zap.Int64("assignment_id", id))
	return nil
}

// prepare validates req and maps it onto a storable assignment.
func (s *AssignmentService) prepare(ctx context.Context, req dto.AssignmentWriteRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
		}
		details := make([]appErrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, appErrors.FieldError{Loc: namespaceLoc(fe.Namespace()), Msg: tagMessage(fe)})
		}
		return nil, s.invalid(details)
	}

	weekdayIDs, details, err := s.resolveWeekdays(ctx, req.Horarios)
	if err != nil {
		return nil, err
	}

	candidate := models.AssignmentCandidate{
		TeacherID: models.IDFromInt(req.TeacherID()),
		CourseID:  models.IDFromInt(req.CourseID()),
		Slots:     make([]models.SlotInput, len(req.Horarios)),
	}
	for i, h := range req.Horarios {
		candidate.Slots[i] = models.SlotInput{
			WeekdayID: models.IDFromInt(weekdayIDs[i]),
			StartTime: h.HoraInicio,
			EndTime:   h.HoraFin,
		}
	}
	result := ValidateAssignment(candidate, s.rules)
	_, rows := candidate.CompleteSlots()
	details = append(details, resultDetails(result, rows)...)
	if len(details) > 0 {
		return nil, s.invalid(details)
	}

	if ok, err := s.catalog.TeacherExists(ctx, req.TeacherID()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
	} else if !ok {
		details = append(details, appErrors.FieldError{Loc: []string{"body", "profesor_id"}, Msg: MsgTeacherNotFound})
	}
	if ok, err := s.catalog.CourseExists(ctx, req.CourseID()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	} else if !ok {
		details = append(details, appErrors.FieldError{Loc: []string{"body", "curso_id"}, Msg: MsgCourseNotFound})
	}
	if len(details) > 0 {
		return nil, s.invalid(details)
	}

	assignment := &models.Assignment{
		TeacherID:     req.TeacherID(),
		CourseID:      req.CourseID(),
		Observations:  s.sanitize(req.Observaciones),
		ScheduleSlots: make([]models.ScheduleSlot, 0, len(req.Horarios)),
	}
	for i, h := range req.Horarios {
		start, _ := models.ParseClock(h.HoraInicio)
		end, _ := models.ParseClock(h.HoraFin)
		assignment.ScheduleSlots = append(assignment.ScheduleSlots, models.ScheduleSlot{
			WeekdayID: weekdayIDs[i],
			StartTime: start.WireString(),
			EndTime:   end.WireString(),
		})
	}
	return assignment, nil
}

// resolveWeekdays returns the weekday id of every slot. Slots sent with the
// legacy weekday name are matched against the enumeration.
func (s *AssignmentService) resolveWeekdays(ctx context.Context, slots []dto.ScheduleSlotRequest) ([]int64, []appErrors.FieldError, error) {
	ids := make([]int64, len(slots))
	if len(slots) == 0 {
		return ids, nil, nil
	}
	if known, err := s.knownWeekdayIDs(ctx, slots); err != nil {
		return nil, nil, err
	} else if known != nil {
		return known, nil, nil
	}
	weekdays, err := s.catalog.ListWeekdays(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekdays")
	}
	byName := make(map[string]int64, len(weekdays))
	known := make(map[int64]struct{}, len(weekdays))
	for _, w := range weekdays {
		byName[models.FoldWeekdayName(w.Name)] = w.ID
		known[w.ID] = struct{}{}
	}

	var details []appErrors.FieldError
	for i, slot := range slots {
		if slot.DiaSemanaID != nil {
			if _, ok := known[*slot.DiaSemanaID]; !ok {
				details = append(details, appErrors.FieldError{Loc: []string{"body", "horarios", strconv.Itoa(i), "dia_semana_id"}, Msg: MsgWeekdayUnknown})
				continue
			}
			ids[i] = *slot.DiaSemanaID
			continue
		}
		id, ok := byName[models.FoldWeekdayName(slot.DiaSemana)]
		if !ok {
			details = append(details, appErrors.FieldError{Loc: []string{"body", "horarios", strconv.Itoa(i), "dia_semana"}, Msg: MsgWeekdayUnknown})
			continue
		}
		ids[i] = id
	}
	return ids, details, nil
}

func (s *AssignmentService) invalid(details []appErrors.FieldError) error {
	for _, d := range details {
		if len(d.Loc) > 1 {
			s.recordFailure(d.Loc[1])
		}
	}
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "datos de asignacion invalidos"), details)
}

func (s *AssignmentService) sanitize(raw *string) *string {
	if raw == nil {
		return nil
	}
	clean := strings.TrimSpace(s.policy.Sanitize(*raw))
	if clean == "" {
		return nil
	}
	return &clean
}

func (s *AssignmentService) mapStoreErr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, MsgAssignmentGone)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *AssignmentService) observe(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

func (s *AssignmentService) recordFailure(field string) {
	if s.metrics != nil {
		s.metrics.RecordValidationFailure(field)
	}
}

// resultDetails converts validator messages into wire detail entries.
func resultDetails(result models.ValidationResult, rows []int) []appErrors.FieldError {
	if result.Valid {
		return nil
	}
	keys := make([]string, 0, len(result.Errors))
	for k := range result.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]appErrors.FieldError, 0, len(keys))
	for _, key := range keys {
		msg := result.Errors[key]
		switch {
		case key == models.FieldTeacher:
			details = append(details, appErrors.FieldError{Loc: []string{"body", "profesor_id"}, Msg: msg})
		case key == models.FieldCourse:
			details = append(details, appErrors.FieldError{Loc: []string{"body", "curso_id"}, Msg: msg})
		case key == models.FieldSlots:
			details = append(details, appErrors.FieldError{Loc: []string{"body", "horarios"}, Msg: msg})
		case strings.HasPrefix(key, models.SlotErrorPrefix):
			i, err := strconv.Atoi(strings.TrimPrefix(key, models.SlotErrorPrefix))
			if err != nil || i < 0 || i >= len(rows) {
				continue
			}
			details = append(details, appErrors.FieldError{Loc: []string{"body", "horarios", strconv.Itoa(rows[i])}, Msg: msg})
		}
	}
	return details
}

// namespaceLoc turns "AssignmentWriteRequest.horarios[0].hora_fin" into
// body.horarios.0.hora_fin.
func namespaceLoc(ns string) []string {
	parts := strings.Split(ns, ".")
	loc := []string{"body"}
	for _, part := range parts[1:] {
		if open := strings.IndexByte(part, '['); open >= 0 && strings.HasSuffix(part, "]") {
			loc = append(loc, part[:open], part[open+1:len(part)-1])
			continue
		}
		loc = append(loc, part)
	}
	return loc
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return MsgFieldRequired
	case "gt":
		return "ensure this value is greater than " + fe.Param()
	case "max":
		return "ensure this value has at most " + fe.Param() + " characters"
	default:
		return "invalid value"
	}
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// knownWeekdayIDs returns the slot weekday ids when every slot carries an
// id and all of them exist, and nil otherwise. Names and unknown ids need
// the full enumeration to report the offending slot.
func (s *AssignmentService) knownWeekdayIDs(ctx context.Context, slots []dto.ScheduleSlotRequest) ([]int64, error) {
	ids := make([]int64, len(slots))
	distinct := make([]int64, 0, len(slots))
	seen := make(map[int64]struct{}, len(slots))
	for i, slot := range slots {
		if slot.DiaSemanaID == nil {
			return nil, nil
		}
		ids[i] = *slot.DiaSemanaID
		if _, ok := seen[ids[i]]; !ok {
			seen[ids[i]] = struct{}{}
			distinct = append(distinct, ids[i])
		}
	}
	count, err := s.catalog.CountWeekdays(ctx, distinct)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check weekdays")
	}
	if count != len(distinct) {
		return nil, nil
	}
	return ids, nil
}

