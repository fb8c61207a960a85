package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pierojauregui/trilceperu-sub000/internal/client"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

// FormSessionStore keeps draft forms between requests.
type FormSessionStore interface {
	Save(ctx context.Context, form *models.AssignmentForm, ttl time.Duration) error
	Load(ctx context.Context, id string) (*models.AssignmentForm, error)
	Delete(ctx context.Context, id string) error
	AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, id string) error
}

type assignmentClient interface {
	ListAssignments(ctx context.Context, token string, filter models.AssignmentFilter) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, token string, id int64) (*models.Assignment, error)
	CreateAssignment(ctx context.Context, token string, write models.AssignmentWrite) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, token string, id int64, write models.AssignmentWrite) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, token string, id int64) error
}

type referenceLoader interface {
	Load(ctx context.Context, token string, resources ...string) (models.ReferenceData, error)
}

type formMetrics interface {
	RecordValidationFailure(field string)
	RecordFormSubmit(mode, outcome string)
	RecordSessionLookup(hit bool)
}

// FormConfig tunes form sessions.
type FormConfig struct {
	SessionTTL    time.Duration
	SubmitLockTTL time.Duration
	Rules         AssignmentRules
}

// AssignmentFormService drives the create and edit workflows. Form state is
// only mutated locally until Submit, which is the single network write.
type AssignmentFormService struct {
	client    assignmentClient
	reference referenceLoader
	store     FormSessionStore
	metrics   formMetrics
	logger    *zap.Logger
	config    FormConfig
	now       func() time.Time
}

// NewAssignmentFormService constructs the form controller.
func NewAssignmentFormService(c assignmentClient, reference referenceLoader, store FormSessionStore, metrics formMetrics, logger *zap.Logger, config FormConfig) *AssignmentFormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 2 * time.Hour
	}
	if config.SubmitLockTTL <= 0 {
		config.SubmitLockTTL = 30 * time.Second
	}
	return &AssignmentFormService{
		client:    c,
		reference: reference,
		store:     store,
		metrics:   metrics,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Open starts a form. assignmentID selects edit mode; the stored assignment
// is loaded together with the reference lists and the category is inferred
// from its course.
func (s *AssignmentFormService) Open(ctx context.Context, token string, assignmentID *int64) (*models.AssignmentForm, error) {
	if err := client.CheckToken(token, s.now()); err != nil {
		return nil, err
	}

	mode := models.FormModeCreate
	if assignmentID != nil {
		if *assignmentID <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid assignment id")
		}
		mode = models.FormModeEdit
	}
	form := models.NewAssignmentForm(uuid.NewString(), mode)

	ref, err := s.reference.Load(ctx, token, ResourceTeachers, ResourceCourses, ResourceCategories, ResourceWeekdays, ResourceTimeBlocks)
	if err != nil {
		return nil, err
	}
	form.Reference = ref

	if mode == models.FormModeEdit {
		existing, err := s.client.GetAssignment(ctx, token, *assignmentID)
		if err != nil {
			return nil, err
		}
		form.LoadAssignment(*existing)
	}

	form.Phase = models.FormPhaseReady
	form.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, form, s.config.SessionTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store form")
	}
	s.logger.Debug("assignment form opened", zap.String("form_id", form.ID), zap.String("mode", string(mode)))
	return form, nil
}

// Get returns the current state of a form.
func (s *AssignmentFormService) Get(ctx context.Context, id string) (*models.AssignmentForm, error) {
	form, err := s.store.Load(ctx, id)
	s.recordLookup(err)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return form, nil
}

// Apply performs local edits. No network call is made.
func (s *AssignmentFormService) Apply(ctx context.Context, id string, edit models.FormEdit) (*models.AssignmentForm, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.Editable() {
		return nil, appErrors.Clone(appErrors.ErrSubmitInProgress, "the form is being submitted")
	}
	form.Apply(edit)
	form.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, form, s.config.SessionTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store form")
	}
	return form, nil
}

// Validate runs the assignment rules on a candidate without touching any
// form.
func (s *AssignmentFormService) Validate(candidate models.AssignmentCandidate) models.ValidationResult {
	return ValidateAssignment(candidate, s.config.Rules)
}

// Submit validates the form and, when valid, sends it to the assignment
// service. Validation failures return the form to ready with field errors
// and no network call. Server failures leave every entered value in place.
func (s *AssignmentFormService) Submit(ctx context.Context, token string, id string) (*models.AssignmentForm, error) {
	if err := client.CheckToken(token, s.now()); err != nil {
		return nil, err
	}

	acquired, err := s.store.AcquireSubmitLock(ctx, id, s.config.SubmitLockTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock form")
	}
	if !acquired {
		return nil, appErrors.ErrSubmitInProgress
	}
	defer func() {
		if err := s.store.ReleaseSubmitLock(context.Background(), id); err != nil {
			s.logger.Warn("failed to release submit lock", zap.String("form_id", id), zap.Error(err))
		}
	}()

	form, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.Editable() {
		return nil, appErrors.ErrSubmitInProgress
	}

	form.Phase = models.FormPhaseValidating
	candidate := form.Candidate()
	result := s.Validate(candidate)
	_, rows := candidate.CompleteSlots()
	form.ApplyValidation(result, rows)
	form.Failure = nil
	if !result.Valid {
		for field := range result.Errors {
			s.recordValidationFailure(field)
		}
		form.Phase = models.FormPhaseReady
		s.recordSubmit(form.Mode, "invalid")
		return s.persist(ctx, form)
	}

	write, err := s.buildWrite(form)
	if err != nil {
		form.Phase = models.FormPhaseReady
		return s.persist(ctx, form)
	}

	form.Phase = models.FormPhaseSubmitting
	if _, err := s.persist(ctx, form); err != nil {
		return nil, err
	}

	var saved *models.Assignment
	if form.Mode == models.FormModeEdit {
		saved, err = s.client.UpdateAssignment(ctx, token, form.AssignmentID, write)
	} else {
		saved, err = s.client.CreateAssignment(ctx, token, write)
	}

	current, loadErr := s.store.Load(context.Background(), id)
	if loadErr != nil {
		s.logger.Info("form discarded during submit, result ignored", zap.String("form_id", id), zap.Bool("submit_failed", err != nil), zap.Error(loadErr))
		return nil, s.mapStoreErr(loadErr)
	}
	form = current

	if err != nil {
		form.Phase = models.FormPhaseReady
		form.Failure = submitFailure(err)
		s.recordSubmit(form.Mode, "failed")
		s.logger.Warn("assignment submit failed", zap.String("form_id", id), zap.String("mode", string(form.Mode)), zap.Error(err))
		return s.persist(context.Background(), form)
	}

	form.Phase = models.FormPhaseSuccess
	form.Result = saved
	if form.Mode == models.FormModeCreate {
		form.Reset()
	} else if saved != nil && saved.ID != 0 {
		form.AssignmentID = saved.ID
	}
	s.recordSubmit(form.Mode, "success")
	s.logger.Info("assignment saved", zap.String("form_id", id), zap.String("mode", string(form.Mode)), zap.Int64("assignment_id", resultID(saved)))
	return s.persist(context.Background(), form)
}

// Discard drops a form. A submission still in flight completes but its
// result is ignored.
func (s *AssignmentFormService) Discard(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.mapStoreErr(err)
	}
	return nil
}

// buildWrite maps the validated form onto the canonical write payload:
// weekday ids, HH:MM:SS times and only complete rows.
func (s *AssignmentFormService) buildWrite(form *models.AssignmentForm) (models.AssignmentWrite, error) {
	teacherID, ok := form.TeacherID.Int()
	if !ok {
		form.FieldErrors = map[string]string{models.FieldTeacher: MsgTeacherRequired}
		return models.AssignmentWrite{}, appErrors.ErrValidation
	}
	courseID, ok := form.CourseID.Int()
	if !ok {
		form.FieldErrors = map[string]string{models.FieldCourse: MsgCourseRequired}
		return models.AssignmentWrite{}, appErrors.ErrValidation
	}

	complete, rows := form.Candidate().CompleteSlots()
	write := models.AssignmentWrite{
		TeacherID: teacherID,
		CourseID:  courseID,
		Slots:     make([]models.ScheduleSlot, 0, len(complete)),
	}
	for i, slot := range complete {
		weekdayID, ok := slot.WeekdayID.Int()
		if !ok {
			form.ApplyValidation(models.ValidationResult{Errors: map[string]string{models.SlotErrorKey(i): MsgSlotFormat}}, rows)
			return models.AssignmentWrite{}, appErrors.ErrValidation
		}
		start, _ := models.ParseClock(slot.StartTime)
		end, _ := models.ParseClock(slot.EndTime)
		name, _ := form.Reference.WeekdayName(weekdayID)
		write.Slots = append(write.Slots, models.ScheduleSlot{
			WeekdayID:   weekdayID,
			WeekdayName: name,
			StartTime:   start.WireString(),
			EndTime:     end.WireString(),
		})
	}
	if obs := strings.TrimSpace(form.Observations); obs != "" {
		write.Observations = &obs
	}
	return write, nil
}

func (s *AssignmentFormService) persist(ctx context.Context, form *models.AssignmentForm) (*models.AssignmentForm, error) {
	form.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, form, s.config.SessionTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store form")
	}
	return form, nil
}

func (s *AssignmentFormService) mapStoreErr(err error) error {
	if errors.Is(err, appErrors.ErrCacheMiss) || errors.Is(err, appErrors.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "form not found or expired")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load form")
}

func (s *AssignmentFormService) recordLookup(err error) {
	if s.metrics != nil {
		s.metrics.RecordSessionLookup(err == nil)
	}
}

func (s *AssignmentFormService) recordValidationFailure(field string) {
	if s.metrics == nil {
		return
	}
	if strings.HasPrefix(field, models.SlotErrorPrefix) {
		field = models.SlotErrorPrefix + "i"
	}
	s.metrics.RecordValidationFailure(field)
}

func (s *AssignmentFormService) recordSubmit(mode models.FormMode, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordFormSubmit(string(mode), outcome)
	}
}

// submitFailure builds the message shown after a rejected submission:
// structured detail lines first, then the service message, then the HTTP
// status text.
func submitFailure(err error) *models.SubmitFailure {
	appErr := appErrors.FromError(err)
	failure := &models.SubmitFailure{Code: appErr.Code}
	if len(appErr.Details) > 0 {
		failure.Lines = appErrors.FlattenDetails(appErr.Details)
		failure.Message = strings.Join(failure.Lines, "\n")
		return failure
	}
	failure.Message = appErr.Message
	if failure.Message == "" {
		failure.Message = http.StatusText(appErr.Status)
	}
	return failure
}

func resultID(a *models.Assignment) int64 {
	if a == nil {
		return 0
	}
	return a.ID
}
