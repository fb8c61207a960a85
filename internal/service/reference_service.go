package service

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

// Reference resources a screen can ask for.
const (
	ResourceTeachers   = "profesores"
	ResourceCourses    = "cursos"
	ResourceCategories = "categorias"
	ResourceWeekdays   = "dias_semana"
	ResourceTimeBlocks = "bloques_horarios"
)

type referenceClient interface {
	ListTeachers(ctx context.Context, token string) ([]models.Teacher, error)
	ListCourses(ctx context.Context, token string, categoryID *int64) ([]models.Course, error)
	ListCategories(ctx context.Context, token string) ([]models.Category, error)
	ListWeekdays(ctx context.Context, token string) ([]models.Weekday, error)
	ListTimeBlocks(ctx context.Context, token string) ([]models.TimeBlock, error)
	CoursesServerFilter() bool
}

// ReferenceService fetches the lookup lists used by the assignment screens.
// Nothing is cached; every call reflects the assignment service.
type ReferenceService struct {
	client referenceClient
	logger *zap.Logger
}

// NewReferenceService constructs the reference data gateway.
func NewReferenceService(client referenceClient, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{client: client, logger: logger}
}

// ListTeachers returns the teachers available for assignment.
func (s *ReferenceService) ListTeachers(ctx context.Context, token string) ([]models.Teacher, error) {
	return s.client.ListTeachers(ctx, token)
}

// ListCourses returns the courses, restricted to categoryID when given. The
// restriction is applied locally when the endpoint does not filter.
func (s *ReferenceService) ListCourses(ctx context.Context, token string, categoryID *int64) ([]models.Course, error) {
	var query *int64
	if s.client.CoursesServerFilter() {
		query = categoryID
	}
	courses, err := s.client.ListCourses(ctx, token, query)
	if err != nil {
		return nil, err
	}
	return models.ReferenceData{Courses: courses}.CoursesInCategory(categoryID), nil
}

// ListCategories returns the course categories.
func (s *ReferenceService) ListCategories(ctx context.Context, token string) ([]models.Category, error) {
	return s.client.ListCategories(ctx, token)
}

// ListWeekdays returns the weekday enumeration.
func (s *ReferenceService) ListWeekdays(ctx context.Context, token string) ([]models.Weekday, error) {
	return s.client.ListWeekdays(ctx, token)
}

// ListTimeBlocks returns the selectable time blocks.
func (s *ReferenceService) ListTimeBlocks(ctx context.Context, token string) ([]models.TimeBlock, error) {
	return s.client.ListTimeBlocks(ctx, token)
}

// Load fetches the requested lists concurrently. A failed list is replaced
// by an empty one and reported as a warning; only an authentication failure
// aborts the whole load.
func (s *ReferenceService) Load(ctx context.Context, token string, resources ...string) (models.ReferenceData, error) {
	data := models.ReferenceData{
		Teachers:   []models.Teacher{},
		Courses:    []models.Course{},
		Categories: []models.Category{},
		Weekdays:   []models.Weekday{},
		TimeBlocks: []models.TimeBlock{},
	}

	var (
		mu      sync.Mutex
		authErr error
	)
	fail := func(resource string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if appErrors.FromError(err).Code == appErrors.ErrUnauthorized.Code {
			authErr = err
			return
		}
		s.logger.Warn("reference list unavailable", zap.String("resource", resource), zap.Error(err))
		data.Warnings = append(data.Warnings, models.ReferenceWarning{Resource: resource, Message: appErrors.FromError(err).Message})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, resource := range resources {
		resource := resource
		g.Go(func() error {
			switch resource {
			case ResourceTeachers:
				items, err := s.ListTeachers(gctx, token)
				if err != nil {
					fail(resource, err)
					return nil
				}
				mu.Lock()
				data.Teachers = items
				mu.Unlock()
			case ResourceCourses:
				items, err := s.ListCourses(gctx, token, nil)
				if err != nil {
					fail(resource, err)
					return nil
				}
				mu.Lock()
				data.Courses = items
				mu.Unlock()
			case ResourceCategories:
				items, err := s.ListCategories(gctx, token)
				if err != nil {
					fail(resource, err)
					return nil
				}
				mu.Lock()
				data.Categories = items
				mu.Unlock()
			case ResourceWeekdays:
				items, err := s.ListWeekdays(gctx, token)
				if err != nil {
					fail(resource, err)
					return nil
				}
				mu.Lock()
				data.Weekdays = items
				mu.Unlock()
			case ResourceTimeBlocks:
				items, err := s.ListTimeBlocks(gctx, token)
				if err != nil {
					fail(resource, err)
					return nil
				}
				mu.Lock()
				data.TimeBlocks = items
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if authErr != nil {
		return models.ReferenceData{}, authErr
	}
	sort.Slice(data.Warnings, func(i, j int) bool {
		return data.Warnings[i].Resource < data.Warnings[j].Resource
	})
	return data, nil
}
