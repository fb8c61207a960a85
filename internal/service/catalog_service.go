package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

// CatalogService serves the reference lists of the persistence API.
type CatalogService struct {
	repo    catalogStore
	metrics storeMetrics
	logger  *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(repo catalogStore, metrics storeMetrics, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, metrics: metrics, logger: logger}
}

// ListTeachers returns the teachers available for assignment.
func (s *CatalogService) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	return catalogList(s, ctx, "catalog_teachers", "failed to list teachers", s.repo.ListTeachers)
}

// ListCourses returns courses, filtered by category when given.
func (s *CatalogService) ListCourses(ctx context.Context, categoryID *int64) ([]models.Course, error) {
	return catalogList(s, ctx, "catalog_courses", "failed to list courses", func(ctx context.Context) ([]models.Course, error) {
		return s.repo.ListCourses(ctx, categoryID)
	})
}

// ListCategories returns course categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return catalogList(s, ctx, "catalog_categories", "failed to list categories", s.repo.ListCategories)
}

// ListWeekdays returns the weekday enumeration.
func (s *CatalogService) ListWeekdays(ctx context.Context) ([]models.Weekday, error) {
	return catalogList(s, ctx, "catalog_weekdays", "failed to list weekdays", s.repo.ListWeekdays)
}

// ListTimeBlocks returns the selectable time blocks.
func (s *CatalogService) ListTimeBlocks(ctx context.Context) ([]models.TimeBlock, error) {
	return catalogList(s, ctx, "catalog_time_blocks", "failed to list time blocks", s.repo.ListTimeBlocks)
}

func catalogList[T any](s *CatalogService, ctx context.Context, label, message string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	start := time.Now()
	items, err := fetch(ctx)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
	if err != nil {
		s.logger.Error(message, zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
