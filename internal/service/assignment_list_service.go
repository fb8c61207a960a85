package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pierojauregui/trilceperu-sub000/internal/client"
	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

// ResourceAssignments names the assignment list in load warnings.
const ResourceAssignments = "asignaciones"

// AssignmentListService builds the assignment list screen.
type AssignmentListService struct {
	client    assignmentClient
	reference referenceLoader
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssignmentListService constructs the list view service.
func NewAssignmentListService(c assignmentClient, reference referenceLoader, logger *zap.Logger) *AssignmentListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentListService{client: c, reference: reference, logger: logger, now: time.Now}
}

// Load fetches assignments and reference lists in parallel, derives the
// display fields and applies filter locally. A failed fetch yields an empty
// list and a warning.
func (s *AssignmentListService) Load(ctx context.Context, token string, filter models.AssignmentFilter) (*models.AssignmentListView, error) {
	if err := client.CheckToken(token, s.now()); err != nil {
		return nil, err
	}

	var (
		assignments   []models.Assignment
		assignmentErr error
		ref           models.ReferenceData
		refErr        error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		assignments, assignmentErr = s.client.ListAssignments(gctx, token, filter)
		return nil
	})
	g.Go(func() error {
		ref, refErr = s.reference.Load(gctx, token, ResourceTeachers, ResourceCourses, ResourceCategories, ResourceWeekdays)
		return nil
	})
	_ = g.Wait()

	if refErr != nil {
		return nil, refErr
	}
	if assignmentErr != nil {
		if client.IsAuth(assignmentErr) {
			return nil, assignmentErr
		}
		s.logger.Warn("assignment list unavailable", zap.Error(assignmentErr))
		ref.Warnings = append(ref.Warnings, models.ReferenceWarning{Resource: ResourceAssignments, Message: appErrors.FromError(assignmentErr).Message})
		assignments = nil
	}

	rows := make([]models.AssignmentRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, BuildAssignmentRow(a, ref))
	}
	rows = FilterAssignmentRows(rows, filter)

	return &models.AssignmentListView{
		Rows:      rows,
		Total:     len(rows),
		Filter:    filter,
		Reference: ref,
		Warnings:  ref.Warnings,
	}, nil
}

// Delete removes an assignment after explicit confirmation and reloads the
// list from the assignment service.
func (s *AssignmentListService) Delete(ctx context.Context, token string, id int64, confirmed bool, filter models.AssignmentFilter) (*models.AssignmentListView, error) {
	if !confirmed {
		return nil, appErrors.ErrConfirmationRequired
	}
	if err := client.CheckToken(token, s.now()); err != nil {
		return nil, err
	}
	if err := s.client.DeleteAssignment(ctx, token, id); err != nil {
		return nil, err
	}
	s.logger.Info("assignment deleted", zap.Int64("assignment_id", id))
	return s.Load(ctx, token, filter)
}

// BuildAssignmentRow resolves names and formats the schedule of a. Names
// reported by the assignment service win over the reference lists.
func BuildAssignmentRow(a models.Assignment, ref models.ReferenceData) models.AssignmentRow {
	row := models.AssignmentRow{
		ID:           a.ID,
		TeacherID:    a.TeacherID,
		TeacherName:  a.TeacherName,
		CourseID:     a.CourseID,
		CourseName:   a.CourseName,
		CategoryID:   a.CategoryID,
		Slots:        a.ScheduleSlots,
		Status:       a.Status,
		StatusLabel:  a.Status.Label(),
		StatusColor:  a.Status.BadgeColor(),
		Observations: a.Observations,
	}
	if row.Slots == nil {
		row.Slots = []models.ScheduleSlot{}
	}
	if row.Status == "" {
		row.Status = models.AssignmentStatusUnknown
	}
	if t, ok := ref.TeacherByID(a.TeacherID); ok && row.TeacherName == "" {
		row.TeacherName = t.FullName
	}
	if c, ok := ref.CourseByID(a.CourseID); ok {
		if row.CourseName == "" {
			row.CourseName = c.Name
		}
		if c.CategoryID != 0 {
			id := c.CategoryID
			row.CategoryID = &id
		}
		row.CategoryName = c.CategoryName
	}
	if row.CategoryID != nil {
		if cat, ok := ref.CategoryByID(*row.CategoryID); ok {
			row.CategoryName = cat.Name
		}
	}
	row.Schedule = FormatSchedule(row.Slots, ref)
	return row
}

// FormatSchedule renders slots as "Lunes 8:00 AM-10:00 AM, ...".
func FormatSchedule(slots []models.ScheduleSlot, ref models.ReferenceData) string {
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, formatSlot(slot, ref))
	}
	return strings.Join(parts, ", ")
}

func formatSlot(slot models.ScheduleSlot, ref models.ReferenceData) string {
	day, ok := ref.WeekdayName(slot.WeekdayID)
	if !ok {
		day = slot.WeekdayName
	}
	if day == "" {
		day = strconv.FormatInt(slot.WeekdayID, 10)
	}
	return day + " " + format12h(slot.StartTime) + "-" + format12h(slot.EndTime)
}

func format12h(raw string) string {
	c, err := models.ParseClock(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return c.Format12h()
}

// FilterAssignmentRows keeps the rows matching every set filter.
func FilterAssignmentRows(rows []models.AssignmentRow, filter models.AssignmentFilter) []models.AssignmentRow {
	if filter.IsZero() {
		return append([]models.AssignmentRow{}, rows...)
	}
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.AssignmentRow, 0, len(rows))
	for _, row := range rows {
		if needle != "" &&
			!strings.Contains(strings.ToLower(row.TeacherName), needle) &&
			!strings.Contains(strings.ToLower(row.CourseName), needle) {
			continue
		}
		if filter.TeacherID != nil && row.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.CategoryID != nil && (row.CategoryID == nil || *row.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.CourseID != nil && row.CourseID != *filter.CourseID {
			continue
		}
		out = append(out, row)
	}
	return out
}
