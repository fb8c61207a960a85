package service

import (
	"strconv"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
)

// Messages shown next to the offending form field.
const (
	MsgTeacherRequired = "Debe seleccionar un profesor"
	MsgCourseRequired  = "Debe seleccionar un curso"
	MsgSlotRequired    = "Debe agregar al menos un horario"
	MsgSlotOrder       = "hora fin debe ser posterior a hora inicio"
	MsgSlotDuplicate   = "no puede haber horarios duplicados"
	MsgSlotFormat      = "formato de hora invalido"
)

// AssignmentRules are the deployment-wide assignment rules. They apply to
// the create and edit workflows alike.
type AssignmentRules struct {
	RequireSlot bool
}

// ValidateAssignment checks a candidate assignment. Every rule runs; the
// messages accumulate and a later rule overwrites an earlier message for the
// same slot. Incomplete slot rows are ignored.
func ValidateAssignment(candidate models.AssignmentCandidate, rules AssignmentRules) models.ValidationResult {
	errs := make(map[string]string)

	if !candidate.TeacherID.IsSet() {
		errs[models.FieldTeacher] = MsgTeacherRequired
	}
	if !candidate.CourseID.IsSet() {
		errs[models.FieldCourse] = MsgCourseRequired
	}

	slots, _ := candidate.CompleteSlots()
	if rules.RequireSlot && len(slots) == 0 {
		errs[models.FieldSlots] = MsgSlotRequired
	}

	for i, slot := range slots {
		start, startErr := models.ParseClock(slot.StartTime)
		end, endErr := models.ParseClock(slot.EndTime)
		if startErr != nil || endErr != nil {
			errs[models.SlotErrorKey(i)] = MsgSlotFormat
			continue
		}
		if start >= end {
			errs[models.SlotErrorKey(i)] = MsgSlotOrder
		}
	}

	seen := make(map[string]struct{}, len(slots))
	for i, slot := range slots {
		key := models.SlotKey(weekdayKey(slot.WeekdayID), slot.StartTime, slot.EndTime)
		if _, dup := seen[key]; dup {
			errs[models.SlotErrorKey(i)] = MsgSlotDuplicate
			continue
		}
		seen[key] = struct{}{}
	}

	return models.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// weekdayKey collapses numeric spellings of the same weekday id.
func weekdayKey(id models.FieldID) string {
	if n, ok := id.Int(); ok {
		return strconv.FormatInt(n, 10)
	}
	return string(id)
}
