package models

import (
	"strconv"
	"strings"
)

// SlotInput is one schedule row as typed in the form. Empty fields mean the
// row is still being filled in.
type SlotInput struct {
	WeekdayID FieldID `json:"dia_semana_id"`
	StartTime string  `json:"hora_inicio"`
	EndTime   string  `json:"hora_fin"`
}

// Complete reports whether all three fields are set.
func (s SlotInput) Complete() bool {
	return s.WeekdayID.IsSet() &&
		strings.TrimSpace(s.StartTime) != "" &&
		strings.TrimSpace(s.EndTime) != ""
}

// AssignmentCandidate is the input of the assignment validator.
type AssignmentCandidate struct {
	TeacherID FieldID     `json:"profesor_id"`
	CourseID  FieldID     `json:"curso_id"`
	Slots     []SlotInput `json:"horarios"`
}

// CompleteSlots returns the complete rows and, for each, its index in Slots.
func (c AssignmentCandidate) CompleteSlots() ([]SlotInput, []int) {
	slots := make([]SlotInput, 0, len(c.Slots))
	rows := make([]int, 0, len(c.Slots))
	for i, s := range c.Slots {
		if s.Complete() {
			slots = append(slots, s)
			rows = append(rows, i)
		}
	}
	return slots, rows
}

// ValidationResult holds field-level messages keyed like the form fields:
// profesorId, cursoId, horarios and horario_<i> where i indexes the
// complete slots.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Validation message keys.
const (
	FieldTeacher    = "profesorId"
	FieldCourse     = "cursoId"
	FieldSlots      = "horarios"
	SlotErrorPrefix = "horario_"
)

// SlotErrorKey returns the key for the i-th complete slot.
func SlotErrorKey(i int) string {
	return SlotErrorPrefix + strconv.Itoa(i)
}
