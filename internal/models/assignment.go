package models

import (
	"strings"
	"time"
)

// AssignmentStatus is reported by the assignment store; the dashboard never
// derives it.
type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "activo"
	AssignmentStatusScheduled AssignmentStatus = "programado"
	AssignmentStatusFinished  AssignmentStatus = "finalizado"
	AssignmentStatusCancelled AssignmentStatus = "cancelado"
	AssignmentStatusUnknown   AssignmentStatus = "desconocido"
)

// ParseAssignmentStatus accepts the Spanish wire values and their English
// equivalents, case-insensitively.
func ParseAssignmentStatus(raw string) AssignmentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "activo", "activa", "active":
		return AssignmentStatusActive
	case "programado", "programada", "scheduled":
		return AssignmentStatusScheduled
	case "finalizado", "finalizada", "finished":
		return AssignmentStatusFinished
	case "cancelado", "cancelada", "cancelled", "canceled":
		return AssignmentStatusCancelled
	default:
		return AssignmentStatusUnknown
	}
}

// Label returns the badge text shown in the list view.
func (s AssignmentStatus) Label() string {
	switch s {
	case AssignmentStatusActive:
		return "Activo"
	case AssignmentStatusScheduled:
		return "Programado"
	case AssignmentStatusFinished:
		return "Finalizado"
	case AssignmentStatusCancelled:
		return "Cancelado"
	default:
		return "Desconocido"
	}
}

// BadgeColor maps the status to the list view badge colour.
func (s AssignmentStatus) BadgeColor() string {
	switch s {
	case AssignmentStatusActive:
		return "green"
	case AssignmentStatusScheduled:
		return "orange"
	case AssignmentStatusFinished:
		return "gray"
	case AssignmentStatusCancelled:
		return "red"
	default:
		return "blue"
	}
}

// Assignment binds one teacher to one course with a set of weekly slots.
type Assignment struct {
	ID            int64            `db:"id" json:"id"`
	TeacherID     int64            `db:"profesor_id" json:"profesor_id"`
	CourseID      int64            `db:"curso_id" json:"curso_id"`
	Status        AssignmentStatus `db:"estado" json:"estado"`
	Observations  *string          `db:"observaciones" json:"observaciones,omitempty"`
	TeacherName   string           `db:"profesor_nombre" json:"profesor_nombre,omitempty"`
	CourseName    string           `db:"curso_nombre" json:"curso_nombre,omitempty"`
	CategoryID    *int64           `db:"categoria_id" json:"categoria_id,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
	ScheduleSlots []ScheduleSlot   `db:"-" json:"horarios"`
}

// AssignmentWrite is the canonical payload for create and update. Weekdays
// travel as ids; names are only resolved for display.
type AssignmentWrite struct {
	TeacherID    int64          `json:"profesor_id"`
	CourseID     int64          `json:"curso_id"`
	Slots        []ScheduleSlot `json:"horarios"`
	Observations *string        `json:"observaciones,omitempty"`
}

// AssignmentFilter captures the advisory list filters.
type AssignmentFilter struct {
	Search     string
	TeacherID  *int64
	CourseID   *int64
	CategoryID *int64
}

// IsZero reports whether no filter is set.
func (f AssignmentFilter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && f.TeacherID == nil && f.CourseID == nil && f.CategoryID == nil
}
