package models

import "strings"

// CourseModality tells whether a course is taught live or pre-recorded.
type CourseModality string

const (
	ModalitySync  CourseModality = "sincrono"
	ModalityAsync CourseModality = "asincrono"
)

// ParseCourseModality normalises accents and casing.
func ParseCourseModality(raw string) CourseModality {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer("í", "i", "ó", "o").Replace(v)
	switch v {
	case "asincrono", "async", "asynchronous":
		return ModalityAsync
	case "sincrono", "sync", "synchronous":
		return ModalitySync
	default:
		return CourseModality(v)
	}
}

// SlotsExpected is a UI hint only; validation does not enforce it.
func (m CourseModality) SlotsExpected() bool {
	return m == ModalitySync
}

// Course is read-only reference data.
type Course struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"nombre" json:"nombre"`
	CategoryID    int64          `db:"categoria_id" json:"categoria_id"`
	CategoryName  string         `db:"categoria_nombre" json:"categoria_nombre"`
	DurationHours int            `db:"duracion_horas" json:"duracion_horas"`
	Modality      CourseModality `db:"modalidad" json:"modalidad"`
}

// Category groups courses; it only filters course options.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"nombre" json:"nombre"`
}

// Weekday is one entry of the fixed Monday..Sunday enumeration.
type Weekday struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"nombre" json:"nombre"`
}

// TimeBlock is a selectable start/end pair offered by the schedule editor.
type TimeBlock struct {
	ID        int64  `db:"id" json:"id"`
	StartTime string `db:"hora_inicio" json:"hora_inicio"`
	EndTime   string `db:"hora_fin" json:"hora_fin"`
	Label     string `db:"etiqueta" json:"etiqueta"`
}
