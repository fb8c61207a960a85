package models

// AssignmentRow is one assignment prepared for the list table.
type AssignmentRow struct {
	ID           int64            `json:"id"`
	TeacherID    int64            `json:"profesor_id"`
	TeacherName  string           `json:"profesor_nombre"`
	CourseID     int64            `json:"curso_id"`
	CourseName   string           `json:"curso_nombre"`
	CategoryID   *int64           `json:"categoria_id,omitempty"`
	CategoryName string           `json:"categoria_nombre,omitempty"`
	Schedule     string           `json:"horario"`
	Slots        []ScheduleSlot   `json:"horarios"`
	Status       AssignmentStatus `json:"estado"`
	StatusLabel  string           `json:"estado_label"`
	StatusColor  string           `json:"estado_color"`
	Observations *string          `json:"observaciones,omitempty"`
}

// AssignmentListView is the list screen: filtered rows plus the lookup lists
// that populate the filter dropdowns.
type AssignmentListView struct {
	Rows      []AssignmentRow    `json:"asignaciones"`
	Total     int                `json:"total"`
	Filter    AssignmentFilter   `json:"-"`
	Reference ReferenceData      `json:"reference"`
	Warnings  []ReferenceWarning `json:"warnings,omitempty"`
}
