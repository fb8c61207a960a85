package models

// Teacher is read-only reference data for the assignment screens.
type Teacher struct {
	ID                int64   `db:"id" json:"id"`
	FullName          string  `db:"nombre" json:"nombre"`
	Email             string  `db:"email" json:"email"`
	Specialty         *string `db:"especialidad" json:"especialidad,omitempty"`
	Phone             *string `db:"telefono" json:"telefono,omitempty"`
	ProfileImage      *string `db:"imagen_perfil" json:"imagen_perfil,omitempty"`
	ActiveAssignments int     `db:"asignaciones_activas" json:"asignaciones_activas"`
}
