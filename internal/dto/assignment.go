package dto

import (
	"strings"
	"time"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
)

// ScheduleSlotDTO is a slot as returned by the assignment service.
type ScheduleSlotDTO struct {
	ID          models.FieldID `json:"id"`
	DiaSemanaID models.FieldID `json:"dia_semana_id"`
	IDDia       models.FieldID `json:"id_dia"`
	DiaSemana   string         `json:"dia_semana"`
	HoraInicio  string         `json:"hora_inicio"`
	HoraFin     string         `json:"hora_fin"`
}

// AssignmentDTO is an assignment as returned by the assignment service.
type AssignmentDTO struct {
	ID             models.FieldID    `json:"id"`
	IDAsignacion   models.FieldID    `json:"id_asignacion"`
	ProfesorID     models.FieldID    `json:"profesor_id"`
	IDProfesor     models.FieldID    `json:"id_profesor"`
	CursoID        models.FieldID    `json:"curso_id"`
	IDCurso        models.FieldID    `json:"id_curso"`
	CategoriaID    models.FieldID    `json:"categoria_id"`
	Estado         string            `json:"estado"`
	Observaciones  *string           `json:"observaciones"`
	ProfesorNombre string            `json:"profesor_nombre"`
	CursoNombre    string            `json:"curso_nombre"`
	Horarios       []ScheduleSlotDTO `json:"horarios"`
	CreatedAt      *time.Time        `json:"created_at"`
	UpdatedAt      *time.Time        `json:"updated_at"`
}

// ToModel maps the DTO onto the canonical assignment.
func (d AssignmentDTO) ToModel() models.Assignment {
	a := models.Assignment{
		ID:           firstID(d.ID, d.IDAsignacion),
		TeacherID:    firstID(d.ProfesorID, d.IDProfesor),
		CourseID:     firstID(d.CursoID, d.IDCurso),
		CategoryID:   d.CategoriaID.Ptr(),
		Status:       models.ParseAssignmentStatus(d.Estado),
		Observations: d.Observaciones,
		TeacherName:  strings.TrimSpace(d.ProfesorNombre),
		CourseName:   strings.TrimSpace(d.CursoNombre),
	}
	if d.CreatedAt != nil {
		a.CreatedAt = *d.CreatedAt
	}
	if d.UpdatedAt != nil {
		a.UpdatedAt = *d.UpdatedAt
	}
	a.ScheduleSlots = make([]models.ScheduleSlot, 0, len(d.Horarios))
	for _, h := range d.Horarios {
		a.ScheduleSlots = append(a.ScheduleSlots, models.ScheduleSlot{
			ID:           firstID(h.ID),
			AssignmentID: a.ID,
			WeekdayID:    firstID(h.DiaSemanaID, h.IDDia),
			WeekdayName:  strings.TrimSpace(h.DiaSemana),
			StartTime:    normalizeClock(h.HoraInicio),
			EndTime:      normalizeClock(h.HoraFin),
		})
	}
	return a
}

// ScheduleSlotRequest is a slot in a write request. DiaSemana is the
// legacy weekday-name spelling and is resolved to an id by the service.
type ScheduleSlotRequest struct {
	DiaSemanaID *int64 `json:"dia_semana_id" validate:"omitempty,gt=0"`
	DiaSemana   string `json:"dia_semana" validate:"required_without=DiaSemanaID"`
	HoraInicio  string `json:"hora_inicio" validate:"required"`
	HoraFin     string `json:"hora_fin" validate:"required"`
}

// AssignmentWriteRequest is the body of POST and PUT /asignaciones. The
// id_profesor/id_curso spellings are the legacy create contract.
type AssignmentWriteRequest struct {
	ProfesorID    int64                 `json:"profesor_id" validate:"omitempty,gt=0"`
	IDProfesor    int64                 `json:"id_profesor" validate:"omitempty,gt=0"`
	CursoID       int64                 `json:"curso_id" validate:"omitempty,gt=0"`
	IDCurso       int64                 `json:"id_curso" validate:"omitempty,gt=0"`
	Horarios      []ScheduleSlotRequest `json:"horarios" validate:"dive"`
	Observaciones *string               `json:"observaciones" validate:"omitempty,max=2000"`
}

// TeacherID returns the teacher id under either spelling.
func (r AssignmentWriteRequest) TeacherID() int64 {
	if r.ProfesorID != 0 {
		return r.ProfesorID
	}
	return r.IDProfesor
}

// CourseID returns the course id under either spelling.
func (r AssignmentWriteRequest) CourseID() int64 {
	if r.CursoID != 0 {
		return r.CursoID
	}
	return r.IDCurso
}

// AssignmentListQuery binds the advisory list filters.
type AssignmentListQuery struct {
	Search      string `form:"q"`
	ProfesorID  int64  `form:"profesor_id" validate:"omitempty,gt=0"`
	CursoID     int64  `form:"curso_id" validate:"omitempty,gt=0"`
	CategoriaID int64  `form:"categoria_id" validate:"omitempty,gt=0"`
}

// Filter converts the query into a model filter.
func (q AssignmentListQuery) Filter() models.AssignmentFilter {
	f := models.AssignmentFilter{Search: strings.TrimSpace(q.Search)}
	if q.ProfesorID > 0 {
		id := q.ProfesorID
		f.TeacherID = &id
	}
	if q.CursoID > 0 {
		id := q.CursoID
		f.CourseID = &id
	}
	if q.CategoriaID > 0 {
		id := q.CategoriaID
		f.CategoryID = &id
	}
	return f
}
