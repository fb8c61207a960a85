package dto

import (
	"strings"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
)

// TeacherDTO accepts both the current and the legacy teacher shapes.
type TeacherDTO struct {
	ID                  models.FieldID `json:"id"`
	IDProfesor          models.FieldID `json:"id_profesor"`
	Nombre              string         `json:"nombre"`
	Apellido            string         `json:"apellido"`
	NombreCompleto      string         `json:"nombre_completo"`
	Email               string         `json:"email"`
	Especialidad        *string        `json:"especialidad"`
	Telefono            *string        `json:"telefono"`
	ImagenPerfil        *string        `json:"imagen_perfil"`
	AsignacionesActivas int            `json:"asignaciones_activas"`
}

// ToModel maps the DTO onto the canonical teacher.
func (d TeacherDTO) ToModel() models.Teacher {
	name := strings.TrimSpace(d.NombreCompleto)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(d.Nombre) + " " + strings.TrimSpace(d.Apellido))
	}
	return models.Teacher{
		ID:                firstID(d.ID, d.IDProfesor),
		FullName:          name,
		Email:             d.Email,
		Specialty:         d.Especialidad,
		Phone:             d.Telefono,
		ProfileImage:      d.ImagenPerfil,
		ActiveAssignments: d.AsignacionesActivas,
	}
}

// CourseDTO accepts both the /cursos and the /courses/admin shapes.
type CourseDTO struct {
	ID              models.FieldID `json:"id"`
	IDCurso         models.FieldID `json:"id_curso"`
	Nombre          string         `json:"nombre"`
	NombreCurso     string         `json:"nombre_curso"`
	CategoriaID     models.FieldID `json:"categoria_id"`
	IDCategoria     models.FieldID `json:"id_categoria"`
	CategoriaNombre string         `json:"categoria_nombre"`
	Categoria       string         `json:"categoria"`
	DuracionHoras   int            `json:"duracion_horas"`
	Duracion        int            `json:"duracion"`
	Modalidad       string         `json:"modalidad"`
}

// ToModel maps the DTO onto the canonical course.
func (d CourseDTO) ToModel() models.Course {
	duration := d.DuracionHoras
	if duration == 0 {
		duration = d.Duracion
	}
	return models.Course{
		ID:            firstID(d.ID, d.IDCurso),
		Name:          firstString(d.Nombre, d.NombreCurso),
		CategoryID:    firstID(d.CategoriaID, d.IDCategoria),
		CategoryName:  firstString(d.CategoriaNombre, d.Categoria),
		DurationHours: duration,
		Modality:      models.ParseCourseModality(d.Modalidad),
	}
}

// CategoryDTO is a course category.
type CategoryDTO struct {
	ID          models.FieldID `json:"id"`
	IDCategoria models.FieldID `json:"id_categoria"`
	Nombre      string         `json:"nombre"`
	Descripcion string         `json:"descripcion"`
}

// ToModel maps the DTO onto the canonical category.
func (d CategoryDTO) ToModel() models.Category {
	return models.Category{
		ID:   firstID(d.ID, d.IDCategoria),
		Name: firstString(d.Nombre, d.Descripcion),
	}
}

// WeekdayDTO is an entry of the weekday enumeration.
type WeekdayDTO struct {
	ID     models.FieldID `json:"id"`
	IDDia  models.FieldID `json:"id_dia"`
	Nombre string         `json:"nombre"`
	Dia    string         `json:"dia"`
}

// ToModel maps the DTO onto the canonical weekday.
func (d WeekdayDTO) ToModel() models.Weekday {
	return models.Weekday{
		ID:   firstID(d.ID, d.IDDia),
		Name: firstString(d.Nombre, d.Dia),
	}
}

// TimeBlockDTO is an entry of the time-block enumeration.
type TimeBlockDTO struct {
	ID         models.FieldID `json:"id"`
	HoraInicio string         `json:"hora_inicio"`
	HoraFin    string         `json:"hora_fin"`
	Etiqueta   string         `json:"etiqueta"`
}

// ToModel maps the DTO onto the canonical time block.
func (d TimeBlockDTO) ToModel() models.TimeBlock {
	start := normalizeClock(d.HoraInicio)
	end := normalizeClock(d.HoraFin)
	label := d.Etiqueta
	if label == "" && start != "" && end != "" {
		label = start + " - " + end
	}
	return models.TimeBlock{
		ID:        firstID(d.ID),
		StartTime: start,
		EndTime:   end,
		Label:     label,
	}
}

func firstID(ids ...models.FieldID) int64 {
	for _, id := range ids {
		if v, ok := id.Int(); ok {
			return v
		}
	}
	return 0
}

func firstString(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func normalizeClock(raw string) string {
	if c, err := models.ParseClock(raw); err == nil {
		return c.String()
	}
	return strings.TrimSpace(raw)
}
