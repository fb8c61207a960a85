package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
)

// CatalogRepository reads the reference tables the assignment screens use.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListTeachers returns active teachers with their count of active
// assignments.
func (r *CatalogRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	const query = `
SELECT p.id, TRIM(p.nombre || ' ' || COALESCE(p.apellido, '')) AS nombre, COALESCE(p.email, '') AS email,
       p.especialidad, p.telefono, p.imagen_perfil,
       COUNT(a.id) FILTER (WHERE a.estado = 'activo') AS asignaciones_activas
FROM profesores p
LEFT JOIN asignaciones a ON a.profesor_id = p.id
WHERE p.activo = TRUE
GROUP BY p.id
ORDER BY nombre ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// ListCourses returns courses, restricted to categoryID when given.
func (r *CatalogRepository) ListCourses(ctx context.Context, categoryID *int64) ([]models.Course, error) {
	query := `
SELECT c.id, c.nombre, COALESCE(c.categoria_id, 0) AS categoria_id, COALESCE(cat.nombre, '') AS categoria_nombre,
       COALESCE(c.duracion_horas, 0) AS duracion_horas, COALESCE(c.modalidad, '') AS modalidad
FROM cursos c
LEFT JOIN categorias cat ON cat.id = c.categoria_id`
	args := []interface{}{}
	if categoryID != nil {
		query += "\nWHERE c.categoria_id = $1"
		args = append(args, *categoryID)
	}
	query += "\nORDER BY c.nombre ASC"
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListCategories returns every course category.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT id, nombre FROM categorias ORDER BY nombre ASC`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListWeekdays returns the weekday enumeration in calendar order.
func (r *CatalogRepository) ListWeekdays(ctx context.Context) ([]models.Weekday, error) {
	const query = `SELECT id, nombre FROM dias_semana ORDER BY id ASC`
	var weekdays []models.Weekday
	if err := r.db.SelectContext(ctx, &weekdays, query); err != nil {
		return nil, fmt.Errorf("list weekdays: %w", err)
	}
	return weekdays, nil
}

// ListTimeBlocks returns the selectable time blocks.
func (r *CatalogRepository) ListTimeBlocks(ctx context.Context) ([]models.TimeBlock, error) {
	const query = `SELECT id, to_char(hora_inicio, 'HH24:MI') AS hora_inicio, to_char(hora_fin, 'HH24:MI') AS hora_fin, COALESCE(etiqueta, '') AS etiqueta
FROM bloques_horarios ORDER BY hora_inicio ASC`
	var blocks []models.TimeBlock
	if err := r.db.SelectContext(ctx, &blocks, query); err != nil {
		return nil, fmt.Errorf("list time blocks: %w", err)
	}
	return blocks, nil
}

// TeacherExists reports whether an active teacher with id exists.
func (r *CatalogRepository) TeacherExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM profesores WHERE id = $1 AND activo = TRUE LIMIT 1`, id)
}

// CourseExists reports whether a course with id exists.
func (r *CatalogRepository) CourseExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM cursos WHERE id = $1 LIMIT 1`, id)
}

// CountWeekdays returns how many of ids exist.
func (r *CatalogRepository) CountWeekdays(ctx context.Context, ids []int64) (int, error) {
	const query = `SELECT COUNT(*) FROM dias_semana WHERE id = ANY($1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("count weekdays: %w", err)
	}
	return count, nil
}

func (r *CatalogRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var found int
	if err := r.db.GetContext(ctx, &found, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check existence: %w", err)
	}
	return true, nil
}
