package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
)

const assignmentColumns = `a.id, a.profesor_id, a.curso_id, a.estado, a.observaciones,
       TRIM(p.nombre || ' ' || COALESCE(p.apellido, '')) AS profesor_nombre,
       c.nombre AS curso_nombre, c.categoria_id, a.created_at, a.updated_at
FROM asignaciones a
JOIN profesores p ON p.id = a.profesor_id
JOIN cursos c ON c.id = a.curso_id`

const slotColumns = `SELECT h.id, h.asignacion_id, h.dia_semana_id, d.nombre AS dia_semana,
       to_char(h.hora_inicio, 'HH24:MI:SS') AS hora_inicio, to_char(h.hora_fin, 'HH24:MI:SS') AS hora_fin
FROM horarios_asignacion h
JOIN dias_semana d ON d.id = h.dia_semana_id`

// AssignmentRepository persists assignments and their schedule slots.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments matching filter with their slots.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("(p.nombre || ' ' || COALESCE(p.apellido, '') ILIKE $%d OR c.nombre ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+search+"%")
	}
	if filter.TeacherID != nil {
		where = append(where, fmt.Sprintf("a.profesor_id = $%d", len(args)+1))
		args = append(args, *filter.TeacherID)
	}
	if filter.CourseID != nil {
		where = append(where, fmt.Sprintf("a.curso_id = $%d", len(args)+1))
		args = append(args, *filter.CourseID)
	}
	if filter.CategoryID != nil {
		where = append(where, fmt.Sprintf("c.categoria_id = $%d", len(args)+1))
		args = append(args, *filter.CategoryID)
	}

	query := fmt.Sprintf("SELECT %s\nWHERE %s\nORDER BY a.id DESC", assignmentColumns, strings.Join(where, " AND "))
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if len(assignments) == 0 {
		return []models.Assignment{}, nil
	}

	ids := make([]int64, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	slots, err := r.slotsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		assignments[i].ScheduleSlots = slots[assignments[i].ID]
		if assignments[i].ScheduleSlots == nil {
			assignments[i].ScheduleSlots = []models.ScheduleSlot{}
		}
	}
	return assignments, nil
}

// FindByID fetches one assignment with its slots.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	query := "SELECT " + assignmentColumns + "\nWHERE a.id = $1"
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	slots, err := r.slotsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	assignment.ScheduleSlots = slots[id]
	if assignment.ScheduleSlots == nil {
		assignment.ScheduleSlots = []models.ScheduleSlot{}
	}
	return &assignment, nil
}

// Create inserts the assignment and its slots in one transaction.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) (err error) {
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusScheduled
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO asignaciones (profesor_id, curso_id, estado, observaciones, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err = tx.QueryRowxContext(ctx, insert, assignment.TeacherID, assignment.CourseID, assignment.Status, assignment.Observations, assignment.CreatedAt, assignment.UpdatedAt).Scan(&assignment.ID); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	if err = insertSlots(ctx, tx, assignment); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create assignment: %w", err)
	}
	return nil
}

// Update replaces teacher, course, observations and the whole slot list.
// A missing assignment yields sql.ErrNoRows.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) (err error) {
	assignment.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const update = `UPDATE asignaciones SET profesor_id = $1, curso_id = $2, observaciones = $3, updated_at = $4 WHERE id = $5`
	result, err := tx.ExecContext(ctx, update, assignment.TeacherID, assignment.CourseID, assignment.Observations, assignment.UpdatedAt, assignment.ID)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM horarios_asignacion WHERE asignacion_id = $1`, assignment.ID); err != nil {
		return fmt.Errorf("clear assignment slots: %w", err)
	}
	if err = insertSlots(ctx, tx, assignment); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment; its slots cascade. A missing id yields
// sql.ErrNoRows.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM asignaciones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AssignmentRepository) slotsFor(ctx context.Context, ids []int64) (map[int64][]models.ScheduleSlot, error) {
	query := slotColumns + "\nWHERE h.asignacion_id = ANY($1)\nORDER BY h.asignacion_id, h.dia_semana_id, h.hora_inicio"
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list assignment slots: %w", err)
	}
	byAssignment := make(map[int64][]models.ScheduleSlot, len(ids))
	for _, s := range slots {
		byAssignment[s.AssignmentID] = append(byAssignment[s.AssignmentID], s)
	}
	return byAssignment, nil
}

func insertSlots(ctx context.Context, tx *sqlx.Tx, assignment *models.Assignment) error {
	const insert = `INSERT INTO horarios_asignacion (asignacion_id, dia_semana_id, hora_inicio, hora_fin) VALUES ($1, $2, $3, $4) RETURNING id`
	for i := range assignment.ScheduleSlots {
		slot := &assignment.ScheduleSlots[i]
		slot.AssignmentID = assignment.ID
		if err := tx.QueryRowxContext(ctx, insert, assignment.ID, slot.WeekdayID, slot.StartTime, slot.EndTime).Scan(&slot.ID); err != nil {
			return fmt.Errorf("insert assignment slot: %w", err)
		}
	}
	return nil
}
