package models

import (
	"strconv"
	"strings"
	"time"
)

// FormMode distinguishes the create and edit workflows.
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// FormPhase is the state of one assignment form instance.
type FormPhase string

const (
	FormPhaseLoading    FormPhase = "loading"
	FormPhaseReady      FormPhase = "ready"
	FormPhaseValidating FormPhase = "validating"
	FormPhaseSubmitting FormPhase = "submitting"
	FormPhaseSuccess    FormPhase = "success"
)

// SubmitFailure is the message shown after the assignment service rejected
// a submission.
type SubmitFailure struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Lines   []string `json:"lines,omitempty"`
}

// AssignmentForm is the state of one create or edit form. It is stored
// between requests and only mutated locally until submit.
type AssignmentForm struct {
	ID           string            `json:"form_id"`
	Mode         FormMode          `json:"mode"`
	Phase        FormPhase         `json:"phase"`
	AssignmentID int64             `json:"assignment_id,omitempty"`
	TeacherID    FieldID           `json:"profesor_id"`
	CategoryID   FieldID           `json:"categoria_id"`
	CourseID     FieldID           `json:"curso_id"`
	Observations string            `json:"observaciones"`
	Rows         []SlotInput       `json:"horarios"`
	FieldErrors  map[string]string `json:"errors,omitempty"`
	RowErrors    map[int]string    `json:"row_errors,omitempty"`
	Failure      *SubmitFailure    `json:"failure,omitempty"`
	Result       *Assignment       `json:"result,omitempty"`
	Reference    ReferenceData     `json:"reference"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// FormEdit is a batch of local edits. Nil fields are left untouched.
type FormEdit struct {
	TeacherID    *FieldID    `json:"profesor_id"`
	CategoryID   *FieldID    `json:"categoria_id"`
	CourseID     *FieldID    `json:"curso_id"`
	Observations *string     `json:"observaciones"`
	Rows         []SlotInput `json:"horarios"`
	AddRow       bool        `json:"add_row"`
	RemoveRow    *int        `json:"remove_row"`
}

// NewAssignmentForm starts a form in the loading phase with one empty row.
func NewAssignmentForm(id string, mode FormMode) *AssignmentForm {
	return &AssignmentForm{
		ID:        id,
		Mode:      mode,
		Phase:     FormPhaseLoading,
		Rows:      []SlotInput{{}},
		UpdatedAt: time.Now().UTC(),
	}
}

// Editable reports whether local edits and submits are accepted.
func (f *AssignmentForm) Editable() bool {
	switch f.Phase {
	case FormPhaseReady, FormPhaseSuccess:
		return true
	default:
		return false
	}
}

// Apply performs the edit batch and returns the form to ready.
func (f *AssignmentForm) Apply(edit FormEdit) {
	if edit.TeacherID != nil {
		f.TeacherID = *edit.TeacherID
	}
	if edit.CategoryID != nil {
		f.SetCategory(*edit.CategoryID)
	}
	if edit.CourseID != nil {
		f.SetCourse(*edit.CourseID)
	}
	if edit.Observations != nil {
		f.Observations = *edit.Observations
	}
	if edit.Rows != nil {
		f.Rows = append([]SlotInput(nil), edit.Rows...)
		if len(f.Rows) == 0 {
			f.Rows = []SlotInput{{}}
		}
	}
	if edit.AddRow {
		f.AddRow()
	}
	if edit.RemoveRow != nil {
		f.RemoveRow(*edit.RemoveRow)
	}
	f.Phase = FormPhaseReady
	f.Result = nil
	f.UpdatedAt = time.Now().UTC()
}

// SetCategory changes the course filter and drops a selected course that
// no longer belongs to it.
func (f *AssignmentForm) SetCategory(id FieldID) {
	f.CategoryID = id
	if !f.CourseID.IsSet() || !id.IsSet() {
		return
	}
	courseID, ok := f.CourseID.Int()
	if !ok {
		return
	}
	course, found := f.Reference.CourseByID(courseID)
	categoryID, _ := id.Int()
	if !found || course.CategoryID != categoryID {
		f.CourseID = ""
	}
}

// SetCourse selects a course and fills the category when none is chosen.
func (f *AssignmentForm) SetCourse(id FieldID) {
	f.CourseID = id
	if f.CategoryID.IsSet() {
		return
	}
	f.inferCategory()
}

// AddRow appends an empty schedule row.
func (f *AssignmentForm) AddRow() {
	f.Rows = append(f.Rows, SlotInput{})
}

// RemoveRow deletes row i. The last remaining row is never removed.
func (f *AssignmentForm) RemoveRow(i int) bool {
	if len(f.Rows) <= 1 || i < 0 || i >= len(f.Rows) {
		return false
	}
	f.Rows = append(f.Rows[:i:i], f.Rows[i+1:]...)
	return true
}

// Candidate returns the validator input for the current state.
func (f *AssignmentForm) Candidate() AssignmentCandidate {
	return AssignmentCandidate{
		TeacherID: f.TeacherID,
		CourseID:  f.CourseID,
		Slots:     append([]SlotInput(nil), f.Rows...),
	}
}

// CourseOptions lists the courses offered under the selected category.
func (f *AssignmentForm) CourseOptions() []Course {
	return f.Reference.CoursesInCategory(f.CategoryID.Ptr())
}

// SlotsExpected is true when the selected course is synchronous.
func (f *AssignmentForm) SlotsExpected() bool {
	id, ok := f.CourseID.Int()
	if !ok {
		return false
	}
	course, found := f.Reference.CourseByID(id)
	return found && course.Modality.SlotsExpected()
}

// LoadAssignment fills the form from a stored assignment for editing. Slots
// that only carry a weekday name are matched against the reference weekdays,
// so Reference must be loaded first.
func (f *AssignmentForm) LoadAssignment(a Assignment) {
	f.AssignmentID = a.ID
	f.TeacherID = IDFromInt(a.TeacherID)
	f.CourseID = IDFromInt(a.CourseID)
	f.CategoryID = ""
	if a.Observations != nil {
		f.Observations = *a.Observations
	}
	f.Rows = make([]SlotInput, 0, len(a.ScheduleSlots))
	for _, s := range a.ScheduleSlots {
		weekday := s.WeekdayID
		if weekday == 0 {
			weekday, _ = f.Reference.WeekdayIDByName(s.WeekdayName)
		}
		f.Rows = append(f.Rows, SlotInput{
			WeekdayID: IDFromInt(weekday),
			StartTime: clockOrRaw(s.StartTime),
			EndTime:   clockOrRaw(s.EndTime),
		})
	}
	if len(f.Rows) == 0 {
		f.Rows = []SlotInput{{}}
	}
	f.inferCategory()
	if !f.CategoryID.IsSet() && a.CategoryID != nil {
		f.CategoryID = IDFromInt(*a.CategoryID)
	}
}

// Reset clears the entered values after a successful create.
func (f *AssignmentForm) Reset() {
	f.TeacherID = ""
	f.CategoryID = ""
	f.CourseID = ""
	f.Observations = ""
	f.Rows = []SlotInput{{}}
	f.FieldErrors = nil
	f.RowErrors = nil
	f.Failure = nil
}

// ApplyValidation stores validator messages and maps horario_<i> keys back
// to form rows through rows, the row index of each complete slot.
func (f *AssignmentForm) ApplyValidation(result ValidationResult, rows []int) {
	f.FieldErrors = nil
	f.RowErrors = nil
	if result.Valid {
		return
	}
	f.FieldErrors = make(map[string]string, len(result.Errors))
	for key, msg := range result.Errors {
		f.FieldErrors[key] = msg
		if !strings.HasPrefix(key, SlotErrorPrefix) {
			continue
		}
		i, err := strconv.Atoi(strings.TrimPrefix(key, SlotErrorPrefix))
		if err != nil || i < 0 || i >= len(rows) {
			continue
		}
		if f.RowErrors == nil {
			f.RowErrors = make(map[int]string)
		}
		f.RowErrors[rows[i]] = msg
	}
}

func (f *AssignmentForm) inferCategory() {
	id, ok := f.CourseID.Int()
	if !ok {
		return
	}
	if course, found := f.Reference.CourseByID(id); found && course.CategoryID != 0 {
		f.CategoryID = IDFromInt(course.CategoryID)
	}
}
