package models

import "strings"

// ReferenceWarning records a reference list that failed to load and was
// replaced by an empty list.
type ReferenceWarning struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

// ReferenceData is the set of lookup lists a screen loads on entry.
type ReferenceData struct {
	Teachers   []Teacher          `json:"profesores"`
	Courses    []Course           `json:"cursos"`
	Categories []Category         `json:"categorias"`
	Weekdays   []Weekday          `json:"dias_semana"`
	TimeBlocks []TimeBlock        `json:"bloques_horarios"`
	Warnings   []ReferenceWarning `json:"warnings,omitempty"`
}

// TeacherByID finds a teacher in the loaded list.
func (r ReferenceData) TeacherByID(id int64) (Teacher, bool) {
	for _, t := range r.Teachers {
		if t.ID == id {
			return t, true
		}
	}
	return Teacher{}, false
}

// CourseByID finds a course in the loaded list.
func (r ReferenceData) CourseByID(id int64) (Course, bool) {
	for _, c := range r.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

// CategoryByID finds a category in the loaded list.
func (r ReferenceData) CategoryByID(id int64) (Category, bool) {
	for _, c := range r.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// WeekdayName resolves a weekday id to its display name.
func (r ReferenceData) WeekdayName(id int64) (string, bool) {
	for _, w := range r.Weekdays {
		if w.ID == id {
			return w.Name, true
		}
	}
	return "", false
}

// WeekdayIDByName resolves a weekday name, ignoring case and accents.
func (r ReferenceData) WeekdayIDByName(name string) (int64, bool) {
	folded := FoldWeekdayName(name)
	if folded == "" {
		return 0, false
	}
	for _, w := range r.Weekdays {
		if FoldWeekdayName(w.Name) == folded {
			return w.ID, true
		}
	}
	return 0, false
}

var weekdayFolder = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")

// FoldWeekdayName normalises a weekday name for matching: "Miércoles" and
// "miercoles" fold to the same value.
func FoldWeekdayName(name string) string {
	return weekdayFolder.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// CoursesInCategory returns the course options for a category; a nil
// category returns every course.
func (r ReferenceData) CoursesInCategory(categoryID *int64) []Course {
	if categoryID == nil {
		return r.Courses
	}
	out := make([]Course, 0, len(r.Courses))
	for _, c := range r.Courses {
		if c.CategoryID == *categoryID {
			out = append(out, c)
		}
	}
	return out
}
