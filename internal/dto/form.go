package dto

import "github.com/pierojauregui/trilceperu-sub000/internal/models"

// OpenFormRequest opens a create form, or an edit form when AssignmentID
// is set.
type OpenFormRequest struct {
	AssignmentID *int64 `json:"assignment_id" validate:"omitempty,gt=0"`
}

// FormResponse is the form snapshot returned to the dashboard UI.
type FormResponse struct {
	*models.AssignmentForm
	SlotsExpected bool            `json:"slots_expected"`
	CourseOptions []models.Course `json:"course_options"`
}

// NewFormResponse adds the derived fields to a form.
func NewFormResponse(form *models.AssignmentForm) FormResponse {
	options := form.CourseOptions()
	if options == nil {
		options = []models.Course{}
	}
	return FormResponse{
		AssignmentForm: form,
		SlotsExpected:  form.SlotsExpected(),
		CourseOptions:  options,
	}
}
