// Package exam holds the test data model and a student's in-progress
// attempt at one test.
package exam

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidTest wraps structural problems in a fetched test definition.
var ErrInvalidTest = errors.New("invalid test definition")

// Option is one answer choice: text plus an optional image reference.
type Option struct {
	Text  string `json:"text" validate:"required"`
	Image string `json:"image,omitempty"`
}

// Question is an ordered list of options with a zero-based index of the
// correct one. CorrectOption is only populated on authoring surfaces; the
// student-facing view never renders it.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"text" validate:"required"`
	Image         string   `json:"image,omitempty"`
	Options       []Option `json:"options" validate:"min=2,dive"`
	CorrectOption int      `json:"correct_option"`
}

// Subject tags a test with its school subject.
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Test is an ordered sequence of questions.
type Test struct {
	ID          int        `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	Subject     *Subject   `json:"subject,omitempty"`
	Questions   []Question `json:"questions" validate:"min=1,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		q := sl.Current().Interface().(Question)
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			sl.ReportError(q.CorrectOption, "CorrectOption", "correct_option", "optionindex", "")
		}
	}, Question{})
	return v
}

// Validate checks the structural invariants of a test definition: at least
// one question, every question with at least two options, and every
// correct-option index valid for its question.
func (t *Test) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTest, err)
	}
	return nil
}

// SortQuestions orders the questions by ascending id. The backend does not
// guarantee response order; the answer sequence contract depends on it.
func (t *Test) SortQuestions() {
	sort.Slice(t.Questions, func(i, j int) bool {
		return t.Questions[i].ID < t.Questions[j].ID
	})
}
