package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("priority", priorityValidator)
	v.RegisterValidation("taskstatus", taskStatusValidator)
	v.RegisterValidation("projectstatus", projectStatusValidator)
	v.RegisterStructValidation(taskDates, Task{})
	v.RegisterStructValidation(projectDates, Project{})
	v.RegisterStructValidation(milestoneDue, Milestone{})
	return v
}

func priorityValidator(fl validator.FieldLevel) bool {
	return Priority(fl.Field().String()).Rank() >= 0
}

func taskStatusValidator(fl validator.FieldLevel) bool {
	switch Status(fl.Field().String()) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func projectStatusValidator(fl validator.FieldLevel) bool {
	switch ProjectStatus(fl.Field().String()) {
	case ProjectPlanning, ProjectInProgress, ProjectReview, ProjectCompleted:
		return true
	}
	return false
}

func taskDates(sl validator.StructLevel) {
	t := sl.Current().Interface().(Task)
	checkRange(sl, t.Start, t.End)
}

func projectDates(sl validator.StructLevel) {
	p := sl.Current().Interface().(Project)
	checkRange(sl, p.Start, p.End)
}

func milestoneDue(sl validator.StructLevel) {
	m := sl.Current().Interface().(Milestone)
	if m.Due.IsZero() {
		sl.ReportError(m.Due, "Due", "Due", "required", "")
	}
}

func checkRange(sl validator.StructLevel, start, end Date) {
	if start.IsZero() {
		sl.ReportError(start, "Start", "Start", "required", "")
	}
	if end.IsZero() {
		sl.ReportError(end, "End", "End", "required", "")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		sl.ReportError(end, "End", "End", "gtefield", "Start")
	}
}

// Validate checks presence, ranges and enum membership of t.
func (t Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("task %q: %w", t.ID, err)
	}
	return nil
}

// Validate checks presence, ranges and enum membership of p.
func (p Project) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("project %q: %w", p.ID, err)
	}
	return nil
}

// Validate checks presence and enum membership of m.
func (m Member) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("member %q: %w", m.ID, err)
	}
	return nil
}

// Validate checks that m has an id, project, title and due date.
func (m Milestone) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("milestone %q: %w", m.ID, err)
	}
	return nil
}
