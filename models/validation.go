package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldViolation is one failed constraint on one field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field of a payload that failed validation.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s at %q", v.Message, v.Field))
	}
	return "Validation error: " + strings.Join(parts, "; ")
}

// Fields returns the names of the violated fields in report order.
func (e *ValidationError) Fields() []string {
	names := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		names = append(names, v.Field)
	}
	return names
}

// objectiveFields carries the constraints shared by inserts and updates.
type objectiveFields struct {
	Title      string `json:"title" validate:"required"`
	Category   string `json:"category" validate:"required,objective_category"`
	Status     string `json:"status" validate:"required,objective_status"`
	Priority   string `json:"priority" validate:"required,objective_priority"`
	TargetDate string `json:"targetDate" validate:"required,datetime=2006-01-02"`
}

type fieldRule struct {
	goName   string
	jsonName string
	label    string
	choices  string
}

// Report order for violations.
var objectiveFieldRules = []fieldRule{
	{goName: "Title", jsonName: "title", label: "Title"},
	{goName: "Category", jsonName: "category", label: "Category", choices: quoteChoices(Categories)},
	{goName: "Status", jsonName: "status", label: "Status", choices: quoteChoices(Statuses)},
	{goName: "Priority", jsonName: "priority", label: "Priority", choices: quoteChoices(Priorities)},
	{goName: "TargetDate", jsonName: "targetDate", label: "Target date"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "objective_category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	mustRegister(v, "objective_status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	mustRegister(v, "objective_priority", func(fl validator.FieldLevel) bool {
		return Priority(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// ValidateInsert checks a create payload. Absent status defaults to pending.
func ValidateInsert(p ObjectivePayload) (InsertObjective, error) {
	if !p.Status.Set {
		p.Status = Some(string(StatusPending))
	}
	// Every field is checked on insert, absent ones fail "required".
	if err := check(p, func(Optional[string]) bool { return true }); err != nil {
		return InsertObjective{}, err
	}
	return InsertObjective{
		Title:      p.Title.Value,
		Category:   Category(p.Category.Value),
		Status:     Status(p.Status.Value),
		Priority:   Priority(p.Priority.Value),
		TargetDate: p.TargetDate.Value,
	}, nil
}

// ValidateUpdate checks a partial update. Only present fields are checked; an
// empty payload is a valid no-op patch.
func ValidateUpdate(p ObjectivePayload) (ObjectivePatch, error) {
	if err := check(p, func(o Optional[string]) bool { return o.Set }); err != nil {
		return ObjectivePatch{}, err
	}
	var patch ObjectivePatch
	if p.Title.Set {
		patch.Title = Some(p.Title.Value)
	}
	if p.Category.Set {
		patch.Category = Some(Category(p.Category.Value))
	}
	if p.Status.Set {
		patch.Status = Some(Status(p.Status.Value))
	}
	if p.Priority.Set {
		patch.Priority = Some(Priority(p.Priority.Value))
	}
	if p.TargetDate.Set {
		patch.TargetDate = Some(p.TargetDate.Value)
	}
	return patch, nil
}

func check(p ObjectivePayload, selected func(Optional[string]) bool) error {
	values := map[string]Optional[string]{
		"Title":      p.Title,
		"Category":   p.Category,
		"Status":     p.Status,
		"Priority":   p.Priority,
		"TargetDate": p.TargetDate,
	}

	messages := make(map[string]string)
	var fields []string
	for _, rule := range objectiveFieldRules {
		v := values[rule.goName]
		if !selected(v) {
			continue
		}
		if v.Null {
			messages[rule.jsonName] = "Expected string, received null"
			continue
		}
		fields = append(fields, rule.goName)
	}

	if len(fields) > 0 {
		input := objectiveFields{
			Title:      p.Title.Value,
			Category:   p.Category.Value,
			Status:     p.Status.Value,
			Priority:   p.Priority.Value,
			TargetDate: p.TargetDate.Value,
		}
		err := validate.StructPartial(input, fields...)
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				messages[fe.Field()] = violationMessage(fe)
			}
		} else if err != nil {
			return fmt.Errorf("validating objective: %w", err)
		}
	}

	if len(messages) == 0 {
		return nil
	}
	verr := &ValidationError{}
	for _, rule := range objectiveFieldRules {
		if msg, ok := messages[rule.jsonName]; ok {
			verr.Violations = append(verr.Violations, FieldViolation{Field: rule.jsonName, Message: msg})
		}
	}
	return verr
}

func violationMessage(fe validator.FieldError) string {
	var rule fieldRule
	for _, s := range objectiveFieldRules {
		if s.jsonName == fe.Field() {
			rule = s
		}
	}
	switch fe.Tag() {
	case "required":
		if rule.choices != "" && fe.StructField() == "Status" {
			return "Invalid status, expected " + rule.choices
		}
		return rule.label + " is required"
	case "objective_category", "objective_status", "objective_priority":
		return fmt.Sprintf("Invalid %s, expected %s", strings.ToLower(rule.label), rule.choices)
	case "datetime":
		return rule.label + " must be a calendar date (YYYY-MM-DD)"
	}
	return fmt.Sprintf("%s failed %s", rule.label, fe.Tag())
}

func quoteChoices[T ~string](values []T) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "'"+string(v)+"'")
	}
	return strings.Join(quoted, " | ")
}
