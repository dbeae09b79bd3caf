// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// Status vocabularies shared by request DTOs across modules.
var (
	StepStatuses      = []string{"PENDING", "PROCESSING", "DONE", "ERROR"}
	ExecutionStatuses = []string{"started", "inProgress", "finished", "error", "canceled"}
	AnalysisStatuses  = []string{"progress", "finished", "error", "canceled"}
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the domain tags registered:
// step_status, orchestrator_status, execution_status and analysis_status.
func New() *Validator {
	v := validator.New()
	mustRegister(v, "step_status", oneOfStrings(StepStatuses))
	mustRegister(v, "orchestrator_status", oneOfStrings(StepStatuses))
	mustRegister(v, "execution_status", oneOfStrings(ExecutionStatuses))
	mustRegister(v, "analysis_status", oneOfStrings(AnalysisStatuses))
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// oneOfStrings accepts string fields (and *string through dive/omitempty)
// whose value is in allowed.
func oneOfStrings(allowed []string) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}
