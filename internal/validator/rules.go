package validator

import (
	"github.com/go-playground/validator/v10"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
)

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewStartTaskValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("task_kind", taskKindValidator),
		},
		{
			Rule: registerFn("base_name", baseNameValidator),
		},
		{
			Rule: func(v *validator.Validate) {
				v.RegisterStructValidation(startTaskStructValidator, api.StartTaskRequest{})
			},
		},
	}
}
