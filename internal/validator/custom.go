package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
)

// base names end up in URLs and sheet names, path separators are refused
func baseNameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if strings.TrimSpace(val) == "" {
		return false
	}
	return !strings.ContainsAny(val, "/\\")
}

func taskKindValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(api.TaskKind)
	if !ok {
		return false
	}
	return val.Path() != ""
}

func startTaskStructValidator(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(api.StartTaskRequest)
	if !ok {
		return
	}

	switch req.Kind {
	case api.TaskKindCreate:
		if len(req.DocumentIDs) == 0 {
			sl.ReportError(req.DocumentIDs, "DocumentIDs", "DocumentIDs", "required_for_kind", string(req.Kind))
		}
	case api.TaskKindUpdateAttributes:
		if len(req.Attributes) == 0 {
			sl.ReportError(req.Attributes, "Attributes", "Attributes", "required_for_kind", string(req.Kind))
		}
	case api.TaskKindOrderNuggets:
		if req.DocumentName == "" {
			sl.ReportError(req.DocumentName, "DocumentName", "DocumentName", "required_for_kind", string(req.Kind))
		}
	case api.TaskKindConfirmMatch, api.TaskKindConfirmCustom:
		if req.DocumentName == "" {
			sl.ReportError(req.DocumentName, "DocumentName", "DocumentName", "required_for_kind", string(req.Kind))
		}
		if req.InteractiveCallTaskID == "" {
			sl.ReportError(req.InteractiveCallTaskID, "InteractiveCallTaskID", "InteractiveCallTaskID", "required_for_kind", string(req.Kind))
		}
		if req.StartIndex < 0 || req.EndIndex < req.StartIndex {
			sl.ReportError(req.EndIndex, "EndIndex", "EndIndex", "span", "")
		}
	}
}
