package v1alpha1

import "strings"

// StringToTaskKind maps a user supplied kind to a TaskKind. Matching ignores
// case and accepts dashes in place of underscores.
func StringToTaskKind(s string) (TaskKind, bool) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
	for _, k := range TaskKinds {
		if string(k) == normalized {
			return k, true
		}
	}
	return "", false
}

// Path returns the start endpoint of the kind, relative to the server URL.
func (k TaskKind) Path() string {
	switch k {
	case TaskKindCreate:
		return "/core/document_base"
	case TaskKindLoad:
		return "/core/document_base/load"
	case TaskKindInteractive:
		return "/core/document_base/interactive"
	case TaskKindOrderNuggets:
		return "/core/document_base/order/nugget"
	case TaskKindConfirmMatch:
		return "/core/document_base/confirm/nugget/match"
	case TaskKindConfirmCustom:
		return "/core/document_base/confirm/nugget/custom"
	case TaskKindUpdateAttributes:
		return "/core/document_base/attributes/update"
	default:
		return ""
	}
}

// StatusPath returns the status endpoint for a task.
func StatusPath(token, taskID string) string {
	return "/core/status/" + token + "/" + taskID
}
