package orchestrator

import (
	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
)

type kindText struct {
	verb   string
	gerund string
}

var kindTexts = map[api.TaskKind]kindText{
	api.TaskKindCreate:           {verb: "create", gerund: "Creating"},
	api.TaskKindLoad:             {verb: "load", gerund: "Loading"},
	api.TaskKindInteractive:      {verb: "populate", gerund: "Populating"},
	api.TaskKindOrderNuggets:     {verb: "order nuggets of", gerund: "Ordering nuggets of"},
	api.TaskKindConfirmMatch:     {verb: "confirm the match in", gerund: "Confirming the match in"},
	api.TaskKindConfirmCustom:    {verb: "confirm the custom nugget in", gerund: "Confirming the custom nugget in"},
	api.TaskKindUpdateAttributes: {verb: "update the attributes of", gerund: "Updating the attributes of"},
}

// Verb returns the lower case action of the kind as used in failure messages.
func Verb(kind api.TaskKind) string {
	if t, ok := kindTexts[kind]; ok {
		return t.verb
	}
	return "run"
}

// Gerund returns the capitalized progressive form used in progress titles.
func Gerund(kind api.TaskKind) string {
	if t, ok := kindTexts[kind]; ok {
		return t.gerund
	}
	return "Running"
}

func DisplayName(baseName string) string {
	return "Docbase " + baseName
}

// usesSubmittedAttributes reports whether the attribute order of the result
// is the one sent with the request rather than the one in the payload.
func usesSubmittedAttributes(kind api.TaskKind) bool {
	return kind == api.TaskKindCreate || kind == api.TaskKindUpdateAttributes
}
