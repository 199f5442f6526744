package docbase

import (
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	docvalidator "github.com/wannadb/docbase-tasks/internal/validator"
)

// Nugget is a span of a document's text. Offsets count characters, not bytes.
type Nugget struct {
	DocumentName string `json:"documentName"`
	DocumentText string `json:"documentText"`
	StartChar    int    `json:"startChar" validate:"gte=0"`
	EndChar      int    `json:"endChar" validate:"gtefield=StartChar"`
}

var nuggetValidator = newNuggetValidator()

func newNuggetValidator() *docvalidator.Validator {
	v := docvalidator.NewValidator()
	v.Register(docvalidator.ValidationRule{
		Rule: func(v *validator.Validate) {
			v.RegisterStructValidation(nuggetSpanValidator, Nugget{})
		},
	})
	return v
}

func nuggetSpanValidator(sl validator.StructLevel) {
	n, ok := sl.Current().Interface().(Nugget)
	if !ok {
		return
	}
	if n.EndChar > utf8.RuneCountInString(n.DocumentText) {
		sl.ReportError(n.EndChar, "EndChar", "EndChar", "within_text", "")
	}
}

// NewNugget returns a validated nugget. It fails unless
// 0 <= startChar <= endChar <= length of documentText.
func NewNugget(documentName, documentText string, startChar, endChar int) (Nugget, error) {
	n := Nugget{
		DocumentName: documentName,
		DocumentText: documentText,
		StartChar:    startChar,
		EndChar:      endChar,
	}
	if err := nuggetValidator.Struct(n); err != nil {
		return Nugget{}, &NuggetError{DocumentName: documentName, StartChar: startChar, EndChar: endChar, Err: err}
	}
	return n, nil
}

// Text returns the covered part of the document. Offsets outside the text
// are clamped to it and an inverted span is empty.
func (n Nugget) Text() string {
	runes := []rune(n.DocumentText)
	start := min(max(n.StartChar, 0), len(runes))
	end := min(max(n.EndChar, 0), len(runes))
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}
