package docbase

import (
	"go.uber.org/zap"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
)

const (
	TranslationErrorTitle   = "Error"
	TranslationErrorMessage = "Something went wrong translating the nuggets."
)

// Notifier receives user facing messages.
type Notifier interface {
	Notify(title, message string)
}

// Translator builds document bases out of task results. A descriptor that
// does not form a valid nugget is skipped and reported, the rest are kept.
type Translator struct {
	notifier Notifier
	onError  func(error)
}

func NewTranslator(notifier Notifier) *Translator {
	return &Translator{notifier: notifier}
}

// OnError registers a hook called once per rejected descriptor.
func (t *Translator) OnError(fn func(error)) *Translator {
	t.onError = fn
	return t
}

func (t *Translator) Translate(baseName string, attributes []string, descriptors []api.NuggetDescriptor) *DocumentBase {
	base := New(baseName, attributes)
	for i, desc := range descriptors {
		err := desc.Err()
		if err != nil {
			err = &NuggetError{DocumentName: desc.Document.Name, Err: err}
		} else {
			err = base.AddNugget(desc.Document.Name, desc.Document.Text, desc.StartChar, desc.EndChar)
		}
		if err != nil {
			zap.S().Named("translator").Warnw("skipping nugget", "base", baseName, "index", i, "error", err)
			if t.onError != nil {
				t.onError(err)
			}
			if t.notifier != nil {
				t.notifier.Notify(TranslationErrorTitle, TranslationErrorMessage)
			}
		}
	}
	return base
}
