package orchestrator

import (
	"github.com/wannadb/docbase-tasks/internal/docbase"
)

// Progress is what the progress sink shows while a task runs.
type Progress struct {
	Title  string
	Detail string
	JobID  string
	// Locked is set while the task is being polled; the user can not
	// dismiss a locked progress view.
	Locked bool
}

type ProgressSink interface {
	Show(p Progress)
	Hide()
}

type Notifier interface {
	Notify(title, message string)
}

type Cue string

const (
	CueSuccess Cue = "success"
	CueError   Cue = "error"
)

type AudioPlayer interface {
	Play(cue Cue)
}

type Display interface {
	Display(base *docbase.DocumentBase)
}

// Sinks groups the collaborators a task reports to. Nil members are
// replaced by no-ops.
type Sinks struct {
	Progress ProgressSink
	Notifier Notifier
	Audio    AudioPlayer
	Display  Display
}

func (s Sinks) withDefaults() Sinks {
	if s.Progress == nil {
		s.Progress = nopSink{}
	}
	if s.Notifier == nil {
		s.Notifier = nopSink{}
	}
	if s.Audio == nil {
		s.Audio = nopSink{}
	}
	if s.Display == nil {
		s.Display = nopSink{}
	}
	return s
}

type nopSink struct{}

func (nopSink) Show(Progress)                 {}
func (nopSink) Hide()                         {}
func (nopSink) Notify(string, string)         {}
func (nopSink) Play(Cue)                      {}
func (nopSink) Display(*docbase.DocumentBase) {}
