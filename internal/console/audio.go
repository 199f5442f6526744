package console

import (
	"io"
	"strings"

	"github.com/wannadb/docbase-tasks/internal/orchestrator"
)

// Bell plays cues with the terminal bell: once for success, twice for
// errors.
type Bell struct {
	out io.Writer
}

func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

func (b *Bell) Play(cue orchestrator.Cue) {
	n := 1
	if cue == orchestrator.CueError {
		n = 2
	}
	_, _ = io.WriteString(b.out, strings.Repeat("\a", n))
}
