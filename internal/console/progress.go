package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/wannadb/docbase-tasks/internal/orchestrator"
)

// ProgressWriter prints one line per progress change.
type ProgressWriter struct {
	lock sync.Mutex
	out  io.Writer
	last orchestrator.Progress
}

func NewProgressWriter(out io.Writer) *ProgressWriter {
	return &ProgressWriter{out: out}
}

func (p *ProgressWriter) Show(progress orchestrator.Progress) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if progress == p.last {
		return
	}
	p.last = progress
	fmt.Fprintf(p.out, "[%s] %s %s\n", progress.JobID, progress.Title, progress.Detail)
}

func (p *ProgressWriter) Hide() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.last = orchestrator.Progress{}
}
