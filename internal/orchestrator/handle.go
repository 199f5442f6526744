package orchestrator

import (
	"context"

	"github.com/wannadb/docbase-tasks/internal/docbase"
)

// Handle follows one submitted task.
type Handle struct {
	s *session
}

func (h *Handle) Job() Job {
	return h.s.job
}

func (h *Handle) State() State {
	return h.s.State()
}

// Done is closed once the task reached a terminal state or polling was
// aborted.
func (h *Handle) Done() <-chan struct{} {
	return h.s.done
}

// Wait blocks until the task is over and returns its document base. A failed
// task yields a *TaskFailedError, an aborted one ErrAborted.
func (h *Handle) Wait(ctx context.Context) (*docbase.DocumentBase, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.s.done:
		return h.s.result, h.s.err
	}
}
