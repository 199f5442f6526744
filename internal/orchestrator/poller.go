package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
	"github.com/wannadb/docbase-tasks/internal/docbase"
	"github.com/wannadb/docbase-tasks/internal/events"
	"github.com/wannadb/docbase-tasks/internal/scratch"
	"github.com/wannadb/docbase-tasks/pkg/metrics"
)

type State string

const (
	StateStarting  State = "STARTING"
	StatePolling   State = "POLLING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

const ellipsis = "..."

// Classify maps a status snapshot to the next poller state. "failure" is
// matched ignoring case and surrounding whitespace, "SUCCESS" only exactly.
func Classify(status *api.TaskStatus) State {
	switch {
	case strings.EqualFold(strings.TrimSpace(status.State), api.TaskStateFailure):
		return StateFailed
	case status.State == api.TaskStateSuccess:
		return StateSucceeded
	default:
		return StatePolling
	}
}

// ProgressMessage returns the detail line for a non terminal snapshot:
// meta.status when present, the raw state otherwise, with a trailing
// ellipsis.
func ProgressMessage(status *api.TaskStatus) string {
	msg := status.StatusDetail()
	if msg == "" {
		msg = status.State
	}
	if strings.HasSuffix(msg, ellipsis) {
		return msg
	}
	return msg + ellipsis
}

// session is one polling run. Everything except abort is touched only by
// the poll goroutine.
type session struct {
	job    Job
	ticker Ticker
	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
	done     chan struct{}
	state    atomic.Value
	result   *docbase.DocumentBase
	err      error
}

func newSession(job Job, ticker Ticker) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		job:    job,
		ticker: ticker,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.state.Store(StateStarting)
	return s
}

func (s *session) State() State {
	return s.state.Load().(State)
}

func (s *session) stopTicker() {
	s.stopOnce.Do(s.ticker.Stop)
}

// abort asks the poll goroutine to stop without a terminal transition.
func (s *session) abort() {
	s.cancel()
	s.stopTicker()
}

func (o *Orchestrator) poll(s *session) {
	log := zap.S().Named("poller").With("task_id", s.job.ID, "kind", s.job.Kind)
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("poller panicked", "panic", r)
			if !s.State().Terminal() {
				o.fail(s, fmt.Sprintf("internal error: %v", r), nil)
			}
		}
	}()

	log.Debug("polling started")

	// first check right away, then on every tick
	if o.check(s) {
		return
	}
	for {
		select {
		case <-s.ctx.Done():
			o.aborted(s)
			return
		case _, ok := <-s.ticker.C():
			if !ok {
				o.aborted(s)
				return
			}
		}

		if o.check(s) {
			return
		}
	}
}

// skipMissedTicks drops ticks that fired while a query was in flight.
func (o *Orchestrator) skipMissedTicks(s *session) {
	for {
		select {
		case _, ok := <-s.ticker.C():
			if !ok {
				return
			}
			metrics.IncreaseSkippedTicksMetric()
		default:
			return
		}
	}
}

// check runs one status query and applies the resulting transition. It
// returns true once the session is over.
func (o *Orchestrator) check(s *session) bool {
	log := zap.S().Named("poller").With("task_id", s.job.ID, "kind", s.job.Kind)

	metrics.IncreaseStatusQueriesMetric(string(s.job.Kind))
	ctx, cancel := context.WithTimeout(s.ctx, o.statusTimeout)
	status, err := o.client.GetTaskStatus(ctx, s.job.ID)
	cancel()
	o.skipMissedTicks(s)

	if s.ctx.Err() != nil {
		o.aborted(s)
		return true
	}
	if err != nil {
		log.Errorw("status query failed", "error", err)
		o.fail(s, err.Error(), err)
		return true
	}

	switch Classify(status) {
	case StateFailed:
		o.fail(s, ProgressMessage(status), nil)
		return true
	case StateSucceeded:
		o.succeed(s, status)
		return true
	}

	s.state.Store(StatePolling)
	detail := ProgressMessage(status)
	log.Debugw("task in progress", "state", status.State, "detail", detail)
	o.sinks.Progress.Show(Progress{
		Title:  progressTitle(s.job),
		Detail: detail,
		JobID:  s.job.ID,
		Locked: true,
	})
	return false
}

func (o *Orchestrator) fail(s *session, reason string, cause error) {
	s.stopTicker()
	o.clearScratch(s.job)
	o.gate.Release()
	metrics.SetActiveTasksMetric(false)

	o.sinks.Audio.Play(CueError)
	o.sinks.Notifier.Notify(ErrorTitle, FailureMessage(s.job.Kind, s.job.DisplayName))
	o.sinks.Progress.Hide()
	o.setLastResult(nil)

	metrics.IncreaseTaskOutcomesMetric(string(s.job.Kind), string(StateFailed))
	o.publish(events.TaskFailedKind, s.job, events.TaskEvent{State: string(StateFailed), Reason: reason})

	s.err = &TaskFailedError{Job: s.job, Reason: reason, Err: cause}
	s.state.Store(StateFailed)
	o.endSession(s)
	zap.S().Named("poller").Infow("task failed", "task_id", s.job.ID, "kind", s.job.Kind, "reason", reason)
}

func (o *Orchestrator) succeed(s *session, status *api.TaskStatus) {
	s.stopTicker()
	o.clearScratch(s.job)
	o.gate.Release()
	metrics.SetActiveTasksMetric(false)

	if s.job.Kind != api.TaskKindLoad {
		o.sinks.Audio.Play(CueSuccess)
	}
	o.sinks.Progress.Hide()

	var (
		attributes  []string
		descriptors []api.NuggetDescriptor
	)
	if msg := status.DocumentBase(); msg != nil {
		descriptors = msg.Nuggets
		if msg.Attributes != nil {
			attributes = *msg.Attributes
		}
	}
	if usesSubmittedAttributes(s.job.Kind) {
		attributes = s.job.Attributes
	}

	base := o.translator.Translate(s.job.BaseName, attributes, descriptors)
	o.sinks.Display.Display(base)
	o.setLastResult(base)

	metrics.IncreaseTaskOutcomesMetric(string(s.job.Kind), string(StateSucceeded))
	o.publish(events.TaskSucceededKind, s.job, events.TaskEvent{State: string(StateSucceeded), Nuggets: len(base.Nuggets())})

	s.result = base
	s.state.Store(StateSucceeded)
	o.endSession(s)
	zap.S().Named("poller").Infow("task succeeded", "task_id", s.job.ID, "kind", s.job.Kind, "nuggets", len(base.Nuggets()))
}

// aborted ends a session stopped through Close. The scratch slot stays.
func (o *Orchestrator) aborted(s *session) {
	s.stopTicker()
	o.gate.Release()
	metrics.SetActiveTasksMetric(false)
	o.sinks.Progress.Hide()

	s.err = ErrAborted
	s.state.Store(StateFailed)
	o.endSession(s)

	metrics.IncreaseTaskOutcomesMetric(string(s.job.Kind), "ABORTED")
	zap.S().Named("poller").Infow("polling aborted", "task_id", s.job.ID, "kind", s.job.Kind)
}

func (o *Orchestrator) clearScratch(job Job) {
	if err := o.scratch.Remove(scratch.JobIDKey); err != nil {
		zap.S().Named("poller").Warnw("failed to clear scratch slot", "task_id", job.ID, "error", err)
	}
}

func progressTitle(job Job) string {
	return fmt.Sprintf("%s %s%s", Gerund(job.Kind), job.DisplayName, ellipsis)
}
