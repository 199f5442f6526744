package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
	"github.com/wannadb/docbase-tasks/internal/client"
	"github.com/wannadb/docbase-tasks/internal/docbase"
	"github.com/wannadb/docbase-tasks/internal/events"
	"github.com/wannadb/docbase-tasks/internal/scratch"
	"github.com/wannadb/docbase-tasks/internal/validator"
	"github.com/wannadb/docbase-tasks/pkg/metrics"
)

const (
	DefaultInterval      = 1 * time.Second
	DefaultStatusTimeout = 30 * time.Second

	waitDetail = "Please wait..."
)

// Job is a task accepted by the remote service.
type Job struct {
	ID          string
	Kind        api.TaskKind
	BaseName    string
	DisplayName string
	// Attributes holds the attribute order sent with the request.
	Attributes []string
}

// EventPublisher receives lifecycle events. *events.EventProducer
// implements it.
type EventPublisher interface {
	Write(ctx context.Context, kind string, body io.Reader) error
}

type Option func(o *Orchestrator)

func WithInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

func WithStatusTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.statusTimeout = d
		}
	}
}

// WithTicker replaces the default fixed interval ticker, e.g. with
// NewJitterTicker.
func WithTicker(fn TickerFunc) Option {
	return func(o *Orchestrator) {
		o.newTicker = fn
	}
}

func WithScratchStore(s scratch.Store) Option {
	return func(o *Orchestrator) {
		o.scratch = s
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) {
		o.events = p
	}
}

// Orchestrator submits docbase tasks and polls them to completion, one at a
// time.
type Orchestrator struct {
	client        client.TaskService
	sinks         Sinks
	scratch       scratch.Store
	events        EventPublisher
	translator    *docbase.Translator
	validator     *validator.Validator
	gate          Gate
	interval      time.Duration
	statusTimeout time.Duration
	newTicker     TickerFunc

	lock       sync.Mutex
	current    *session
	lastResult *docbase.DocumentBase
}

func New(c client.TaskService, sinks Sinks, opts ...Option) *Orchestrator {
	sinks = sinks.withDefaults()

	v := validator.NewValidator()
	v.Register(validator.NewStartTaskValidationRules()...)

	o := &Orchestrator{
		client:        c,
		sinks:         sinks,
		scratch:       scratch.NewMemoryStore(),
		validator:     v,
		interval:      DefaultInterval,
		statusTimeout: DefaultStatusTimeout,
		newTicker:     NewTicker,
	}
	o.translator = docbase.NewTranslator(sinks.Notifier).OnError(func(error) {
		metrics.IncreaseTranslationErrorsMetric()
	})

	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start submits a task and, once the service accepted it, polls it in the
// background. ErrAlreadyRunning is returned while another task is active;
// any other failure is a *SubmissionError.
func (o *Orchestrator) Start(ctx context.Context, req api.StartTaskRequest) (*Handle, error) {
	log := zap.S().Named("orchestrator")
	displayName := DisplayName(req.BaseName)

	if !o.gate.TryAcquire() {
		log.Warnw("a task is already running, start ignored", "kind", req.Kind, "base_name", req.BaseName)
		metrics.IncreaseTaskSubmissionsMetric(string(req.Kind), metrics.SubmissionBusy)
		return nil, ErrAlreadyRunning
	}
	metrics.SetActiveTasksMetric(true)

	if err := o.validator.Struct(req); err != nil {
		return nil, o.rejected(req, displayName, err)
	}

	id, err := o.client.StartTask(ctx, req)
	if err == nil && id == "" {
		err = client.ErrEmptyResponse
	}
	if err != nil {
		return nil, o.rejected(req, displayName, err)
	}

	job := Job{
		ID:          id,
		Kind:        req.Kind,
		BaseName:    req.BaseName,
		DisplayName: displayName,
		Attributes:  append([]string(nil), req.Attributes...),
	}
	log.Infow("task submitted", "task_id", id, "kind", job.Kind, "base_name", job.BaseName)
	metrics.IncreaseTaskSubmissionsMetric(string(req.Kind), metrics.SubmissionAccepted)

	if err := o.scratch.Set(scratch.JobIDKey, id); err != nil {
		log.Warnw("failed to record task id", "task_id", id, "error", err)
	}
	o.publish(events.TaskSubmittedKind, job, events.TaskEvent{})

	o.sinks.Progress.Show(Progress{
		Title:  progressTitle(job),
		Detail: waitDetail,
		JobID:  id,
	})

	s := newSession(job, o.newTicker(o.interval))
	o.lock.Lock()
	o.current = s
	o.lock.Unlock()

	go o.poll(s)
	return &Handle{s: s}, nil
}

func (o *Orchestrator) rejected(req api.StartTaskRequest, displayName string, err error) error {
	o.gate.Release()
	metrics.SetActiveTasksMetric(false)
	metrics.IncreaseTaskSubmissionsMetric(string(req.Kind), metrics.SubmissionRejected)

	zap.S().Named("orchestrator").Errorw("task submission failed", "kind", req.Kind, "base_name", req.BaseName, "error", err)
	o.sinks.Notifier.Notify(ErrorTitle, FailureMessage(req.Kind, displayName))
	return &SubmissionError{Kind: req.Kind, DisplayName: displayName, Err: err}
}

func (o *Orchestrator) StartCreateJob(ctx context.Context, organizationID int, baseName string, documentIDs []int, attributes []string) (*Handle, error) {
	return o.Start(ctx, api.StartTaskRequest{
		Kind:           api.TaskKindCreate,
		OrganizationID: organizationID,
		BaseName:       baseName,
		DocumentIDs:    documentIDs,
		Attributes:     attributes,
	})
}

func (o *Orchestrator) StartLoadJob(ctx context.Context, organizationID int, baseName string) (*Handle, error) {
	return o.Start(ctx, api.StartTaskRequest{
		Kind:           api.TaskKindLoad,
		OrganizationID: organizationID,
		BaseName:       baseName,
	})
}

// StartInteractiveJob runs the interactive table population of a base.
func (o *Orchestrator) StartInteractiveJob(ctx context.Context, organizationID int, baseName string) (*Handle, error) {
	return o.Start(ctx, api.StartTaskRequest{
		Kind:           api.TaskKindInteractive,
		OrganizationID: organizationID,
		BaseName:       baseName,
	})
}

func (o *Orchestrator) StartOrderNuggetsJob(ctx context.Context, organizationID int, baseName, documentName, documentContent string) (*Handle, error) {
	return o.Start(ctx, api.StartTaskRequest{
		Kind:            api.TaskKindOrderNuggets,
		OrganizationID:  organizationID,
		BaseName:        baseName,
		DocumentName:    documentName,
		DocumentContent: documentContent,
	})
}

// NuggetConfirmation identifies the nugget a user confirmed during an
// interactive call.
type NuggetConfirmation struct {
	DocumentName          string
	DocumentContent       string
	NuggetText            string
	StartIndex            int
	EndIndex              int
	InteractiveCallTaskID string
}

func (c NuggetConfirmation) request(kind api.TaskKind, organizationID int, baseName string) api.StartTaskRequest {
	return api.StartTaskRequest{
		Kind:                  kind,
		OrganizationID:        organizationID,
		BaseName:              baseName,
		DocumentName:          c.DocumentName,
		DocumentContent:       c.DocumentContent,
		NuggetText:            c.NuggetText,
		StartIndex:            c.StartIndex,
		EndIndex:              c.EndIndex,
		InteractiveCallTaskID: c.InteractiveCallTaskID,
	}
}

func (o *Orchestrator) StartConfirmMatchJob(ctx context.Context, organizationID int, baseName string, c NuggetConfirmation) (*Handle, error) {
	return o.Start(ctx, c.request(api.TaskKindConfirmMatch, organizationID, baseName))
}

func (o *Orchestrator) StartConfirmCustomJob(ctx context.Context, organizationID int, baseName string, c NuggetConfirmation) (*Handle, error) {
	return o.Start(ctx, c.request(api.TaskKindConfirmCustom, organizationID, baseName))
}

func (o *Orchestrator) StartUpdateAttributesJob(ctx context.Context, organizationID int, baseName string, attributes []string) (*Handle, error) {
	return o.Start(ctx, api.StartTaskRequest{
		Kind:           api.TaskKindUpdateAttributes,
		OrganizationID: organizationID,
		BaseName:       baseName,
		Attributes:     attributes,
	})
}

func (o *Orchestrator) IsJobRunning() bool {
	return o.gate.IsActive()
}

// CurrentJob returns the job being polled, if any.
func (o *Orchestrator) CurrentJob() (Job, bool) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.current == nil {
		return Job{}, false
	}
	return o.current.job, true
}

// LastResult returns the document base of the last successful task until it
// is dismissed.
func (o *Orchestrator) LastResult() *docbase.DocumentBase {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.lastResult
}

// Dismiss clears the last result. Running tasks are not affected.
func (o *Orchestrator) Dismiss() {
	o.setLastResult(nil)
}

// Close stops polling the current task, if any, and waits for the poller to
// exit. The remote task keeps running.
func (o *Orchestrator) Close() {
	o.lock.Lock()
	s := o.current
	o.lock.Unlock()

	if s == nil {
		return
	}
	s.abort()
	<-s.done
}

func (o *Orchestrator) setLastResult(base *docbase.DocumentBase) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.lastResult = base
}

func (o *Orchestrator) endSession(s *session) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.current == s {
		o.current = nil
	}
}

func (o *Orchestrator) publish(kind string, job Job, e events.TaskEvent) {
	if o.events == nil {
		return
	}
	e.TaskID = job.ID
	e.Kind = string(job.Kind)
	e.BaseName = job.BaseName
	e.Time = time.Now()

	data, err := json.Marshal(e)
	if err != nil {
		zap.S().Named("orchestrator").Errorw("failed to encode event", "kind", kind, "error", err)
		return
	}
	if err := o.events.Write(context.Background(), kind, bytes.NewReader(data)); err != nil {
		zap.S().Named("orchestrator").Warnw("failed to publish event", "kind", kind, "error", err)
	}
}
