package orchestrator_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
	"github.com/wannadb/docbase-tasks/internal/client"
	"github.com/wannadb/docbase-tasks/internal/docbase"
	"github.com/wannadb/docbase-tasks/internal/events"
	"github.com/wannadb/docbase-tasks/internal/orchestrator"
	"github.com/wannadb/docbase-tasks/internal/scratch"
)

const successBody = `{
	"state": "SUCCESS",
	"meta": {
		"document_base_to_ui": {
			"msg": {
				"attributes": ["X", "Y"],
				"nuggets": [
					{"document": {"name": "d1", "text": "hello world"}, "start_char": 0, "end_char": 5}
				]
			}
		}
	}
}`

var _ = Describe("orchestrator", func() {
	var (
		ctx       context.Context
		rec       *recorder
		ticker    *manualTicker
		store     *scratch.MemoryStore
		publisher *fakePublisher
	)

	newOrchestrator := func(c client.TaskService) *orchestrator.Orchestrator {
		return orchestrator.New(c, rec.sinks(),
			orchestrator.WithTicker(func(time.Duration) orchestrator.Ticker { return ticker }),
			orchestrator.WithScratchStore(store),
			orchestrator.WithEventPublisher(publisher),
		)
	}

	wait := func(h *orchestrator.Handle) (*docbase.DocumentBase, error) {
		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return h.Wait(waitCtx)
	}

	BeforeEach(func() {
		ctx = context.Background()
		rec = &recorder{}
		ticker = newManualTicker()
		store = scratch.NewMemoryStore()
		publisher = &fakePublisher{}
	})

	Context("create", func() {
		It("polls until success and displays the document base", func() {
			svc := scriptedService("t1",
				reply(`{"state": "RUNNING", "meta": {"status": "Extracting"}}`),
				reply(successBody),
			)
			o := newOrchestrator(svc)

			h, err := o.StartCreateJob(ctx, 1, "Base1", []int{10, 11}, []string{"A", "B"})
			Expect(err).To(BeNil())
			Expect(h.Job().ID).To(Equal("t1"))
			Expect(h.Job().DisplayName).To(Equal("Docbase Base1"))
			Expect(o.IsJobRunning()).To(BeTrue())

			Eventually(rec.Progress).Should(HaveLen(2))
			Expect(rec.Progress()).To(Equal([]orchestrator.Progress{
				{Title: "Creating Docbase Base1...", Detail: "Please wait...", JobID: "t1"},
				{Title: "Creating Docbase Base1...", Detail: "Extracting...", JobID: "t1", Locked: true},
			}))
			Expect(h.State()).To(Equal(orchestrator.StatePolling))
			id, err := store.Get(scratch.JobIDKey)
			Expect(err).To(BeNil())
			Expect(id).To(Equal("t1"))

			ticker.Tick()
			base, err := wait(h)
			Expect(err).To(BeNil())
			Expect(h.State()).To(Equal(orchestrator.StateSucceeded))

			Expect(base.Name()).To(Equal("Base1"))
			Expect(base.Attributes()).To(Equal([]string{"A", "B"}))
			Expect(base.Nuggets()).To(HaveLen(1))
			Expect(base.Nuggets()[0].Text()).To(Equal("hello"))

			Expect(rec.Displayed()).To(ConsistOf(base))
			Expect(rec.Cues()).To(Equal([]orchestrator.Cue{orchestrator.CueSuccess}))
			Expect(rec.Notifications()).To(BeEmpty())
			Expect(rec.Calls()).To(Equal([]string{"show", "show", "play:success", "hide", "display"}))
			Expect(o.LastResult()).To(BeIdenticalTo(base))

			_, err = store.Get(scratch.JobIDKey)
			Expect(err).To(MatchError(scratch.ErrNotFound))
			Expect(o.IsJobRunning()).To(BeFalse())
			_, running := o.CurrentJob()
			Expect(running).To(BeFalse())
			Expect(ticker.Stops()).To(Equal(int32(1)))

			Expect(svc.StartTaskCalls()).To(HaveLen(1))
			Expect(svc.StartTaskCalls()[0].Req.Kind).To(Equal(api.TaskKindCreate))
			Expect(publisher.Kinds()).To(Equal([]string{events.TaskSubmittedKind, events.TaskSucceededKind}))
		})

		It("issues no status query after the terminal transition", func() {
			svc := scriptedService("t1", reply(successBody))
			o := newOrchestrator(svc)

			h, err := o.StartCreateJob(ctx, 1, "Base1", []int{1}, []string{"A"})
			Expect(err).To(BeNil())
			_, err = wait(h)
			Expect(err).To(BeNil())

			ticker.Tick()
			ticker.Tick()
			Consistently(func() int { return len(svc.GetTaskStatusCalls()) }, 200*time.Millisecond).Should(Equal(1))
			Expect(ticker.Stops()).To(Equal(int32(1)))
		})

		It("skips nuggets that do not fit their document", func() {
			svc := scriptedService("t1", reply(`{
				"state": "SUCCESS",
				"meta": {"document_base_to_ui": {"msg": {"nuggets": [
					{"document": {"name": "d1", "text": "hello"}, "start_char": 0, "end_char": 5},
					{"document": {"name": "d1", "text": "hello"}, "start_char": 0, "end_char": 6},
					{"document": {"name": "d2", "text": "world"}, "start_char": 1, "end_char": 3},
					{"document": {"name": "d2", "text": "world"}, "start_char": 4, "end_char": 2},
					{"document": {"name": "d3", "text": "ab"}, "start_char": 2, "end_char": 2}
				]}}}
			}`))
			o := newOrchestrator(svc)

			h, err := o.StartCreateJob(ctx, 1, "Base1", []int{1}, []string{"A"})
			Expect(err).To(BeNil())
			base, err := wait(h)
			Expect(err).To(BeNil())

			Expect(base.Nuggets()).To(HaveLen(3))
			Expect(rec.Notifications()).To(Equal([][2]string{
				{docbase.TranslationErrorTitle, docbase.TranslationErrorMessage},
				{docbase.TranslationErrorTitle, docbase.TranslationErrorMessage},
			}))
			Expect(rec.Displayed()).To(HaveLen(1))
		})

		It("keeps the job alive when one descriptor is malformed", func() {
			svc := scriptedService("t1", reply(`{
				"state": "SUCCESS",
				"meta": {"document_base_to_ui": {"msg": {"nuggets": [
					{"document": {"name": "d1", "text": "hello world"}, "start_char": 0, "end_char": 5},
					{"document": {"name": "d2", "text": "abc"}, "start_char": 0}
				]}}}
			}`))
			o := newOrchestrator(svc)

			h, err := o.StartCreateJob(ctx, 1, "B", []int{1}, []string{"A"})
			Expect(err).To(BeNil())
			base, err := wait(h)
			Expect(err).To(BeNil())
			Expect(h.State()).To(Equal(orchestrator.StateSucceeded))

			Expect(base.Nuggets()).To(HaveLen(1))
			Expect(base.Nuggets()[0].Text()).To(Equal("hello"))
			Expect(rec.Notifications()).To(Equal([][2]string{
				{docbase.TranslationErrorTitle, docbase.TranslationErrorMessage},
			}))
		})
	})

	Context("load", func() {
		It("takes attributes from the payload and plays no success cue", func() {
			svc := scriptedService("t2", reply(successBody))
			o := newOrchestrator(svc)

			h, err := o.StartLoadJob(ctx, 1, "Base2")
			Expect(err).To(BeNil())
			base, err := wait(h)
			Expect(err).To(BeNil())

			Expect(base.Attributes()).To(Equal([]string{"X", "Y"}))
			Expect(rec.Cues()).To(BeEmpty())
			Expect(rec.Progress()[0].Title).To(Equal("Loading Docbase Base2..."))
		})

		It("builds an empty base when the payload is missing", func() {
			svc := scriptedService("t2", reply(`{"state": "SUCCESS"}`))
			o := newOrchestrator(svc)

			h, err := o.StartLoadJob(ctx, 1, "Base2")
			Expect(err).To(BeNil())
			base, err := wait(h)
			Expect(err).To(BeNil())
			Expect(base.Name()).To(Equal("Base2"))
			Expect(base.Attributes()).To(BeEmpty())
			Expect(base.Nuggets()).To(BeEmpty())
		})
	})

	Context("failures", func() {
		It("fails on a failure state regardless of case and whitespace", func() {
			svc := scriptedService("t3",
				reply(`{"state": "PENDING"}`),
				reply(`{"state": " Failure "}`),
			)
			o := newOrchestrator(svc)

			h, err := o.StartLoadJob(ctx, 1, "Base3")
			Expect(err).To(BeNil())
			Eventually(rec.Progress).Should(HaveLen(2))
			Expect(rec.Progress()[1].Detail).To(Equal("PENDING..."))

			ticker.Tick()
			base, err := wait(h)
			Expect(base).To(BeNil())
			var failed *orchestrator.TaskFailedError
			Expect(errors.As(err, &failed)).To(BeTrue())
			Expect(failed.Job.ID).To(Equal("t3"))

			Expect(h.State()).To(Equal(orchestrator.StateFailed))
			Expect(rec.Calls()).To(Equal([]string{"show", "show", "play:error", "notify", "hide"}))
			Expect(rec.Notifications()).To(Equal([][2]string{{"Error", "Failed to load Docbase Base3"}}))
			Expect(o.LastResult()).To(BeNil())
			Expect(o.IsJobRunning()).To(BeFalse())
			_, err = store.Get(scratch.JobIDKey)
			Expect(err).To(MatchError(scratch.ErrNotFound))
			Expect(publisher.Kinds()).To(Equal([]string{events.TaskSubmittedKind, events.TaskFailedKind}))
		})

		It("fails when the status query fails", func() {
			boom := errors.New("connection refused")
			svc := scriptedService("t4", replyErr(boom))
			o := newOrchestrator(svc)

			h, err := o.StartCreateJob(ctx, 1, "Base4", []int{1}, []string{"A"})
			Expect(err).To(BeNil())
			_, err = wait(h)
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(rec.Notifications()).To(Equal([][2]string{{"Error", "Failed to create Docbase Base4"}}))
			Expect(o.IsJobRunning()).To(BeFalse())
		})

		It("clears the previous result", func() {
			svc := scriptedService("t5", reply(successBody))
			o := newOrchestrator(svc)
			h, err := o.StartLoadJob(ctx, 1, "Base5")
			Expect(err).To(BeNil())
			_, err = wait(h)
			Expect(err).To(BeNil())
			Expect(o.LastResult()).NotTo(BeNil())

			svc.GetTaskStatusFunc = func(ctx context.Context, taskID string) (*api.TaskStatus, error) {
				return status(`{"state": "FAILURE"}`), nil
			}
			ticker = newManualTicker()
			h, err = o.StartLoadJob(ctx, 1, "Base5")
			Expect(err).To(BeNil())
			_, err = wait(h)
			Expect(err).NotTo(BeNil())
			Expect(o.LastResult()).To(BeNil())
		})
	})

	Context("submission", func() {
		It("refuses a second task while one is running", func() {
			svc := scriptedService("t6", reply(`{"state": "RUNNING"}`))
			o := newOrchestrator(svc)

			h, err := o.StartLoadJob(ctx, 1, "Base6")
			Expect(err).To(BeNil())
			Eventually(rec.Progress).Should(HaveLen(2))

			_, err = o.StartCreateJob(ctx, 1, "Other", []int{1}, []string{"A"})
			Expect(err).To(MatchError(orchestrator.ErrAlreadyRunning))
			Expect(svc.StartTaskCalls()).To(HaveLen(1))
			Expect(rec.Notifications()).To(BeEmpty())

			o.Close()
			_, err = wait(h)
			Expect(err).To(MatchError(orchestrator.ErrAborted))
			Expect(o.IsJobRunning()).To(BeFalse())
			id, err := store.Get(scratch.JobIDKey)
			Expect(err).To(BeNil())
			Expect(id).To(Equal("t6"))
			Expect(ticker.Stops()).To(Equal(int32(1)))
		})

		It("admits a single task out of concurrent starts", func() {
			release := make(chan struct{})
			svc := scriptedService("t7", reply(`{"state": "RUNNING"}`))
			svc.StartTaskFunc = func(ctx context.Context, req api.StartTaskRequest) (string, error) {
				<-release
				return "t7", nil
			}
			o := newOrchestrator(svc)

			results := make(chan error, 5)
			for i := 0; i < 5; i++ {
				go func() {
					_, err := o.StartLoadJob(ctx, 1, "Base7")
					results <- err
				}()
			}
			Eventually(func() int { return len(svc.StartTaskCalls()) }).Should(Equal(1))
			close(release)

			var busy, ok int
			for i := 0; i < 5; i++ {
				if err := <-results; err == nil {
					ok++
				} else {
					Expect(err).To(MatchError(orchestrator.ErrAlreadyRunning))
					busy++
				}
			}
			Expect(ok).To(Equal(1))
			Expect(busy).To(Equal(4))
			o.Close()
		})

		It("notifies and releases the gate when the service rejects the task", func() {
			svc := &client.TaskServiceMock{
				StartTaskFunc: func(ctx context.Context, req api.StartTaskRequest) (string, error) {
					return "", client.ErrUnauthorized
				},
			}
			o := newOrchestrator(svc)

			h, err := o.StartCreateJob(ctx, 1, "Base8", []int{1}, []string{"A"})
			Expect(h).To(BeNil())
			var subErr *orchestrator.SubmissionError
			Expect(errors.As(err, &subErr)).To(BeTrue())
			Expect(subErr.DisplayName).To(Equal("Docbase Base8"))
			Expect(errors.Is(err, client.ErrUnauthorized)).To(BeTrue())

			Expect(rec.Notifications()).To(Equal([][2]string{{"Error", "Failed to create Docbase Base8"}}))
			Expect(rec.Progress()).To(BeEmpty())
			Expect(o.IsJobRunning()).To(BeFalse())
			Expect(svc.GetTaskStatusCalls()).To(BeEmpty())
			_, err = store.Get(scratch.JobIDKey)
			Expect(err).To(MatchError(scratch.ErrNotFound))
		})

		It("treats an empty task id as a rejection", func() {
			svc := scriptedService("", reply(`{"state": "RUNNING"}`))
			o := newOrchestrator(svc)

			_, err := o.StartLoadJob(ctx, 1, "Base9")
			Expect(errors.Is(err, client.ErrEmptyResponse)).To(BeTrue())
			Expect(o.IsJobRunning()).To(BeFalse())
			Expect(svc.GetTaskStatusCalls()).To(BeEmpty())
		})

		It("validates the request before calling the service", func() {
			svc := scriptedService("t10", reply(`{"state": "RUNNING"}`))
			o := newOrchestrator(svc)

			_, err := o.StartCreateJob(ctx, 0, "Base10", nil, []string{"A"})
			var subErr *orchestrator.SubmissionError
			Expect(errors.As(err, &subErr)).To(BeTrue())
			Expect(svc.StartTaskCalls()).To(BeEmpty())
			Expect(rec.Notifications()).To(HaveLen(1))
			Expect(o.IsJobRunning()).To(BeFalse())
		})

		It("sends the confirmation fields", func() {
			svc := scriptedService("t11", reply(successBody))
			o := newOrchestrator(svc)

			h, err := o.StartConfirmMatchJob(ctx, 3, "Base11", orchestrator.NuggetConfirmation{
				DocumentName:          "d1",
				DocumentContent:       "hello world",
				NuggetText:            "hello",
				StartIndex:            0,
				EndIndex:              5,
				InteractiveCallTaskID: "t0",
			})
			Expect(err).To(BeNil())
			_, err = wait(h)
			Expect(err).To(BeNil())

			req := svc.StartTaskCalls()[0].Req
			Expect(req.Kind).To(Equal(api.TaskKindConfirmMatch))
			Expect(req.OrganizationID).To(Equal(3))
			Expect(req.InteractiveCallTaskID).To(Equal("t0"))
			Expect(rec.Progress()[0].Title).To(Equal("Confirming the match in Docbase Base11..."))
		})

		It("keeps the submitted attribute order when updating attributes", func() {
			svc := scriptedService("t12", reply(successBody))
			o := newOrchestrator(svc)

			h, err := o.StartUpdateAttributesJob(ctx, 1, "Base12", []string{"C", "D"})
			Expect(err).To(BeNil())
			base, err := wait(h)
			Expect(err).To(BeNil())
			Expect(base.Attributes()).To(Equal([]string{"C", "D"}))
		})
	})

	Context("result", func() {
		It("dismisses the last result without touching the gate", func() {
			svc := scriptedService("t13", reply(successBody))
			o := newOrchestrator(svc)

			h, err := o.StartLoadJob(ctx, 1, "Base13")
			Expect(err).To(BeNil())
			_, err = wait(h)
			Expect(err).To(BeNil())

			o.Dismiss()
			Expect(o.LastResult()).To(BeNil())
			Expect(o.IsJobRunning()).To(BeFalse())
			Expect(svc.GetTaskStatusCalls()).To(HaveLen(1))
		})

		It("closes without a running task", func() {
			o := newOrchestrator(&client.TaskServiceMock{})
			o.Close()
			Expect(o.IsJobRunning()).To(BeFalse())
		})
	})
})
