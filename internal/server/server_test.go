package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
	"github.com/wannadb/docbase-tasks/internal/client"
	"github.com/wannadb/docbase-tasks/internal/docbase"
	"github.com/wannadb/docbase-tasks/internal/orchestrator"
	"github.com/wannadb/docbase-tasks/internal/server"
)

type fakeState struct {
	running bool
	job     *orchestrator.Job
	result  *docbase.DocumentBase
}

func (f *fakeState) IsJobRunning() bool { return f.running }

func (f *fakeState) CurrentJob() (orchestrator.Job, bool) {
	if f.job == nil {
		return orchestrator.Job{}, false
	}
	return *f.job, true
}

func (f *fakeState) LastResult() *docbase.DocumentBase { return f.result }
func (f *fakeState) Dismiss()                          { f.result = nil }

type fakeConn struct{ status client.ConnectionStatus }

func (f fakeConn) GetStatus() client.ConnectionStatus { return f.status }

var _ = Describe("local api", func() {
	var (
		state  *fakeState
		router http.Handler
	)

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	BeforeEach(func() {
		state = &fakeState{}
		router = server.NewRouter(state, fakeConn{status: client.ConnectionStatus{Connected: true, Authorized: true}})
	})

	It("reports an idle orchestrator", func() {
		rec := do(http.MethodGet, "/api/v1/status")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"running": false, "connected": true, "authorized": true}`))
		Expect(rec.Header().Get("X-Request-Id")).NotTo(BeEmpty())
	})

	It("reports the running task", func() {
		state.running = true
		state.job = &orchestrator.Job{ID: "t1", Kind: api.TaskKindCreate, BaseName: "Base1"}

		var reply server.StatusReply
		Expect(json.Unmarshal(do(http.MethodGet, "/api/v1/status").Body.Bytes(), &reply)).To(Succeed())
		Expect(reply.Running).To(BeTrue())
		Expect(reply.TaskID).To(Equal("t1"))
		Expect(reply.Kind).To(Equal("CREATE"))
	})

	It("serves and dismisses the last result", func() {
		Expect(do(http.MethodGet, "/api/v1/result").Code).To(Equal(http.StatusNotFound))

		base := docbase.New("Base1", []string{"A"})
		Expect(base.AddNugget("d1", "hello world", 0, 5)).To(Succeed())
		state.result = base

		rec := do(http.MethodGet, "/api/v1/result")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"name":"Base1"`))

		Expect(do(http.MethodDelete, "/api/v1/result").Code).To(Equal(http.StatusNoContent))
		Expect(state.result).To(BeNil())
		Expect(do(http.MethodGet, "/api/v1/result").Code).To(Equal(http.StatusNotFound))
	})

	It("exposes metrics", func() {
		do(http.MethodGet, "/api/v1/status")
		rec := do(http.MethodGet, "/metrics")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("docbase_http_requests_total"))
		Expect(rec.Body.String()).To(ContainSubstring("docbase_tasks_skipped_ticks_total"))
	})

	It("serves on a real listener", func() {
		s := server.NewServer("127.0.0.1:0", state, nil)
		Expect(s.Start()).To(Succeed())
		defer func() { Expect(s.Stop(context.Background())).To(Succeed()) }()

		httpClient := &http.Client{Timeout: 5 * time.Second}
		resp, err := httpClient.Get("http://" + s.Addr() + "/api/v1/version")
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).To(BeNil())
		Expect(string(body)).To(ContainSubstring(`"version"`))
	})
})
