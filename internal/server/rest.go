package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wannadb/docbase-tasks/internal/client"
	"github.com/wannadb/docbase-tasks/internal/docbase"
	"github.com/wannadb/docbase-tasks/internal/orchestrator"
	"github.com/wannadb/docbase-tasks/pkg/log"
	"github.com/wannadb/docbase-tasks/pkg/metrics"
	"github.com/wannadb/docbase-tasks/pkg/requestid"
	"github.com/wannadb/docbase-tasks/pkg/version"
)

// TaskState is the part of the orchestrator the local API exposes.
type TaskState interface {
	IsJobRunning() bool
	CurrentJob() (orchestrator.Job, bool)
	LastResult() *docbase.DocumentBase
	Dismiss()
}

// ConnectionReporter reports the reachability of the remote service.
type ConnectionReporter interface {
	GetStatus() client.ConnectionStatus
}

var httpMetrics = sync.OnceValue(func() *metrics.Middleware {
	m := metrics.NewMiddleware("docbase")
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		zap.S().Named("server").Warnw("http metrics not registered", "error", err)
	}
	return m
})

func NewRouter(state TaskState, conn ConnectionReporter) *chi.Mux {
	router := chi.NewRouter()
	router.Use(requestid.Middleware)
	router.Use(log.Logger(zap.L(), "http"))
	router.Use(httpMetrics().Handler)

	RegisterApi(router, state, conn)
	router.Handle("/metrics", promhttp.Handler())
	return router
}

func RegisterApi(router chi.Router, state TaskState, conn ConnectionReporter) {
	router.Get("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		_ = render.Render(w, r, VersionReply{Version: version.Get().String()})
	})
	router.Get("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		reply := StatusReply{Running: state.IsJobRunning()}
		if job, ok := state.CurrentJob(); ok {
			reply.TaskID = job.ID
			reply.Kind = string(job.Kind)
			reply.BaseName = job.BaseName
		}
		if conn != nil {
			cs := conn.GetStatus()
			reply.Connected = &cs.Connected
			reply.Authorized = &cs.Authorized
			if !cs.LastContactTime.IsZero() {
				reply.LastContact = &cs.LastContactTime
			}
		}
		_ = render.Render(w, r, reply)
	})
	router.Get("/api/v1/result", func(w http.ResponseWriter, r *http.Request) {
		base := state.LastResult()
		if base == nil {
			render.Status(r, http.StatusNotFound)
			_ = render.Render(w, r, ErrorReply{Message: "no document base available"})
			return
		}
		render.JSON(w, r, base)
	})
	router.Delete("/api/v1/result", func(w http.ResponseWriter, r *http.Request) {
		state.Dismiss()
		zap.S().Named("rest").Debug("result dismissed")
		w.WriteHeader(http.StatusNoContent)
	})
}

type StatusReply struct {
	Running     bool       `json:"running"`
	TaskID      string     `json:"taskId,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	BaseName    string     `json:"baseName,omitempty"`
	Connected   *bool      `json:"connected,omitempty"`
	Authorized  *bool      `json:"authorized,omitempty"`
	LastContact *time.Time `json:"lastContact,omitempty"`
}

type VersionReply struct {
	Version string `json:"version"`
}

type ErrorReply struct {
	Message string `json:"message"`
}

func (s StatusReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (v VersionReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
