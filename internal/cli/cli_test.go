package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
	"github.com/wannadb/docbase-tasks/internal/cli"
	"github.com/wannadb/docbase-tasks/internal/client"
	"github.com/wannadb/docbase-tasks/internal/scratch"
)

const resultBody = `{
	"state": "SUCCESS",
	"meta": {"document_base_to_ui": {"msg": {
		"attributes": ["A", "B"],
		"nuggets": [{"document": {"name": "d1", "text": "hello world"}, "start_char": 0, "end_char": 5}]
	}}}
}`

var _ = Describe("docbase command", func() {
	var (
		router       *chi.Mux
		remote       *httptest.Server
		statusCalls  atomic.Int32
		configFile   string
		scratchDir   string
		stdout       *bytes.Buffer
		stderr       *bytes.Buffer
		statusBodies []string
	)

	run := func(args ...string) error {
		cmd := cli.NewDocbaseCommand()
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		common := []string{"--config", configFile, "--scratch-dir", scratchDir}
		if len(args) > 0 && args[0] != "configure" && args[0] != "version" {
			args = append(args, common...)
		}
		cmd.SetArgs(args)
		return cmd.ExecuteContext(context.Background())
	}

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		configFile = filepath.Join(dir, "client.yaml")
		scratchDir = filepath.Join(dir, "scratch")
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		statusCalls.Store(0)
		statusBodies = []string{`{"state": "RUNNING", "meta": {"status": "Extracting"}}`, resultBody}

		router = chi.NewRouter()
		start := func(w http.ResponseWriter, r *http.Request) {
			if r.FormValue("authorization") != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(api.StartTaskResponse{TaskID: "t1"})
		}
		router.Post("/core/document_base", start)
		router.Post("/core/document_base/load", start)
		router.Post("/core/document_base/attributes/update", start)
		router.Get("/core/status/{token}/{taskID}", func(w http.ResponseWriter, r *http.Request) {
			n := int(statusCalls.Add(1)) - 1
			if n >= len(statusBodies) {
				n = len(statusBodies) - 1
			}
			_, _ = w.Write([]byte(statusBodies[n]))
		})
		remote = httptest.NewServer(router)
		Expect(client.WriteConfig(configFile, remote.URL, "tok")).To(Succeed())
	})

	AfterEach(func() {
		remote.Close()
	})

	It("creates a document base and prints it", func() {
		err := run("create", "Base1", "--organization", "1", "--document-ids", "1,2", "--attributes", "A,B",
			"--interval", "10ms", "--jitter", "0", "--silent")
		Expect(err).To(BeNil())

		Expect(stderr.String()).To(ContainSubstring("[t1] Creating Docbase Base1... Please wait..."))
		Expect(stderr.String()).To(ContainSubstring("[t1] Creating Docbase Base1... Extracting..."))
		Expect(stdout.String()).To(ContainSubstring("Docbase Base1"))
		Expect(stdout.String()).To(ContainSubstring(`"hello"`))

		_, err = os.Stat(filepath.Join(scratchDir, scratch.JobIDKey))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("records lifecycle events", func() {
		eventsFile := filepath.Join(GinkgoT().TempDir(), "events.jsonl")
		err := run("load", "Base1", "--organization", "1", "--interval", "10ms", "--jitter", "0", "--silent",
			"--events-file", eventsFile, "--events-topic", "docbases")
		Expect(err).To(BeNil())

		content, err := os.ReadFile(eventsFile)
		Expect(err).To(BeNil())
		Expect(string(content)).To(ContainSubstring(`"type":"docbase.task.submitted"`))
		Expect(string(content)).To(ContainSubstring(`"type":"docbase.task.succeeded"`))
		Expect(string(content)).To(ContainSubstring(`"topic":"docbases"`))
		Expect(string(content)).To(ContainSubstring(remote.URL))
	})

	It("runs a kind given by name", func() {
		err := run("start", "update-attributes", "Base1", "--organization", "1", "--attributes", "C",
			"--interval", "10ms", "--jitter", "0", "--silent", "-o", "json")
		Expect(err).To(BeNil())
		Expect(stdout.String()).To(ContainSubstring(`"attributes": [`))
		Expect(stdout.String()).To(ContainSubstring(`"C"`))
	})

	It("rejects unknown kinds", func() {
		Expect(run("start", "destroy", "Base1")).NotTo(Succeed())
	})

	It("fails when the task fails", func() {
		statusBodies = []string{`{"state": "FAILURE"}`}
		err := run("load", "Base1", "--organization", "1", "--interval", "10ms", "--jitter", "0", "--silent")
		Expect(err).NotTo(BeNil())
		Expect(stderr.String()).To(ContainSubstring("Error: Failed to load Docbase Base1"))
	})

	It("hints at the token when the service rejects it", func() {
		Expect(client.WriteConfig(configFile, remote.URL, "stale")).To(Succeed())
		err := run("load", "Base1", "--organization", "1", "--silent")
		Expect(err).To(MatchError(ContainSubstring("log in again")))
	})

	It("validates flags before calling the service", func() {
		Expect(run("load", "Base1", "--organization", "1", "-o", "xlsx")).To(MatchError(ContainSubstring("--output-file")))
		Expect(run("load", "Base1", "--organization", "1", "-o", "csv")).To(MatchError(ContainSubstring("output format")))
		Expect(run("load", "Base1")).To(MatchError(ContainSubstring("organization")))
		Expect(statusCalls.Load()).To(BeZero())
	})

	Context("status", func() {
		It("reports when nothing is recorded", func() {
			Expect(run("status")).To(Succeed())
			Expect(stdout.String()).To(Equal("no task recorded\n"))
		})

		It("queries the recorded task once", func() {
			store, err := scratch.NewFileStore(scratchDir)
			Expect(err).To(BeNil())
			Expect(store.Set(scratch.JobIDKey, "t1")).To(Succeed())

			Expect(run("status", "-o", "json")).To(Succeed())
			Expect(stdout.String()).To(MatchJSON(`{"taskId": "t1", "state": "RUNNING", "phase": "POLLING", "detail": "Extracting"}`))
			Expect(statusCalls.Load()).To(Equal(int32(1)))
		})
	})

	It("writes the client configuration", func() {
		path := filepath.Join(GinkgoT().TempDir(), "docbase", "client.yaml")
		Expect(run("configure", "--config", path, "--server-url", "http://localhost:8000", "--token", "tok")).To(Succeed())
		Expect(stdout.String()).To(Equal("wrote " + path + "\n"))

		stdout.Reset()
		Expect(run("configure", "--config", path, "--server-url", "http://localhost:8000", "--token", "tok")).To(Succeed())
		Expect(stdout.String()).To(Equal(path + " is up to date\n"))

		Expect(run("configure", "--config", path)).NotTo(Succeed())
	})

	It("prints the version", func() {
		Expect(run("version")).To(Succeed())
		Expect(stdout.String()).To(HavePrefix("Docbase Version: "))
	})
})
