package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
	"github.com/wannadb/docbase-tasks/pkg/requestid"
)

var (
	ErrEmptyResponse     = errors.New("empty response")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUndecodableStatus = errors.New("undecodable task status")
	ErrUnsupportedKind   = errors.New("unsupported task kind")
)

const maxResponseBodyLength = 64 << 20

// TaskService is the client interface of the docbase processing service.
//
//go:generate moq -fmt=goimports -out zz_generated_task_service.go . TaskService
type TaskService interface {
	// StartTask starts a remote task and returns its id.
	StartTask(ctx context.Context, req api.StartTaskRequest) (string, error)
	// GetTaskStatus returns the current status of a task.
	GetTaskStatus(ctx context.Context, taskID string) (*api.TaskStatus, error)
}

var _ TaskService = (*taskService)(nil)

func NewTaskService(config *Config) (TaskService, error) {
	httpClient, err := NewHTTPClientFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("NewTaskService: creating HTTP client %w", err)
	}
	return NewTaskServiceWithHTTPClient(config.Service, httpClient), nil
}

func NewTaskServiceWithHTTPClient(service Service, httpClient *http.Client) TaskService {
	return &taskService{
		server:     strings.TrimRight(service.Server, "/"),
		token:      service.Token,
		httpClient: httpClient,
	}
}

type taskService struct {
	server     string
	token      string
	httpClient *http.Client
}

func (t *taskService) StartTask(ctx context.Context, req api.StartTaskRequest) (string, error) {
	path := req.Kind.Path()
	if path == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, req.Kind)
	}

	body, contentType, err := t.encodeForm(req)
	if err != nil {
		return "", fmt.Errorf("encoding %s form: %w", req.Kind, err)
	}

	httpReq, err := t.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("start %s task: %w", req.Kind, err)
	}
	defer resp.Body.Close()

	if err := checkStatusCode(resp); err != nil {
		return "", fmt.Errorf("start %s task: %w", req.Kind, err)
	}

	var startResp api.StartTaskResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyLength)).Decode(&startResp); err != nil {
		return "", fmt.Errorf("start %s task: decoding response: %w", req.Kind, err)
	}
	if startResp.TaskID == "" {
		return "", fmt.Errorf("start %s task: %w", req.Kind, ErrEmptyResponse)
	}

	return startResp.TaskID, nil
}

func (t *taskService) GetTaskStatus(ctx context.Context, taskID string) (*api.TaskStatus, error) {
	path := api.StatusPath(url.PathEscape(t.token), url.PathEscape(taskID))
	httpReq, err := t.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get task status: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatusCode(resp); err != nil {
		return nil, fmt.Errorf("get task status: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLength))
	if err != nil {
		return nil, fmt.Errorf("get task status: reading body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("get task status: %w", ErrEmptyResponse)
	}

	status, err := api.DecodeTaskStatus(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableStatus, err)
	}
	return status, nil
}

func (t *taskService) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.server+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = requestid.Generate()
	}
	req.Header.Set(middleware.RequestIDHeader, reqID)
	return req, nil
}

// encodeForm writes the multipart form the service expects for the kind.
func (t *taskService) encodeForm(req api.StartTaskRequest) (io.Reader, string, error) {
	fields := [][2]string{
		{"authorization", t.token},
		{"organisationId", strconv.Itoa(req.OrganizationID)},
		{"baseName", req.BaseName},
	}

	switch req.Kind {
	case api.TaskKindCreate:
		fields = append(fields,
			[2]string{"document_ids", joinInts(req.DocumentIDs)},
			[2]string{"attributes", strings.Join(req.Attributes, ",")},
		)
	case api.TaskKindUpdateAttributes:
		fields = append(fields, [2]string{"attributes", strings.Join(req.Attributes, ",")})
	case api.TaskKindOrderNuggets:
		fields = append(fields,
			[2]string{"documentName", req.DocumentName},
			[2]string{"documentContent", req.DocumentContent},
		)
	case api.TaskKindConfirmMatch, api.TaskKindConfirmCustom:
		fields = append(fields,
			[2]string{"documentName", req.DocumentName},
			[2]string{"documentContent", req.DocumentContent},
			[2]string{"nuggetText", req.NuggetText},
			[2]string{"startIndex", strconv.Itoa(req.StartIndex)},
			[2]string{"endIndex", strconv.Itoa(req.EndIndex)},
			[2]string{"interactiveCallTaskId", req.InteractiveCallTaskID},
		)
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func checkStatusCode(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected response: %s", resp.Status)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ",")
}
