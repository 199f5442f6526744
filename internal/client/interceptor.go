package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
)

// ConnectionStatus is what the interceptor learned from the last calls.
type ConnectionStatus struct {
	Connected       bool
	Authorized      bool
	LastError       error
	LastContactTime time.Time
}

// Interceptor wraps a TaskService and records whether the service was
// reachable and accepted the token.
type Interceptor struct {
	status ConnectionStatus
	client TaskService
	l      sync.Mutex
}

var _ TaskService = (*Interceptor)(nil)

func NewInterceptor(client TaskService) *Interceptor {
	return &Interceptor{
		client: client,
		status: ConnectionStatus{Connected: false, Authorized: true},
	}
}

func (i *Interceptor) GetStatus() ConnectionStatus {
	i.l.Lock()
	defer i.l.Unlock()
	return i.status
}

func (i *Interceptor) StartTask(ctx context.Context, req api.StartTaskRequest) (string, error) {
	id, err := i.client.StartTask(ctx, req)
	i.record(err)
	return id, err
}

func (i *Interceptor) GetTaskStatus(ctx context.Context, taskID string) (*api.TaskStatus, error) {
	status, err := i.client.GetTaskStatus(ctx, taskID)
	i.record(err)
	return status, err
}

func (i *Interceptor) record(err error) {
	i.l.Lock()
	defer i.l.Unlock()

	i.status.LastError = err
	if err != nil {
		var netOpErr *net.OpError
		if errors.As(err, &netOpErr) {
			i.status.Connected = false
			return
		}
		i.status.Connected = true
		i.status.LastContactTime = time.Now()
		i.status.Authorized = !errors.Is(err, ErrUnauthorized)
		return
	}

	i.status.Connected = true
	i.status.Authorized = true
	i.status.LastContactTime = time.Now()
}
