package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	TaskSubmittedKind string = "docbase.task.submitted"
	TaskSucceededKind string = "docbase.task.succeeded"
	TaskFailedKind    string = "docbase.task.failed"
	defaultTopic      string = "docbase.tasks"
	defaultSource     string = "docbase-tasks"
)

var ErrProducerClosed = errors.New("event producer closed")

// Writer is the interface to be implemented by the underlying writer.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer is a wrapper around a Writer with a buffer, so callers are
// never blocked by a slow writer.
type EventProducer struct {
	buffer    *buffer
	pendingCh chan struct{}
	doneCh    chan struct{}
	stoppedCh chan struct{}
	closeOnce sync.Once
	writer    Writer
	topic     string
	source    string
}

func NewEventProducer(w Writer, opts ...ProducerOptions) *EventProducer {
	ep := &EventProducer{
		buffer:    newBuffer(),
		pendingCh: make(chan struct{}, 1),
		doneCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		writer:    w,
		topic:     defaultTopic,
		source:    defaultSource,
	}

	for _, o := range opts {
		o(ep)
	}

	go ep.run()
	return ep
}

func (ep *EventProducer) Write(ctx context.Context, kind string, body io.Reader) error {
	select {
	case <-ep.doneCh:
		return ErrProducerClosed
	default:
	}

	d, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	ep.buffer.PushBack(&message{
		Kind: kind,
		Data: d,
	})

	select {
	case ep.pendingCh <- struct{}{}:
	default:
	}

	return nil
}

// Close flushes pending events and closes the writer.
func (ep *EventProducer) Close() error {
	var err error
	ep.closeOnce.Do(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		close(ep.doneCh)

		g, ctx := errgroup.WithContext(closeCtx)
		g.Go(func() error {
			select {
			case <-ep.stoppedCh:
			case <-ctx.Done():
				return ctx.Err()
			}
			return ep.writer.Close(ctx)
		})
		if err = g.Wait(); err != nil {
			zap.S().Named("event_producer").Errorf("event producer closed with error: %s", err)
			return
		}

		zap.S().Named("event_producer").Debug("event producer closed")
	})
	return err
}

func (ep *EventProducer) run() {
	defer close(ep.stoppedCh)
	for {
		ep.flush()

		select {
		case <-ep.pendingCh:
		case <-ep.doneCh:
			ep.flush()
			return
		}
	}
}

func (ep *EventProducer) flush() {
	for msg := ep.buffer.Pop(); msg != nil; msg = ep.buffer.Pop() {
		e := cloudevents.NewEvent()
		e.SetID(uuid.NewString())
		e.SetSource(ep.source)
		e.SetType(msg.Kind)
		e.SetTime(time.Now())
		_ = e.SetData(*cloudevents.StringOfApplicationJSON(), msg.Data)

		if err := ep.writer.Write(context.TODO(), ep.topic, e); err != nil {
			zap.S().Named("event_producer").Errorw("failed to write event", "error", err, "event", e)
		}
	}
}
