package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// FileWriter appends events to a file, one JSON encoded cloudevent per line.
type FileWriter struct {
	lock sync.Mutex
	file *os.File
}

func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening events file %q: %w", path, err)
	}
	return &FileWriter{file: f}, nil
}

func (f *FileWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	if e.Extensions()["topic"] == nil {
		e.SetExtension("topic", topic)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	_, err = f.file.Write(append(data, '\n'))
	return err
}

func (f *FileWriter) Close(_ context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.file.Close()
}
