package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one file per key below rootDir so that other processes
// (the status command) can see the slot.
type FileStore struct {
	rootDir string
}

func NewFileStore(rootDir string) (*FileStore, error) {
	if err := os.MkdirAll(rootDir, 0700); err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	return &FileStore{rootDir: rootDir}, nil
}

// PathFor returns the full path of the file backing key.
func (f *FileStore) PathFor(key string) string {
	return filepath.Join(f.rootDir, key)
}

func (f *FileStore) Set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.rootDir, "."+key+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.PathFor(key))
}

func (f *FileStore) Get(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.PathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *FileStore) Remove(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(f.PathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("invalid scratch key %q", key)
	}
	return nil
}
