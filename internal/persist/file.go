package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV stores all keys in a single JSON document, rewritten atomically on
// every Set (temp file + rename).
type FileKV struct {
	path string

	mu      sync.Mutex
	data    map[string]string
	loadErr error
}

// OpenFile opens the document at path. A missing file is an empty store. A
// corrupt file does not fail OpenFile: Get reports the error until the next
// successful Set replaces the document.
func OpenFile(path string) (*FileKV, error) {
	if path == "" {
		return nil, errors.New("file store path is empty")
	}
	f := &FileKV{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		f.loadErr = fmt.Errorf("read %s: %w", path, err)
	default:
		if err := json.Unmarshal(raw, &f.data); err != nil {
			f.data = make(map[string]string)
			f.loadErr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return f, nil
}

// Path returns the document location.
func (f *FileKV) Path() string { return f.path }

func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return "", false, f.loadErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FileKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	f.data[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	f.loadErr = nil
	return nil
}

func (f *FileKV) Close() error { return nil }

func (f *FileKV) flush() error {
	body, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".vtodo-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
