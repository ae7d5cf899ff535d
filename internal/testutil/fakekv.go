// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"maps"
	"sync"
)

// FakeKV is an in-memory persist.KV with error injection and a write log.
type FakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	writes []Write
	closed bool

	// Error injection for testing
	GetErr error
	SetErr error
	// SetErrFor fails writes to one key only.
	SetErrFor map[string]error
}

// Write is one recorded Set call.
type Write struct {
	Key   string
	Value string
}

// NewFakeKV creates an empty FakeKV.
func NewFakeKV() *FakeKV {
	return &FakeKV{
		data:      make(map[string]string),
		SetErrFor: make(map[string]error),
	}
}

// Seed stores a value without recording a write.
func (f *FakeKV) Seed(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

// Get implements persist.KV.
func (f *FakeKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

// Set implements persist.KV.
func (f *FakeKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	if err := f.SetErrFor[key]; err != nil {
		return err
	}
	f.data[key] = value
	f.writes = append(f.writes, Write{Key: key, Value: value})
	return nil
}

// Close implements persist.KV.
func (f *FakeKV) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FakeKV) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Value returns the stored value for key.
func (f *FakeKV) Value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

// Writes returns a copy of the recorded writes.
func (f *FakeKV) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// Data returns a copy of all stored values.
func (f *FakeKV) Data() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.data)
}

// SetFailure injects (or with nil clears) a write error for every key.
func (f *FakeKV) SetFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetErr = err
}
