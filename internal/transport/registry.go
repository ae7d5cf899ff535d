// Package transport defines the messaging channel procedures are registered on,
// plus an in-process registry the network front-ends serve from.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Handler answers one procedure call. It receives the raw payload string and
// returns the encoded result.
type Handler func(ctx context.Context, payload string) (string, error)

// Registrar binds procedure names to handlers.
type Registrar interface {
	RegisterProcedure(name string, h Handler) error
}

// Invoker calls a registered procedure by name.
type Invoker interface {
	Invoke(ctx context.Context, name, payload string) (string, error)
}

// ErrUnknownProcedure is returned by Invoke for names nothing registered.
var ErrUnknownProcedure = errors.New("unknown procedure")

// Registry holds registered procedures.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

var (
	_ Registrar = (*Registry)(nil)
	_ Invoker   = (*Registry)(nil)
)

// NewRegistry creates an empty procedure registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// RegisterProcedure adds a procedure.
// Returns an error if the name is empty or already registered.
func (r *Registry) RegisterProcedure(name string, h Handler) error {
	if name == "" {
		return errors.New("procedure name is empty")
	}
	if h == nil {
		return fmt.Errorf("procedure %s: nil handler", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("procedure already registered: %s", name)
	}
	r.handlers[name] = h
	return nil
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Invoke runs the named procedure.
func (r *Registry) Invoke(ctx context.Context, name, payload string) (string, error) {
	h, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProcedure, name)
	}
	return h(ctx, payload)
}

// Names returns the registered procedure names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
