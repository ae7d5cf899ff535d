// Package rpc binds the remote procedure surface to a list store.
//
// Every procedure takes a JSON payload string and answers with a string.
// Mutations without data answer "", queries answer JSON, and every call that
// was not applied answers a Failure object instead of a transport error.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"vtodo/internal/logging"
	"vtodo/internal/metrics"
	"vtodo/internal/service"
	"vtodo/internal/transport"
)

// Procedure names.
const (
	AddTodo        = "addTodo"
	GetTodos       = "getTodos"
	CompleteTodo   = "completeTodo"
	DeleteTodo     = "deleteTodo"
	ClearCompleted = "clearCompleted"
	MoveTodo       = "moveTodo"
	CreateList     = "createList"
	SwitchList     = "switchList"
	GetListNames   = "getListNames"
	DeleteList     = "deleteList"
)

// Procedures lists every procedure in registration order.
var Procedures = []string{
	AddTodo, GetTodos, CompleteTodo, DeleteTodo, ClearCompleted,
	MoveTodo, CreateList, SwitchList, GetListNames, DeleteList,
}

// ErrAlreadyRegistered is returned by a second Register call.
var ErrAlreadyRegistered = errors.New("procedures already registered")

// Dispatcher decodes payloads, applies them to a Service and encodes results.
type Dispatcher struct {
	svc     service.Service
	log     *slog.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	registered bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = logging.Named(l, "rpc") }
}

// WithMetrics records call counts and latency on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a Dispatcher for svc.
func New(svc service.Service, opts ...Option) *Dispatcher {
	d := &Dispatcher{svc: svc, log: logging.Discard()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// call is one procedure body. A string result is sent as is; anything else
// is JSON encoded.
type call func(payload string) (any, error)

func (d *Dispatcher) table() map[string]call {
	return map[string]call{
		AddTodo:        d.addTodo,
		GetTodos:       d.getTodos,
		CompleteTodo:   d.completeTodo,
		DeleteTodo:     d.deleteTodo,
		ClearCompleted: d.clearCompleted,
		MoveTodo:       d.moveTodo,
		CreateList:     d.createList,
		SwitchList:     d.switchList,
		GetListNames:   d.getListNames,
		DeleteList:     d.deleteList,
	}
}

// Register binds every procedure on r. It succeeds at most once per
// Dispatcher; later calls return ErrAlreadyRegistered and register nothing.
func (d *Dispatcher) Register(r transport.Registrar) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.registered {
		return ErrAlreadyRegistered
	}
	d.registered = true

	table := d.table()
	for _, name := range Procedures {
		if err := r.RegisterProcedure(name, d.handler(name, table[name])); err != nil {
			return err
		}
	}
	d.log.Debug("procedures registered", "count", len(Procedures))
	return nil
}

// Handle runs one procedure directly, bypassing any registrar.
func (d *Dispatcher) Handle(ctx context.Context, name, payload string) (string, error) {
	fn, ok := d.table()[name]
	if !ok {
		return "", transport.ErrUnknownProcedure
	}
	return d.handler(name, fn)(ctx, payload)
}

func (d *Dispatcher) handler(name string, fn call) transport.Handler {
	return func(ctx context.Context, payload string) (string, error) {
		start := time.Now()
		out, err := fn(payload)

		outcome := "ok"
		var result string
		if err != nil {
			f := failureFor(name, err)
			outcome = f.Code
			result = mustJSON(f)
		} else if s, ok := out.(string); ok {
			result = s
		} else {
			result = mustJSON(out)
		}

		elapsed := time.Since(start)
		d.metrics.ObserveRPC(name, outcome, elapsed)
		d.log.Debug("call", "procedure", name, "outcome", outcome, "latency", elapsed)
		if err != nil {
			d.log.Info("call rejected", "procedure", name, "code", outcome, "err", err)
		}
		return result, nil
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(Failure{Error: err.Error(), Code: CodeInternal})
	}
	return string(b)
}

// failureFor maps an error to its Failure. Messages for missing or protected
// lists keep the wording remote callers already understand.
func failureFor(name string, err error) Failure {
	f := Failure{Error: err.Error(), Code: CodeInternal}
	switch {
	case errors.Is(err, ErrDecode):
		f.Code = CodeDecode
	case errors.Is(err, service.ErrNotFound):
		f.Code = CodeNotFound
		if name == SwitchList || name == DeleteList {
			f.Error = "List not found"
		}
	case errors.Is(err, service.ErrOutOfRange):
		f.Code = CodeOutOfRange
	case errors.Is(err, service.ErrProtected):
		f.Code = CodeProtected
		f.Error = "Cannot delete " + service.DefaultList + " list"
	case errors.Is(err, service.ErrInvalidArgument):
		f.Code = CodeInvalidArgument
	}
	return f
}

func (d *Dispatcher) addTodo(payload string) (any, error) {
	var p addTodoPayload
	if err := decode(payload, &p, false); err != nil {
		return nil, err
	}
	return "", d.svc.AddItem(p.ListName, *p.Task)
}

func (d *Dispatcher) getTodos(payload string) (any, error) {
	var p listPayload
	if err := decode(payload, &p, true); err != nil {
		return nil, err
	}
	return d.svc.ListItems(p.ListName), nil
}

func (d *Dispatcher) completeTodo(payload string) (any, error) {
	var p indexPayload
	if err := decode(payload, &p, false); err != nil {
		return nil, err
	}
	return "", d.svc.ToggleItem(p.ListName, *p.Index)
}

func (d *Dispatcher) deleteTodo(payload string) (any, error) {
	var p indexPayload
	if err := decode(payload, &p, false); err != nil {
		return nil, err
	}
	return "", d.svc.RemoveItem(p.ListName, *p.Index)
}

func (d *Dispatcher) clearCompleted(payload string) (any, error) {
	var p listPayload
	if err := decode(payload, &p, true); err != nil {
		return nil, err
	}
	d.svc.ClearDone(p.ListName)
	return "", nil
}

func (d *Dispatcher) moveTodo(payload string) (any, error) {
	var p movePayload
	if err := decode(payload, &p, false); err != nil {
		return nil, err
	}
	return "", d.svc.MoveItem(p.ListName, *p.FromIndex, *p.ToIndex)
}

func (d *Dispatcher) createList(payload string) (any, error) {
	var p namePayload
	if err := decode(payload, &p, false); err != nil {
		return nil, err
	}
	created, err := d.svc.CreateList(*p.ListName)
	if err != nil {
		return nil, err
	}
	return CreateListResult{Success: true, ListName: service.NormalizeName(*p.ListName), Created: created}, nil
}

func (d *Dispatcher) switchList(payload string) (any, error) {
	var p namePayload
	if err := decode(payload, &p, false); err != nil {
		return nil, err
	}
	if err := d.svc.SwitchActiveList(*p.ListName); err != nil {
		return nil, err
	}
	return SwitchListResult{Success: true, ListName: service.NormalizeName(*p.ListName)}, nil
}

func (d *Dispatcher) getListNames(string) (any, error) {
	return d.svc.ListNames(), nil
}

func (d *Dispatcher) deleteList(payload string) (any, error) {
	var p namePayload
	if err := decode(payload, &p, false); err != nil {
		return nil, err
	}
	if err := d.svc.DeleteList(*p.ListName); err != nil {
		return nil, err
	}
	return DeleteListResult{Success: true}, nil
}
