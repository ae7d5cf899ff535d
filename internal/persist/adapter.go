// Package persist writes full store snapshots to a key-value channel and reads
// them back at startup.
//
// Two keys are used: ListsKey holds the ordered lists object and ActiveKey holds
// the raw active list name. Several KV backends are provided; Open picks one
// from configuration.
package persist

import (
	"context"
	"errors"
	"fmt"

	"vtodo/internal/service"
)

const (
	// ListsKey stores the serialized lists mapping.
	ListsKey = "voiceTodoLists"

	// ActiveKey stores the active list name.
	ActiveKey = "voiceTodoCurrentList"
)

// ErrNoSnapshot is returned by Load when nothing has been persisted yet.
var ErrNoSnapshot = errors.New("no snapshot")

// KV is the durable key-value channel snapshots are written to.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// Close releases the backend.
	Close() error
}

// WriteError reports a failed snapshot write for one key.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Adapter converts snapshots to and from the two KV keys.
type Adapter struct {
	kv KV
}

// NewAdapter wraps kv.
func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Load reads the last snapshot. It returns ErrNoSnapshot when the lists key is
// absent. The returned snapshot is not repaired; the store does that.
func (a *Adapter) Load(ctx context.Context) (service.Snapshot, error) {
	raw, ok, err := a.kv.Get(ctx, ListsKey)
	if err != nil {
		return service.Snapshot{}, fmt.Errorf("read %s: %w", ListsKey, err)
	}
	if !ok {
		return service.Snapshot{}, ErrNoSnapshot
	}
	lists, err := DecodeLists([]byte(raw))
	if err != nil {
		return service.Snapshot{}, err
	}

	active, _, err := a.kv.Get(ctx, ActiveKey)
	if err != nil {
		return service.Snapshot{}, fmt.Errorf("read %s: %w", ActiveKey, err)
	}
	return service.Snapshot{Lists: lists, Active: active}, nil
}

// Save writes both keys. Both writes are attempted even if the first fails.
func (a *Adapter) Save(ctx context.Context, snap service.Snapshot) error {
	body, err := EncodeLists(snap.Lists)
	if err != nil {
		return &WriteError{Key: ListsKey, Err: err}
	}

	var errs []error
	if err := a.kv.Set(ctx, ListsKey, string(body)); err != nil {
		errs = append(errs, &WriteError{Key: ListsKey, Err: err})
	}
	if err := a.kv.Set(ctx, ActiveKey, snap.Active); err != nil {
		errs = append(errs, &WriteError{Key: ActiveKey, Err: err})
	}
	return errors.Join(errs...)
}

// Close closes the underlying KV.
func (a *Adapter) Close() error {
	return a.kv.Close()
}
