// Package store holds the canonical multi-list state. Every operation runs
// under one mutex from read through the snapshot write, so writes reach the
// persister in mutation order.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"vtodo/internal/logging"
	"vtodo/internal/metrics"
	"vtodo/internal/persist"
	"vtodo/internal/service"
)

// Persister loads the initial snapshot and receives every subsequent one.
// *persist.Adapter implements it.
type Persister interface {
	Load(ctx context.Context) (service.Snapshot, error)
	Save(ctx context.Context, snap service.Snapshot) error
}

// Store implements service.Service.
type Store struct {
	mu     sync.Mutex
	order  []string
	lists  map[string][]service.Item
	active string

	persister    Persister
	log          *slog.Logger
	metrics      *metrics.Metrics
	writeTimeout time.Duration
	lastErr      error

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

var _ service.Service = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = logging.Named(l, "store") }
}

// WithMetrics records mutation and persistence failure counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithWriteTimeout bounds each snapshot write. Zero means no bound.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) { s.writeTimeout = d }
}

// New seeds a store from p's last snapshot, or from the default state when
// nothing was persisted or the snapshot cannot be read. A nil p keeps the
// store in memory only.
func New(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{
		persister:    p,
		log:          logging.Discard(),
		writeTimeout: 5 * time.Second,
		subs:         make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap := service.DefaultSnapshot()
	if p != nil {
		loaded, err := p.Load(ctx)
		switch {
		case errors.Is(err, persist.ErrNoSnapshot):
			s.log.Debug("no saved lists, starting fresh")
		case err != nil:
			s.log.Warn("cannot read saved lists, starting fresh", "err", err)
		default:
			snap = loaded
		}
	}
	s.seed(snap)
	return s
}

// seed installs snap, dropping blank or duplicate names and restoring the
// default list and a valid active name.
func (s *Store) seed(snap service.Snapshot) {
	s.lists = make(map[string][]service.Item, len(snap.Lists)+1)
	s.order = s.order[:0]
	for _, l := range snap.Lists {
		name := service.NormalizeName(l.Name)
		if name == "" {
			continue
		}
		if _, dup := s.lists[name]; dup {
			continue
		}
		items := make([]service.Item, 0, len(l.Items))
		for _, it := range l.Items {
			text := service.NormalizeText(it.Text)
			if text == "" {
				continue
			}
			items = append(items, service.Item{Text: text, Done: it.Done})
		}
		s.lists[name] = items
		s.order = append(s.order, name)
	}
	if _, ok := s.lists[service.DefaultList]; !ok {
		s.lists[service.DefaultList] = []service.Item{}
		s.order = slices.Insert(s.order, 0, service.DefaultList)
	}
	s.active = service.NormalizeName(snap.Active)
	if _, ok := s.lists[s.active]; !ok {
		s.active = service.DefaultList
	}
}

// PersistErr returns the error of the most recent snapshot write, or nil if it
// succeeded.
func (s *Store) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Metrics returns the collectors the store records on, possibly nil.
func (s *Store) Metrics() *metrics.Metrics { return s.metrics }

// Close closes the persister if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.persister.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// mutate runs fn under the mutex and, when fn succeeds, writes the snapshot
// before releasing it. Subscribers run after the mutex is released.
func (s *Store) mutate(op string, fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.save(op)
	s.mu.Unlock()

	s.metrics.IncMutation(op)
	s.notify()
	return nil
}

// save must be called with mu held.
func (s *Store) save(op string) {
	if s.persister == nil {
		return
	}
	ctx := context.Background()
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}
	err := s.persister.Save(ctx, s.snapshotLocked())
	s.lastErr = err
	if err != nil {
		s.metrics.IncPersistFailure()
		s.log.Warn("snapshot write failed", "op", op, "err", err)
	}
}

// resolve maps an empty name to the active list. Must be called with mu held.
func (s *Store) resolve(name string) string {
	name = service.NormalizeName(name)
	if name == "" {
		return s.active
	}
	return name
}

func (s *Store) snapshotLocked() service.Snapshot {
	snap := service.Snapshot{
		Lists:  make([]service.NamedList, len(s.order)),
		Active: s.active,
	}
	for i, name := range s.order {
		snap.Lists[i] = service.NamedList{Name: name, Items: slices.Clone(s.lists[name])}
		if snap.Lists[i].Items == nil {
			snap.Lists[i].Items = []service.Item{}
		}
	}
	return snap
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return service.IndexOutOfRange(index, length)
	}
	return nil
}

func (s *Store) AddItem(list, text string) error {
	text = service.NormalizeText(text)
	return s.mutate("add_item", func() error {
		name := s.resolve(list)
		items, ok := s.lists[name]
		if !ok {
			return service.ListNotFound(name)
		}
		if text == "" {
			return service.Errorf(service.ErrInvalidArgument, "item text is empty")
		}
		s.lists[name] = append(items, service.Item{Text: text})
		return nil
	})
}

func (s *Store) ListItems(list string) []service.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := slices.Clone(s.lists[s.resolve(list)])
	if items == nil {
		items = []service.Item{}
	}
	return items
}

func (s *Store) ToggleItem(list string, index int) error {
	return s.mutate("toggle_item", func() error {
		name := s.resolve(list)
		items, ok := s.lists[name]
		if !ok {
			return service.ListNotFound(name)
		}
		if err := checkIndex(index, len(items)); err != nil {
			return err
		}
		items[index].Done = !items[index].Done
		return nil
	})
}

func (s *Store) RemoveItem(list string, index int) error {
	return s.mutate("remove_item", func() error {
		name := s.resolve(list)
		items, ok := s.lists[name]
		if !ok {
			return service.ListNotFound(name)
		}
		if err := checkIndex(index, len(items)); err != nil {
			return err
		}
		s.lists[name] = slices.Delete(items, index, index+1)
		return nil
	})
}

func (s *Store) ClearDone(list string) int {
	var removed int
	s.mutate("clear_done", func() error {
		name := s.resolve(list)
		items, ok := s.lists[name]
		if !ok {
			return nil
		}
		kept := slices.DeleteFunc(items, func(it service.Item) bool { return it.Done })
		removed = len(items) - len(kept)
		s.lists[name] = kept
		return nil
	})
	return removed
}

func (s *Store) MoveItem(list string, from, to int) error {
	return s.mutate("move_item", func() error {
		name := s.resolve(list)
		items, ok := s.lists[name]
		if !ok {
			return service.ListNotFound(name)
		}
		if err := checkIndex(from, len(items)); err != nil {
			return err
		}
		if err := checkIndex(to, len(items)); err != nil {
			return err
		}
		it := items[from]
		items = slices.Delete(items, from, from+1)
		s.lists[name] = slices.Insert(items, to, it)
		return nil
	})
}

func (s *Store) CreateList(name string) (bool, error) {
	name = service.NormalizeName(name)
	if name == "" {
		return false, service.Errorf(service.ErrInvalidArgument, "list name is empty")
	}
	var created bool
	err := s.mutate("create_list", func() error {
		if _, ok := s.lists[name]; ok {
			return nil
		}
		s.lists[name] = []service.Item{}
		s.order = append(s.order, name)
		s.active = name
		created = true
		return nil
	})
	return created, err
}

func (s *Store) SwitchActiveList(name string) error {
	name = service.NormalizeName(name)
	return s.mutate("switch_list", func() error {
		if _, ok := s.lists[name]; !ok {
			return service.ListNotFound(name)
		}
		s.active = name
		return nil
	})
}

func (s *Store) ListNames() service.ListNames {
	s.mu.Lock()
	defer s.mu.Unlock()
	return service.ListNames{Lists: slices.Clone(s.order), Current: s.active}
}

func (s *Store) DeleteList(name string) error {
	name = service.NormalizeName(name)
	return s.mutate("delete_list", func() error {
		if name == service.DefaultList {
			return service.Errorf(service.ErrProtected, "cannot delete %s list", service.DefaultList)
		}
		if _, ok := s.lists[name]; !ok {
			return service.ListNotFound(name)
		}
		delete(s.lists, name)
		s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
		if s.active == name {
			s.active = service.DefaultList
		}
		return nil
	})
}

func (s *Store) Snapshot() service.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Merge(lists []service.NamedList) (int, error) {
	var added int
	err := s.mutate("merge", func() error {
		for _, l := range lists {
			name := service.NormalizeName(l.Name)
			if name == "" {
				continue
			}
			if _, ok := s.lists[name]; !ok {
				s.lists[name] = []service.Item{}
				s.order = append(s.order, name)
			}
			for _, it := range l.Items {
				text := service.NormalizeText(it.Text)
				if text == "" {
					continue
				}
				s.lists[name] = append(s.lists[name], service.Item{Text: text, Done: it.Done})
				added++
			}
		}
		return nil
	})
	return added, err
}

func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
