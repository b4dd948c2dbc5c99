package taskstate

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/plan"
)

// Options configures a Store.
type Options struct {
	Window    calendar.Window
	Catalog   plan.Catalog
	KV        KV
	Retention Retention
	Logger    *slog.Logger
}

// Store is the single owner of the task table. Every mutation is written
// through to the KV as a whole-table snapshot before the call returns.
type Store struct {
	mu        sync.Mutex
	window    calendar.Window
	catalog   plan.Catalog
	kv        KV
	retention Retention
	log       *slog.Logger

	table     Table
	lastReset string
	degraded  bool
}

// Open loads the persisted table, reconciles it with the window and catalog
// and writes the result back. It never fails: unreadable or stale state is
// replaced by freshly synthesized days.
func Open(opts Options) *Store {
	s := &Store{
		window:    opts.Window,
		catalog:   opts.Catalog,
		kv:        opts.KV,
		retention: opts.Retention,
		log:       opts.Logger,
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !s.retention.IsValid() {
		s.retention = RetentionPurge
	}
	if s.kv == nil {
		s.kv = NewMemoryKV()
	}

	persisted := s.load()
	s.loadLastReset()
	table, stale := Reconcile(s.window, s.catalog, persisted, s.retention)
	for _, k := range stale {
		s.log.Warn("discarded stale day", "day", string(k), "error", ErrStaleState)
	}
	s.table = table
	s.persistLocked(false)
	return s
}

func (s *Store) load() Table {
	raw, ok, err := s.kv.Get(KeyTasksState)
	if err != nil {
		s.fail("read task state", err)
		return nil
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	t, err := Decode(raw)
	if err != nil {
		s.log.Warn("ignoring unreadable task state", "error", fmt.Errorf("%w: %v", ErrStaleState, err))
		return nil
	}
	return t
}

func (s *Store) loadLastReset() {
	if s.degraded {
		return
	}
	last, ok, err := s.kv.Get(KeyLastResetDate)
	if err != nil {
		s.fail("read last reset date", err)
		return
	}
	if ok {
		s.lastReset = strings.TrimSpace(last)
	}
}

func (s *Store) fail(op string, err error) {
	if !s.degraded {
		s.log.Error("falling back to in-memory state", "op", op, "error", fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err))
	}
	s.degraded = true
}

// persistLocked writes the table, and the reset date when withReset is set.
func (s *Store) persistLocked(withReset bool) {
	if s.degraded {
		return
	}
	raw, err := Encode(s.table)
	if err != nil {
		s.fail("encode task state", err)
		return
	}
	if err := s.kv.Set(KeyTasksState, raw); err != nil {
		s.fail("write task state", err)
		return
	}
	if withReset {
		if err := s.kv.Set(KeyLastResetDate, s.lastReset); err != nil {
			s.fail("write last reset date", err)
		}
	}
}

// Degraded reports whether persistence failed and the store is running
// in memory only.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) Window() calendar.Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

func (s *Store) Catalog() plan.Catalog { return s.catalog }

func (s *Store) Retention() Retention { return s.retention }

// LastReset returns the date recorded by the last rollover, if any.
func (s *Store) LastReset() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReset
}

// Snapshot deep-copies the whole table.
func (s *Store) Snapshot() Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone()
}

// Tasks returns a copy of day k's list.
func (s *Store) Tasks(k calendar.DayKey) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, ok := s.table[k]
	if !ok {
		return nil, fmt.Errorf("%w: day %q", ErrOutOfRange, k)
	}
	return append([]Task(nil), tasks...), nil
}

// IsDayComplete is true when every task on day k is complete. Unknown days
// are never complete.
func (s *Store) IsDayComplete(k calendar.DayKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, ok := s.table[k]
	if !ok {
		return false
	}
	for _, t := range tasks {
		if !t.Complete {
			return false
		}
	}
	return true
}

// ToggleComplete flips the complete flag of task idx on day k.
func (s *Store) ToggleComplete(k calendar.DayKey, idx int) (Task, error) {
	return s.toggle(k, idx, "complete", func(t *Task) { t.Complete = !t.Complete })
}

// ToggleSkip flips the skipped flag of task idx on day k. The task stays
// where it is; see the carry-over engine for moving it.
func (s *Store) ToggleSkip(k calendar.DayKey, idx int) (Task, error) {
	return s.toggle(k, idx, "skip", func(t *Task) { t.Skipped = !t.Skipped })
}

func (s *Store) toggle(k calendar.DayKey, idx int, what string, flip func(*Task)) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, ok := s.table[k]
	if !ok || idx < 0 || idx >= len(tasks) {
		err := fmt.Errorf("%w: day %q task %d", ErrOutOfRange, k, idx)
		s.log.Warn("rejected toggle", "flag", what, "error", err)
		return Task{}, err
	}
	flip(&tasks[idx])
	s.persistLocked(false)
	return tasks[idx], nil
}

// Update runs fn against a copy of the table and commits the copy when fn
// succeeds. Committed changes are written through before Update returns.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{
		table:     s.table.Clone(),
		window:    s.window,
		catalog:   s.catalog,
		lastReset: s.lastReset,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.changed && tx.lastReset == s.lastReset {
		return nil
	}
	resetChanged := tx.lastReset != s.lastReset
	s.table = tx.table
	s.window = tx.window
	s.lastReset = tx.lastReset
	s.persistLocked(resetChanged)
	return nil
}
