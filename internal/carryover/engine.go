// Package carryover moves unfinished work forward: carrying a day's
// incomplete tasks into the next day, bumping a single task, and rolling
// the window over when the calendar date changes.
package carryover

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/taskstate"
)

// Activity names passed to the Recorder.
const (
	ActionComplete = "complete"
	ActionSkipFlag = "skip_flag"
	ActionCarry    = "carry"
	ActionBump     = "bump"
	ActionRollover = "rollover"
)

// Recorder receives one record per applied mutation.
type Recorder interface {
	RecordActivity(at time.Time, action, day, task string, count int) error
}

// Engine applies user actions to a task store and tracks the day being
// viewed.
type Engine struct {
	store *taskstate.Store
	clock calendar.Clock
	rec   Recorder
	log   *slog.Logger

	mu   sync.Mutex
	view calendar.DayKey
}

// New builds an engine over store. rec and log may be nil.
func New(store *taskstate.Store, clock calendar.Clock, rec Recorder, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store: store,
		clock: clock,
		rec:   rec,
		log:   log,
		view:  store.Window().TodayKey(),
	}
}

func (e *Engine) Store() *taskstate.Store   { return e.store }
func (e *Engine) Window() calendar.Window { return e.store.Window() }

// View is the day currently shown to the user.
func (e *Engine) View() calendar.DayKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// SetView points the viewed day at k, which must be inside the window.
func (e *Engine) SetView(k calendar.DayKey) error {
	if !e.Window().Contains(k) {
		return fmt.Errorf("%w: day %q", taskstate.ErrOutOfRange, k)
	}
	e.mu.Lock()
	e.view = k
	e.mu.Unlock()
	return nil
}

// Shift moves the viewed day by delta days, clamped to the window.
func (e *Engine) Shift(delta int) calendar.DayKey {
	w := e.Window()
	lo, hi := w.Bounds()

	e.mu.Lock()
	defer e.mu.Unlock()
	off, ok := w.OffsetOf(e.view)
	if !ok {
		off = 0
	}
	off += delta
	if off < lo {
		off = lo
	}
	if off > hi {
		off = hi
	}
	e.view = w.Key(off)
	return e.view
}

// ToggleComplete flips a task's complete flag.
func (e *Engine) ToggleComplete(k calendar.DayKey, idx int) (taskstate.Task, error) {
	t, err := e.store.ToggleComplete(k, idx)
	if err != nil {
		return t, err
	}
	count := 0
	if t.Complete {
		count = 1
	}
	e.record(ActionComplete, k, t.Name, count)
	return t, nil
}

// ToggleSkip flips a task's skipped flag without moving it.
func (e *Engine) ToggleSkip(k calendar.DayKey, idx int) (taskstate.Task, error) {
	t, err := e.store.ToggleSkip(k, idx)
	if err != nil {
		return t, err
	}
	count := 0
	if t.Skipped {
		count = 1
	}
	e.record(ActionSkipFlag, k, t.Name, count)
	return t, nil
}

// CarryOver moves every incomplete task on from, skipped or not, to the
// head of the next day in their original order, then views the next day.
// On the last day of the window nothing happens. It returns the number of
// tasks moved.
func (e *Engine) CarryOver(from calendar.DayKey) (int, error) {
	var (
		moved []taskstate.Task
		next  calendar.DayKey
		ok    bool
	)
	err := e.store.Update(func(tx *taskstate.Tx) error {
		if !tx.Has(from) {
			return fmt.Errorf("%w: day %q", taskstate.ErrOutOfRange, from)
		}
		next, ok = tx.Window().NextKey(from)
		if !ok {
			return nil
		}
		tx.Materialize(next)
		moved = tx.Extract(from, func(t taskstate.Task) bool { return !t.Complete })
		tx.Prepend(next, moved)
		return nil
	})
	if err != nil {
		e.log.Warn("rejected carry-over", "error", err)
		return 0, err
	}
	if !ok {
		e.log.Debug("carry-over at window boundary", "day", string(from))
		return 0, nil
	}

	e.mu.Lock()
	e.view = next
	e.mu.Unlock()
	e.record(ActionCarry, from, "", len(moved))
	return len(moved), nil
}

// Skip removes task idx from day k and inserts it at the head of the next
// day with its flags unchanged. On the last day of the window nothing
// happens and Skip reports false.
func (e *Engine) Skip(k calendar.DayKey, idx int) (bool, error) {
	var (
		task taskstate.Task
		ok   bool
	)
	err := e.store.Update(func(tx *taskstate.Tx) error {
		tasks := tx.Tasks(k)
		if !tx.Has(k) || idx < 0 || idx >= len(tasks) {
			return fmt.Errorf("%w: day %q task %d", taskstate.ErrOutOfRange, k, idx)
		}
		var next calendar.DayKey
		next, ok = tx.Window().NextKey(k)
		if !ok {
			return nil
		}
		tx.Materialize(next)
		var err error
		task, err = tx.RemoveAt(k, idx)
		if err != nil {
			return err
		}
		tx.Prepend(next, []taskstate.Task{task})
		return nil
	})
	if err != nil {
		e.log.Warn("rejected skip", "error", err)
		return false, err
	}
	if !ok {
		return false, nil
	}
	e.record(ActionBump, k, task.Name, 1)
	return true, nil
}

func (e *Engine) record(action string, k calendar.DayKey, task string, count int) {
	if e.rec == nil {
		return
	}
	if err := e.rec.RecordActivity(e.clock.Now(), action, string(k), task, count); err != nil {
		e.log.Warn("activity not recorded", "action", action, "error", err)
	}
}
