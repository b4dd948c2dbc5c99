package taskstate

import (
	"fmt"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/plan"
)

// Tx is a pending change set handed to Store.Update. It only offers
// operations that move, materialize or evict whole tasks, so the template
// bookkeeping on each task survives every edit.
type Tx struct {
	table     Table
	window    calendar.Window
	catalog   plan.Catalog
	lastReset string
	changed   bool
}

func (tx *Tx) Window() calendar.Window { return tx.window }

// SetWindow replaces the active window; used on rollover.
func (tx *Tx) SetWindow(w calendar.Window) {
	tx.window = w
	tx.changed = true
}

func (tx *Tx) LastReset() string { return tx.lastReset }

func (tx *Tx) SetLastReset(date string) { tx.lastReset = date }

func (tx *Tx) Has(k calendar.DayKey) bool {
	_, ok := tx.table[k]
	return ok
}

// Keys lists the materialized days in lexical order.
func (tx *Tx) Keys() []calendar.DayKey { return tx.table.SortedKeys() }

func (tx *Tx) Tasks(k calendar.DayKey) []Task {
	return append([]Task(nil), tx.table[k]...)
}

// Extract removes the tasks on day k for which pred is true and returns
// them in their original order.
func (tx *Tx) Extract(k calendar.DayKey, pred func(Task) bool) []Task {
	tasks := tx.table[k]
	var moved []Task
	rest := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if pred(t) {
			moved = append(moved, t)
			continue
		}
		rest = append(rest, t)
	}
	if len(moved) > 0 {
		tx.table[k] = rest
		tx.changed = true
	}
	return moved
}

// RemoveAt takes task idx off day k.
func (tx *Tx) RemoveAt(k calendar.DayKey, idx int) (Task, error) {
	tasks, ok := tx.table[k]
	if !ok || idx < 0 || idx >= len(tasks) {
		return Task{}, fmt.Errorf("%w: day %q task %d", ErrOutOfRange, k, idx)
	}
	t := tasks[idx]
	rest := make([]Task, 0, len(tasks)-1)
	rest = append(rest, tasks[:idx]...)
	rest = append(rest, tasks[idx+1:]...)
	tx.table[k] = rest
	tx.changed = true
	return t, nil
}

// Prepend puts tasks at the head of day k, ahead of its own entries.
func (tx *Tx) Prepend(k calendar.DayKey, tasks []Task) {
	if len(tasks) == 0 {
		return
	}
	out := make([]Task, 0, len(tasks)+len(tx.table[k]))
	out = append(out, tasks...)
	out = append(out, tx.table[k]...)
	tx.table[k] = out
	tx.changed = true
}

// Detach re-keys the origin of tasks that came from day k but now live on
// other days, so a fresh set for k can be synthesized without touching
// them. It returns the number of tasks re-keyed.
func (tx *Tx) Detach(k, as calendar.DayKey) int {
	n := 0
	for d, tasks := range tx.table {
		if d == k {
			continue
		}
		for i := range tasks {
			if tasks[i].OriginalDay == k {
				tasks[i].OriginalDay = as
				n++
			}
		}
	}
	if n > 0 {
		tx.changed = true
	}
	return n
}

// Materialize synthesizes day k if it is missing. It reports whether it did.
func (tx *Tx) Materialize(k calendar.DayKey) bool {
	if tx.Has(k) {
		return false
	}
	tx.table[k] = Fresh(tx.window, tx.catalog, k)
	tx.changed = true
	return true
}

// Reset replaces day k with fresh template entries.
func (tx *Tx) Reset(k calendar.DayKey) {
	tx.table[k] = Fresh(tx.window, tx.catalog, k)
	tx.changed = true
}

// Evict drops day k.
func (tx *Tx) Evict(k calendar.DayKey) {
	if !tx.Has(k) {
		return
	}
	delete(tx.table, k)
	tx.changed = true
}
