// Package taskstate owns the per-day task table: which tasks each day holds,
// their completion and skip flags, and the write-through persistence of the
// whole table to a key-value collaborator.
package taskstate

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/plan"
)

// Keys used with the persistence collaborator.
const (
	KeyTasksState    = "tasksState"
	KeyLastResetDate = "lastResetDate"
)

var (
	ErrOutOfRange             = errors.New("taskstate: out of range")
	ErrStaleState             = errors.New("taskstate: stale state")
	ErrPersistenceUnavailable = errors.New("taskstate: persistence unavailable")
	ErrInvalidRetention       = errors.New("taskstate: invalid retention")
)

// Task is one entry of a day's list. OriginalDay and Slot name the template
// position that produced it; they do not change when the task is moved.
type Task struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Complete    bool            `json:"isComplete"`
	Skipped     bool            `json:"isSkipped"`
	OriginalDay calendar.DayKey `json:"originalDay"`
	Slot        int             `json:"slot"`
}

// Carried reports whether the task was moved here from another day.
func (t Task) Carried(at calendar.DayKey) bool {
	return t.OriginalDay != at
}

// Table maps each materialized day to its ordered task list.
type Table map[calendar.DayKey][]Task

// Clone deep-copies the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, tasks := range t {
		out[k] = append(make([]Task, 0, len(tasks)), tasks...)
	}
	return out
}

// SortedKeys returns the table's keys in lexical order, which is
// chronological for ISO date keys.
func (t Table) SortedKeys() []calendar.DayKey {
	out := make([]calendar.DayKey, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Incomplete counts tasks that are not complete on day k.
func (t Table) Incomplete(k calendar.DayKey) int {
	n := 0
	for _, task := range t[k] {
		if !task.Complete {
			n++
		}
	}
	return n
}

// Retention decides what happens to days that fall out of the window.
type Retention string

const (
	RetentionPurge Retention = "purge"
	RetentionKeep  Retention = "keep"
)

func (r Retention) IsValid() bool {
	switch r {
	case RetentionPurge, RetentionKeep:
		return true
	default:
		return false
	}
}

// Fresh synthesizes the all-incomplete entries for day k from the catalog.
func Fresh(w calendar.Window, c plan.Catalog, k calendar.DayKey) []Task {
	idx, ok := w.PlanIndex(k)
	if !ok {
		return []Task{}
	}
	tmpl := c.Template(idx)
	out := make([]Task, 0, len(tmpl.Tasks))
	for i, name := range tmpl.Tasks {
		out = append(out, Task{
			ID:          uuid.NewString(),
			Name:        name,
			OriginalDay: k,
			Slot:        i,
		})
	}
	return out
}
