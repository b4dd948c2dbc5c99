// Package export writes the task table to CSV and JSON.
package export

import (
	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/plan"
	"github.com/sadopc/liftlog/internal/taskstate"
)

// Row is one task in export order.
type Row struct {
	Day         calendar.DayKey
	Date        string
	Label       string
	Position    int
	Task        string
	Complete    bool
	Skipped     bool
	OriginalDay calendar.DayKey
}

// Carried reports whether the task was moved here from another day.
func (r Row) Carried() bool { return r.OriginalDay != r.Day }

// Rows flattens table: window days in chronological order, then any
// retained days outside the window in key order.
func Rows(w calendar.Window, c plan.Catalog, table taskstate.Table) []Row {
	var keys []calendar.DayKey
	seen := make(map[calendar.DayKey]bool)
	for _, k := range w.Keys() {
		if _, ok := table[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for _, k := range table.SortedKeys() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}

	var rows []Row
	for _, k := range keys {
		date := ""
		if d, ok := w.DateOf(k); ok {
			date = d.Format(calendar.DateLayout)
		}
		label := ""
		if idx, ok := w.PlanIndex(k); ok {
			label = c.Template(idx).Label
		}
		for i, t := range table[k] {
			rows = append(rows, Row{
				Day:         k,
				Date:        date,
				Label:       label,
				Position:    i + 1,
				Task:        t.Name,
				Complete:    t.Complete,
				Skipped:     t.Skipped,
				OriginalDay: t.OriginalDay,
			})
		}
	}
	return rows
}
