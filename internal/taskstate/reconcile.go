package taskstate

import (
	"github.com/google/uuid"
	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/plan"
)

// Reconcile merges a persisted table with the current window and catalog.
//
// For every window day, the tasks that originated on that day (wherever they
// have been moved to) must match the day's template exactly: one task per
// slot, same names. A day that fails the check is stale. Its tasks are
// dropped from every list and the day is resynthesized, keeping whatever
// was carried into it from other days. Missing window days are synthesized.
// Days outside the window are dropped under RetentionPurge and kept as-is
// under RetentionKeep.
//
// The returned keys are the stale days, in window order.
func Reconcile(w calendar.Window, c plan.Catalog, persisted Table, retention Retention) (Table, []calendar.DayKey) {
	groups := make(map[calendar.DayKey][]Task)
	for _, tasks := range persisted {
		for _, task := range tasks {
			groups[task.OriginalDay] = append(groups[task.OriginalDay], task)
		}
	}

	stale := make(map[calendar.DayKey]bool)
	var staleKeys []calendar.DayKey
	for _, k := range w.Keys() {
		_, present := persisted[k]
		if !present && len(groups[k]) == 0 {
			continue
		}
		if !present || !matchesTemplate(w, c, k, groups[k]) {
			stale[k] = true
			staleKeys = append(staleKeys, k)
		}
	}

	out := make(Table, len(persisted))
	for k, tasks := range persisted {
		if parsed, err := calendar.ParseKey(w.Policy(), string(k)); err != nil || parsed != k {
			continue
		}
		if !w.Contains(k) && retention != RetentionKeep {
			continue
		}
		kept := make([]Task, 0, len(tasks))
		for _, task := range tasks {
			if stale[task.OriginalDay] {
				continue
			}
			if task.ID == "" {
				task.ID = uuid.NewString()
			}
			kept = append(kept, task)
		}
		out[k] = kept
	}

	for _, k := range w.Keys() {
		if _, ok := out[k]; !ok {
			out[k] = Fresh(w, c, k)
			continue
		}
		if stale[k] {
			out[k] = append(out[k], Fresh(w, c, k)...)
		}
	}
	return out, staleKeys
}

func matchesTemplate(w calendar.Window, c plan.Catalog, k calendar.DayKey, group []Task) bool {
	idx, ok := w.PlanIndex(k)
	if !ok {
		return false
	}
	tmpl := c.Template(idx)
	if len(group) != len(tmpl.Tasks) {
		return false
	}
	seen := make([]bool, len(tmpl.Tasks))
	for _, task := range group {
		if task.Slot < 0 || task.Slot >= len(tmpl.Tasks) || seen[task.Slot] {
			return false
		}
		if task.Name != tmpl.Tasks[task.Slot] {
			return false
		}
		seen[task.Slot] = true
	}
	return true
}
