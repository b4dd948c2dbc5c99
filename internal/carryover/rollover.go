package carryover

import (
	"time"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/taskstate"
)

// RolloverResult describes what a rollover changed.
type RolloverResult struct {
	Today   calendar.DayKey
	Added   []calendar.DayKey
	Evicted []calendar.DayKey
	Reset   []calendar.DayKey
}

// Changed reports whether any day was touched.
func (r RolloverResult) Changed() bool {
	return len(r.Added)+len(r.Evicted)+len(r.Reset) > 0
}

// Rollover moves the window to now's date. Rolling windows materialize the
// days that entered and, under purge retention, evict the days that left.
// Weekday windows reset the slots whose dates entered the seven-day window
// since the last recorded reset. Running it twice for the same date changes
// nothing the second time.
func (e *Engine) Rollover(now time.Time) (RolloverResult, error) {
	var res RolloverResult
	today := calendar.StartOfDay(now)
	todayDate := today.Format(calendar.DateLayout)
	retention := e.store.Retention()

	err := e.store.Update(func(tx *taskstate.Tx) error {
		old := tx.Window()
		w := old.Advance(now)
		if !w.Today().Equal(old.Today()) {
			tx.SetWindow(w)
		}
		res.Today = w.TodayKey()

		if w.Policy() == calendar.PolicyWeekday {
			for _, k := range resetSlots(w, tx.LastReset(), today) {
				resetOrigin(tx, w, k)
				res.Reset = append(res.Reset, k)
			}
		}
		for _, k := range w.Keys() {
			if tx.Materialize(k) {
				res.Added = append(res.Added, k)
			}
		}
		if retention == taskstate.RetentionPurge {
			for _, k := range tx.Keys() {
				if !w.Contains(k) {
					tx.Evict(k)
					res.Evicted = append(res.Evicted, k)
				}
			}
		}
		tx.SetLastReset(todayDate)
		return nil
	})
	if err != nil {
		return res, err
	}

	w := e.Window()
	e.mu.Lock()
	if !w.Contains(e.view) {
		e.view = w.TodayKey()
	}
	e.mu.Unlock()

	if res.Changed() {
		e.log.Info("rolled over",
			"today", string(res.Today),
			"added", len(res.Added),
			"evicted", len(res.Evicted),
			"reset", len(res.Reset))
		e.record(ActionRollover, res.Today, "", len(res.Added)+len(res.Reset))
	}
	return res, nil
}

// resetSlots picks the weekday slots whose dates entered the window after
// the last reset. A missing or unreadable last reset resets nothing; a gap
// of a week or more resets every slot.
func resetSlots(w calendar.Window, lastReset string, today time.Time) []calendar.DayKey {
	last, err := time.ParseInLocation(calendar.DateLayout, lastReset, today.Location())
	if err != nil {
		return nil
	}
	gap := calendar.DaysBetween(last, today)
	if gap <= 0 {
		return nil
	}
	_, hi := w.Bounds()
	first := hi + 1 - gap
	if first < 0 {
		first = 0
	}
	var out []calendar.DayKey
	for o := first; o <= hi; o++ {
		out = append(out, w.Key(o))
	}
	return out
}

// resetOrigin gives slot k a fresh set of tasks. Tasks from the previous
// occurrence of k that were carried to other slots stay where they are and
// are re-keyed to that occurrence's date. Tasks carried into k from other
// slots stay at its head.
func resetOrigin(tx *taskstate.Tx, w calendar.Window, k calendar.DayKey) {
	tx.Detach(k, previousOccurrence(w, k))
	carried := tx.Extract(k, func(t taskstate.Task) bool { return t.OriginalDay != k })
	tx.Reset(k)
	tx.Prepend(k, carried)
}

// previousOccurrence is the ISO date of slot k one week before its date in w.
func previousOccurrence(w calendar.Window, k calendar.DayKey) calendar.DayKey {
	d, ok := w.DateOf(k)
	if !ok {
		return k
	}
	return calendar.DayKey(d.AddDate(0, 0, -7).Format(calendar.DateLayout))
}
