package carryover

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/plan"
	"github.com/sadopc/liftlog/internal/taskstate"
)

// 2026-10-15 is a Thursday and gets template A from the two-day catalog.
var today = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

const (
	day0 calendar.DayKey = "2026-10-15"
	day1 calendar.DayKey = "2026-10-16"
)

type recorded struct {
	action, day, task string
	count             int
}

type fakeRecorder struct {
	events []recorded
	err    error
}

func (f *fakeRecorder) RecordActivity(_ time.Time, action, day, task string, count int) error {
	f.events = append(f.events, recorded{action, day, task, count})
	return f.err
}

func twoDayCatalog(t *testing.T) plan.Catalog {
	t.Helper()
	c, err := plan.New([]plan.DayTemplate{
		{Label: "A", Tasks: []string{"X", "Y"}},
		{Label: "B", Tasks: []string{"Z"}},
	})
	require.NoError(t, err)
	return c
}

type setup struct {
	engine *Engine
	store  *taskstate.Store
	kv     *taskstate.MemoryKV
	rec    *fakeRecorder
}

func newSetup(t *testing.T, policy calendar.Policy, horizon int, retention taskstate.Retention) setup {
	t.Helper()
	w, err := calendar.NewWindow(today, policy, horizon)
	require.NoError(t, err)
	kv := taskstate.NewMemoryKV()
	st := taskstate.Open(taskstate.Options{
		Window:    w,
		Catalog:   twoDayCatalog(t),
		KV:        kv,
		Retention: retention,
	})
	rec := &fakeRecorder{}
	return setup{
		engine: New(st, calendar.FixedClock{T: today}, rec, nil),
		store:  st,
		kv:     kv,
		rec:    rec,
	}
}

func rolling(t *testing.T) setup {
	return newSetup(t, calendar.PolicyRolling, 1, taskstate.RetentionPurge)
}

func tasksOf(t *testing.T, s *taskstate.Store, k calendar.DayKey) []taskstate.Task {
	t.Helper()
	tasks, err := s.Tasks(k)
	require.NoError(t, err)
	return tasks
}

func names(tasks []taskstate.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}

func allIDs(tbl taskstate.Table) []string {
	var ids []string
	for _, tasks := range tbl {
		for _, t := range tasks {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func countIncomplete(tbl taskstate.Table) int {
	n := 0
	for k := range tbl {
		n += tbl.Incomplete(k)
	}
	return n
}

// ===================== CarryOver =====================

func TestCarryOverMovesIncompleteToNextDay(t *testing.T) {
	s := rolling(t)
	_, err := s.engine.ToggleComplete(day0, 1) // Y done
	require.NoError(t, err)
	z := tasksOf(t, s.store, day1)[0]

	moved, err := s.engine.CarryOver(day0)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	assert.Equal(t, []string{"Y"}, names(tasksOf(t, s.store, day0)))
	got := tasksOf(t, s.store, day1)
	require.Equal(t, []string{"X", "Z"}, names(got))
	assert.False(t, got[0].Complete)
	assert.False(t, got[0].Skipped)
	assert.Equal(t, day0, got[0].OriginalDay)
	assert.Equal(t, z, got[1])

	assert.Equal(t, day1, s.engine.View())
}

func TestCarryOverIncludesSkippedTasksInOrder(t *testing.T) {
	s := rolling(t)
	_, err := s.engine.ToggleSkip(day0, 0)
	require.NoError(t, err)

	moved, err := s.engine.CarryOver(day0)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	got := tasksOf(t, s.store, day1)
	assert.Equal(t, []string{"X", "Y", "Z"}, names(got))
	assert.True(t, got[0].Skipped)
	assert.Empty(t, tasksOf(t, s.store, day0))
	assert.True(t, s.store.IsDayComplete(day0))
}

func TestCarryOverConservesTasks(t *testing.T) {
	s := newSetup(t, calendar.PolicyRolling, 3, taskstate.RetentionPurge)
	before := s.store.Snapshot()

	for _, k := range s.engine.Window().Keys() {
		_, err := s.engine.CarryOver(k)
		require.NoError(t, err)
	}

	after := s.store.Snapshot()
	assert.Equal(t, countIncomplete(before), countIncomplete(after))
	assert.ElementsMatch(t, allIDs(before), allIDs(after))

	ids := allIDs(after)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate task %s", id)
		seen[id] = true
	}

	// Everything ends up on the last day.
	keys := s.engine.Window().Keys()
	last := keys[len(keys)-1]
	assert.Len(t, tasksOf(t, s.store, last), len(ids))
}

func TestCarryOverAtBoundaryIsNoop(t *testing.T) {
	s := rolling(t)
	last := calendar.DayKey("2026-10-16")
	before := s.store.Snapshot()
	writes, _, _ := s.kv.Get(taskstate.KeyTasksState)

	moved, err := s.engine.CarryOver(last)
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Equal(t, before, s.store.Snapshot())
	after, _, _ := s.kv.Get(taskstate.KeyTasksState)
	assert.Equal(t, writes, after)
	assert.Equal(t, day0, s.engine.View())
	assert.Empty(t, s.rec.events)
}

func TestCarryOverUnknownDay(t *testing.T) {
	s := rolling(t)
	_, err := s.engine.CarryOver("2027-01-01")
	assert.True(t, errors.Is(err, taskstate.ErrOutOfRange))
}

func TestCarryOverAllCompleteAdvancesView(t *testing.T) {
	s := rolling(t)
	for i := range tasksOf(t, s.store, day0) {
		_, err := s.engine.ToggleComplete(day0, i)
		require.NoError(t, err)
	}
	moved, err := s.engine.CarryOver(day0)
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Equal(t, []string{"Z"}, names(tasksOf(t, s.store, day1)))
	assert.Equal(t, day1, s.engine.View())
}

// ===================== Skip =====================

func TestSkipBumpsTaskToNextDay(t *testing.T) {
	s := rolling(t)
	_, err := s.engine.ToggleComplete(day0, 1)
	require.NoError(t, err)

	ok, err := s.engine.Skip(day0, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"X"}, names(tasksOf(t, s.store, day0)))
	got := tasksOf(t, s.store, day1)
	assert.Equal(t, []string{"Y", "Z"}, names(got))
	assert.True(t, got[0].Complete, "flags travel with the task")
	assert.Equal(t, day0, s.engine.View(), "skip does not move the view")
}

func TestSkipAtBoundaryIsNoop(t *testing.T) {
	s := rolling(t)
	before := s.store.Snapshot()
	ok, err := s.engine.Skip(day1, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, s.store.Snapshot())
}

func TestSkipOutOfRange(t *testing.T) {
	s := rolling(t)
	before := s.store.Snapshot()
	for _, tc := range []struct {
		day calendar.DayKey
		idx int
	}{
		{day0, 2},
		{day0, -1},
		{"2030-01-01", 0},
		{day1, 5},
	} {
		_, err := s.engine.Skip(tc.day, tc.idx)
		assert.True(t, errors.Is(err, taskstate.ErrOutOfRange), "%s/%d", tc.day, tc.idx)
	}
	assert.Equal(t, before, s.store.Snapshot())
}

func TestSkipKeepsOriginGroupValid(t *testing.T) {
	s := rolling(t)
	_, err := s.engine.Skip(day0, 0)
	require.NoError(t, err)

	// Reopening over the persisted table must not treat the move as stale.
	w := s.store.Window()
	reopened := taskstate.Open(taskstate.Options{
		Window:    w,
		Catalog:   s.store.Catalog(),
		KV:        s.kv,
		Retention: taskstate.RetentionPurge,
	})
	assert.Equal(t, s.store.Snapshot(), reopened.Snapshot())
}

// ===================== View =====================

func TestViewNavigation(t *testing.T) {
	s := rolling(t)
	assert.Equal(t, day0, s.engine.View())
	assert.Equal(t, day1, s.engine.Shift(1))
	assert.Equal(t, day1, s.engine.Shift(5), "clamped at the end")
	assert.Equal(t, calendar.DayKey("2026-10-14"), s.engine.Shift(-10))

	require.NoError(t, s.engine.SetView(day0))
	assert.Equal(t, day0, s.engine.View())
	assert.True(t, errors.Is(s.engine.SetView("2026-11-01"), taskstate.ErrOutOfRange))
}

// ===================== Activity =====================

func TestMutationsAreRecorded(t *testing.T) {
	s := rolling(t)
	_, err := s.engine.ToggleComplete(day0, 0)
	require.NoError(t, err)
	_, err = s.engine.ToggleSkip(day0, 1)
	require.NoError(t, err)
	_, err = s.engine.Skip(day0, 1)
	require.NoError(t, err)
	_, err = s.engine.CarryOver(day0)
	require.NoError(t, err)

	require.Len(t, s.rec.events, 4)
	assert.Equal(t, recorded{ActionComplete, string(day0), "X", 1}, s.rec.events[0])
	assert.Equal(t, recorded{ActionSkipFlag, string(day0), "Y", 1}, s.rec.events[1])
	assert.Equal(t, recorded{ActionBump, string(day0), "Y", 1}, s.rec.events[2])
	assert.Equal(t, recorded{ActionCarry, string(day0), "", 0}, s.rec.events[3])
}

func TestRecorderFailureDoesNotFailMutation(t *testing.T) {
	s := rolling(t)
	s.rec.err = errors.New("disk full")
	task, err := s.engine.ToggleComplete(day0, 0)
	require.NoError(t, err)
	assert.True(t, task.Complete)
}

func TestRejectedToggleIsNotRecorded(t *testing.T) {
	s := rolling(t)
	_, err := s.engine.ToggleComplete(day0, 9)
	assert.True(t, errors.Is(err, taskstate.ErrOutOfRange))
	assert.Empty(t, s.rec.events)
}
