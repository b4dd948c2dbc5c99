// Package calendar maps a reference "today" and integer offsets onto
// calendar dates and the day keys the task-state table is indexed by.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date layout used for rolling keys.
const DateLayout = "2006-01-02"

// DefaultHorizon is the number of days kept on each side of today.
const DefaultHorizon = 7

var (
	ErrInvalidPolicy  = errors.New("calendar: invalid policy")
	ErrInvalidHorizon = errors.New("calendar: invalid horizon")
	ErrInvalidKey     = errors.New("calendar: invalid day key")
)

// DayKey identifies one day slot: an ISO date under PolicyRolling, a
// weekday index "0".."6" (Sunday first) under PolicyWeekday.
type DayKey string

func (k DayKey) String() string { return string(k) }

// Policy selects how day keys are derived.
type Policy string

const (
	PolicyRolling Policy = "rolling"
	PolicyWeekday Policy = "weekday"
)

func (p Policy) IsValid() bool {
	switch p {
	case PolicyRolling, PolicyWeekday:
		return true
	default:
		return false
	}
}

// anchor is a Sunday, so days-since-anchor modulo 7 is the weekday index.
var anchor = time.Date(1970, 1, 4, 0, 0, 0, 0, time.UTC)

// Window is the finite run of days materialized around today.
type Window struct {
	today   time.Time
	policy  Policy
	horizon int
}

// NewWindow truncates now to its calendar date (in now's location) and
// builds the window for policy. Horizon only applies to PolicyRolling.
func NewWindow(now time.Time, policy Policy, horizon int) (Window, error) {
	if !policy.IsValid() {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidPolicy, policy)
	}
	if horizon < 0 {
		return Window{}, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}
	return Window{today: StartOfDay(now), policy: policy, horizon: horizon}, nil
}

// Advance returns the same window shape anchored on now.
func (w Window) Advance(now time.Time) Window {
	w.today = StartOfDay(now)
	return w
}

func (w Window) Today() time.Time { return w.today }
func (w Window) Policy() Policy   { return w.policy }
func (w Window) Horizon() int     { return w.horizon }

// Bounds returns the inclusive offset range covered by the window.
func (w Window) Bounds() (lo, hi int) {
	if w.policy == PolicyWeekday {
		return 0, 6
	}
	return -w.horizon, w.horizon
}

func (w Window) Date(offset int) time.Time {
	return w.today.AddDate(0, 0, offset)
}

func (w Window) Key(offset int) DayKey {
	d := w.Date(offset)
	if w.policy == PolicyWeekday {
		return DayKey(strconv.Itoa(int(d.Weekday())))
	}
	return DayKey(d.Format(DateLayout))
}

func (w Window) TodayKey() DayKey { return w.Key(0) }

// Keys lists the window's keys in chronological order.
func (w Window) Keys() []DayKey {
	lo, hi := w.Bounds()
	out := make([]DayKey, 0, hi-lo+1)
	for o := lo; o <= hi; o++ {
		out = append(out, w.Key(o))
	}
	return out
}

func (w Window) OffsetOf(k DayKey) (int, bool) {
	lo, hi := w.Bounds()
	for o := lo; o <= hi; o++ {
		if w.Key(o) == k {
			return o, true
		}
	}
	return 0, false
}

func (w Window) Contains(k DayKey) bool {
	_, ok := w.OffsetOf(k)
	return ok
}

// NextKey returns the chronologically next key. The window does not wrap:
// the last day has no next day.
func (w Window) NextKey(k DayKey) (DayKey, bool) {
	o, ok := w.OffsetOf(k)
	_, hi := w.Bounds()
	if !ok || o >= hi {
		return "", false
	}
	return w.Key(o + 1), true
}

// DateOf resolves a key to its calendar date. Weekday keys resolve to the
// matching day inside the window. ISO dates resolve under either policy;
// weekday tables use them as the origin of tasks from a past week.
func (w Window) DateOf(k DayKey) (time.Time, bool) {
	if w.policy == PolicyWeekday {
		if o, ok := w.OffsetOf(k); ok {
			return w.Date(o), true
		}
	}
	d, err := time.ParseInLocation(DateLayout, string(k), w.today.Location())
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// PlanIndex is the rotation offset for k: days since a fixed Sunday, so a
// seven-day catalog always lines up with the weekday.
func (w Window) PlanIndex(k DayKey) (int, bool) {
	if w.policy == PolicyWeekday {
		i, err := strconv.Atoi(string(k))
		if err != nil || i < 0 || i > 6 {
			return 0, false
		}
		return i, true
	}
	d, ok := w.DateOf(k)
	if !ok {
		return 0, false
	}
	return DaysBetween(anchor, d), true
}

// Weekday reports the day of the week k falls on.
func (w Window) Weekday(k DayKey) (time.Weekday, bool) {
	d, ok := w.DateOf(k)
	if !ok {
		return 0, false
	}
	return d.Weekday(), true
}

// Label renders a key as a human date, e.g. "Monday, Jan 2".
func (w Window) Label(k DayKey) string {
	d, ok := w.DateOf(k)
	if !ok {
		return string(k)
	}
	return d.Format("Monday, Jan 2")
}

// ParseKey validates s as a key under policy.
func ParseKey(policy Policy, s string) (DayKey, error) {
	s = strings.TrimSpace(s)
	switch policy {
	case PolicyWeekday:
		i, err := strconv.Atoi(s)
		if err != nil || i < 0 || i > 6 {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
		}
		return DayKey(strconv.Itoa(i)), nil
	case PolicyRolling:
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
		}
		return DayKey(d.Format(DateLayout)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, policy)
	}
}

// StartOfDay drops the clock part of t, keeping its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b, ignoring clock and DST.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
