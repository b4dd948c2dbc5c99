package store

import "time"

type Setting struct {
	Key   string
	Value string
}

// Activity is one applied user action on the task table.
type Activity struct {
	ID     int64
	At     time.Time
	Date   string // calendar date of At in the user's zone
	Action string // complete, skip_flag, carry, bump, rollover
	DayKey string
	Task   string
	Count  int
}

// ActivityFilter is used to filter activity in queries.
type ActivityFilter struct {
	Action string
	From   string // inclusive date, 2006-01-02
	To     string // exclusive date
	Limit  int
}

// DailySummary aggregates activity per calendar date.
type DailySummary struct {
	Date      string
	Completed int
	Skipped   int
	Carried   int
	Bumped    int
}
