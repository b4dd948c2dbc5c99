package store

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// RecordActivity appends an activity row. The date column is taken from at
// in its own location so summaries follow the user's calendar.
func (s *Store) RecordActivity(at time.Time, action, day, task string, count int) error {
	_, err := s.db.Exec(
		`INSERT INTO activity (at, date, action, day_key, task, count) VALUES (?, ?, ?, ?, ?, ?)`,
		at.Format(time.RFC3339), at.Format(dateLayout), action, day, task, count,
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (s *Store) ListActivity(f ActivityFilter) ([]Activity, error) {
	query := `SELECT id, at, date, action, day_key, task, count FROM activity WHERE 1=1`
	var args []any

	if f.Action != "" {
		query += ` AND action = ?`
		args = append(args, f.Action)
	}
	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND date < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var at string
		if err := rows.Scan(&a.ID, &at, &a.Date, &a.Action, &a.DayKey, &a.Task, &a.Count); err != nil {
			return nil, err
		}
		a.At, _ = time.Parse(time.RFC3339, at)
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetDailySummary counts check-offs, skip flags set, carried tasks and
// bumps per date in [from, to). Dates without activity are omitted.
func (s *Store) GetDailySummary(from, to time.Time) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date,
		       COALESCE(SUM(CASE WHEN action = 'complete'  AND count > 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN action = 'skip_flag' AND count > 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN action = 'carry' THEN count ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN action = 'bump' THEN 1 ELSE 0 END), 0)
		FROM activity
		WHERE date >= ? AND date < ?
		GROUP BY date
		ORDER BY date`,
		from.Format(dateLayout), to.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var ds DailySummary
		if err := rows.Scan(&ds.Date, &ds.Completed, &ds.Skipped, &ds.Carried, &ds.Bumped); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}
