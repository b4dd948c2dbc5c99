package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/export"
	"github.com/sadopc/liftlog/internal/taskstate"
)

type taskJSON struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Complete    bool   `json:"isComplete"`
	Skipped     bool   `json:"isSkipped"`
	OriginalDay string `json:"originalDay"`
	Carried     bool   `json:"carried"`
}

type dayJSON struct {
	Key      string     `json:"key"`
	Date     string     `json:"date,omitempty"`
	Weekday  string     `json:"weekday,omitempty"`
	Label    string     `json:"label"`
	Workout  string     `json:"workout"`
	Complete bool       `json:"complete"`
	Tasks    []taskJSON `json:"tasks"`
}

func toTaskJSON(k calendar.DayKey, i int, t taskstate.Task) taskJSON {
	return taskJSON{
		Index:       i,
		ID:          t.ID,
		Name:        t.Name,
		Complete:    t.Complete,
		Skipped:     t.Skipped,
		OriginalDay: string(t.OriginalDay),
		Carried:     t.Carried(k),
	}
}

func (s *Server) day(k calendar.DayKey) (dayJSON, error) {
	st := s.engine.Store()
	tasks, err := st.Tasks(k)
	if err != nil {
		return dayJSON{}, err
	}
	w := st.Window()
	d := dayJSON{
		Key:      string(k),
		Label:    w.Label(k),
		Complete: st.IsDayComplete(k),
		Tasks:    make([]taskJSON, 0, len(tasks)),
	}
	if date, ok := w.DateOf(k); ok {
		d.Date = date.Format(calendar.DateLayout)
	}
	if wd, ok := w.Weekday(k); ok {
		d.Weekday = wd.String()
	}
	if idx, ok := w.PlanIndex(k); ok {
		d.Workout = st.Catalog().Template(idx).Label
	}
	for i, t := range tasks {
		d.Tasks = append(d.Tasks, toTaskJSON(k, i, t))
	}
	return d, nil
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, taskstate.ErrOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, calendar.ErrInvalidKey), errors.Is(err, errBadIndex):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

var errBadIndex = errors.New("server: bad task index")

func (s *Server) keyParam(c *gin.Context) (calendar.DayKey, error) {
	return calendar.ParseKey(s.engine.Window().Policy(), c.Param("key"))
}

func (s *Server) keyAndIndex(c *gin.Context) (calendar.DayKey, int, error) {
	k, err := s.keyParam(c)
	if err != nil {
		return "", 0, err
	}
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", errBadIndex, c.Param("idx"))
	}
	return k, idx, nil
}

func (s *Server) handleDays(c *gin.Context) {
	w := s.engine.Window()
	days := make([]dayJSON, 0, len(w.Keys()))
	for _, k := range w.Keys() {
		d, err := s.day(k)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	respond(c, gin.H{
		"today":  string(w.TodayKey()),
		"view":   string(s.engine.View()),
		"policy": string(w.Policy()),
		"days":   days,
	})
}

func (s *Server) handleDay(c *gin.Context) {
	k, err := s.keyParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	d, err := s.day(k)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, d)
}

func (s *Server) handleComplete(c *gin.Context) {
	k, idx, err := s.keyAndIndex(c)
	if err != nil {
		fail(c, err)
		return
	}
	t, err := s.engine.ToggleComplete(k, idx)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toTaskJSON(k, idx, t))
}

func (s *Server) handleSkipFlag(c *gin.Context) {
	k, idx, err := s.keyAndIndex(c)
	if err != nil {
		fail(c, err)
		return
	}
	t, err := s.engine.ToggleSkip(k, idx)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toTaskJSON(k, idx, t))
}

func (s *Server) handleBump(c *gin.Context) {
	k, idx, err := s.keyAndIndex(c)
	if err != nil {
		fail(c, err)
		return
	}
	moved, err := s.engine.Skip(k, idx)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"moved": moved})
}

func (s *Server) handleCarry(c *gin.Context) {
	k, err := s.keyParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	n, err := s.engine.CarryOver(k)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"moved": n, "view": string(s.engine.View())})
}

func (s *Server) handleRollover(c *gin.Context) {
	res, err := s.engine.Rollover(s.clock.Now())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{
		"today":   string(res.Today),
		"added":   keyStrings(res.Added),
		"evicted": keyStrings(res.Evicted),
		"reset":   keyStrings(res.Reset),
	})
}

func (s *Server) handleExportCSV(c *gin.Context) {
	st := s.engine.Store()
	rows := export.Rows(st.Window(), st.Catalog(), st.Snapshot())

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="liftlog.csv"`)
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, rows); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}

func keyStrings(keys []calendar.DayKey) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, string(k))
	}
	return out
}
