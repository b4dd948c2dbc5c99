package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var csvHeader = []string{"Day", "Date", "Workout", "#", "Task", "Complete", "Skipped", "Original Day", "Carried"}

func ToCSV(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	return WriteCSV(f, rows)
}

// WriteCSV writes rows with a header line to out.
func WriteCSV(out io.Writer, rows []Row) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			string(r.Day),
			r.Date,
			r.Label,
			strconv.Itoa(r.Position),
			r.Task,
			yesNo(r.Complete),
			yesNo(r.Skipped),
			string(r.OriginalDay),
			yesNo(r.Carried()),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
