package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	Day         string `json:"day"`
	Date        string `json:"date,omitempty"`
	Workout     string `json:"workout"`
	Position    int    `json:"position"`
	Task        string `json:"task"`
	Complete    bool   `json:"complete"`
	Skipped     bool   `json:"skipped"`
	OriginalDay string `json:"original_day"`
	Carried     bool   `json:"carried"`
}

func ToJSON(rows []Row, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rows),
		Tasks:      []jsonTask{},
	}

	for _, r := range rows {
		export.Tasks = append(export.Tasks, jsonTask{
			Day:         string(r.Day),
			Date:        r.Date,
			Workout:     r.Label,
			Position:    r.Position,
			Task:        r.Task,
			Complete:    r.Complete,
			Skipped:     r.Skipped,
			OriginalDay: string(r.OriginalDay),
			Carried:     r.Carried(),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
