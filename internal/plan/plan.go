// Package plan holds the static workout rotation: a cyclic sequence of day
// templates, each a label plus an ordered list of task names.
package plan

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyCatalog  = errors.New("plan: catalog has no days")
	ErrInvalidDay    = errors.New("plan: invalid day template")
	ErrUnknownFormat = errors.New("plan: unknown catalog format")
)

// DayTemplate is one day of the rotation.
type DayTemplate struct {
	Label string   `yaml:"label"`
	Tasks []string `yaml:"tasks"`
}

// Catalog is an immutable, non-empty rotation of day templates.
type Catalog struct {
	days []DayTemplate
}

// New copies days into a catalog after validating them.
func New(days []DayTemplate) (Catalog, error) {
	if len(days) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}
	out := make([]DayTemplate, len(days))
	for i, d := range days {
		if strings.TrimSpace(d.Label) == "" {
			return Catalog{}, fmt.Errorf("%w: day %d has no label", ErrInvalidDay, i)
		}
		tasks := make([]string, len(d.Tasks))
		for j, name := range d.Tasks {
			if strings.TrimSpace(name) == "" {
				return Catalog{}, fmt.Errorf("%w: day %d task %d has no name", ErrInvalidDay, i, j)
			}
			tasks[j] = name
		}
		out[i] = DayTemplate{Label: d.Label, Tasks: tasks}
	}
	return Catalog{days: out}, nil
}

// Len reports the rotation length.
func (c Catalog) Len() int { return len(c.days) }

// Template returns the template for any integer offset, wrapping in both
// directions. The returned value is a copy.
func (c Catalog) Template(offset int) DayTemplate {
	n := len(c.days)
	if n == 0 {
		return DayTemplate{}
	}
	d := c.days[((offset%n)+n)%n]
	return DayTemplate{Label: d.Label, Tasks: append([]string(nil), d.Tasks...)}
}

// Days returns a copy of every template in rotation order.
func (c Catalog) Days() []DayTemplate {
	out := make([]DayTemplate, len(c.days))
	for i := range c.days {
		out[i] = c.Template(i)
	}
	return out
}

type catalogFile struct {
	Days []DayTemplate `yaml:"days"`
}

// Parse decodes a YAML catalog of the form:
//
//	days:
//	  - label: Push
//	    tasks: [Bench press, Overhead press]
func Parse(data []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	return New(f.Days)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read plan file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("parse plan file %s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes the catalog in the same YAML shape Parse accepts.
func (c Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(catalogFile{Days: c.Days()})
}
