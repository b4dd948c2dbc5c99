package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Clock supplies the current instant in the user's zone.
type Clock interface {
	Now() time.Time
}

// ZoneClock reads the wall clock and converts it to Location.
type ZoneClock struct {
	Location *time.Location
}

func (c ZoneClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// LoadZone resolves an IANA zone name. Empty and "Local" mean the host zone.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	return loc, nil
}

// NowInZone is the date collaborator: the current instant in zone name.
func NowInZone(name string) (time.Time, error) {
	loc, err := LoadZone(name)
	if err != nil {
		return time.Time{}, err
	}
	return ZoneClock{Location: loc}.Now(), nil
}
