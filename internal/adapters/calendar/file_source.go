package calendar

import (
	"context"
	"daystack/internal/domain"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type eventRecord struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Start    *time.Time `yaml:"start"`
	End      *time.Time `yaml:"end"`
	Location string     `yaml:"location"`
}

// ParseEvents decodes a YAML (or JSON) list of events. Either bound may be
// omitted for open-ended markers.
func ParseEvents(data []byte) ([]domain.FixedEvent, error) {
	var records []eventRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse events: %w", err)
	}

	events := make([]domain.FixedEvent, 0, len(records))
	for i, r := range records {
		if r.Start == nil && r.End == nil {
			return nil, fmt.Errorf("parse events: item at index %d: start or end is required", i)
		}
		ev := domain.FixedEvent{
			ID:       strings.TrimSpace(r.ID),
			Name:     strings.TrimSpace(r.Name),
			Start:    r.Start,
			End:      r.End,
			Location: strings.TrimSpace(r.Location),
		}
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		events = append(events, ev)
	}
	return events, nil
}

// FileSource serves events from a YAML or JSON file spanning any number of days.
type FileSource struct {
	Path     string
	Location *time.Location
}

func NewFileSource(path string, loc *time.Location) *FileSource {
	return &FileSource{Path: path, Location: loc}
}

func (f *FileSource) EventsOn(_ context.Context, day time.Time) ([]domain.FixedEvent, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("events on: read %q: %w", f.Path, err)
	}

	all, err := ParseEvents(data)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := DayRange(day, f.Location)
	out := make([]domain.FixedEvent, 0, len(all))
	for _, ev := range all {
		key, _ := ev.SortKey()
		if !key.Before(dayStart) && key.Before(dayEnd) {
			out = append(out, ev)
		}
	}
	return out, nil
}
