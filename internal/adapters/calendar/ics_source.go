package calendar

import (
	"context"
	"daystack/internal/domain"
	"daystack/internal/platform/obs"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ICSSource reads fixed events from an ICS file or an http(s) feed.
type ICSSource struct {
	// Path is a filesystem path or an http(s) URL.
	Path string
	// Location defines the planned day's midnight. Nil uses the day's own location.
	Location *time.Location

	client *http.Client
}

func NewICSSource(path string, loc *time.Location) *ICSSource {
	return &ICSSource{
		Path:     path,
		Location: loc,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// EventsOn returns the events of the calendar day containing day, with
// recurring series expanded.
func (s *ICSSource) EventsOn(ctx context.Context, day time.Time) (_ []domain.FixedEvent, err error) {
	defer obs.Time(ctx, "calendar.ICSSource.EventsOn")(&err)

	body, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := parseICS(body)
	if err != nil {
		return nil, fmt.Errorf("events on %s: %w", day.Format(time.DateOnly), err)
	}

	start, end := DayRange(day, s.Location)
	return expandDay(parsed, start, end), nil
}

func (s *ICSSource) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.Path, "http://") && !strings.HasPrefix(s.Path, "https://") {
		body, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("read ics %q: %w", s.Path, err)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch ics: new request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch ics: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch ics: read body: %w", err)
	}
	return body, nil
}

// DayRange returns midnight of day and of the following day in loc.
func DayRange(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = day.Location()
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
