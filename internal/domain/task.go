package domain

import "time"

// Optional metadata carried through from the task source (e.g. an LMS crawl).
type TaskSource struct {
	Course string
	Link   string
}

// Represents a backlog item with an estimated duration that should be
// scheduled into free time between fixed events.
//
// An empty Location means the task is performed wherever the planner's
// cursor currently is.
type FlexibleTask struct {
	ID              string
	Name            string
	DurationMinutes int
	Location        string
	Deadline        *time.Time
	Source          *TaskSource
}

func (t FlexibleTask) HasLocation() bool { return t.Location != "" }

// Duration returns the estimated work time.
func (t FlexibleTask) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// DisplayName prefixes the course name when the task came from a course feed.
func (t FlexibleTask) DisplayName() string {
	if t.Source != nil && t.Source.Course != "" {
		return "[" + t.Source.Course + "] " + t.Name
	}
	return t.Name
}
