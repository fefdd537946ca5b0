package ports

import (
	"context"
	"daystack/internal/domain"
	"time"
)

// Port: a boundary for retrieving the fixed calendar of one day.
type EventSource interface {
	EventsOn(ctx context.Context, day time.Time) ([]domain.FixedEvent, error)
}

// Port: a boundary for retrieving the flexible task backlog.
type TaskRepository interface {
	ListTasks(ctx context.Context) ([]domain.FlexibleTask, error)
}
