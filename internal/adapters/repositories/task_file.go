package repositories

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

// DefaultTaskDuration is applied to backlog items that arrive without an estimate.
const DefaultTaskDuration = 60

// TaskSeed is the on-disk form of one backlog item. JSON files parse too,
// since YAML is a superset of JSON.
type TaskSeed struct {
	ID            string     `yaml:"id" json:"id"`
	Task          string     `yaml:"task" json:"task"`
	EstimatedTime int        `yaml:"estimated_time" json:"estimated_time"`
	Location      string     `yaml:"location" json:"location"`
	Deadline      *time.Time `yaml:"deadline" json:"deadline"`
	Course        string     `yaml:"course" json:"course"`
	Link          string     `yaml:"link" json:"link"`
}

// ParseTasks decodes a YAML or JSON list of backlog items.
func ParseTasks(data []byte) ([]domain.FlexibleTask, error) {
	var seeds []TaskSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}

	tasks := make([]domain.FlexibleTask, 0, len(seeds))
	for i, s := range seeds {
		name := strings.TrimSpace(s.Task)
		if name == "" {
			return nil, fmt.Errorf("parse tasks: item at index %d: task name cannot be empty", i)
		}
		if s.EstimatedTime < 0 {
			return nil, fmt.Errorf("parse tasks: item %q: negative estimated_time %d", name, s.EstimatedTime)
		}

		t := domain.FlexibleTask{
			ID:              strings.TrimSpace(s.ID),
			Name:            name,
			DurationMinutes: s.EstimatedTime,
			Location:        strings.TrimSpace(s.Location),
			Deadline:        s.Deadline,
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.DurationMinutes == 0 {
			t.DurationMinutes = DefaultTaskDuration
		}
		if s.Course != "" || s.Link != "" {
			t.Source = &domain.TaskSource{Course: s.Course, Link: s.Link}
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}

// FileTaskRepository serves a backlog read from a YAML or JSON file.
// The file is re-read on every call.
type FileTaskRepository struct {
	Path string
}

func NewFileTaskRepository(path string) *FileTaskRepository {
	return &FileTaskRepository{Path: path}
}

func (f *FileTaskRepository) ListTasks(_ context.Context) ([]domain.FlexibleTask, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("list tasks: read %q: %w", f.Path, err)
	}
	return ParseTasks(data)
}

// SeedFromFile loads a backlog file into the repository, replacing its contents.
func SeedFromFile(ctx context.Context, repo *SQLTaskRepository, path string) error {
	tasks, err := NewFileTaskRepository(path).ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	if err := repo.ReplaceTasks(ctx, tasks); err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	return nil
}
