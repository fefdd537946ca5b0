package handlers

import (
	"daystack/internal/api/dto"
	"daystack/internal/domain"
	"daystack/internal/ports"
	"log"
	"net/http"
)

// TaskHandler exposes the flexible task backlog.
type TaskHandler struct {
	Repo ports.TaskRepository
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}
	if h.Repo == nil {
		writeError(w, r, http.StatusNotFound, "no task repository configured")
		return
	}

	tasks, err := h.Repo.ListTasks(r.Context())
	if err != nil {
		log.Printf("list tasks failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListTasksResponse{Tasks: toTaskDTOs(tasks)})
}

func toTaskDTOs(tasks []domain.FlexibleTask) []dto.TaskDTO {
	out := make([]dto.TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		d := dto.TaskDTO{
			ID:              t.ID,
			Name:            t.Name,
			DurationMinutes: t.DurationMinutes,
			Location:        t.Location,
			Deadline:        t.Deadline,
		}
		if t.Source != nil {
			d.Course = t.Source.Course
			d.Link = t.Source.Link
		}
		out = append(out, d)
	}
	return out
}

func fromTaskDTOs(tasks []dto.TaskDTO) []domain.FlexibleTask {
	out := make([]domain.FlexibleTask, 0, len(tasks))
	for _, d := range tasks {
		t := domain.FlexibleTask{
			ID:              d.ID,
			Name:            d.Name,
			DurationMinutes: d.DurationMinutes,
			Location:        d.Location,
			Deadline:        d.Deadline,
		}
		if d.Course != "" || d.Link != "" {
			t.Source = &domain.TaskSource{Course: d.Course, Link: d.Link}
		}
		out = append(out, t)
	}
	return out
}
