package dto

import "time"

type TaskDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	DurationMinutes int        `json:"duration_minutes"`
	Location        string     `json:"location,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Course          string     `json:"course,omitempty"`
	Link            string     `json:"link,omitempty"`
}

type ListTasksResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}
