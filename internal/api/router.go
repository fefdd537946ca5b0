package api

import (
	"daystack/internal/api/handlers"
	"daystack/internal/ports"
	"daystack/internal/services"
	"net/http"
	"time"
)

// Dependencies of the HTTP layer. Tasks and Events are optional; without
// them requests must carry their own tasks and events.
type Deps struct {
	Tasks    ports.TaskRepository
	Events   ports.EventSource
	Oracle   ports.TravelTimeOracle
	Packer   services.PackerOptions
	Location *time.Location
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	taskHandler := &handlers.TaskHandler{Repo: deps.Tasks}
	planHandler := &handlers.PlanHandler{
		Tasks:    deps.Tasks,
		Events:   deps.Events,
		Oracle:   deps.Oracle,
		Packer:   deps.Packer,
		Location: deps.Location,
	}
	routeHandler := &handlers.RouteHandler{
		Oracle: deps.Oracle,
		Packer: deps.Packer,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/tasks", taskHandler.List)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.HandleFunc("/routes", routeHandler.Route)

	return requestIDMiddleware(loggingMiddleware(mux))
}
