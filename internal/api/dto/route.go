package dto

// RouteRequest asks for the optimal visiting order of a small task set.
//
// Either Travel is given, one row per node with null for a missing edge and
// Nodes[0] as the start, or Start and Tasks are given and travel times are
// taken from the travel oracle.
type RouteRequest struct {
	Start string         `json:"start"`
	Tasks []TaskDTO      `json:"tasks"`
	Nodes []RouteNodeDTO `json:"nodes"`
	// Travel[i][j] is minutes from node i to node j.
	Travel        [][]*float64 `json:"travel"`
	IncludeBuffer *bool        `json:"include_buffer"`
}

type RouteNodeDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	WorkMinutes float64 `json:"work_minutes"`
}

type RouteResponse struct {
	Order       []RouteNodeDTO `json:"order"`
	TotalTravel float64        `json:"total_travel"`
	TotalWork   float64        `json:"total_work"`
	TotalTime   float64        `json:"total_time"`
}
