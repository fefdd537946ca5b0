package dto

import "time"

type EventDTO struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
	Location string     `json:"location"`
}

// PlanRequest plans one day. Events and Tasks fall back to the configured
// calendar source and task repository when omitted.
type PlanRequest struct {
	Date          string     `json:"date"`
	Events        []EventDTO `json:"events"`
	Tasks         []TaskDTO  `json:"tasks"`
	DayStart      *time.Time `json:"day_start"`
	DayEnd        *time.Time `json:"day_end"`
	StartLocation string     `json:"start_location"`
	EndLocation   string     `json:"end_location"`
	// UnlocatedPolicy is "cursor" or "agnostic".
	UnlocatedPolicy string `json:"unlocated_policy"`
	IncludeBuffer   *bool  `json:"include_buffer"`
}

type PlanEntryResponse struct {
	Kind         string     `json:"kind"`
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	Location     string     `json:"location"`
	TravelBefore *int       `json:"travel_before,omitempty"`
	TravelAfter  *int       `json:"travel_after,omitempty"`
}

type GapResponse struct {
	Index        int       `json:"index"`
	PrevID       string    `json:"prev_id,omitempty"`
	NextID       string    `json:"next_id,omitempty"`
	Start        time.Time `json:"start"`
	Deadline     time.Time `json:"deadline"`
	Minutes      int       `json:"minutes"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	DirectTravel *int      `json:"direct_travel"`
	Placed       []string  `json:"placed"`
	Blocked      bool      `json:"blocked"`
	SlackAfter   int       `json:"slack_after"`
}

type PlanResponse struct {
	Entries  []PlanEntryResponse `json:"entries"`
	Gaps     []GapResponse       `json:"gaps"`
	Unplaced []TaskDTO           `json:"unplaced"`
}
