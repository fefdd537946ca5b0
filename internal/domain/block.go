package domain

import "time"

// A placement decision for one flexible task inside a gap.
// TravelBefore is the transit consumed getting to Location; TravelAfter is
// the transit from Location to the next fixed event at selection time.
type TaskBlock struct {
	TaskID       string
	TaskName     string
	Start        time.Time
	End          time.Time
	Location     string
	TravelBefore int
	TravelAfter  int
}
