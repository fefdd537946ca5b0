package domain

import "time"

// Represents the free interval between two consecutive fixed events.
// PrevIndex is the index of the preceding event in the sorted event list,
// or -1 for a leading gap that opens the day.
type Gap struct {
	Index        int
	PrevIndex    int
	PrevID       string
	NextID       string
	Start        time.Time
	Deadline     time.Time
	FromLocation string
	ToLocation   string
}

// Minutes is the whole number of minutes between Start and Deadline.
// It is zero or negative for overlapping or out-of-order events.
func (g Gap) Minutes() int {
	return int(g.Deadline.Sub(g.Start) / time.Minute)
}

func (g Gap) Degenerate() bool { return g.Minutes() <= 0 }
