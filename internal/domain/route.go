package domain

// One node of a route instance. Node 0 of an instance is the fixed start.
type RouteNode struct {
	ID          string
	Name        string
	WorkMinutes float64
}

// Input to the exact route optimizer: Travel[i][j] is the time to move from
// node i to node j. Diagonal entries are ignored.
type RouteInstance struct {
	Nodes  []RouteNode
	Travel [][]float64
}

// Output of the exact route optimizer. Order holds node indices starting at 0.
type RouteResult struct {
	Order       []int
	TotalTravel float64
	TotalWork   float64
	TotalTime   float64
}

// OrderedNodes resolves Order against the instance's node list.
func (r RouteResult) OrderedNodes(inst RouteInstance) []RouteNode {
	out := make([]RouteNode, 0, len(r.Order))
	for _, i := range r.Order {
		out = append(out, inst.Nodes[i])
	}
	return out
}
