package nav

import (
	"container/heap"
	"context"
	"math"
)

// searchCheckInterval is how many expansions SearchContext runs between
// cancellation checks.
const searchCheckInterval = 64

// SearchFunc is the signature pool workers run.
type SearchFunc func(ctx context.Context, mesh *NavMesh, startID, goalID string) ([]string, error)

// Search runs A* from startID to goalID and returns the node ids of a
// cheapest path, both ends included. An empty result means there is no path:
// either id is missing from the mesh or the goal is unreachable.
func Search(mesh *NavMesh, startID, goalID string) []string {
	path, _ := SearchContext(context.Background(), mesh, startID, goalID)
	return path
}

// SearchContext is Search with cancellation. The only error it returns is ctx.Err().
func SearchContext(ctx context.Context, mesh *NavMesh, startID, goalID string) ([]string, error) {
	start := mesh.node(startID)
	goal := mesh.node(goalID)
	if start == nil || goal == nil {
		return []string{}, nil
	}
	if startID == goalID {
		return []string{startID}, nil
	}

	open := &frontier{}
	heap.Init(open)

	gScore := map[string]float64{startID: 0}
	cameFrom := map[string]string{}
	var seq uint64

	h := distance(start, goal)
	heap.Push(open, &frontierItem{id: startID, g: 0, h: h, f: h, seq: seq})

	expansions := 0
	for open.Len() > 0 {
		current := heap.Pop(open).(*frontierItem)
		if best, ok := gScore[current.id]; ok && current.g > best {
			// superseded by a cheaper admission
			continue
		}
		if current.id == goalID {
			return reconstructPath(cameFrom, goalID), nil
		}

		expansions++
		if expansions%searchCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return []string{}, err
			}
		}

		node := mesh.nodes[current.id]
		for _, nbID := range node.Neighbors {
			nb := mesh.nodes[nbID]
			if nb == nil {
				continue
			}
			tentative := current.g + distance(node, nb)
			if prev, seen := gScore[nbID]; seen && tentative >= prev {
				continue
			}
			gScore[nbID] = tentative
			cameFrom[nbID] = current.id
			seq++
			nh := distance(nb, goal)
			heap.Push(open, &frontierItem{id: nbID, g: tentative, h: nh, f: tentative + nh, seq: seq})
		}
	}

	return []string{}, nil
}

// PathCost sums the Euclidean length of consecutive steps along path.
// A path referencing a node missing from mesh costs +Inf.
func PathCost(mesh *NavMesh, path []string) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		a, b := mesh.node(path[i-1]), mesh.node(path[i])
		if a == nil || b == nil {
			return math.Inf(1)
		}
		total += distance(a, b)
	}
	return total
}

func distance(a, b *NavNode) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func reconstructPath(cameFrom map[string]string, current string) []string {
	path := []string{current}
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type frontierItem struct {
	id  string
	g   float64
	h   float64
	f   float64
	seq uint64
}

// frontier orders by f, then h (prefer nodes nearer the goal), then admission order.
type frontier []*frontierItem

func (o frontier) Len() int { return len(o) }
func (o frontier) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}
func (o frontier) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
}
func (o *frontier) Push(x any) {
	*o = append(*o, x.(*frontierItem))
}
func (o *frontier) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
